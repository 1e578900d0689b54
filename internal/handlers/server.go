package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"chatserver-backend/internal/models"
)

func CreateServer(w http.ResponseWriter, r *http.Request) {
	type creation struct {
		Name        string  `json:"name" validate:"required,min=2,max=64"`
		OwnerUserID int64   `json:"owner_user_id" validate:"required,gt=0"`
		IconURL     *string `json:"icon_url"`
	}

	var body creation
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			sugar.Debug(err)
			writeFailure(w, http.StatusBadRequest, "Validation failed: "+validateErrs[0].Field())
			return
		}
		sugar.Error(err)
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	server, err := servers.Create(r.Context(), models.NewServer{
		ServerName:  body.Name,
		OwnerUserID: body.OwnerUserID,
		IconURL:     body.IconURL,
	})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, server)
}

func GetServers(w http.ResponseWriter, r *http.Request) {
	all, err := servers.FindAll(r.Context())
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, all)
}

func GetServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	server, err := servers.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, server)
}

func GetServersByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := pathID(w, r, "owner_id")
	if !ok {
		return
	}

	owned, err := servers.FindByOwner(r.Context(), ownerID)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, owned)
}

func UpdateServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.ServerPatch
	err := json.NewDecoder(r.Body).Decode(&patch)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := servers.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	updated, err := servers.Update(r.Context(), patch.Apply(*existing))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated)
}

func DeleteServer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := servers.Delete(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if !deleted {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func GetServerWithMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	bundle, err := servers.GetServerWithMembers(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, bundle)
}

func GetServerMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	found, err := servers.GetServerMembers(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, found)
}

func AddServerMember(w http.ResponseWriter, r *http.Request) {
	serverID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	type addition struct {
		UserID   int64   `json:"user_id" validate:"required,gt=0"`
		Nickname *string `json:"nickname"`
	}

	var body addition
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "A valid user_id is required")
		return
	}

	member, err := members.Create(r.Context(), models.NewServerMember{
		ServerID: serverID,
		UserID:   body.UserID,
		Nickname: body.Nickname,
	})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, member)
}

func UpdateServerMemberNickname(w http.ResponseWriter, r *http.Request) {
	serverID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	type change struct {
		Nickname *string `json:"nickname"`
	}

	var body change
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	member, err := members.UpdateNickname(r.Context(), serverID, userID, body.Nickname)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, member)
}

func RemoveServerMember(w http.ResponseWriter, r *http.Request) {
	serverID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := pathID(w, r, "user_id")
	if !ok {
		return
	}

	deleted, err := members.Delete(r.Context(), serverID, userID)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}
	if !deleted {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}

	writeSuccess(w, http.StatusOK, map[string]bool{"deleted": true})
}

func GetServerChannels(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	found, err := channels.FindByServer(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, found)
}
