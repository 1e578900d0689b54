package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"chatserver-backend/internal/models"
)

func CreateChannel(w http.ResponseWriter, r *http.Request) {
	type creation struct {
		ServerID int64  `json:"server_id" validate:"required,gt=0"`
		Name     string `json:"name" validate:"required,min=1,max=64"`
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

	// dm channels are only created through the dm workflow
	channel, err := channels.Create(r.Context(), models.NewChannel{
		ServerID:    &body.ServerID,
		Name:        body.Name,
		ChannelType: models.ChannelTypeStandard,
	})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, channel)
}

func GetChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	channel, err := channels.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, channel)
}

func UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	type rename struct {
		Name string `json:"name" validate:"required,min=1,max=64"`
	}

	var body rename
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Channel name can't be empty")
		return
	}

	channel, err := channels.Update(r.Context(), id, body.Name)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, channel)
}

func DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := channels.Delete(r.Context(), id)
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

func GetChannelMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	bundle, err := channels.GetChannelWithMessages(r.Context(), id, queryLimit(r))
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, bundle)
}
