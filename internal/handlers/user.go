package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"chatserver-backend/internal/models"
	"chatserver-backend/internal/password"
	"chatserver-backend/internal/repositories"
)

func Login(w http.ResponseWriter, r *http.Request) {
	type login struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	var body login
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	// missing user and wrong password produce the same answer, the response
	// must not reveal which usernames exist
	const incorrect = "Username or password incorrect."

	user, err := users.FindByUsername(r.Context(), body.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			writeFailure(w, http.StatusOK, incorrect)
			return
		}
		writeRepoError(w, r, err)
		return
	}

	ok, err := password.Verify(body.Password, user.PasswordHash)
	if err != nil {
		sugar.Errorw("verifying password", "request_id", requestID(r), "error", err)
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if !ok {
		writeFailure(w, http.StatusOK, incorrect)
		return
	}

	writeSuccess(w, http.StatusOK, user.Response())
}

func CreateUser(w http.ResponseWriter, r *http.Request) {
	type registration struct {
		Username  string  `json:"username" validate:"required,min=2,max=32"`
		Email     string  `json:"email" validate:"required,email"`
		Password  string  `json:"password" validate:"required,min=6"`
		AvatarURL *string `json:"avatar_url"`
		Status    string  `json:"status"`
	}

	var body registration
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

	digest, err := password.Hash(body.Password)
	if err != nil {
		sugar.Errorw("hashing password", "request_id", requestID(r), "error", err)
		writeFailure(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	user, err := users.Create(r.Context(), models.NewUser{
		Username:     body.Username,
		Email:        body.Email,
		PasswordHash: digest,
		AvatarURL:    body.AvatarURL,
		Status:       body.Status,
	})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user.Response())
}

func GetUsers(w http.ResponseWriter, r *http.Request) {
	all, err := users.FindAll(r.Context())
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	responses := make([]models.UserResponse, 0, len(all))
	for _, u := range all {
		responses = append(responses, u.Response())
	}

	writeSuccess(w, http.StatusOK, responses)
}

func GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := users.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Response())
}

func GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeFailure(w, http.StatusBadRequest, "Username is required")
		return
	}

	user, err := users.FindByUsername(r.Context(), username)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Response())
}

func UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var patch models.UserPatch
	err := json.NewDecoder(r.Body).Decode(&patch)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	existing, err := users.FindByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	merged := patch.Apply(*existing)

	if patch.Password != nil {
		digest, err := password.Hash(*patch.Password)
		if err != nil {
			sugar.Errorw("hashing password", "request_id", requestID(r), "error", err)
			writeFailure(w, http.StatusInternalServerError, "Something went wrong")
			return
		}
		merged.PasswordHash = digest
	}

	updated, err := users.Update(r.Context(), merged)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, updated.Response())
}

func DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := users.Delete(r.Context(), id)
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

func GetServersForUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	joined, err := servers.FindServersForUser(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, joined)
}

func GetDmChannelsForUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	found, err := dms.GetDmChannelsForUser(r.Context(), id)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, found)
}
