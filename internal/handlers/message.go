package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"chatserver-backend/internal/models"
)

func CreateMessage(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	type creation struct {
		AuthorUserID int64  `json:"author_user_id" validate:"required,gt=0"`
		Content      string `json:"content" validate:"required,min=1,max=4000"`
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

	message, err := messages.Create(r.Context(), models.NewMessage{
		ChannelID:    channelID,
		AuthorUserID: body.AuthorUserID,
		Content:      body.Content,
	})
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, message)
}

func UpdateMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	type edit struct {
		Content string `json:"content" validate:"required,min=1,max=4000"`
	}

	var body edit
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Message content can't be empty")
		return
	}

	message, err := messages.UpdateContent(r.Context(), id, body.Content)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, message)
}

func DeleteMessage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	deleted, err := messages.Delete(r.Context(), id)
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
