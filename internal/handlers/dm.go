package handlers

import (
	"encoding/json"
	"net/http"
)

func CreateOrFindDm(w http.ResponseWriter, r *http.Request) {
	type pair struct {
		UserA int64 `json:"user_a" validate:"required,gt=0"`
		UserB int64 `json:"user_b" validate:"required,gt=0"`
	}

	var body pair
	err := json.NewDecoder(r.Body).Decode(&body)
	if err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(body); err != nil {
		sugar.Debug(err)
		writeFailure(w, http.StatusBadRequest, "Two valid user ids are required")
		return
	}

	if body.UserA == body.UserB {
		writeFailure(w, http.StatusBadRequest, "Can't open a dm with yourself")
		return
	}

	channel, err := dms.FindOrCreateDmChannel(r.Context(), body.UserA, body.UserB)
	if err != nil {
		writeRepoError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, channel)
}

func DeleteDm(w http.ResponseWriter, r *http.Request) {
	channelID, ok := pathID(w, r, "channel_id")
	if !ok {
		return
	}

	deleted, err := dms.DeleteDmChannel(r.Context(), channelID)
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
