package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chatserver-backend/internal/repositories"
)

// envelope is the wire shape of every response. data is null when there is
// nothing to return, error is null on success.
type envelope struct {
	Success bool    `json:"success"`
	Data    any     `json:"data"`
	Error   *string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		sugar.Error(err)
	}
}

func writeSuccess(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{Success: false, Error: &message})
}

// writeRepoError maps repository outcomes to status codes. Unknown errors
// are logged and reported as a generic store failure, the driver message
// never reaches the client.
func writeRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "Not found")
		return
	}

	var dup *repositories.DuplicateKeyError
	if errors.As(err, &dup) {
		writeFailure(w, http.StatusBadRequest, duplicateMessage(dup.Constraint))
		return
	}

	sugar.Errorw("store failure", "request_id", requestID(r), "error", err)
	writeFailure(w, http.StatusInternalServerError, "Something went wrong")
}

func duplicateMessage(constraint string) string {
	switch constraint {
	case "users_username_key":
		return "Username already taken"
	case "users_email_key":
		return "Email already registered"
	case "servers_server_name_key":
		return "Server name already exists"
	case "server_members_pkey", "direct_message_members_pkey":
		return "Already a member"
	default:
		return "Already exists"
	}
}
