package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type requestIDKeyType struct{}

// RequestTagger attaches a fresh uuid to every request so log lines from one
// request can be tied together.
func RequestTagger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.NewV7()
		if err != nil {
			sugar.Error(err)
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("X-Request-Id", id.String())

		ctx := context.WithValue(r.Context(), requestIDKeyType{}, id.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKeyType{}).(string)
	return id
}
