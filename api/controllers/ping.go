package controllers

import (
	"net/http"
	"time"

	"github.com/autoads/autoads-backend/api/middleware"
	"github.com/autoads/autoads-backend/api/responses"
)

type pingResponse struct {
	Scope      string    `json:"scope"`
	Status     string    `json:"status"`
	UserID     string    `json:"user_id,omitempty"`
	ServerTime time.Time `json:"server_time"`
}

// PublicPing answers without credentials.
func PublicPing() http.HandlerFunc {
	return ping("public")
}

// PrivatePing echoes the authenticated user id, so clients can check a token.
func PrivatePing() http.HandlerFunc {
	return ping("private")
}

func ping(scope string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, pingResponse{
			Scope:      scope,
			Status:     "ok",
			UserID:     middleware.UserIDFromContext(r.Context()),
			ServerTime: time.Now().UTC(),
		})
	}
}
