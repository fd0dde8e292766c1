package handlers

import (
	"net/http"

	"familytrip/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// SessionUser is the part of the identity exposed to the web client.
type SessionUser struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// GET /api/auth/session
func Session(c *gin.Context) {
	var user *SessionUser
	if id := middleware.GetIdentity(c); id.Authenticated() {
		user = &SessionUser{ID: id.UserID, Email: id.Email}
	}
	var authErr *string
	if msg := middleware.GetAuthError(c); msg != "" && user == nil {
		authErr = &msg
	}
	c.JSON(http.StatusOK, gin.H{
		"user":       user,
		"authError":  authErr,
		"request_id": middleware.GetRequestID(c),
	})
}
