package handlers

import (
	"errors"
	"net/http"

	"familytrip/internal/domain"
	"familytrip/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

const upstreamMessage = "Er ging iets mis bij het verwerken van je vraag."

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var (
		unauth   domain.UnauthorizedError
		internal domain.InternalError
	)
	switch {
	case errors.As(err, &unauth):
		respondError(c, http.StatusUnauthorized, "unauthorized", "niet ingelogd", unauth.Reason)
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", "niet gevonden", nil)
	case domain.IsUpstream(err):
		respondError(c, http.StatusInternalServerError, "upstream_error", upstreamMessage, nil)
	case errors.As(err, &internal):
		respondError(c, http.StatusInternalServerError, "internal_error", internal.Error(), internal.Details())
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "er ging iets mis", err.Error())
	}
}
