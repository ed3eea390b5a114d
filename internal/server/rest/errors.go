package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophdiary/internal/common"
	"github.com/gin-gonic/gin"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// statusFor maps service errors onto HTTP. Unknown errors are 500 and their
// text is not sent to the client.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, common.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrSigningFailed):
		return http.StatusNotFound, "not_found"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *RESTServer) respondError(c *gin.Context, err error) {
	status, code := statusFor(err)
	s.writeError(c, status, code, err)
	c.Abort()
}

func (s *RESTServer) writeError(c *gin.Context, status int, code string, err error) {
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		msg = "internal error"
	}
	c.JSON(status, ErrorEnvelope{Error: APIError{Message: msg, Code: code}})
}
