package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jstittsworth/bracket-engine/internal/errs"
)

// AppError is the wire shape every API error response carries.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func NewAppError(code, message string, details ...string) *AppError {
	err := &AppError{Code: code, Message: message}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Common error codes.
const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeUnknownTeam  = "UNKNOWN_TEAM"
	ErrCodeBadInput     = "BAD_INPUT"
	ErrCodeUpstream     = "UPSTREAM_ERROR"
	ErrCodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// SendFromError maps a sentinel error from internal/errs onto the
// appropriate HTTP status and AppError code. Unrecognized errors fall
// back to a 500.
func SendFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errs.ErrUnknownTeam):
		SendError(c, http.StatusNotFound, NewAppError(ErrCodeUnknownTeam, "unknown team", err.Error()))
	case errors.Is(err, errs.ErrNotFound):
		SendError(c, http.StatusNotFound, NewAppError(ErrCodeNotFound, "resource not found", err.Error()))
	case errors.Is(err, errs.ErrConflictingName):
		SendError(c, http.StatusConflict, NewAppError(ErrCodeConflict, "conflicting name", err.Error()))
	case errors.Is(err, errs.ErrInvalidConfig), errors.Is(err, errs.ErrMalformedBracket), errors.Is(err, errs.ErrBadInput):
		SendError(c, http.StatusBadRequest, NewAppError(ErrCodeBadInput, "invalid request", err.Error()))
	case errors.Is(err, errs.ErrUnavailable), errors.Is(err, errs.ErrMisconfigured):
		SendError(c, http.StatusServiceUnavailable, NewAppError(ErrCodeUnavailable, "market service unavailable", err.Error()))
	case errors.Is(err, errs.ErrUpstream):
		SendError(c, http.StatusBadGateway, NewAppError(ErrCodeUpstream, "upstream market error", err.Error()))
	default:
		SendInternalError(c, err.Error())
	}
}
