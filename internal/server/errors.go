package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	eventdomain "github.com/smallevents/gatekeeper/internal/event/domain"
	formsdomain "github.com/smallevents/gatekeeper/internal/forms/domain"
	"github.com/smallevents/gatekeeper/internal/submission"
	ticketdomain "github.com/smallevents/gatekeeper/internal/ticket/domain"
	userdomain "github.com/smallevents/gatekeeper/internal/user/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	Name        string     `json:"name,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

type errorResponse struct {
	Success bool         `json:"success"`
	Error   errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Success: false, Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var conflict *ticketdomain.AlreadyCheckedInError
	if errors.As(err, &conflict) {
		at := conflict.CheckedInAt
		return http.StatusConflict, errorPayload{
			Type:        "already_checked_in",
			Message:     "ticket already checked in",
			Name:        conflict.Name,
			CheckedInAt: &at,
		}
	}

	switch {
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: validationMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, formsdomain.ErrUpstream):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "upstream provider unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, submission.ErrInvalidPayload),
		errors.Is(err, ticketdomain.ErrMissingEmail),
		errors.Is(err, ticketdomain.ErrMissingFormID),
		errors.Is(err, ticketdomain.ErrMissingInvoiceNo),
		errors.Is(err, ticketdomain.ErrInvalidReference),
		errors.Is(err, eventdomain.ErrInvalidID),
		errors.Is(err, eventdomain.ErrInvalidFormID),
		errors.Is(err, userdomain.ErrInvalidEmail):
		return true
	default:
		return false
	}
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, ticketdomain.ErrMissingEmail):
		return "email is required"
	case errors.Is(err, ticketdomain.ErrMissingFormID):
		return "form id is required"
	case errors.Is(err, ticketdomain.ErrMissingInvoiceNo):
		return "invoice number is required"
	case errors.Is(err, ticketdomain.ErrInvalidReference):
		return "ticket reference is required"
	case errors.Is(err, eventdomain.ErrInvalidID):
		return "invalid event id"
	case errors.Is(err, userdomain.ErrInvalidEmail):
		return "invalid email"
	default:
		return "invalid request"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ticketdomain.ErrNotFound),
		errors.Is(err, eventdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return "internal_error", payload.Type
	case status == http.StatusNotFound:
		return "not_found", payload.Type
	case status == http.StatusConflict:
		return "conflict", payload.Type
	default:
		return "validation_error", payload.Type
	}
}
