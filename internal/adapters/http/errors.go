package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Sjnjen/safety-for-her/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, internal_error, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errConflict returns a 409 error.
func errConflict(c *fiber.Ctx, msg string) error {
	return newError(c, 409, "conflict", msg)
}

// domainError maps core sentinel errors onto HTTP responses so handlers do
// not repeat the same errors.Is ladder.
func domainError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrEmptyField),
		errors.Is(err, domain.ErrInvalidIncidentType),
		errors.Is(err, domain.ErrNoRecipients),
		errors.Is(err, domain.ErrUnknownServiceKind),
		errors.Is(err, domain.ErrLocationUnsupported):
		return errBadRequest(c, err.Error())
	case errors.Is(err, domain.ErrContactNotFound):
		return errNotFound(c, err.Error())
	case errors.Is(err, domain.ErrTrackingActive):
		return errConflict(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
