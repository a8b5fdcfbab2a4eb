package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrEmptyBatch is returned when a batch call carries no items.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrNotFound is returned when no item of a batch referenced an existing record.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when every item of a batch collided with an existing record.
	ErrConflict = errors.New("conflict")
	// ErrValidation is returned for malformed input rejected before any store access.
	ErrValidation = errors.New("validation failed")
	// ErrUnavailable is returned when a resource has not been set up yet.
	ErrUnavailable = errors.New("resource unavailable")
	// ErrTooFrequent is returned when a change comes before its delay has passed.
	ErrTooFrequent = errors.New("too frequent")
)

// Status maps an error to the HTTP status code the API answers with.
// Unknown errors are store or internal failures.
func Status(err error) int {
	switch {
	case err == nil:
		return fiber.StatusOK
	case errors.Is(err, ErrEmptyBatch), errors.Is(err, ErrValidation):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrTooFrequent):
		return fiber.StatusTooManyRequests
	case errors.Is(err, ErrUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// Client reports whether err is caused by the caller rather than the server.
func Client(err error) bool {
	s := Status(err)
	return s >= 400 && s < 500
}
