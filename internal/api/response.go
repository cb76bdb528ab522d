package api

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/abhisek/grindlog/internal/progress"
)

// SuccessResponse wraps every successful payload.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Warning string      `json:"warning,omitempty"`
}

// ErrorResponse wraps every failure.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// Success writes a JSON success response.
func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(SuccessResponse{Success: true, Data: data})
}

// Written reports the outcome of a write. A persistence failure still
// answers with the result and carries a warning, since the in-memory state
// was updated.
func Written(c *fiber.Ctx, status int, data interface{}, err error) error {
	if err == nil {
		return Success(c, status, data)
	}
	if !errors.Is(err, progress.ErrPersistence) {
		return err
	}
	return c.Status(status).JSON(SuccessResponse{
		Success: true,
		Data:    data,
		Warning: "changes were applied but could not be saved: " + err.Error(),
	})
}

// Error writes a JSON error response.
func Error(c *fiber.Ctx, status int, err error) error {
	resp := ErrorResponse{
		Success: false,
		Error:   http.StatusText(status),
		Message: err.Error(),
	}
	var verr *progress.ValidationError
	if errors.As(err, &verr) {
		resp.Field = verr.Field
	}
	return c.Status(status).JSON(resp)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case progress.IsValidation(err), progress.IsParse(err):
		return fiber.StatusBadRequest
	case errors.Is(err, progress.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, progress.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, progress.ErrPersistence):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
