package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/vikingspartan/EveraPharm-sub000/internal/models"
)

// statusForError maps business errors onto HTTP status codes. Anything
// unrecognized is an infrastructure failure and becomes a 500.
func statusForError(err error) int {
	var transitionErr *models.InvalidTransitionError
	switch {
	case errors.Is(err, models.ErrOrderNotFound),
		errors.Is(err, models.ErrProductNotFound),
		errors.Is(err, models.ErrInventoryNotFound),
		errors.Is(err, models.ErrPrescriptionNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, models.ErrInsufficientStock),
		errors.Is(err, models.ErrEmptyOrder),
		errors.Is(err, models.ErrInvalidQuantity),
		errors.Is(err, models.ErrNoPrescriptionNeeded),
		errors.As(err, &transitionErr):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrPrescriptionRequired),
		errors.Is(err, models.ErrPrescriptionAttached):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

// errorResponse writes the standard error body for a failed request.
func errorResponse(c *fiber.Ctx, message string, err error) error {
	return c.Status(statusForError(err)).JSON(fiber.Map{
		"message": message,
		"error":   err.Error(),
	})
}
