package api

import (
	"errors"
	"log"

	"github.com/example/lockin/domain/apperror"
	"github.com/gofiber/fiber/v2"
)

// errorHandler maps error kinds to HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(ErrorResponse{Error: "request_error", Message: fe.Message})
	}

	var ae *apperror.Error
	if !errors.As(err, &ae) {
		ae = apperror.FromRemote(err).(*apperror.Error)
	}

	code := statusFor(ae.Kind)
	if code == fiber.StatusInternalServerError {
		log.Printf("[api] %s %s failed: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(ErrorResponse{Error: string(ae.Kind), Message: ae.Message})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindInvalidArgument:
		return fiber.StatusBadRequest
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidState:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func badRequest(message string) error {
	return apperror.InvalidArgument("%s", message)
}
