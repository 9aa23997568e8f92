package serverutils

import (
	"errors"
	"log"

	"ai-knowledge-bot/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware turns panics and errors returned by handlers into
// JSON error responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[ERROR] panic in %s %s: %v", ctx.Method(), ctx.Path(), r)
				err = ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(500, "internal error"))
			}
		}()

		if err = ctx.Next(); err == nil {
			return nil
		}

		code := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, err.Error()))
	}
}

// StatusFor maps handler errors to HTTP status codes.
func StatusFor(err error) int {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	switch apperror.KindOf(err) {
	case apperror.KindTransport:
		return fiber.StatusBadGateway
	case apperror.KindService:
		return fiber.StatusServiceUnavailable
	case apperror.KindLogic:
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
