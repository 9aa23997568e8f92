package controller

import (
	"context"

	"ai-knowledge-bot/internal/pkg/serverutils"
	"ai-knowledge-bot/pkg/rag/session"

	"github.com/gofiber/fiber/v2"
)

// SessionAdmin is the slice of the session manager exposed to operators.
type SessionAdmin interface {
	Status(ctx context.Context, userID string) (*session.Status, error)
	ClearState(ctx context.Context, userID string) error
	Forget(ctx context.Context, userID string) error
	WithUser(ctx context.Context, userID string, fn func(ctx context.Context) error) error
}

type ISessionController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetSession(ctx *fiber.Ctx) error
	ResetState(ctx *fiber.Ctx) error
	ClearMemory(ctx *fiber.Ctx) error
}

type sessionController struct {
	sessions SessionAdmin
}

func NewSessionController(sessions SessionAdmin) ISessionController {
	return &sessionController{sessions: sessions}
}

func (c *sessionController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/admin/sessions", auth)
	h.Get("/:userId", c.GetSession)
	h.Delete("/:userId/state", c.ResetState)
	h.Delete("/:userId/memory", c.ClearMemory)
}

func (c *sessionController) GetSession(ctx *fiber.Ctx) error {
	userID := ctx.Params("userId")

	var status *session.Status
	err := c.sessions.WithUser(ctx.UserContext(), userID, func(uctx context.Context) error {
		var err error
		status, err = c.sessions.Status(uctx, userID)
		return err
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Session", status))
}

// ResetState puts the user back in the main menu without touching the bot.
func (c *sessionController) ResetState(ctx *fiber.Ctx) error {
	userID := ctx.Params("userId")
	err := c.sessions.WithUser(ctx.UserContext(), userID, func(uctx context.Context) error {
		return c.sessions.ClearState(uctx, userID)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("State reset", nil))
}

func (c *sessionController) ClearMemory(ctx *fiber.Ctx) error {
	userID := ctx.Params("userId")
	err := c.sessions.WithUser(ctx.UserContext(), userID, func(uctx context.Context) error {
		return c.sessions.Forget(uctx, userID)
	})
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Memory cleared", nil))
}
