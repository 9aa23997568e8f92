package controller

import (
	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Healthy(ctx *fiber.Ctx) error
}

type healthController struct {
	loaded func() int
}

// NewHealthController reports liveness; loaded returns the number of cached
// sessions.
func NewHealthController(loaded func() int) IHealthController {
	return &healthController{loaded: loaded}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/check/healthy", c.Healthy)
}

func (c *healthController) Healthy(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{Status: "ok"}
	if c.loaded != nil {
		res.LoadedSessions = c.loaded()
	}
	return ctx.JSON(serverutils.SuccessResponse("Healthy", res))
}
