package controller

import (
	"strconv"

	"ai-knowledge-bot/internal/dto"
	"ai-knowledge-bot/internal/pkg/logger"
	"ai-knowledge-bot/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
)

type ILogController interface {
	RegisterRoutes(r fiber.Router, auth fiber.Handler)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type logController struct {
	logger logger.ILogger
}

func NewLogController(log logger.ILogger) ILogController {
	return &logController{logger: log}
}

func (c *logController) RegisterRoutes(r fiber.Router, auth fiber.Handler) {
	h := r.Group("/admin/logs", auth)
	h.Get("/", c.GetLogs)
	h.Get("/:id", c.GetLogDetail)
}

func (c *logController) GetLogs(ctx *fiber.Ctx) error {
	limit, err := strconv.Atoi(ctx.Query("limit", "50"))
	if err != nil || limit < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid limit"))
	}
	offset, err := strconv.Atoi(ctx.Query("offset", "0"))
	if err != nil || offset < 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid offset"))
	}
	level := ctx.Query("level", "")

	items, err := c.logger.GetLogs(level, limit, offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	if items == nil {
		items = []logger.LogEntry{}
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", dto.LogListResponse{
		Items:  items,
		Level:  level,
		Limit:  limit,
		Offset: offset,
	}))
}

func (c *logController) GetLogDetail(ctx *fiber.Ctx) error {
	entry, err := c.logger.GetLogById(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", entry))
}
