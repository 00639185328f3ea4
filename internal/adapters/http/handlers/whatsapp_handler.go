package handlers

import (
	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/adapters/whatsapp"
	"natillera-miahorro/internal/pkg/pagination"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ChannelStatus reports the state of the chat channel
type ChannelStatus interface {
	Status() whatsapp.Status
}

// WhatsappHandler exposes the chat channel state and its delivery log
type WhatsappHandler struct {
	channel ChannelStatus
	logRepo *repositories.WhatsappLogRepository
}

// NewWhatsappHandler creates a new whatsapp handler
func NewWhatsappHandler(channel ChannelStatus, logRepo *repositories.WhatsappLogRepository) *WhatsappHandler {
	return &WhatsappHandler{channel: channel, logRepo: logRepo}
}

// Status returns the connection state
// @Summary WhatsApp channel status
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /whatsapp/status [get]
func (h *WhatsappHandler) Status(c *fiber.Ctx) error {
	return response.Success(c, fiber.Map{"whatsapp": h.channel.Status()})
}

// Logs pages through delivery attempts
// @Summary WhatsApp delivery log
// @Tags WhatsApp
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} response.Response
// @Router /whatsapp/logs [get]
func (h *WhatsappHandler) Logs(c *fiber.Ctx) error {
	page := pagination.FromQuery(c)

	logs, total, err := h.logRepo.List(c.Context(), page.Offset, page.Limit)
	if err != nil {
		return respondError(c, err, "No se pudo obtener el registro de mensajes")
	}

	return response.Success(c, fiber.Map{
		"logs":       logs,
		"pagination": pagination.MetaFor(page, total),
	})
}
