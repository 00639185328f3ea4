package handlers

import (
	"strings"

	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// EventHandler handles event endpoints
type EventHandler struct {
	eventService *services.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List lists events
// @Summary List events
// @Tags Eventos
// @Produce json
// @Security BearerAuth
// @Param status query string false "UPCOMING, ONGOING, COMPLETED or CANCELLED"
// @Param tipo query string false "Event type"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /eventos [get]
func (h *EventHandler) List(c *fiber.Ctx) error {
	filter := repositories.EventFilter{
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
		Tipo:   strings.ToUpper(strings.TrimSpace(c.Query("tipo"))),
	}

	eventos, err := h.eventService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener eventos")
	}

	return response.Success(c, fiber.Map{"eventos": eventos})
}

// Create creates an event
// @Summary Create event
// @Tags Eventos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.EventInput true "Event"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /eventos [post]
func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req services.EventInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	evento, err := h.eventService.Create(c.Context(), req)
	if err != nil {
		return respondError(c, err, "No se pudo crear evento")
	}

	return response.Created(c, fiber.Map{"evento": evento})
}

// Get gets an event
// @Summary Get event
// @Tags Eventos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /eventos/{id} [get]
func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	evento, err := h.eventService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error obteniendo evento")
	}

	return response.Success(c, fiber.Map{"evento": evento})
}

// Update edits an event
// @Summary Update event
// @Tags Eventos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Param body body services.EventInput true "Event"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /eventos/{id} [put]
func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.EventInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	evento, err := h.eventService.Update(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo actualizar evento")
	}

	return response.Success(c, fiber.Map{"evento": evento})
}

// Delete removes an event
// @Summary Delete event
// @Tags Eventos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Event ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /eventos/{id} [delete]
func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.eventService.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "No se pudo eliminar evento")
	}

	return response.Success(c, fiber.Map{"message": "Evento eliminado"})
}
