package handlers

import (
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RaffleHandler handles raffle endpoints
type RaffleHandler struct {
	raffleService *services.RaffleService
}

// NewRaffleHandler creates a new raffle handler
func NewRaffleHandler(raffleService *services.RaffleService) *RaffleHandler {
	return &RaffleHandler{raffleService: raffleService}
}

// WinnerRequest is the body of POST /rifas/{id}/winner
type WinnerRequest struct {
	Numero string `json:"numero"`
}

// List lists raffles, newest draw first
// @Summary List raffles
// @Tags Rifas
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /rifas [get]
func (h *RaffleHandler) List(c *fiber.Ctx) error {
	rifas, err := h.raffleService.List(c.Context())
	if err != nil {
		return respondError(c, err, "No se pudieron obtener rifas")
	}

	return response.Success(c, fiber.Map{"rifas": rifas})
}

// Create creates a raffle with its 100 numbers
// @Summary Create raffle
// @Tags Rifas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateRaffleInput true "Raffle"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /rifas [post]
func (h *RaffleHandler) Create(c *fiber.Ctx) error {
	var req services.CreateRaffleInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	rifa, err := h.raffleService.Create(c.Context(), req)
	if err != nil {
		return respondError(c, err, "No se pudo crear rifa")
	}

	return response.Created(c, fiber.Map{"rifa": rifa})
}

// Tickets lists the numbers of a raffle
// @Summary List raffle tickets
// @Tags Rifas
// @Produce json
// @Security BearerAuth
// @Param id path int true "Raffle ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rifas/{id}/tickets [get]
func (h *RaffleHandler) Tickets(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	tickets, err := h.raffleService.Tickets(c.Context(), id)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener boletas")
	}

	return response.Success(c, fiber.Map{"tickets": tickets})
}

// UpdateTicket sets holder and estado of one number
// @Summary Update ticket
// @Tags Rifas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Ticket ID"
// @Param body body services.UpdateTicketInput true "Ticket"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rifas/tickets/{id} [put]
func (h *RaffleHandler) UpdateTicket(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.UpdateTicketInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	ticket, err := h.raffleService.UpdateTicket(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo actualizar boleta")
	}

	return response.Success(c, fiber.Map{"ticket": ticket})
}

// Distribute shares the numbers among active members
// @Summary Distribute tickets
// @Description Requires confirmar=true. Refuses when PAGADO tickets exist unless incluir_pagados=true.
// @Tags Rifas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Raffle ID"
// @Param body body services.DistributeInput true "Confirmation"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rifas/{id}/distribute [post]
func (h *RaffleHandler) Distribute(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.DistributeInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.raffleService.Distribute(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo distribuir la rifa")
	}

	return response.Success(c, fiber.Map{
		"message":   "Boletas distribuidas",
		"socios":    result.Socios,
		"por_socio": result.PorSocio,
		"casa":      result.Casa,
	})
}

// TicketsByDocument lists the numbers held by a member
// @Summary Tickets of a member
// @Tags Rifas
// @Produce json
// @Security BearerAuth
// @Param documento path string true "Member document"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rifas/tickets-by-doc/{documento} [get]
func (h *RaffleHandler) TicketsByDocument(c *fiber.Ctx) error {
	result, err := h.raffleService.TicketsByDocument(c.Context(), c.Params("documento"))
	if err != nil {
		return respondError(c, err, "No se pudieron obtener boletas")
	}

	return response.Success(c, fiber.Map{
		"socio":   result.Socio,
		"tickets": result.Tickets,
	})
}

// SetWinner stores the winning number
// @Summary Set raffle winner
// @Tags Rifas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Raffle ID"
// @Param body body WinnerRequest true "Winning number"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /rifas/{id}/winner [post]
func (h *RaffleHandler) SetWinner(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req WinnerRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	rifa, err := h.raffleService.SetWinner(c.Context(), id, req.Numero)
	if err != nil {
		return respondError(c, err, "No se pudo registrar ganador")
	}

	return response.Success(c, fiber.Map{"rifa": rifa})
}
