package handlers

import (
	"strings"

	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// List lists loans with their paid total and balance
// @Summary List loans
// @Tags Prestamos
// @Produce json
// @Security BearerAuth
// @Param status query string false "Loan estado"
// @Param socio_id query int false "Member ID"
// @Success 200 {object} response.Response
// @Router /prestamos [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	filter := repositories.LoanFilter{
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}
	if socioID := c.QueryInt("socio_id", 0); socioID > 0 {
		filter.SocioID = uint(socioID)
	}

	prestamos, err := h.loanService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener préstamos")
	}

	return response.Success(c, fiber.Map{"prestamos": prestamos})
}

// Create disburses a loan
// @Summary Create loan
// @Tags Prestamos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.CreateLoanInput true "Loan"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var req services.CreateLoanInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	prestamo, err := h.loanService.Create(c.Context(), req)
	if err != nil {
		return respondError(c, err, "No se pudo crear préstamo")
	}

	return response.Created(c, fiber.Map{"prestamo": prestamo})
}

// Get gets a loan
// @Summary Get loan
// @Tags Prestamos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id} [get]
func (h *LoanHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	prestamo, err := h.loanService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error obteniendo préstamo")
	}

	return response.Success(c, fiber.Map{"prestamo": prestamo})
}

// Update edits a loan
// @Summary Update loan
// @Tags Prestamos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body services.UpdateLoanInput true "Changed fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id} [put]
func (h *LoanHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.UpdateLoanInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	prestamo, err := h.loanService.Update(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo actualizar préstamo")
	}

	return response.Success(c, fiber.Map{"prestamo": prestamo})
}

// Delete removes a loan and its installments
// @Summary Delete loan
// @Tags Prestamos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	if err := h.loanService.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "No se pudo eliminar préstamo")
	}

	return response.Success(c, fiber.Map{"message": "Préstamo eliminado"})
}

// RegisterInstallment records a payment against the loan
// @Summary Register installment
// @Description Rejects amounts above the outstanding balance; marks the loan PAGADO when it is settled
// @Tags Prestamos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Param body body services.InstallmentInput true "Installment"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id}/pagos [post]
func (h *LoanHandler) RegisterInstallment(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.InstallmentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.loanService.RegisterInstallment(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo registrar pago")
	}

	return response.Created(c, fiber.Map{
		"pago":            result.Installment,
		"estado":          result.Estado,
		"total_pagado":    result.TotalPagado,
		"saldo_pendiente": result.SaldoPendiente,
		"pagado":          result.Pagado,
	})
}

// ListInstallments lists the payments of a loan, newest first
// @Summary List installments
// @Tags Prestamos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id}/pagos [get]
func (h *LoanHandler) ListInstallments(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	pagos, err := h.loanService.ListInstallments(c.Context(), id)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener pagos")
	}

	return response.Success(c, fiber.Map{"pagos": pagos})
}

// InstallmentReceipt downloads the receipt of one installment
// @Summary Installment receipt PDF
// @Tags Prestamos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Installment ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Response
// @Router /prestamos/pagos/{id}/recibo [get]
func (h *LoanHandler) InstallmentReceipt(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	pdf, filename, err := h.loanService.InstallmentReceipt(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error generando recibo")
	}

	return response.PDF(c, filename, pdf)
}

// Certificate downloads the paz y salvo of a paid loan
// @Summary Paid-in-full certificate PDF
// @Tags Prestamos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Loan ID"
// @Success 200 {file} file
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /prestamos/{id}/paz-y-salvo [get]
func (h *LoanHandler) Certificate(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	pdf, filename, err := h.loanService.Certificate(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error generando paz y salvo")
	}

	return response.PDF(c, filename, pdf)
}
