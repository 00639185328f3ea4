package handlers

import (
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// PaymentHandler handles weekly payment endpoints
type PaymentHandler struct {
	paymentService *services.PaymentService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// Upsert creates or updates the row of (socio, semana)
// @Summary Upsert weekly payment
// @Description Writes the row for socio_id and semana, recording the previous version in the history
// @Tags Pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.UpsertPaymentInput true "Payment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pagos [post]
func (h *PaymentHandler) Upsert(c *fiber.Ctx) error {
	var req services.UpsertPaymentInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	pago, err := h.paymentService.Upsert(c.Context(), req, actor(c, req.Usuario))
	if err != nil {
		return respondError(c, err, "No se pudo crear/actualizar pago")
	}

	return response.Success(c, fiber.Map{"pago": pago})
}

// Update rewrites a payment by id
// @Summary Update weekly payment
// @Tags Pagos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param body body services.PaymentFields true "Payment"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pagos/{id} [put]
func (h *PaymentHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.PaymentFields
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	pago, err := h.paymentService.Update(c.Context(), id, req, actor(c, req.Usuario))
	if err != nil {
		return respondError(c, err, "No se pudo actualizar pago")
	}

	return response.Success(c, fiber.Map{"pago": pago})
}

// History lists the audit trail of a payment
// @Summary Payment history
// @Tags Pagos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /pagos/{id}/historial [get]
func (h *PaymentHandler) History(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	historial, err := h.paymentService.History(c.Context(), id)
	if err != nil {
		return respondError(c, err, "No se pudo obtener el historial")
	}

	return response.Success(c, fiber.Map{"historial": historial})
}

// Receipt downloads the weekly receipt
// @Summary Weekly receipt PDF
// @Tags Pagos
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Response
// @Router /pagos/{id}/recibo [get]
func (h *PaymentHandler) Receipt(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	pdf, filename, err := h.paymentService.Receipt(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error generando recibo")
	}

	return response.PDF(c, filename, pdf)
}
