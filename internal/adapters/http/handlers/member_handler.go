package handlers

import (
	"strings"

	"natillera-miahorro/internal/adapters/persistence/repositories"
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MemberHandler handles socio endpoints
type MemberHandler struct {
	memberService  *services.MemberService
	paymentService *services.PaymentService
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(memberService *services.MemberService, paymentService *services.PaymentService) *MemberHandler {
	return &MemberHandler{
		memberService:  memberService,
		paymentService: paymentService,
	}
}

// StatusRequest is the body of PUT /socios/{id}/estado
type StatusRequest struct {
	Estado string `json:"estado"`
}

// List lists members
// @Summary List members
// @Description Members with their saved total; filter by search text and estado
// @Tags Socios
// @Produce json
// @Security BearerAuth
// @Param search query string false "Documento, name, email or phone"
// @Param status query string false "ACTIVO or INHABILITADO"
// @Success 200 {object} response.Response
// @Router /socios [get]
func (h *MemberHandler) List(c *fiber.Ctx) error {
	filter := repositories.MemberFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: strings.ToUpper(strings.TrimSpace(c.Query("status"))),
	}

	socios, err := h.memberService.List(c.Context(), filter)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener socios")
	}

	return response.Success(c, fiber.Map{"socios": socios})
}

// Create registers a member and its 52-week schedule
// @Summary Create member
// @Tags Socios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.MemberInput true "Member data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /socios [post]
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	socio, err := h.memberService.Create(c.Context(), req)
	if err != nil {
		return respondError(c, err, "No se pudo crear socio")
	}

	return response.Created(c, fiber.Map{"socio": socio})
}

// Get gets a member
// @Summary Get member
// @Tags Socios
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /socios/{id} [get]
func (h *MemberHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	socio, err := h.memberService.GetByID(c.Context(), id)
	if err != nil {
		return respondError(c, err, "Error obteniendo socio")
	}

	return response.Success(c, fiber.Map{"socio": socio})
}

// Update edits a member
// @Summary Update member
// @Tags Socios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body services.MemberInput true "Member data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /socios/{id} [put]
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req services.MemberInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	socio, err := h.memberService.Update(c.Context(), id, req)
	if err != nil {
		return respondError(c, err, "No se pudo actualizar socio")
	}

	return response.Success(c, fiber.Map{"socio": socio})
}

// SetStatus toggles ACTIVO / INHABILITADO
// @Summary Change member status
// @Tags Socios
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Param body body StatusRequest true "New estado"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /socios/{id}/estado [put]
func (h *MemberHandler) SetStatus(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	var req StatusRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	socio, err := h.memberService.SetStatus(c.Context(), id, req.Estado)
	if err != nil {
		return respondError(c, err, "No se pudo cambiar el estado")
	}

	return response.Success(c, fiber.Map{"socio": socio})
}

// Payments lists the member's 52 weekly rows, creating them when missing
// @Summary List weekly payments of a member
// @Tags Pagos
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /socios/{id}/pagos [get]
func (h *MemberHandler) Payments(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c)
	}

	pagos, err := h.paymentService.ListByMember(c.Context(), id)
	if err != nil {
		return respondError(c, err, "No se pudieron obtener pagos")
	}

	return response.Success(c, fiber.Map{"pagos": pagos})
}
