package handlers

import (
	"errors"
	"strconv"
	"strings"

	"natillera-miahorro/internal/core/domain"
	"natillera-miahorro/internal/pkg/logger"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// respondError maps domain error kinds to status codes. Anything unknown is
// logged and answered with fallback.
func respondError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrDuplicateEntry):
		return response.BadRequest(c, domain.Message(err, fallback))
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthorized):
		return response.Unauthorized(c, domain.Message(err, "No autorizado"))
	case errors.Is(err, domain.ErrForbidden):
		return response.Forbidden(c, domain.Message(err, "Acceso denegado"))
	case errors.Is(err, domain.ErrNotFound):
		return response.NotFound(c, domain.Message(err, "Recurso no encontrado"))
	default:
		logger.Log.Error(fallback,
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return response.InternalServerError(c, fallback)
	}
}

// paramID reads a positive numeric route parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func invalidID(c *fiber.Ctx) error {
	return response.BadRequest(c, "ID inválido")
}

func invalidBody(c *fiber.Ctx) error {
	return response.BadRequest(c, "Cuerpo de la solicitud inválido")
}

// actor is the name recorded in audit entries: the explicit value from the
// request, then the authenticated user, then SYSTEM.
func actor(c *fiber.Ctx, explicit string) string {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return explicit
	}
	if username, ok := c.Locals("username").(string); ok && username != "" {
		return username
	}
	return domain.SystemActor
}
