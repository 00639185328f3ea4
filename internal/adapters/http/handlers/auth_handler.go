package handlers

import (
	"natillera-miahorro/internal/adapters/http/middleware"
	"natillera-miahorro/internal/config"
	"natillera-miahorro/internal/core/services"
	"natillera-miahorro/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// Register handles user registration
// @Summary Register new user
// @Description Create an operator account. The first account is the administrator.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.authService.Register(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Error registrando usuario")
	}

	h.setAuthCookie(c, result.AccessToken)

	return response.Created(c, fiber.Map{
		"token": result.AccessToken,
		"user":  result.User,
	})
}

// Login handles user login
// @Summary Login user
// @Description Authenticate user and return an access token
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	result, err := h.authService.Login(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "Error iniciando sesión")
	}

	h.setAuthCookie(c, result.AccessToken)

	return response.Success(c, fiber.Map{
		"token": result.AccessToken,
		"user":  result.User,
	})
}

// Logout clears the session cookie
// @Summary Logout user
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.AccessTokenCookie)
	return response.Success(c, nil)
}

// Me returns the current user info
// @Summary Get current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return response.Unauthorized(c, "No autorizado")
	}

	user, err := h.authService.GetUserByID(c.Context(), userID)
	if err != nil {
		return respondError(c, err, "Error obteniendo usuario")
	}

	return response.Success(c, fiber.Map{
		"user": user.ToResponse(),
	})
}

func (h *AuthHandler) setAuthCookie(c *fiber.Ctx, accessToken string) {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   h.cfg.JWT.AccessTokenMins * 60,
		Secure:   h.cfg.Cookie.Secure,
		HTTPOnly: true,
		SameSite: h.cfg.Cookie.SameSite,
		Domain:   h.cfg.Cookie.Domain,
	})
}
