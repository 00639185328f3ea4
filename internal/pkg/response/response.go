package response

import "github.com/gofiber/fiber/v2"

// Response is the error envelope shared by every JSON endpoint.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// Success sends {"ok": true} merged with the payload keys
func Success(c *fiber.Ctx, payload fiber.Map) error {
	return c.JSON(envelope(payload))
}

// Created sends a 201 with the same envelope as Success
func Created(c *fiber.Ctx, payload fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(envelope(payload))
}

// Error sends an error response
func Error(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		OK:    false,
		Error: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

// Unauthorized sends a 401 unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusForbidden, message)
}

// NotFound sends a 404 not found response
func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// InternalServerError sends a 500 internal server error response
func InternalServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

// PDF streams a document as an attachment download. The filename is quoted
// and escaped by fiber, so member data in it cannot break the header.
func PDF(c *fiber.Ctx, filename string, content []byte) error {
	c.Attachment(filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(content)
}

func envelope(payload fiber.Map) fiber.Map {
	out := fiber.Map{"ok": true}
	for k, v := range payload {
		if k == "ok" {
			continue
		}
		out[k] = v
	}
	return out
}
