package handler

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/service"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  any    `json:"user"`
}

// Signup registers a new account.
func Signup(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req signupRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		user, err := svc.Signup(c.UserContext(), req.Name, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSignupFields):
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "name and email are required")
			case errors.Is(err, service.ErrWeakPassword):
				return writeError(c, fiber.StatusBadRequest, "WEAK_PASSWORD", "password must be at least 8 characters")
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_TAKEN", "email is already registered")
			}
			log.Printf("signup failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.Status(fiber.StatusCreated).JSON(user)
	}
}

// Login verifies credentials and issues a bearer token.
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		token, user, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "invalid email or password")
			}
			log.Printf("login failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(loginResponse{Token: token, User: user})
	}
}

// Logout revokes the caller's session token.
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		token = strings.TrimSpace(token)
		if token == "" {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}
		if err := svc.Logout(c.UserContext(), token); err != nil {
			log.Printf("logout failed: %v", err)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
