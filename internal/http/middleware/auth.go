package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/session"
)

const (
	// UserIDLocalKey is the context-locals key holding the authenticated user's ID.
	UserIDLocalKey = "user_id"
	// UserEmailLocalKey is the context-locals key holding the authenticated user's email.
	UserEmailLocalKey = "user_email"
	// UserNameLocalKey is the context-locals key holding the authenticated user's name.
	UserNameLocalKey = "user_name"
)

// SessionResolver resolves a bearer token to a stored session.
type SessionResolver interface {
	Lookup(ctx context.Context, token string) (session.Session, error)
}

// RequireAuth resolves the Authorization bearer token to a session and
// stores the user's identity in context locals. Requests without a valid
// session get a 401.
func RequireAuth(sessions SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		sess, err := sessions.Lookup(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "authentication required")
		}

		c.Locals(UserIDLocalKey, sess.UserID)
		c.Locals(UserEmailLocalKey, sess.Email)
		c.Locals(UserNameLocalKey, sess.Name)

		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
