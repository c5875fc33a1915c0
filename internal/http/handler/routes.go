package handler

import (
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"signdesk/internal/http/middleware"
	"signdesk/internal/ratelimit"
	"signdesk/internal/service"
)

// RouteDeps bundles everything the HTTP surface needs.
type RouteDeps struct {
	DB          *sql.DB
	Auth        service.AuthService
	Documents   service.DocumentService
	Invitations service.InvitationService
	Status      service.StatusService
	Sessions    middleware.SessionResolver

	// Limiter may be nil, which disables rate limiting.
	Limiter         ratelimit.Limiter
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, deps RouteDeps) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", swaggerUI())

	app.Get("/health", HealthCheck(deps.DB))
	app.Get("/healthz", LivenessProbe())

	limited := func(c *fiber.Ctx) error { return c.Next() }
	if deps.Limiter != nil {
		limited = middleware.RateLimit(deps.Limiter, deps.RateLimitMax, deps.RateLimitWindow)
	}

	auth := app.Group("/auth", limited)
	auth.Post("/signup", Signup(deps.Auth))
	auth.Post("/login", Login(deps.Auth))
	auth.Post("/logout", Logout(deps.Auth))

	// Sign links authenticate themselves through their HMAC signature.
	app.Post("/sign/:id", SignInvitation(deps.Invitations))

	docs := app.Group("/documents", middleware.RequireAuth(deps.Sessions))
	docs.Get("/", ListDocuments(deps.Documents))
	docs.Post("/", UploadDocument(deps.Documents))
	docs.Get("/:id", GetDocument(deps.Documents))
	docs.Delete("/:id", DeleteDocument(deps.Documents))
	docs.Get("/:id/completion-status", CompletionStatus(deps.Status))
	docs.Post("/:id/invitations", limited, CreateInvitations(deps.Invitations))
}

func swaggerUI() fiber.Handler {
	return func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	}
}
