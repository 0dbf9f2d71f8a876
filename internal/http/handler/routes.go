package handler

import (
	"database/sql"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"invproc/internal/queue"
	"invproc/internal/service"
	"invproc/internal/sse"
	"invproc/internal/storage"
)

// Deps bundles everything the HTTP surface needs. Handlers stay free of
// business logic; they translate HTTP to service calls and back.
type Deps struct {
	DB             *sql.DB
	Storage        storage.Storage
	Uploads        service.UploadService
	Documents      service.DocumentService
	Analytics      service.AnalyticsService
	Events         service.EventService
	Registry       *sse.Registry
	DeadLetters    queue.Maintainer
	InternalSecret string
}

// RegisterRoutes attaches all routes under /api/v1 plus the operational
// endpoints to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
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
	})

	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Post("/uploads", UploadDocument(d.Uploads))
	v1.Get("/uploads/stream", StreamUpdates(d.Registry))

	v1.Get("/documents", ListDocuments(d.Documents))
	v1.Get("/documents/:id", GetDocument(d.Documents))
	v1.Get("/documents/:id/download", DownloadDocument(d.Documents, d.Storage))
	v1.Patch("/documents/:id", PatchDocument(d.Documents))
	v1.Post("/documents/:id/approve", ApproveDocument(d.Documents))
	v1.Post("/documents/:id/reject", RejectDocument(d.Documents))

	v1.Get("/analytics/overview", AnalyticsOverview(d.Analytics))
	v1.Get("/analytics/documents-per-day", DocumentsPerDay(d.Analytics))

	v1.Post("/internal/events", InternalEvents(d.InternalSecret, d.Events))
	v1.Get("/internal/dead-letters", DeadLetters(d.InternalSecret, d.DeadLetters))
}

// OwnerHeader names the header the fronting auth layer uses to convey the
// authenticated owner. Session handling itself lives outside this service.
const OwnerHeader = "X-User-ID"

func ownerID(c *fiber.Ctx) string {
	if v := c.Get(OwnerHeader); v != "" {
		return v
	}
	return "anon"
}
