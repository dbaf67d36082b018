package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the fiber app.
type Options struct {
	AllowOrigins []string
	MaxUploadMB  int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Gatherer backs /metrics; the route is omitted when nil.
	Gatherer prometheus.Gatherer
	// AccessLog enables the fiber request logger.
	AccessLog bool
}

// NewApp builds the fiber app with middleware and routes.
func NewApp(h *Handler, opts Options) *fiber.App {
	bodyLimit := opts.MaxUploadMB << 20
	if bodyLimit <= 0 {
		bodyLimit = 32 << 20
	}

	app := fiber.New(fiber.Config{
		AppName:      "eod-ledger-converter",
		BodyLimit:    bodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return writeError(c, code, err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(corsMiddleware(opts.AllowOrigins))
	if opts.AccessLog {
		app.Use(logger.New())
	}

	app.Get("/api/health", h.HandleHealth)
	app.Post("/convert", h.HandleConvert)
	app.Post("/api/convert", h.HandleConvert)

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	return app
}

func corsMiddleware(origins []string) fiber.Handler {
	allow := strings.Join(origins, ",")
	wildcard := allow == "" || strings.Contains(allow, "*")
	if allow == "" {
		allow = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins: allow,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		// credentials cannot be combined with a wildcard origin
		AllowCredentials: !wildcard,
	})
}
