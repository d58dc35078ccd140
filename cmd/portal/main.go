package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opendeck/portal"
	fiberadapter "github.com/opendeck/portal/adapters/fiber"
	memoryadapter "github.com/opendeck/portal/adapters/memory"
	pgxadapter "github.com/opendeck/portal/adapters/pgx"
	redisadapter "github.com/opendeck/portal/adapters/redis"
	"github.com/opendeck/portal/pkg/metrics"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	godotenv.Load()
	cfg := FromEnv()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	ctx := context.Background()

	var storage portal.Storage
	if cfg.DatabaseURL != "" {
		if err := pgxadapter.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("pgxpool.New failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		storage = pgxadapter.New(pool)
	} else {
		log.Warn("DATABASE_URL not set, sessions and users are in-memory only")
		storage = memoryadapter.New()
	}

	var sessions portal.SessionStorage
	if cfg.RedisURL != "" {
		store, err := redisadapter.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("redis connect failed", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		sessions = store
	}

	app := fiber.New()
	app.Use(logger.New())

	registry := prometheus.NewRegistry()
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	adapter := fiberadapter.New(app)

	p, err := portal.New(portal.Config{
		Storage:  storage,
		Sessions: sessions,
		HTTP:     adapter,
		Metrics:  metrics.New(registry),
		Logger:   log,
		BasePath: cfg.BasePath,
	})
	if err != nil {
		log.Error("could not create portal instance", "error", err)
		os.Exit(1)
	}

	// Every page navigation goes through the gate; the shell handler
	// reports the resolved surface for the SPA to mount.
	app.Get("/*", adapter.Gate, servePage(p))

	if err := app.Listen(cfg.Addr); err != nil {
		log.Error("app.Listen failed", "error", err)
		os.Exit(1)
	}
}

// servePage is the application shell: it echoes the gated decision so
// the front end can mount the right route tree.
func servePage(p *portal.Portal) fiber.Handler {
	return func(c fiber.Ctx) error {
		surface := c.Locals("surface").(portal.Surface)
		plan := c.Locals("plan").(portal.RoutePlan)

		body := fiber.Map{
			"surface": surface.String(),
			"path":    c.Path(),
			"plan":    plan,
		}
		if profile, ok := c.Locals("profile").(*portal.Profile); ok {
			body["profile"] = profile
		}
		return c.JSON(body)
	}
}
