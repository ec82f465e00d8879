package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/fatewave/fatewave-api/internal/config"
	"github.com/fatewave/fatewave-api/internal/database"
	"github.com/fatewave/fatewave-api/internal/handler"
	"github.com/fatewave/fatewave-api/internal/llm"
	"github.com/fatewave/fatewave-api/internal/middleware"
	"github.com/fatewave/fatewave-api/internal/queue"
	"github.com/fatewave/fatewave-api/internal/repository"
	"github.com/fatewave/fatewave-api/internal/router"
	"github.com/fatewave/fatewave-api/internal/service"
	"github.com/fatewave/fatewave-api/internal/utils"
)

func main() {
	// .env is optional; production sets real environment variables.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables response caching, rate
	// limiting and the revocation mirror, all of which degrade gracefully.
	rdb := config.NewRedisClient()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	revocations := repository.NewRevocationRepo(db, rdb)
	templates := repository.NewTemplateRepo(db)
	store := repository.NewStore(db)

	resolver := service.NewTemplateResolver(templates)
	gen := llm.NewClient(cfg.OpenRouterKey, cfg.OpenRouterBaseURL, cfg.OpenRouterReferer, cfg.OpenRouterSite)
	divinations := service.NewDivinationService(users, store, gen, resolver, cfg.FreeUsageLimit, cfg.DefaultModel)

	// The consumer folds completed-generation events back into template
	// statistics. It reconnects on its own; a dead broker only costs stats.
	go func() {
		if err := queue.StartDivinationConsumer(templates); err != nil {
			log.Printf("queue consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(cfg.Env)
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, "X-Session-ID"},
	}))
	e.Use(middleware.RateLimit(config.LoadRateLimitConfig(), rdb))

	router.Register(e, router.Deps{
		Cfg:         cfg,
		RDB:         rdb,
		Auth:        handler.NewAuthHandler(cfg, users, tokens, revocations),
		Divinations: handler.NewDivinationHandler(divinations),
		Templates:   handler.NewTemplateHandler(templates),
		Revocations: revocations,
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
