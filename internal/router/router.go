package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/fatewave/fatewave-api/internal/config"
	"github.com/fatewave/fatewave-api/internal/handler"
	"github.com/fatewave/fatewave-api/internal/middleware"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg         config.Config
	RDB         *redis.Client // nil disables caching and rate limiting
	Auth        *handler.AuthHandler
	Divinations *handler.DivinationHandler
	Templates   *handler.TemplateHandler
	Revocations middleware.RevocationChecker
}

// Register wires every route onto the Echo instance. The groups differ in
// how they treat identity: /v1/auth is public, /v1/me demands a valid
// bearer, the divination endpoints accept either a bearer or an anonymous
// session id, and the template reads are public behind a response cache.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/refresh-access", d.Auth.RefreshAccess)
	auth.POST("/logout", d.Auth.Logout)
	auth.POST("/session", d.Auth.Session)

	me := e.Group("/v1/me", middleware.JWTAuth(d.Cfg.JWTSecret, d.Revocations))
	me.GET("", d.Auth.Me)

	div := e.Group("/v1/divinations", middleware.OptionalAuth(d.Cfg.JWTSecret, d.Revocations))
	div.POST("", d.Divinations.Create)
	div.GET("/usage", d.Divinations.Usage)
	div.GET("/history", d.Divinations.History)
	div.GET("/stats/daily", d.Divinations.DailyStats)

	tmpl := e.Group("/v1/templates", middleware.ResponseCache(config.LoadCacheConfig(), d.RDB))
	tmpl.GET("", d.Templates.List)
	tmpl.GET("/:id", d.Templates.GetByID)
}
