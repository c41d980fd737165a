package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/kakpu/IT-onboarding/internal/authz"
	"github.com/kakpu/IT-onboarding/internal/config"
	"github.com/kakpu/IT-onboarding/internal/handlers"
	"github.com/kakpu/IT-onboarding/internal/middleware"
	"github.com/kakpu/IT-onboarding/internal/services"
	"gorm.io/gorm"
)

// Deps are the services the route table is built from.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Auth     *services.AuthService
	Catalog  *services.CatalogService
	Progress *services.ProgressService
	Activity *services.ActivityService
	Stats    *services.StatsService
	Users    *services.UserService
}

func Setup(app *fiber.App, d Deps) {
	cfg := d.Config

	healthHandler := handlers.NewHealthHandler(d.DB)
	authHandler := handlers.NewAuthHandler(d.Auth, cfg)
	clientConfigHandler := handlers.NewClientConfigHandler(cfg)
	checklistHandler := handlers.NewChecklistHandler(d.Catalog)
	progressHandler := handlers.NewProgressHandler(d.Progress)
	activityHandler := handlers.NewActivityHandler(d.Activity)
	adminItemsHandler := handlers.NewAdminItemsHandler(d.Catalog, d.Stats)
	adminHandler := handlers.NewAdminHandler(d.Stats, d.Users)

	// Every request, pages included, passes identity resolution and the gate.
	app.Use(middleware.Identify(cfg))
	app.Use(middleware.Gate())

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth: public, stricter limit of 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/signup", authHandler.Signup)
	auth.Post("/signin", authHandler.Signin)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/signout", authHandler.Signout)
	auth.Post("/entra", authHandler.EntraSignin)

	api.Get("/client-config", clientConfigHandler.Get)

	items := api.Group("/checklist-items", middleware.Require(authz.CapReadChecklist))
	items.Get("/", checklistHandler.List)
	items.Get("/count", checklistHandler.Count)
	items.Get("/:id", checklistHandler.Get)

	progress := api.Group("/progress", middleware.Require(authz.CapTrackProgress))
	progress.Get("/me", progressHandler.Mine)
	progress.Get("/me/summary", progressHandler.Summary)
	progress.Put("/:itemId", progressHandler.Update)

	api.Post("/logs", middleware.Require(authz.CapRecordActivity), activityHandler.Create)

	// Admin area: the gate already requires admin or trainer; each route
	// states its own capability on top.
	admin := api.Group("/admin")
	adminItems := admin.Group("/items", middleware.Require(authz.CapManageChecklist))
	adminItems.Get("/", adminItemsHandler.List)
	adminItems.Post("/", adminItemsHandler.Create)
	adminItems.Put("/", adminItemsHandler.Update)
	adminItems.Delete("/", adminItemsHandler.Delete)

	admin.Get("/stats", middleware.Require(authz.CapViewStats), adminHandler.Stats)
	admin.Get("/users", middleware.Require(authz.CapViewUsers), adminHandler.ListUsers)
	admin.Put("/users", middleware.Require(authz.CapManageRoles), adminHandler.UpdateRole)
	admin.Get("/users/:id/progress", middleware.Require(authz.CapViewUsers), progressHandler.ForUser)

	if cfg.StaticDir != "" {
		app.Static("/", cfg.StaticDir, fiber.Static{Index: "index.html"})
	}
}
