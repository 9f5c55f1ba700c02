package http

import (
	nethttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/fitlab-service/internal/api/http/handlers"
	"github.com/spec-kit/fitlab-service/internal/auth"
	"github.com/spec-kit/fitlab-service/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	LabPartners    *handlers.LabPartnersHandler
	Bookings       *handlers.BookingsHandler
	Trainers       *handlers.TrainersHandler
	Blogs          *handlers.BlogsHandler
	Metrics        nethttp.Handler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes. Fixed segments are registered before parameterized ones.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	authn := cfg.AuthMiddleware.Handle
	adminOnly := auth.RequireAdmin()
	labPartner := auth.RequireRole(domain.RoleLabPartner)
	enthusiast := auth.RequireRole(domain.RoleFitnessEnthusiast)
	trainer := auth.RequireRole(domain.RoleTrainer)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)

	admin := api.Group("/admin")
	admin.Post("/login", cfg.Admin.Login)
	admin.Post("/logout", authn, adminOnly, cfg.Admin.Logout)
	admin.Get("/pending-approvals", authn, adminOnly, cfg.Admin.PendingApprovals)
	admin.Post("/approve/:userId", authn, adminOnly, cfg.Admin.Approve)
	admin.Post("/reject/:userId", authn, adminOnly, cfg.Admin.Reject)
	admin.Get("/users", authn, adminOnly, cfg.Admin.ListUsers)
	admin.Patch("/users/:userId/suspend", authn, adminOnly, cfg.Admin.Suspend)
	admin.Get("/stats", authn, adminOnly, cfg.Admin.Stats)
	admin.Get("/analytics/monthly-growth", authn, adminOnly, cfg.Admin.MonthlyGrowth)
	admin.Get("/analytics/user-distribution", authn, adminOnly, cfg.Admin.UserDistribution)

	labs := api.Group("/lab-partners")
	labs.Post("/tests/add", authn, labPartner, cfg.LabPartners.AddTest)
	labs.Get("/tests/my-tests", authn, labPartner, cfg.LabPartners.MyTests)
	labs.Put("/tests/:testId", authn, labPartner, cfg.LabPartners.UpdateTest)
	labs.Delete("/tests/:testId", authn, labPartner, cfg.LabPartners.DeleteTest)
	labs.Get("/offered-tests", authn, labPartner, cfg.LabPartners.OfferedTests)
	labs.Put("/offered-tests", authn, labPartner, cfg.LabPartners.SetOfferedTests)

	labs.Post("/bookings/create", authn, enthusiast, cfg.Bookings.Create)
	labs.Get("/bookings/my-bookings", authn, enthusiast, cfg.Bookings.MyBookings)
	labs.Get("/bookings/lab-bookings", authn, labPartner, cfg.Bookings.LabBookings)
	labs.Put("/bookings/:bookingId/status", authn, labPartner, cfg.Bookings.UpdateStatus)
	labs.Put("/bookings/:bookingId/cancel", authn, enthusiast, cfg.Bookings.Cancel)
	labs.Get("/bookings/:bookingId/history", authn,
		auth.RequireRole(domain.RoleFitnessEnthusiast, domain.RoleLabPartner), cfg.Bookings.History)

	labs.Get("/", cfg.LabPartners.List)
	labs.Get("/:id", cfg.LabPartners.Get)
	labs.Get("/:id/tests", cfg.LabPartners.PublicTests)

	trainers := api.Group("/trainers")
	trainers.Get("/", cfg.Trainers.List)
	trainers.Get("/:id", cfg.Trainers.Get)

	blogs := api.Group("/blogs")
	blogs.Get("/", cfg.Blogs.List)
	blogs.Post("/", authn, trainer, cfg.Blogs.Create)
	blogs.Get("/trainer/my-blogs", authn, trainer, cfg.Blogs.MyBlogs)
	blogs.Get("/:id", cfg.Blogs.Get)
	blogs.Put("/:id", authn, trainer, cfg.Blogs.Update)
	blogs.Delete("/:id", authn, trainer, cfg.Blogs.Delete)
}
