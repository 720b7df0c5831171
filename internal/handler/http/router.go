package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/service"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/health"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/middleware"
)

// RouterDeps bundles everything the HTTP router needs.
type RouterDeps struct {
	AuthService      *service.AuthService
	UserService      *service.UserService
	ProductService   *service.ProductService
	CategoryService  *service.CategoryService
	OrderService     *service.OrderService
	RoleService      *service.RoleService
	DashboardService *service.DashboardService

	Guard       *Guard
	AuthCodeURL func(state string) string
	Health      *health.Handler
	Logger      *slog.Logger

	ServiceName   string
	CORS          middleware.CORSConfig
	AuthRateLimit middleware.RateLimitConfig
}

// NewRouter creates a chi router with all back-office routes registered.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Global middleware. RequestLogger must come after RequestLogging and
	// Tracing so the request-scoped logger picks up correlation and trace ids.
	r.Use(middleware.CORS(deps.CORS))
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogging(deps.Logger))
	r.Use(middleware.Tracing(deps.ServiceName))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.PrometheusMetrics(deps.ServiceName))

	// Health check endpoints
	r.Get("/health", deps.Health.LivenessHandler())
	r.Get("/health/live", deps.Health.LivenessHandler())
	r.Get("/health/ready", deps.Health.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthCodeURL, deps.Logger)
	userHandler := NewUserHandler(deps.UserService, deps.Logger)
	productHandler := NewProductHandler(deps.ProductService, deps.Logger)
	categoryHandler := NewCategoryHandler(deps.CategoryService, deps.Logger)
	orderHandler := NewOrderHandler(deps.OrderService, deps.DashboardService, deps.Logger)
	roleHandler := NewRoleHandler(deps.RoleService, deps.Logger)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.Logger)

	r.Route("/api/auth", func(r chi.Router) {
		// Public login endpoints, rate limited per client
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(deps.AuthRateLimit))

			r.Get("/google/start", authHandler.GoogleStart)

			r.Group(func(r chi.Router) {
				r.Use(ContentTypeJSON)

				r.Post("/google", authHandler.GoogleLogin)
				r.Post("/refresh", authHandler.Refresh)
			})
		})

		// Session introspection (auth required)
		r.Group(func(r chi.Router) {
			r.Use(deps.Guard.Authenticate)

			r.Get("/me", authHandler.Me)
		})
	})

	// Admin-only directory and role management
	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Guard.Authenticate)
		r.Use(deps.Guard.RequireAdmin)

		r.Post("/", userHandler.Create)
		r.Get("/", userHandler.List)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)
	})

	r.Route("/api/roles", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Guard.Authenticate)
		r.Use(deps.Guard.RequireAdmin)

		r.Post("/", roleHandler.Create)
		r.Get("/", roleHandler.List)
		r.Get("/permissions", roleHandler.ListPermissions)
		r.Get("/{id}", roleHandler.Get)
		r.Put("/{id}", roleHandler.Update)
		r.Delete("/{id}", roleHandler.Delete)
	})

	// Owner-scoped resources, open to any active directory member
	memberOnly := deps.Guard.RequireRoles(domain.RoleUser, domain.RoleAdmin)

	r.Route("/api/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Guard.Authenticate)
		r.Use(memberOnly)

		r.Post("/", productHandler.Create)
		r.Get("/", productHandler.List)
		r.Get("/categories", productHandler.Categories)
		r.Get("/stats", productHandler.Stats)
		r.Get("/{id}", productHandler.Get)
		r.Put("/{id}", productHandler.Update)
		r.Delete("/{id}", productHandler.Delete)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Guard.Authenticate)
		r.Use(memberOnly)

		r.Post("/", categoryHandler.Create)
		r.Get("/", categoryHandler.List)
		r.Get("/{id}", categoryHandler.Get)
		r.Put("/{id}", categoryHandler.Update)
		r.Delete("/{id}", categoryHandler.Delete)
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(deps.Guard.Authenticate)
		r.Use(memberOnly)

		r.Post("/", orderHandler.Create)
		r.Get("/", orderHandler.List)
		r.Get("/stats", orderHandler.Stats)
		r.Get("/{id}", orderHandler.Get)
		r.Put("/{id}", orderHandler.Update)
		r.Patch("/{id}/status", orderHandler.UpdateStatus)
		r.Delete("/{id}", orderHandler.Delete)
	})

	r.Route("/api/dashboard", func(r chi.Router) {
		r.Use(deps.Guard.Authenticate)
		r.Use(memberOnly)

		r.Get("/stats", dashboardHandler.Stats)
	})

	return r
}
