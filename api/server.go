/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

ROUTER: chi
  Chi was chosen for:
  - Lightweight and fast
  - Context-based
  - Middleware support
  - RESTful route patterns

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. RateLimit:  Per-IP request throttling
  5. CORS:       Cross-origin requests for frontend

ROUTE GROUPS:
  /api/semesters/*      Billing period registry
  /api/payments/*       Dues payment recording
  /api/dues/*           Paid/unpaid resolution
  /api/expenses/*       Operational costs
  /api/reports/*        Financial reports and CSV export
  /api/students, /api/halls, /api/programs   Directory & catalog
  /api/scenarios/*      Demo scenarios (dev only)

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.
  Put this behind the institution's reverse proxy.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions tune middleware without touching the route table.
type RouterOptions struct {
	AllowedOrigins []string // CORS origins; empty means localhost dev defaults
	RateLimit      int      // requests per minute per IP; 0 disables
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	if opts.RateLimit > 0 {
		r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
	}

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Semester registry
		r.Route("/semesters", func(r chi.Router) {
			r.Get("/", h.ListSemesters)
			r.Get("/active", h.GetActiveSemester)
			r.Post("/rollover", h.Rollover)
		})

		r.Get("/settings", h.GetSettings)

		// Payments
		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.RecordPayment)
		})

		r.Get("/dues/status", h.GetDuesStatus)

		// Expenses
		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", h.ListExpenses)
			r.Post("/", h.RecordExpense)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/financial", h.GetFinancialReport)
			r.Get("/defaulters.csv", h.ExportDefaultersCSV)
			r.Get("/hall-stats", h.GetHallStats)
		})

		// Directory & catalog
		r.Get("/students", h.ListStudents)
		r.Get("/halls", h.ListHalls)
		r.Get("/programs", h.ListPrograms)

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
			r.Post("/reset", h.ResetDatabase)
		})
	})

	return r
}
