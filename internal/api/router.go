package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/finance-tracker-be/internal/api/handlers"
	"github.com/isdelr/finance-tracker-be/internal/auth"
	"github.com/isdelr/finance-tracker-be/internal/services"
	"github.com/isdelr/finance-tracker-be/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies groups everything the router wires into handlers.
type Dependencies struct {
	DB         *sql.DB
	Hub        *websocket.Hub
	Signer     *auth.Signer
	Users      services.UserServiceProvider
	Sessions   services.SessionServiceProvider
	Categories services.CategoryServiceProvider
	Expenses   services.ExpenseServiceProvider
	Incomes    services.IncomeServiceProvider
	Stats      services.StatsServiceProvider
	Export     services.ExportServiceProvider

	AllowedOrigins []string
	SecureCookies  bool
	// AuthRateLimit is the per-IP budget for login and register per minute.
	// Zero disables limiting.
	AuthRateLimit int
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(log.Logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(deps.Users, deps.Sessions, deps.Signer, deps.SecureCookies)
	expenseHandler := handlers.NewExpenseHandler(deps.Expenses)
	incomeHandler := handlers.NewIncomeHandler(deps.Incomes)
	categoryHandler := handlers.NewCategoryHandler(deps.Categories)
	statsHandler := handlers.NewStatsHandler(deps.Stats, deps.Export)
	healthHandler := handlers.NewHealthHandler(deps.DB)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	limiter := newIPRateLimiter(deps.AuthRateLimit, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", healthHandler.Check)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})
		r.Post("/logout", authHandler.Logout)

		// Everything below requires a live session.
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(deps.Signer, deps.Sessions))

			r.Get("/me", authHandler.Me)

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", expenseHandler.List)
				r.Post("/", expenseHandler.Create)
				r.Delete("/{id}", expenseHandler.Delete)
			})
			r.Route("/incomes", func(r chi.Router) {
				r.Get("/", incomeHandler.List)
				r.Post("/", incomeHandler.Create)
				r.Delete("/{id}", incomeHandler.Delete)
			})
			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.List)
				r.Post("/", categoryHandler.Create)
				r.Delete("/{id}", categoryHandler.Delete)
			})

			r.Get("/stats/summary", statsHandler.Summary)
			r.Get("/export.xlsx", statsHandler.Export)
			r.Get("/ws", wsHandler.Serve)
		})
	})

	return r
}

// requestLogger attaches a request-scoped zerolog logger carrying the chi
// request ID and writes one access line per request.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	withLogger := hlog.NewHandler(logger)
	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("HTTP request")
	})

	return func(next http.Handler) http.Handler {
		tagged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			l := zerolog.Ctx(r.Context())
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", middleware.GetReqID(r.Context())).Str("remote_ip", r.RemoteAddr)
			})
			next.ServeHTTP(w, r)
		})
		return withLogger(access(tagged))
	}
}
