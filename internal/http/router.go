package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/pfm/internal/http/analytics"
	"github.com/MrJamesThe3rd/pfm/internal/http/auth"
	"github.com/MrJamesThe3rd/pfm/internal/http/export"
	"github.com/MrJamesThe3rd/pfm/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pfm/internal/http/matching"
	authmw "github.com/MrJamesThe3rd/pfm/internal/http/middleware"
	"github.com/MrJamesThe3rd/pfm/internal/http/payment"
	"github.com/MrJamesThe3rd/pfm/internal/http/ratelimit"
	"github.com/MrJamesThe3rd/pfm/internal/http/respond"
	"github.com/MrJamesThe3rd/pfm/internal/http/transaction"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Auth         *auth.Handler
	Transactions *transaction.Handler
	Analytics    *analytics.Handler
	Payment      *payment.Handler
	Matching     *matching.Handler
	Export       *export.Handler
	Import       *importcsv.Handler
}

type Options struct {
	Tokens         authmw.TokenVerifier
	APILimiter     *ratelimit.Limiter
	AuthLimiter    *ratelimit.Limiter
	AllowedOrigins []string
	DB             Pinger
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticate := authmw.Authenticate(opts.Tokens)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", health(opts.DB))

		r.Route("/auth", func(r chi.Router) {
			r.Use(opts.AuthLimiter.Middleware)
			h.Auth.Routes(r, authenticate)
		})

		r.Group(func(r chi.Router) {
			r.Use(opts.APILimiter.Middleware)
			r.Use(authenticate)

			r.Route("/transactions", func(r chi.Router) {
				r.Route("/import", h.Import.Routes)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AllowContentType("application/json"))
					h.Transactions.Routes(r)
				})
			})

			h.Analytics.Routes(r)

			r.Route("/payment", h.Payment.Routes)
			r.Route("/matching", h.Matching.Routes)
			r.Route("/export", h.Export.Routes)
		})
	})

	return router
}

type healthResponse struct {
	Database string `json:"database"`
}

func health(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			respond.JSON(w, http.StatusServiceUnavailable, respond.Envelope{
				Message: "Database unreachable",
				Data:    healthResponse{Database: "down"},
			})

			return
		}

		respond.OK(w, healthResponse{Database: "up"})
	}
}
