package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dmitrijs2005/userauth/internal/common"
	"github.com/dmitrijs2005/userauth/internal/logging"
	"github.com/dmitrijs2005/userauth/internal/server/auth"
)

const healthPath = "/health"

// RouterOptions controls the construction of the HTTP router. Users, Codec
// and Logger are required.
type RouterOptions struct {
	Users              UserService
	Codec              *auth.TokenCodec
	Logger             logging.Logger
	Now                func() time.Time
	Health             func(context.Context) error
	CORSAllowedOrigins []string
}

// NewRouter wires middleware and routes.
func NewRouter(opts RouterOptions) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	h := &handler{
		users:    opts.Users,
		validate: newValidator(),
		now:      now,
		health:   opts.Health,
		logger:   opts.Logger.With("module", "http_handler"),
	}
	authn := NewRequestAuthenticator(opts.Codec, opts.Users, now, opts.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(opts.Logger))
	r.Use(middleware.Recoverer)
	if len(opts.CORSAllowedOrigins) > 0 {
		r.Use(cors.Handler(corsOptions(opts.CORSAllowedOrigins)))
	}
	r.Use(authn.Middleware)

	r.Get(healthPath, h.healthz)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
		r.Post("/refresh", h.refresh)
	})

	r.With(RequireAuthenticated).Get("/user/profile", h.profile)

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireRole(common.AdminRole))
		r.Get("/users", h.listUsers)
		r.Delete("/users/{id}", h.deleteUser)
	})

	return r
}

func corsOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", common.AuthorizationHeaderName},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}
}
