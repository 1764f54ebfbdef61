package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/weather-history/internal/auth"
	"github.com/ukydev/weather-history/internal/db"
	"github.com/ukydev/weather-history/internal/metrics"
	"github.com/ukydev/weather-history/internal/middleware"
	"github.com/ukydev/weather-history/internal/models"
)

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterConfig holds everything the HTTP layer is built from. Auth routes are
// mounted only when AuthService and Users are set.
type RouterConfig struct {
	Locations LocationService
	Weather   WeatherService
	Health    Pinger

	AuthEnabled bool
	AuthService *auth.Service
	Users       db.UserCollection

	RateLimitRPS   float64
	RateLimitBurst int

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Set it only when a reverse proxy in front overwrites those headers.
	TrustProxy bool
}

// NewRouter builds the chi router serving the API.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger)
	r.Use(chimw.Recoverer)

	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).RateLimit)
	}

	authEnabled := cfg.AuthEnabled && cfg.AuthService != nil
	authMW := middleware.NewAuthMiddleware(cfg.AuthService)
	r.Use(middleware.Optional(authEnabled, authMW.Authenticate))
	require := func(action string) func(http.Handler) http.Handler {
		return middleware.Optional(authEnabled, authMW.RequirePermission(action))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Cannot "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Weather history service is running"))
	})
	r.Get("/health", healthHandler(cfg.Health))
	r.Handle("/metrics", metrics.Handler())

	locations := NewLocationHandler(cfg.Locations)
	r.Route("/locations", func(r chi.Router) {
		r.With(require(models.PermViewWeather)).Get("/", locations.List)
		r.With(require(models.PermViewWeather)).Get("/{id}", locations.Get)
		r.With(require(models.PermManageLocations)).Post("/", locations.Create)
		r.With(require(models.PermManageLocations)).Put("/{id}", locations.Update)
		r.With(require(models.PermManageLocations)).Delete("/{id}", locations.Delete)
	})

	weather := NewWeatherHandler(cfg.Weather)
	r.Route("/weather", func(r chi.Router) {
		r.With(require(models.PermIngestWeather)).Post("/", weather.Fetch)
		r.With(require(models.PermViewWeather)).Get("/{locationId}", weather.Get)
	})

	if cfg.AuthService != nil && cfg.Users != nil {
		authHandler := NewAuthHandler(cfg.AuthService, cfg.Users)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			// Without global auth the profile still needs a token.
			r.With(middleware.Optional(!authEnabled, authMW.Authenticate)).Get("/profile", authHandler.GetProfile)
		})
	}

	return r
}

func healthHandler(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if p != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := p.Ping(ctx); err != nil {
				log.WithError(err).Warn("Health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("database unhealthy"))
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	}
}
