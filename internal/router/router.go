package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/laranacanta/backend/internal/config"
	"github.com/laranacanta/backend/internal/db"
	"github.com/laranacanta/backend/internal/handlers"
	"github.com/laranacanta/backend/internal/hub"
	"github.com/laranacanta/backend/internal/middleware"
	"github.com/laranacanta/backend/internal/services"
)

// New wires the application: one broadcast hub per process, injected into
// every handler that publishes.
func New(cfg *config.Config, sqlDB *sql.DB, queries *db.Queries) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContext)
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))

	// Services
	authService := services.NewAuthService(cfg.JWTSecret, cfg.TokenDuration)
	tableService := services.NewTableService(queries)
	youtubeService := services.NewYouTubeService(cfg.YouTubeAPIKey)
	broadcastHub := hub.New()

	// Handlers
	healthHandler := handlers.NewHealthHandler(sqlDB)
	tableHandler := handlers.NewTableHandler(tableService, authService, broadcastHub, cfg)
	songHandler := handlers.NewSongHandler(queries, broadcastHub)
	adminHandler := handlers.NewAdminHandler(queries, broadcastHub)
	searchHandler := handlers.NewSearchHandler(youtubeService)
	wsHandler := handlers.NewWSHandler(broadcastHub, authService)

	// Rate limiter for search
	searchRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Check)

		// Table join (public; possession of the join code is the credential)
		r.Post("/mesa/{code}/connect", tableHandler.Connect)
		r.Post("/admin/connect", tableHandler.AdminConnect)

		// Song search (public, rate limited)
		r.With(searchRateLimiter.Middleware).Get("/search", searchHandler.Search)

		// Live channel (token carried in query string)
		r.Get("/ws", wsHandler.Serve)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService))
			r.Use(middleware.UpdateRequestContext)

			r.Get("/me", tableHandler.Me)

			r.Get("/songs", songHandler.List)
			r.Post("/songs", songHandler.Submit)

			// Admin-only moderation
			r.Route("/admin/songs", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/", adminHandler.List)
				r.Post("/{id}/approve", adminHandler.Approve)
				r.Post("/{id}/reject", adminHandler.Reject)
				r.Post("/{id}/performed", adminHandler.Performed)
			})
		})
	})

	return r
}
