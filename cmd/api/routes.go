package main

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	// Router
	router.NotFound(app.notFoundResponse)
	router.MethodNotAllowed(app.methodNotAllowedRequest)

	// Middleware
	router.Use(app.metrics)
	router.Use(middleware.RealIP)
	router.Use(app.requestID)
	router.Use(app.recoverPanic)
	// An empty origin list would make cors allow every origin.
	if len(app.config.cors.trustedOrigins) > 0 {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.config.cors.trustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", requestIDHeader},
			ExposedHeaders:   []string{requestIDHeader},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}
	router.Use(app.rateLimit)

	// Healthcheck
	router.Get("/v1/healthcheck", app.HealthCheck)
	router.Method(http.MethodGet, "/v1/metrics", expvar.Handler())

	// Game Endpoints
	router.Route("/v1/games/{id}", func(router chi.Router) {
		router.Get("/", app.GetGame)
		router.Post("/start", app.StartGame)
		router.Post("/complete", app.CompleteGame)
		router.Post("/postpone", app.PostponeGame)
		router.Post("/advance-period", app.AdvanceGamePeriod)
		router.Post("/scores", app.RecalculateScores)
	})

	// Summary Endpoints
	router.Get("/v1/stats/players/summary", app.PlayersSummary)
	router.Get("/v1/stats/teams/summary", app.TeamsSummary)

	// Player Stat Endpoints
	router.Post("/v1/player-stats", app.RecordPlayerStat)
	router.Get("/v1/player-stats", app.ListPlayerStats)
	router.Delete("/v1/player-stats/{id}", app.DeletePlayerStat)

	router.Get("/v1/sports/{id}/stat-types", app.GetSportStatTypes)
	router.Get("/v1/teams/{id}/record", app.GetTeamRecord)

	return router
}
