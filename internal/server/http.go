package server

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/quizdeck/quizdeck/internal/attempt"
	"github.com/quizdeck/quizdeck/internal/catalog"
	"github.com/quizdeck/quizdeck/internal/config"
)

// NewHTTPServer wires the full route table: health and metrics, the quiz
// catalog, the attempt flow, and the WebSocket progress feed.
func NewHTTPServer(
	cfg *config.App,
	logger zerolog.Logger,
	catalogHandlers *catalog.HTTPHandlers,
	attemptHandlers *attempt.HTTPHandlers,
	feedHandler *attempt.WSHandler,
) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("GET /metrics", promhttp.Handler())

	// UI shell configuration, formerly ambient environment lookups in the
	// browser bundle.
	mux.HandleFunc("GET /v1/config", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"siteTitle": cfg.Site.Title,
			"adminPath": cfg.Site.AdminPath,
		})
	})

	// Catalog + authoring
	mux.HandleFunc("GET /v1/quizzes", catalogHandlers.List)
	mux.HandleFunc("POST /v1/quizzes", catalogHandlers.Create)
	mux.HandleFunc("GET /v1/quizzes/{id}", catalogHandlers.Get)
	mux.HandleFunc("PUT /v1/quizzes/{id}", catalogHandlers.Update)
	mux.HandleFunc("DELETE /v1/quizzes/{id}", catalogHandlers.Delete)

	// Attempt flow
	mux.HandleFunc("POST /v1/quizzes/{id}/attempts", attemptHandlers.Start)
	mux.HandleFunc("GET /v1/quizzes/{id}/result", attemptHandlers.LastResult)
	mux.HandleFunc("PUT /v1/attempts/{id}/answers/{qid}", attemptHandlers.RecordAnswer)
	mux.HandleFunc("GET /v1/attempts/{id}/progress", attemptHandlers.Progress)
	mux.HandleFunc("POST /v1/attempts/{id}/submit", attemptHandlers.Submit)
	mux.HandleFunc("DELETE /v1/attempts/{id}", attemptHandlers.Discard)
	mux.HandleFunc("DELETE /v1/session", attemptHandlers.EndSession)

	// Live progress feed
	mux.HandleFunc("GET /ws/attempts/{id}", feedHandler.HandleFeed)

	return &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: requestLogging(mux, logger),
	}
}

// requestLogging emits one debug line per request. Kept at debug so the
// default production level stays quiet on health checks.
func requestLogging(next http.Handler, logger zerolog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
