package api

import (
	_ "embed"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	httpswagger "github.com/swaggo/http-swagger"

	"github.com/skillfeed/skillfeed/pkg/api/auth"
	"github.com/skillfeed/skillfeed/pkg/catalog"
	"github.com/skillfeed/skillfeed/pkg/events"
	"github.com/skillfeed/skillfeed/pkg/ranking"
)

//go:embed openapi.yaml
var openapiSpecYaml string

type Server struct {
	ranker   *ranking.Ranker
	catalog  *catalog.Registry
	recorder *events.Recorder
	logger   *zerolog.Logger
	http     http.Server
}

func NewServer(
	logger *zerolog.Logger,
	config *Config,
	authProvider *auth.JWTProvider,
	ranker *ranking.Ranker,
	catalogRegistry *catalog.Registry,
	recorder *events.Recorder,
) *Server {
	s := &Server{
		ranker:   ranker,
		catalog:  catalogRegistry,
		recorder: recorder,
		logger:   logger,
	}

	mux := http.NewServeMux()

	optional := func(h http.HandlerFunc) http.Handler { return authProvider.Authenticate(h, false) }
	required := func(h http.HandlerFunc) http.Handler { return authProvider.Authenticate(h, true) }

	mux.Handle("GET /api/recommendations", optional(s.listRecommendations))
	mux.Handle("GET /api/items", optional(s.searchItems))
	mux.HandleFunc("GET /api/items/suggest", s.suggestItems)
	mux.Handle("GET /api/items/mine", required(s.listOwnItems))
	mux.Handle("GET /api/items/{id}", optional(s.getItem))
	mux.Handle("POST /api/items", required(s.createItem))
	mux.Handle("PUT /api/items/{id}", required(s.updateItem))
	mux.Handle("DELETE /api/items/{id}", required(s.deleteItem))
	mux.Handle("POST /api/items/{id}/status", required(s.setItemStatus))
	mux.Handle("POST /api/events", required(s.logEvent))
	mux.Handle("POST /api/events/search", required(s.logSearchEvent))
	mux.HandleFunc("GET /api/health", s.health)
	mux.Handle("GET /metrics", promhttp.Handler())
	s.registerAPIDocsHandlers(mux)

	handler := corsMiddleware(mux, config.CORSOrigin)
	handler = metricsMiddleware(handler)
	handler = requestLogMiddleware(handler, logger)

	s.http = http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: handler,
	}

	return s
}

func (s *Server) registerAPIDocsHandlers(mux *http.ServeMux) {
	mux.Handle("/docs/", httpswagger.Handler(
		httpswagger.URL("/docs/openapi.yaml"),
	))
	mux.HandleFunc("/docs/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/x-yaml")

		_, err := w.Write([]byte(openapiSpecYaml))
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			s.logger.Error().Err(err).Msg("response write error")
		}
	})
}

func (s *Server) Start() error {
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	return s.http.Close()
}
