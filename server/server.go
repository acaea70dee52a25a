// Package server exposes the pipeline over HTTP: a chat endpoint, a data
// refresh trigger and health probes.
package server

import (
	"net/http"

	"github.com/collegegpt/ragserver/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type Server struct {
	*http.Server

	config *config.Config

	logger *logrus.Logger
}

func New(cfg *config.Config) (*Server, error) {
	s := &Server{
		config: cfg,

		logger: logrus.StandardLogger(),
	}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins(cfg),

		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodDelete, http.MethodOptions, http.MethodHead, http.MethodPatch,
		},

		AllowedHeaders: []string{
			"Accept", "Accept-Language", "Content-Language",
			"Content-Type", "Authorization", "X-Requested-With", "Origin",
		},

		AllowCredentials: true,
	}))

	r.Use(s.withIdentity)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)

	r.Post("/api/chat", s.handleChat)
	r.Post("/api/refresh-data", s.handleRefresh)

	s.Server = &http.Server{
		Addr: cfg.Address,

		Handler: otelhttp.NewHandler(r, "server"),
	}

	return s, nil
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.Origins) > 0 {
		return cfg.Origins
	}

	return []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
}
