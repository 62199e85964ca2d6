package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jobhunt-app/jobhunt/internal/jsonapi"
	"github.com/jobhunt-app/jobhunt/internal/resource"
	"github.com/jobhunt-app/jobhunt/internal/store"
	"github.com/jobhunt-app/jobhunt/internal/web/middleware"
	"github.com/jobhunt-app/jobhunt/internal/web/ratelimit"
)

const healthcheckPath = jsonapi.APIPrefix + "/healthcheck"

// Server wires the resource routes, middleware stack and HTTP listener.
type Server struct {
	registry *resource.Registry
	store    *store.Store
	logger   *zap.Logger

	authRequired bool
	limiter      ratelimit.Limiter
	httpServer   *http.Server
}

// NewServer builds a server over the registry and store.
func NewServer(registry *resource.Registry, st *store.Store, logger *zap.Logger, authRequired bool) *Server {
	return &Server{
		registry:     registry,
		store:        st,
		logger:       logger,
		authRequired: authRequired,
	}
}

// WithRateLimit enables request throttling through the limiter.
func (s *Server) WithRateLimit(limiter ratelimit.Limiter) *Server {
	s.limiter = limiter
	return s
}

// Router builds the full handler tree: middleware stack, operational
// endpoints, and one set of resource routes per registered type.
func (s *Server) Router() http.Handler {
	handlers := NewHandlers(s.registry, s.store, s.logger)

	chain := middleware.NewChain(
		middleware.RequestID(),
		middleware.Logging(s.logger, healthcheckPath, "/metrics"),
		middleware.Recovery(s.logger),
	)

	r := chi.NewRouter()
	// Inside the router so the matched route pattern is available for
	// metrics labels.
	r.Use(middleware.Metrics(chiRoutePattern))
	r.Use(middleware.APIKeyAuth(s.store, s.authRequired, healthcheckPath, "/metrics"))
	// After auth so authenticated clients are throttled per key rather
	// than per address.
	if s.limiter != nil {
		r.Use(middleware.RateLimit(s.limiter, s.logger, healthcheckPath, "/metrics"))
	}
	r.Get(healthcheckPath, handlers.Healthcheck)
	r.Handle("/metrics", promhttp.Handler())

	for _, desc := range s.registry.All() {
		mounts := []string{resource.Pluralize(desc.TypeName)}
		for _, alias := range desc.TypeAliases {
			// Aliases that are already plural mount as-is.
			if strings.HasSuffix(alias, "s") {
				mounts = append(mounts, alias)
			} else {
				mounts = append(mounts, resource.Pluralize(alias))
			}
		}
		seen := make(map[string]bool)
		for _, mount := range mounts {
			if seen[mount] {
				continue
			}
			seen[mount] = true
			s.mountResource(r, handlers, desc, jsonapi.APIPrefix+"/"+mount)
		}
	}

	return chain.Then(r)
}

func (s *Server) mountResource(r chi.Router, handlers *Handlers, desc *resource.Descriptor, base string) {
	r.Route(base, func(r chi.Router) {
		r.Get("/", handlers.List(desc))
		r.Post("/", handlers.Create(desc))
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.Retrieve(desc))
			r.Put("/", handlers.Update(desc))
			r.Patch("/", handlers.Update(desc))
			r.Delete("/", handlers.Destroy(desc))
			r.Get("/relationships/{rel}", handlers.Relationships(desc))
			r.Get("/{rel}", handlers.Related(desc))
		})
	})
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// chiRoutePattern resolves the matched route template for metrics labels.
func chiRoutePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
