// Package server exposes the market over HTTP: token minting, price reads,
// quoting and trade execution.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Natsgol/Seilor.fun/internal/curve"
	"github.com/Natsgol/Seilor.fun/internal/engine"
	"github.com/Natsgol/Seilor.fun/internal/ledger"
)

// Server is the HTTP front of the market.
type Server struct {
	ledger *ledger.SupplyLedger
	model  *curve.Model
	quoter *engine.Quoter
	exec   *engine.Executor

	quotes *quoteCache
	http   *http.Server
}

// New builds the server and its router.
func New(addr string, l *ledger.SupplyLedger, m *curve.Model, q *engine.Quoter, e *engine.Executor) *Server {
	s := &Server{
		ledger: l,
		model:  m,
		quoter: q,
		exec:   e,
		quotes: newQuoteCache(5 * time.Minute),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/tokens", func(r chi.Router) {
		r.Post("/", s.handleMintToken)
		r.Get("/", s.handleListTokens)
		r.Get("/{tokenID}", s.handleGetToken)
		r.Get("/{tokenID}/supply", s.handleGetSupply)
		r.Post("/{tokenID}/quote", s.handleQuote)
	})
	r.Route("/trades", func(r chi.Router) {
		r.Post("/", s.handleExecute)
		r.Post("/abandon", s.handleAbandon)
		r.Get("/{idempotencyKey}", s.handleGetTrade)
	})

	s.http = &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	slog.Info("HTTP server listening", slog.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
