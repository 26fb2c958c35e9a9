// Package obs is the optional, read-only observability surface around the
// engine: an HTTP introspection API (site and transaction state, the
// serialization graph), a live event feed over WebSocket, a GraphQL
// endpoint for ad-hoc queries, and a compressed dump export. None of it
// participates in command processing — every handler here only reads
// engine state the driver has already produced.
package obs

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ssikv/ssikv/pkg/engine"
	"github.com/ssikv/ssikv/pkg/events"
)

// Server wires the engine and its event log into an HTTP router. The
// engine is not safe for concurrent use on its own (the core model is
// single-threaded by design); mu is the same lock the driver holds while
// advancing ticks, so every handler here takes a read lock before
// touching eng, and the driver takes a write lock around each command.
type Server struct {
	eng    *engine.Engine
	log    *events.Log
	mu     *sync.RWMutex
	router *chi.Mux
	http   *http.Server
}

// New builds a Server over eng and log, synchronizing with the driver
// through mu. The server is read-only: it never calls a mutating engine
// method.
func New(eng *engine.Engine, log *events.Log, mu *sync.RWMutex) *Server {
	s := &Server{eng: eng, log: log, mu: mu, router: chi.NewRouter()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Get("/run", s.handleRun)
	s.router.Get("/sites", s.handleSites)
	s.router.Get("/sites/{id}", s.handleSite)
	s.router.Get("/transactions", s.handleTransactions)
	s.router.Get("/transactions/{id}", s.handleTransaction)
	s.router.Get("/events", s.handleEvents)
	s.router.Get("/dump", s.handleDump)
	s.router.Get("/dump.zst", s.handleDumpCompressed)
	s.router.Get("/events/ws", s.handleEventsWS)
	s.router.Post("/graphql", s.handleGraphQL)
	s.router.Get("/graphiql", graphiQLHandler())
}

// ListenAndServe blocks serving the observability API on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server, if it was started.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
