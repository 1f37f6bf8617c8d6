// Package server exposes the transaction store over a REST API. The
// surface matches what internal/client consumes: bearer-token auth, JSON
// bodies, and a uniform 401 on any bad or expired session.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/osirenko/finch/internal/storage"
)

// Server wires the HTTP mux to the storage layer.
type Server struct {
	store  *storage.SQLiteStorage
	logger *slog.Logger
}

// New creates an API server over the given storage.
func New(store *storage.SQLiteStorage) *Server {
	return &Server{
		store:  store,
		logger: slog.Default().With("component", "server"),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	a := s.requireAuth

	mux.HandleFunc("POST /api/login", s.handleLogin)
	mux.Handle("POST /api/logout", a(s.handleLogout))
	mux.Handle("GET /api/transactions", a(s.handleGetTransactions))
	mux.Handle("POST /api/transactions/add", a(s.handleAddTransactions))
	mux.Handle("POST /api/transaction/update", a(s.handleUpdateTransaction))
	mux.Handle("POST /api/transaction/delete", a(s.handleDeleteTransaction))
	mux.Handle("POST /api/transactions/category", a(s.handleSetCategory))
	mux.Handle("POST /api/transactions/tags", a(s.handleManageTags))
	mux.Handle("GET /api/categories", a(s.handleGetCategories))

	return mux
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	}
}
