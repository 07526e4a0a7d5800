// Package server exposes read-only query endpoints over the source
// dictionaries:
//
//	GET /languages           configured language codes
//	GET /chunks              {"chunkNames": [...]}
//	GET /chunks/{chunkName}  {"<lang>": {"<key>": "<value>"|null}, ...}
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/minios-linux/resxgen/chunkfile"
	"github.com/minios-linux/resxgen/resxerr"
	"github.com/minios-linux/resxgen/store"
)

// Server serves the query endpoints of a store.
type Server struct {
	store  *store.Store
	router *mux.Router
}

// New builds the router for s.
func New(s *store.Store) *Server {
	srv := &Server{store: s, router: mux.NewRouter()}
	srv.router.Use(corsMiddleware)
	srv.router.Methods("GET").Path("/languages").HandlerFunc(srv.getLanguages)
	srv.router.Methods("GET").Path("/chunks").HandlerFunc(srv.getChunks)
	srv.router.Methods("GET").Path("/chunks/{chunkName}").HandlerFunc(srv.getChunk)
	return srv
}

// Handler returns the HTTP handler.
func (srv *Server) Handler() http.Handler {
	return srv.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down.
func (srv *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "HTTP server listening", slog.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("server failed: %w", err)
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
		next.ServeHTTP(w, r)
	})
}

func (srv *Server) getLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, srv.store.Config().Languages)
}

func (srv *Server) getChunks(w http.ResponseWriter, r *http.Request) {
	chunks, err := srv.store.ChunkNames()
	if err != nil {
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	if chunks == nil {
		chunks = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"chunkNames": chunks})
}

func (srv *Server) getChunk(w http.ResponseWriter, r *http.Request) {
	chunk := mux.Vars(r)["chunkName"]

	dicts, err := srv.store.LoadAll(chunk)
	switch {
	case errors.Is(err, resxerr.ErrMissingDefault):
		writeError(r.Context(), w, http.StatusNotFound, fmt.Errorf("chunk %q not found", chunk))
		return
	case err != nil:
		writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}

	out := make(map[string]*chunkfile.Dictionary, len(dicts))
	for lang, d := range dicts {
		out[lang] = d.Sorted()
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Request failed", slog.Any("error", err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
