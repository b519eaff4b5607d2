// Package server exposes the pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"reelfetch/internal/logging"
	"reelfetch/internal/media"
)

// Resolver is the part of the pipeline the server needs.
type Resolver interface {
	Resolve(ctx context.Context, req media.Request) ([]media.StreamDescriptor, error)
}

// Server answers stream lookups.
type Server struct {
	resolver Resolver
	log      *logrus.Entry
}

func New(resolver Resolver, log *logrus.Entry) *Server {
	return &Server{resolver: resolver, log: logging.OrDiscard(log)}
}

type ctxKey struct{}

// Handler returns the routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/streams", s.withRequestID(http.HandlerFunc(s.handleStreams)))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return mux
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("listening")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case <-ctx.Done():
		sdc, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(sdc); err != nil {
			return fmt.Errorf("shutting down http server: %w", err)
		}
		s.log.Info("http server shutdown")
		return nil
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serving http: %w", err)
		}
		return nil
	}
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-Id", id)
		log := s.log.WithField("request_id", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, log)))
	})
}

func (s *Server) logger(r *http.Request) *logrus.Entry {
	if log, ok := r.Context().Value(ctxKey{}).(*logrus.Entry); ok {
		return log
	}
	return s.log
}

func (s *Server) handleStreams(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	switch r.Method {
	case http.MethodGet:
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	default:
		w.Header().Set("Allow", "GET, OPTIONS")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	log := s.logger(r)
	req, err := parseRequest(r.URL.Query())
	if err != nil {
		log.WithError(err).Debug("rejecting request")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log = log.WithField("request", req.String())

	streams, err := s.resolver.Resolve(r.Context(), req)
	switch {
	case errors.Is(err, media.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		log.WithError(err).Error("pipeline failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	case len(streams) == 0:
		writeError(w, http.StatusNotFound, "no streams found")
		return
	}

	log.WithField("streams", len(streams)).Info("served streams")
	writeJSON(w, http.StatusOK, streams)
}

// parseRequest reads id, type, season and episode query parameters. type
// defaults to movie.
func parseRequest(q url.Values) (media.Request, error) {
	kind := media.Movie
	if t := q.Get("type"); t != "" {
		k, err := media.ParseKind(t)
		if err != nil {
			return media.Request{}, err
		}
		kind = k
	}

	season, err := intParam(q, "season")
	if err != nil {
		return media.Request{}, err
	}
	episode, err := intParam(q, "episode")
	if err != nil {
		return media.Request{}, err
	}

	return media.NewRequest(q.Get("id"), kind, season, episode)
}

func intParam(q url.Values, name string) (mo.Option[int], error) {
	raw := q.Get(name)
	if raw == "" {
		return mo.None[int](), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return mo.None[int](), fmt.Errorf("%w: %s must be a number", media.ErrInvalidRequest, name)
	}
	return mo.Some(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
