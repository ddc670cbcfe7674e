// Package server exposes a Session over HTTP so a browser or another process
// can drive generation runs.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

const maxBodyBytes = 32 << 20

type Server struct {
	session *engine.Session
	broker  *broker
	logger  *slog.Logger
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New wires a server to session. It subscribes to the session's run events
// once; SSE clients receive them through the server's broker.
func New(session *engine.Session, opts ...Option) *Server {
	s := &Server{
		session: session,
		broker:  newBroker(),
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	session.Subscribe(s.broker.publish)
	return s
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.health)

	r.Get("/session", s.getSession)
	r.Put("/session/mode", s.setMode)
	r.Put("/session/input", s.setInput)
	r.Put("/session/screenshots", s.setScreenshots)

	r.Post("/runs", s.startRun)
	r.Get("/events", s.streamEvents)

	r.Get("/history", s.listHistory)
	r.Delete("/history", s.clearHistory)
	r.Get("/history/{id}", s.getHistoryEntry)
	r.Post("/history/{id}/restore", s.restoreEntry)

	r.Get("/templates", s.listTemplates)
	r.Post("/templates/{id}/generate", s.generateTemplate)
	r.Post("/templates/{id}/use", s.useTemplate)

	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.broker.close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		if r.URL.Path == "/health" {
			return
		}
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

type errorBody struct {
	Error  string         `json:"error"`
	Mode   mockup.Mode    `json:"mode,omitempty"`
	Fields []mockup.Field `json:"fields,omitempty"`
}

// writeError maps session errors onto status codes.
func writeError(w http.ResponseWriter, err error) {
	var verr *mockup.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: verr.Message, Mode: verr.Mode, Fields: verr.Fields})
	case errors.Is(err, engine.ErrEntryNotFound), errors.Is(err, engine.ErrTemplateNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrRunInProgress), errors.Is(err, engine.ErrTemplateNotReady):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, engine.ErrSessionClosed):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: err.Error()})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}
