// Package httpapi exposes the dialogue engine over HTTP. Turns for the
// same session are serialized through the session manager, so concurrent
// clients cannot interleave a conversation.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/parley"
	"github.com/aretw0/parley/internal/logging"
	"github.com/aretw0/parley/internal/sanitize"
	"github.com/aretw0/parley/pkg/domain"
	"github.com/aretw0/parley/pkg/session"
)

// Server handles the HTTP surface of the engine.
type Server struct {
	engine   *parley.Engine
	sessions *session.Manager
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithGatherer sets the metrics gatherer served at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// NewServer creates the HTTP server around an engine and session manager.
func NewServer(engine *parley.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		gatherer: prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the routed http.Handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Get("/", s.handleListSessions)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/messages", s.handleMessage)
			r.Get("/usage", s.handleUsage)
		})
	})

	return r
}

type createSessionRequest struct {
	ID string `json:"id,omitempty"`
}

type messageRequest struct {
	Message string `json:"message"`
}

type messageResponse struct {
	Response     string            `json:"response"`
	StateID      string            `json:"state_id"`
	Disqualified bool              `json:"disqualified"`
	UsedFallback bool              `json:"used_fallback"`
	Usage        domain.TokenUsage `json:"usage"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{"invalid request body"})
			return
		}
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	sess, err := s.sessions.LoadOrStart(r.Context(), req.ID, s.engine.Definition().InitialStateID)
	if err != nil {
		s.logger.Error("failed to start session", "session_id", req.ID, "err", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{"failed to start session"})
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{"failed to list sessions"})
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{"failed to delete session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{"message is required"})
		return
	}
	message, err := sanitize.Input(req.Message)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		return
	}

	var result *domain.TurnResult
	var usage domain.TokenUsage
	err = s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context) error {
		// Direct store access: the manager's lock is already held.
		sess, err := s.sessions.Store().Load(ctx, sessionID)
		if err != nil {
			return err
		}

		result, err = s.engine.ProcessUtterance(ctx, sess, message)
		if err != nil {
			return err
		}
		usage = sess.Usage

		return s.sessions.Store().Save(ctx, sess)
	})
	if err != nil {
		s.writeLoadError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Response:     result.Response,
		StateID:      result.NextStateID,
		Disqualified: result.Disqualified,
		UsedFallback: result.UsedFallback,
		Usage:        usage,
	})
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Load(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeLoadError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.Usage)
}

func (s *Server) writeLoadError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{"session not found"})
		return
	}
	if errors.Is(err, domain.ErrUnknownState) {
		writeJSON(w, http.StatusConflict, errorResponse{err.Error()})
		return
	}
	s.logger.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{"internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
