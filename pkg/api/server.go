package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/loftlab/huddle/pkg/assistant"
	"github.com/loftlab/huddle/pkg/events"
	"github.com/loftlab/huddle/pkg/invite"
	"github.com/loftlab/huddle/pkg/log"
	"github.com/loftlab/huddle/pkg/messenger"
	"github.com/loftlab/huddle/pkg/metrics"
	"github.com/loftlab/huddle/pkg/notify"
	"github.com/loftlab/huddle/pkg/pipeline"
	"github.com/loftlab/huddle/pkg/storage"
	hsync "github.com/loftlab/huddle/pkg/sync"
)

const maxBodyBytes = 1 << 20

// actorHeader carries the acting user's ID. Mutations attribute authorship
// and notification routing to it.
const actorHeader = "X-Huddle-User"

// ServerConfig holds the API server's collaborators. Messenger and
// Collaborator are optional; nil disables chat delivery and the assistant
// endpoint respectively.
type ServerConfig struct {
	Store        storage.Store
	Broker       *events.Broker
	Messenger    messenger.Messenger
	Collaborator assistant.Collaborator
}

// Server is the HTTP JSON API. Each workspace gets its own runtime (session
// caches, mutation pipeline, notification center) built lazily on first use.
type Server struct {
	store        storage.Store
	broker       *events.Broker
	messenger    messenger.Messenger
	collaborator assistant.Collaborator
	invites      *invite.Lifecycle
	logger       zerolog.Logger

	mu       gosync.Mutex
	runtimes map[string]*workspaceRuntime

	mux *http.ServeMux
}

// workspaceRuntime bundles the per-workspace state the handlers work
// through: a live session over the store plus the services built on it.
type workspaceRuntime struct {
	session   *hsync.Session
	pipeline  *pipeline.Pipeline
	center    *notify.Center
	assistant *assistant.Assistant
}

// NewServer builds the API server and registers its routes
func NewServer(cfg ServerConfig) *Server {
	m := cfg.Messenger
	if m == nil {
		m = messenger.Nop{}
	}
	fanout := notify.NewFanout(cfg.Store, m)
	s := &Server{
		store:        cfg.Store,
		broker:       cfg.Broker,
		messenger:    m,
		collaborator: cfg.Collaborator,
		invites:      invite.NewLifecycle(cfg.Store, fanout),
		logger:       log.WithComponent("api"),
		runtimes:     make(map[string]*workspaceRuntime),
		mux:          http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.Handle("GET /metrics", metrics.Handler())

	s.mux.HandleFunc("GET /v1/workspaces", s.handleListWorkspaces)
	s.mux.HandleFunc("POST /v1/workspaces", s.handleCreateWorkspace)
	s.mux.HandleFunc("GET /v1/workspaces/{ws}", s.handleGetWorkspace)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}", s.handleDeleteWorkspace)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/tasks", s.handleListTasks)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/tasks", s.handleCreateTask)
	s.mux.HandleFunc("GET /v1/workspaces/{ws}/tasks/{id}", s.handleGetTask)
	s.mux.HandleFunc("PATCH /v1/workspaces/{ws}/tasks/{id}", s.handleUpdateTask)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}/tasks/{id}", s.handleDeleteTask)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/projects", s.handleListProjects)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/projects", s.handleCreateProject)
	s.mux.HandleFunc("GET /v1/workspaces/{ws}/projects/{id}", s.handleGetProject)
	s.mux.HandleFunc("PATCH /v1/workspaces/{ws}/projects/{id}", s.handleUpdateProject)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}/projects/{id}", s.handleDeleteProject)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/members", s.handleListMembers)
	s.mux.HandleFunc("PUT /v1/workspaces/{ws}/members/{userId}", s.handlePutMember)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}/members/{userId}", s.handleDeleteMember)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/notifications", s.handleListNotifications)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/notifications/{id}/read", s.handleMarkNotificationRead)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/notifications/read-all", s.handleMarkAllNotificationsRead)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}/notifications/{id}", s.handleDeleteNotification)
	s.mux.HandleFunc("DELETE /v1/workspaces/{ws}/notifications", s.handleClearNotifications)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/invites", s.handleListInvites)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/invites", s.handleCreateInvite)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/invites/{token}/accept", s.handleAcceptInvite)
	s.mux.HandleFunc("POST /v1/workspaces/{ws}/invites/{token}/revoke", s.handleRevokeInvite)

	s.mux.HandleFunc("POST /v1/workspaces/{ws}/assistant", s.handleAssistant)

	s.mux.HandleFunc("GET /v1/workspaces/{ws}/events", s.handlePollEvents)
}

// ServeHTTP dispatches through the mux with request metrics and logging
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timer := metrics.NewTimer()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	s.mux.ServeHTTP(rec, r)

	metrics.APIRequestsTotal.WithLabelValues(r.Method, fmt.Sprintf("%d", rec.status)).Inc()
	metrics.APIRequestDuration.WithLabelValues(r.Method).Observe(timer.Duration().Seconds())
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", rec.status).
		Dur("duration", timer.Duration()).
		Msg("request handled")
}

// ListenAndServe blocks serving the API on addr
func (s *Server) ListenAndServe(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      s,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	s.logger.Info().Str("addr", addr).Msg("API server listening")
	return server.ListenAndServe()
}

// Close tears down every workspace runtime
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rt := range s.runtimes {
		rt.session.Close()
		delete(s.runtimes, id)
	}
}

// runtime returns the workspace's runtime, building it on first use. The
// workspace must exist in the store.
func (s *Server) runtime(workspaceID string) (*workspaceRuntime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rt, ok := s.runtimes[workspaceID]; ok {
		return rt, nil
	}
	if _, err := s.store.GetWorkspace(workspaceID); err != nil {
		return nil, err
	}

	session := hsync.NewSession(s.store, s.broker)
	if err := session.SetWorkspace(workspaceID); err != nil {
		return nil, fmt.Errorf("activate workspace: %w", err)
	}

	fanout := notify.NewFanout(s.store, s.messenger)
	notifier := notify.NewMutationNotifier(fanout, s.store)
	pipe := pipeline.NewPipeline(s.store, session, notifier)
	rt := &workspaceRuntime{
		session:   session,
		pipeline:  pipe,
		center:    notify.NewCenter(s.store, session.Notifications.Cache()),
		assistant: assistant.New(pipe, session, s.collaborator),
	}
	s.runtimes[workspaceID] = rt
	wsLog := log.WithWorkspaceID(workspaceID)
	wsLog.Info().Msg("workspace runtime started")
	return rt, nil
}

// dropRuntime tears down a workspace's runtime, if any
func (s *Server) dropRuntime(workspaceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.runtimes[workspaceID]; ok {
		rt.session.Close()
		delete(s.runtimes, workspaceID)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func actorID(r *http.Request) string {
	return r.Header.Get(actorHeader)
}

func decodeJSON(r *http.Request, into any) error {
	defer func() { _, _ = io.Copy(io.Discard, r.Body) }()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]any{
		"code":    code,
		"message": message,
	})
}

// writeDomainError maps domain errors onto HTTP statuses. Validation
// failures carry the full violation list so clients can render them all.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var validation *pipeline.ValidationError
	var notFound *pipeline.NotFoundError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    "validation_failed",
			"message": validation.Error(),
			"errors":  validation.Errors,
		})
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, "not_found", notFound.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, invite.ErrNotFound):
		writeError(w, http.StatusNotFound, "invite_not_found", err.Error())
	case errors.Is(err, invite.ErrAlreadyConsumed):
		writeError(w, http.StatusConflict, "invite_consumed", err.Error())
	case errors.Is(err, invite.ErrExpired):
		writeError(w, http.StatusGone, "invite_expired", err.Error())
	case errors.Is(err, invite.ErrIdentityMismatch):
		writeError(w, http.StatusForbidden, "invite_identity_mismatch", err.Error())
	default:
		s.logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
