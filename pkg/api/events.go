package api

import (
	"net/http"
	"time"

	"github.com/loftlab/huddle/pkg/events"
)

const (
	defaultPollTimeout = 30 * time.Second
	maxPollTimeout     = 2 * time.Minute
	// after the first event arrives, linger briefly to batch bursts
	pollLinger = 50 * time.Millisecond
)

// handlePollEvents long-polls the change feed. The request blocks until at
// least one event for the workspace arrives or the timeout elapses, then
// returns every event collected. Clients treat these as invalidation
// signals and re-fetch the affected collections.
func (s *Server) handlePollEvents(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("ws")
	if _, err := s.store.GetWorkspace(workspaceID); err != nil {
		s.writeDomainError(w, err)
		return
	}

	timeout := defaultPollTimeout
	if raw := r.URL.Query().Get("timeout"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			timeout = min(parsed, maxPollTimeout)
		}
	}

	sub := s.broker.Subscribe()
	defer s.broker.Unsubscribe(sub)

	collected := make([]*events.Event, 0, 8)
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

wait:
	for {
		select {
		case event, ok := <-sub:
			if !ok {
				break wait
			}
			if event.WorkspaceID != workspaceID {
				continue
			}
			collected = append(collected, event)
			break wait
		case <-deadline.C:
			break wait
		case <-r.Context().Done():
			return
		}
	}

	if len(collected) > 0 {
		linger := time.NewTimer(pollLinger)
		defer linger.Stop()
	batch:
		for {
			select {
			case event, ok := <-sub:
				if !ok {
					break batch
				}
				if event.WorkspaceID != workspaceID {
					continue
				}
				collected = append(collected, event)
			case <-linger.C:
				break batch
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": collected})
}
