package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/loftlab/huddle/pkg/assistant"
	"github.com/loftlab/huddle/pkg/invite"
	"github.com/loftlab/huddle/pkg/storage"
	"github.com/loftlab/huddle/pkg/types"
)

// ---- workspaces ----

func (s *Server) handleListWorkspaces(w http.ResponseWriter, r *http.Request) {
	workspaces, err := s.store.ListWorkspaces()
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workspaces)
}

func (s *Server) handleCreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if body.Name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	ws := &types.Workspace{Name: body.Name, CreatedBy: actorID(r)}
	if err := s.store.CreateWorkspace(ws); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ws)
}

func (s *Server) handleGetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := s.store.GetWorkspace(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (s *Server) handleDeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	workspaceID := r.PathValue("ws")
	s.dropRuntime(workspaceID)
	if err := s.store.DeleteWorkspace(workspaceID); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- tasks ----

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.session.Tasks.Cache().Snapshot())
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var task types.Task
	if err := decodeJSON(r, &task); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	// The route, not the body, decides the tenant.
	task.WorkspaceID = r.PathValue("ws")
	created, err := rt.pipeline.CreateTask(&task, actorID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.GetTask(r.PathValue("ws"), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var patch types.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	updated, err := rt.pipeline.UpdateTask(r.PathValue("id"), &patch, actorID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.pipeline.DeleteTask(r.PathValue("id"), actorID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- projects ----

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.session.Projects.Cache().Snapshot())
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var project types.Project
	if err := decodeJSON(r, &project); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	project.WorkspaceID = r.PathValue("ws")
	created, err := rt.pipeline.CreateProject(&project, actorID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	project, err := s.store.GetProject(r.PathValue("ws"), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var patch types.ProjectPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	updated, err := rt.pipeline.UpdateProject(r.PathValue("id"), &patch, actorID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.pipeline.DeleteProject(r.PathValue("id"), actorID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- members ----

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.store.ListMembers(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (s *Server) handlePutMember(w http.ResponseWriter, r *http.Request) {
	var member types.Member
	if err := decodeJSON(r, &member); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	member.WorkspaceID = r.PathValue("ws")
	member.UserID = r.PathValue("userId")
	if member.Role == "" {
		member.Role = types.RoleMember
	}
	if member.Status == "" {
		member.Status = types.MemberStatusActive
	}
	if member.JoinedAt.IsZero() {
		member.JoinedAt = time.Now().UTC()
	}
	if err := s.store.PutMember(&member); err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &member)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteMember(r.PathValue("ws"), r.PathValue("userId")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- notifications ----

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	notifications, err := rt.center.List(r.PathValue("ws"), actorID(r))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notifications)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.center.MarkRead(r.PathValue("ws"), r.PathValue("id"), actorID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.center.MarkAllRead(r.PathValue("ws"), actorID(r)); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.center.Delete(r.PathValue("ws"), r.PathValue("id")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearNotifications(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := rt.center.Clear(r.PathValue("ws")); err != nil {
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- invites ----

// inviteView augments the stored invite with its effective status so
// clients see EXPIRED without the store ever writing it.
type inviteView struct {
	*types.Invite
	EffectiveStatus string `json:"effectiveStatus"`
}

func (s *Server) handleListInvites(w http.ResponseWriter, r *http.Request) {
	invites, err := s.invites.List(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	now := time.Now()
	views := make([]inviteView, 0, len(invites))
	for _, inv := range invites {
		views = append(views, inviteView{Invite: inv, EffectiveStatus: invite.EffectiveStatus(inv, now)})
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string           `json:"email"`
		Role  types.MemberRole `json:"role"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	inv, err := s.invites.Create(r.PathValue("ws"), body.Email, body.Role, actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (s *Server) handleAcceptInvite(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
		Email  string `json:"email"`
		Name   string `json:"name"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if body.UserID == "" || body.Email == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "userId and email are required")
		return
	}
	member, err := s.invites.Accept(r.PathValue("ws"), r.PathValue("token"), invite.AcceptingUser{
		UserID: body.UserID,
		Email:  body.Email,
		Name:   body.Name,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, member)
}

func (s *Server) handleRevokeInvite(w http.ResponseWriter, r *http.Request) {
	err := s.invites.Revoke(r.PathValue("ws"), r.PathValue("token"))
	if err != nil {
		if errors.Is(err, invite.ErrNotFound) || errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "invite_not_found", err.Error())
			return
		}
		s.writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- assistant ----

func (s *Server) handleAssistant(w http.ResponseWriter, r *http.Request) {
	rt, err := s.runtime(r.PathValue("ws"))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	var body struct {
		Prompt  string             `json:"prompt,omitempty"`
		Intents []assistant.Intent `json:"intents,omitempty"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	var outcomes []assistant.Outcome
	switch {
	case len(body.Intents) > 0:
		outcomes = rt.assistant.Execute(body.Intents, actorID(r))
	case body.Prompt != "":
		outcomes, err = rt.assistant.Handle(r.Context(), body.Prompt, actorID(r))
		if err != nil {
			writeError(w, http.StatusBadGateway, "assistant_unavailable", err.Error())
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "prompt or intents required")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outcomes": outcomes})
}
