package http

import (
	"encoding/json"
	"net/http"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// DraftEvent is broadcast to /events subscribers of a host.
type DraftEvent struct {
	Event string `json:"event"`
	Key   string `json:"key"`
	Hash  string `json:"hash,omitempty"`
}

// SaveDraftResponse is returned by PUT /autosave/{type}/{id}.
type SaveDraftResponse struct {
	Draft   *domain.Draft `json:"draft"`
	Changed bool          `json:"changed"`
}

func hostParams(r *http.Request) (string, string) {
	return chi.URLParam(r, "type"), chi.URLParam(r, "id")
}

// GetDraft handles the GET /autosave/{type}/{id} request.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	hostType, hostID := hostParams(r)
	draft, err := s.Drafts.Load(r.Context(), hostType, hostID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, draft)
}

// SaveDraft handles the PUT /autosave/{type}/{id} request.
func (s *Server) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := requirePermission(r, "save draft", PermissionEditDrafts); err != nil {
		s.writeError(w, r, err)
		return
	}
	var body TreeRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	hostType, hostID := hostParams(r)
	draft, changed, err := s.Drafts.SaveDraft(r.Context(), hostType, hostID, body.Tree)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if changed {
		s.broadcast(DraftEvent{Event: "saved", Key: draft.Key(), Hash: draft.Hash})
	}
	s.writeJSON(w, http.StatusOK, SaveDraftResponse{Draft: draft, Changed: changed})
}

// DiscardDraft handles the DELETE /autosave/{type}/{id} request.
func (s *Server) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := requirePermission(r, "discard draft", PermissionEditDrafts); err != nil {
		s.writeError(w, r, err)
		return
	}
	hostType, hostID := hostParams(r)
	if err := s.Drafts.Discard(r.Context(), hostType, hostID); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.broadcast(DraftEvent{Event: "discarded", Key: domain.DraftKey(hostType, hostID)})
	w.WriteHeader(http.StatusNoContent)
}

// PublishDraft handles the POST /autosave/{type}/{id}/publish request.
// An invalid draft is answered with 422 and its violations; it stays saved.
func (s *Server) PublishDraft(w http.ResponseWriter, r *http.Request) {
	if err := requirePermission(r, "publish draft", PermissionPublish); err != nil {
		s.writeError(w, r, err)
		return
	}
	hostType, hostID := hostParams(r)
	host, err := s.Drafts.Publish(r.Context(), hostType, hostID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	key := domain.DraftKey(hostType, hostID)
	s.broadcast(DraftEvent{Event: "published", Key: key})
	s.writeJSON(w, http.StatusOK, map[string]any{
		"published": true,
		"host_type": host.HostType(),
		"host_id":   host.HostID(),
		"tree":      host.ComponentTree(),
	})
}

func (s *Server) broadcast(evt DraftEvent) {
	bytes, err := json.Marshal(evt)
	if err != nil {
		s.logger.Error("draft event encode failed", "error", err)
		return
	}
	s.Streams.Broadcast(evt.Key, string(bytes))
}
