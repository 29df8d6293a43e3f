package http

import (
	"errors"
	"net/http"

	"github.com/aretw0/canvas/pkg/domain"
	"github.com/aretw0/canvas/pkg/requirements"
	"github.com/aretw0/canvas/pkg/validation"
	"github.com/go-chi/chi/v5"
)

// ComponentSummary is one entry of GET /components.
type ComponentSummary struct {
	ID            string                 `json:"id"`
	Label         string                 `json:"label"`
	Category      string                 `json:"category,omitempty"`
	Source        domain.ComponentSource `json:"source"`
	Status        bool                   `json:"status"`
	ActiveVersion string                 `json:"active_version"`
}

// ListComponents handles the GET /components request.
func (s *Server) ListComponents(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Definitions.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]ComponentSummary, 0, len(ids))
	for _, id := range ids {
		def, err := s.Definitions.Get(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out = append(out, ComponentSummary{
			ID:            def.ID,
			Label:         def.Label,
			Category:      def.Category,
			Source:        def.Source,
			Status:        def.Status,
			ActiveVersion: def.ActiveVersion,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"components": out})
}

// GetComponent handles the GET /components/{id} request.
func (s *Server) GetComponent(w http.ResponseWriter, r *http.Request) {
	def, err := s.Definitions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, def)
}

// RequirementsResponse is returned by GET /components/{id}/requirements.
type RequirementsResponse struct {
	ID                string   `json:"id"`
	MeetsRequirements bool     `json:"meets_requirements"`
	Messages          []string `json:"messages,omitempty"`
}

// GetRequirements handles the GET /components/{id}/requirements request.
func (s *Server) GetRequirements(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := requirements.ForDefinition(r.Context(), s.Definitions, id, s.matcher)

	var reqErr *requirements.ComponentDoesNotMeetRequirementsError
	switch {
	case err == nil:
		s.writeJSON(w, http.StatusOK, RequirementsResponse{ID: id, MeetsRequirements: true})
	case errors.As(err, &reqErr):
		s.metrics.ObserveRequirementsFailure()
		s.writeJSON(w, http.StatusUnprocessableEntity, RequirementsResponse{ID: id, Messages: reqErr.Messages})
	default:
		s.writeError(w, r, err)
	}
}

// TreeRequest is the body of POST /validate and PUT /autosave/{type}/{id}.
type TreeRequest struct {
	Tree domain.ComponentTree `json:"tree"`
}

// ValidateResponse is returned by POST /validate.
type ValidateResponse struct {
	Valid      bool                   `json:"valid"`
	Violations []validation.Violation `json:"violations"`
}

// Validate handles the POST /validate request.
func (s *Server) Validate(w http.ResponseWriter, r *http.Request) {
	var body TreeRequest
	if err := decodeBody(r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}

	vctx := validation.NewContext("")
	if err := s.validator.Validate(r.Context(), body.Tree, vctx); err != nil {
		s.writeError(w, r, err)
		return
	}
	violations := vctx.Violations()
	s.writeJSON(w, http.StatusOK, ValidateResponse{Valid: len(violations) == 0, Violations: violations})
}

// Resolve handles the POST /resolve/{type}/{id} request. It evaluates the
// inputs of every component instance in the host's published tree.
func (s *Server) Resolve(w http.ResponseWriter, r *http.Request) {
	host, err := s.Hosts.Load(r.Context(), chi.URLParam(r, "type"), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	inputs, err := s.resolver.ResolveTree(r.Context(), host, s.Definitions)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"inputs": inputs})
}
