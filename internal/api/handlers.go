// Package api exposes the site's JSON API over chi.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ranjit-agency/site/internal/domain"
	"github.com/ranjit-agency/site/internal/pkg/httputil"
	"github.com/ranjit-agency/site/internal/service/contact"
	"github.com/ranjit-agency/site/internal/storage"
)

// Handlers serves the /api routes.
type Handlers struct {
	store    storage.Storage
	contacts *contact.Service
	log      *slog.Logger
}

// NewHandlers wires handlers to a store and the contact service.
func NewHandlers(store storage.Storage, contacts *contact.Service, log *slog.Logger) *Handlers {
	return &Handlers{store: store, contacts: contacts, log: log}
}

// ContactResponse is the body of a successful POST /api/contact.
type ContactResponse struct {
	Success    bool                     `json:"success"`
	Submission domain.ContactSubmission `json:"submission"`
}

// GetServices handles GET /api/services.
func (h *Handlers) GetServices(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetServices(r.Context())
	respondList(w, r, list, err)
}

// GetProjects handles GET /api/projects.
func (h *Handlers) GetProjects(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetProjects(r.Context())
	respondList(w, r, list, err)
}

// GetProject handles GET /api/projects/{id}.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) {
		httputil.NotFound(w, "Project not found")
		return
	}
	if err != nil {
		httputil.InternalError(w, r, err)
		return
	}
	httputil.OK(w, p)
}

// GetTestimonials handles GET /api/testimonials.
func (h *Handlers) GetTestimonials(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetTestimonials(r.Context())
	respondList(w, r, list, err)
}

// GetTeam handles GET /api/team.
func (h *Handlers) GetTeam(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetTeamMembers(r.Context())
	respondList(w, r, list, err)
}

// GetTimeline handles GET /api/timeline.
func (h *Handlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.GetTimeline(r.Context())
	respondList(w, r, list, err)
}

// SubmitContact handles POST /api/contact.
func (h *Handlers) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var in domain.InsertContact
	if !httputil.Decode(w, r, &in) {
		return
	}
	sub, err := h.contacts.Submit(r.Context(), in)
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.ValidationFailed(w, "Invalid contact submission", verr.Fields)
		return
	case err != nil:
		httputil.InternalError(w, r, err)
		return
	}
	httputil.Created(w, ContactResponse{Success: true, Submission: *sub})
}

// respondList writes list as a JSON array; nil lists encode as [].
func respondList[T any](w http.ResponseWriter, r *http.Request, list []T, err error) {
	if err != nil {
		httputil.InternalError(w, r, err)
		return
	}
	if list == nil {
		list = []T{}
	}
	httputil.OK(w, list)
}
