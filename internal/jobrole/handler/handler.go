package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

type Service interface {
	List(ctx context.Context) ([]*models.JobRole, error)
	Get(ctx context.Context, id domain.JobRoleID) (*models.JobRole, error)
	Create(ctx context.Context, req *models.CreateJobRoleRequest) (*models.JobRole, error)
	Update(ctx context.Context, id domain.JobRoleID, req *models.UpdateJobRoleRequest) (*models.JobRole, error)
	Delete(ctx context.Context, id domain.JobRoleID) error
	Capabilities(ctx context.Context) ([]models.Capability, error)
	Bands(ctx context.Context) ([]models.Band, error)
	Statuses(ctx context.Context) ([]models.Status, error)
}

// Handler serves job role listings. Reads are public; writes need an ADMIN.
type Handler struct {
	jobRoles     Service
	logger       *slog.Logger
	requireAuth  func(http.Handler) http.Handler
	requireAdmin func(http.Handler) http.Handler
}

func New(jobRoles Service, logger *slog.Logger, requireAuth, requireAdmin func(http.Handler) http.Handler) *Handler {
	return &Handler{
		jobRoles:     jobRoles,
		logger:       logger,
		requireAuth:  requireAuth,
		requireAdmin: requireAdmin,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/job-roles", func(r chi.Router) {
		r.Get("/", h.HandleList)
		r.Get("/{id}", h.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(h.requireAuth, h.requireAdmin)
			r.Post("/", h.HandleCreate)
			r.Put("/{id}", h.HandleUpdate)
			r.Delete("/{id}", h.HandleDelete)
		})
	})
	r.Get("/capabilities", h.HandleCapabilities)
	r.Get("/bands", h.HandleBands)
	r.Get("/statuses", h.HandleStatuses)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	roles, err := h.jobRoles.List(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list job roles", err)
		return
	}
	out := make([]models.JobRoleResponse, 0, len(roles))
	for _, j := range roles {
		out = append(out, j.ToResponse())
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	role, err := h.jobRoles.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, "failed to get job role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role.ToResponse())
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[models.CreateJobRoleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	role, err := h.jobRoles.Create(ctx, req)
	if err != nil {
		h.fail(w, r, "failed to create job role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, role.ToResponse())
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateJobRoleRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	role, err := h.jobRoles.Update(ctx, id, req)
	if err != nil {
		h.fail(w, r, "failed to update job role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, role.ToResponse())
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.jobRoles.Delete(r.Context(), id); err != nil {
		h.fail(w, r, "failed to delete job role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleCapabilities(w http.ResponseWriter, r *http.Request) {
	out, err := h.jobRoles.Capabilities(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list capabilities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleBands(w http.ResponseWriter, r *http.Request) {
	out, err := h.jobRoles.Bands(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list bands", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) HandleStatuses(w http.ResponseWriter, r *http.Request) {
	out, err := h.jobRoles.Statuses(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list statuses", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (domain.JobRoleID, bool) {
	id, err := domain.ParseJobRoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Invalid job role ID"))
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if de, ok := dErrors.As(err); ok && de.Code.IsClientFacing() {
		h.logger.InfoContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
