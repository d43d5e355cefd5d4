package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"jobboard/internal/application/models"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	"jobboard/pkg/requestcontext"
)

const (
	// DefaultMaxCVBytes applies when no limit is configured.
	DefaultMaxCVBytes int64 = 10 << 20

	// multipartSlack covers form fields and part headers around the file.
	multipartSlack int64 = 1 << 20

	msgCVTooLarge       = "CV file is too large"
	msgInvalidForm      = "Invalid multipart form"
	msgInvalidAppID     = "Invalid application ID"
	msgInvalidRoleID    = "Invalid job role ID"
	msgNotAuthenticated = "User not authenticated"
)

type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Submission, error)
	CanApply(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID) (models.Eligibility, error)
	ListMine(ctx context.Context, userID domain.UserID) ([]*models.Application, error)
	Get(ctx context.Context, id domain.ApplicationID, caller requestcontext.Identity) (*models.Application, error)
	ListForJobRole(ctx context.Context, jobRoleID domain.JobRoleID) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) (*models.Application, error)
}

// Handler serves CV submission for applicants and review endpoints for admins.
type Handler struct {
	applications Service
	logger       *slog.Logger
	maxCVBytes   int64
	requireAuth  func(http.Handler) http.Handler
	requireAdmin func(http.Handler) http.Handler
}

func New(applications Service, logger *slog.Logger, maxCVBytes int64, requireAuth, requireAdmin func(http.Handler) http.Handler) *Handler {
	if maxCVBytes <= 0 {
		maxCVBytes = DefaultMaxCVBytes
	}
	return &Handler{
		applications: applications,
		logger:       logger,
		maxCVBytes:   maxCVBytes,
		requireAuth:  requireAuth,
		requireAdmin: requireAdmin,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/apply", h.HandleSubmit)
		r.Get("/applications/can-apply/{jobRoleId}", h.HandleCanApply)
		r.Get("/applications/me", h.HandleListMine)
		r.Get("/applications/{id}", h.HandleGet)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Use(h.requireAuth, h.requireAdmin)
		r.Get("/job-roles/{jobRoleId}/applications", h.HandleListForJobRole)
		r.Patch("/applications/{id}/status", h.HandleUpdateStatus)
	})
}

// HandleSubmit accepts multipart/form-data with a "cv" file part and a
// "jobRoleId" field.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cv, jobRoleID, err := h.readSubmission(w, r)
	if err != nil {
		h.fail(w, r, "invalid application form", err)
		return
	}

	sub, err := h.applications.Submit(ctx, models.SubmitRequest{
		ApplicantID: requestcontext.UserID(ctx),
		JobRoleID:   jobRoleID,
		CV:          cv,
	})
	if err != nil {
		h.fail(w, r, "failed to submit application", err)
		return
	}
	h.logger.InfoContext(ctx, "application submitted",
		"application_id", sub.Application.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	httputil.WriteJSON(w, http.StatusCreated, sub.ToResponse())
}

func (h *Handler) HandleCanApply(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	jobRoleID, ok := h.parseJobRoleID(w, r)
	if !ok {
		return
	}
	result, err := h.applications.CanApply(ctx, requestcontext.UserID(ctx), jobRoleID)
	if err != nil {
		h.fail(w, r, "failed to check eligibility", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result.ToResponse())
}

func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	apps, err := h.applications.ListMine(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.fail(w, r, "failed to list applications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(apps))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseApplicationID(w, r)
	if !ok {
		return
	}
	caller, ok := requestcontext.IdentityFrom(ctx)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msgNotAuthenticated))
		return
	}
	app, err := h.applications.Get(ctx, id, caller)
	if err != nil {
		h.fail(w, r, "failed to get application", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app.ToResponse())
}

func (h *Handler) HandleListForJobRole(w http.ResponseWriter, r *http.Request) {
	jobRoleID, ok := h.parseJobRoleID(w, r)
	if !ok {
		return
	}
	apps, err := h.applications.ListForJobRole(r.Context(), jobRoleID)
	if err != nil {
		h.fail(w, r, "failed to list applications for job role", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponses(apps))
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, ok := h.parseApplicationID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[models.UpdateStatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	app, err := h.applications.UpdateStatus(ctx, id, req.Parsed())
	if err != nil {
		h.fail(w, r, "failed to update application status", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, app.ToResponse())
}

// readSubmission extracts the CV and raw job role id. A request that is not
// multipart, or has no cv part, yields a nil CV so the service reports it.
func (h *Handler) readSubmission(w http.ResponseWriter, r *http.Request) (*models.CVFile, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxCVBytes+multipartSlack)
	if err := r.ParseMultipartForm(h.maxCVBytes); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, "", dErrors.New(dErrors.CodeBadRequest, msgCVTooLarge)
		case errors.Is(err, http.ErrNotMultipart):
			return nil, r.FormValue("jobRoleId"), nil
		default:
			return nil, "", dErrors.Wrap(err, dErrors.CodeBadRequest, msgInvalidForm)
		}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	jobRoleID := r.FormValue("jobRoleId")

	file, header, err := r.FormFile("cv")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, jobRoleID, nil
	}
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeBadRequest, msgInvalidForm)
	}
	defer file.Close()

	if header.Size > h.maxCVBytes {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, msgCVTooLarge)
	}
	body, err := io.ReadAll(io.LimitReader(file, h.maxCVBytes+1))
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeBadRequest, msgInvalidForm)
	}
	if int64(len(body)) > h.maxCVBytes {
		return nil, "", dErrors.New(dErrors.CodeBadRequest, msgCVTooLarge)
	}
	return &models.CVFile{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        body,
	}, jobRoleID, nil
}

func (h *Handler) parseJobRoleID(w http.ResponseWriter, r *http.Request) (domain.JobRoleID, bool) {
	id, err := domain.ParseJobRoleID(chi.URLParam(r, "jobRoleId"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, msgInvalidRoleID))
		return 0, false
	}
	return id, true
}

func (h *Handler) parseApplicationID(w http.ResponseWriter, r *http.Request) (domain.ApplicationID, bool) {
	id, err := domain.ParseApplicationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, msgInvalidAppID))
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

func toResponses(apps []*models.Application) []models.ApplicationResponse {
	out := make([]models.ApplicationResponse, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ToResponse())
	}
	return out
}
