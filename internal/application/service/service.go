package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,Evaluator,ApplicantLookup,BlobStore,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"jobboard/internal/application/eligibility"
	"jobboard/internal/application/lock"
	"jobboard/internal/application/models"
	"jobboard/internal/blob"
	"jobboard/internal/platform/metrics"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	audit "jobboard/pkg/platform/audit"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

const (
	MsgCVRequired         = "CV file is required"
	MsgNotAuthenticated   = "User not authenticated"
	MsgSubmitFailed       = "Failed to submit application"
	MsgSubmitInProgress   = "An application for this job role is already being submitted"
	MsgApplicationMissing = "Application not found"
	MsgAccessDenied       = "Access denied"
)

// Submission outcomes recorded on the submissions counter.
const (
	outcomeCreated      = "created"
	outcomeIneligible   = "ineligible"
	outcomeUploadFailed = "upload_failed"
	outcomeStoreFailed  = "store_failed"
	outcomeDuplicate    = "duplicate"
)

const defaultContentType = "application/octet-stream"

// Store persists applications. Create returns sentinel.ErrAlreadyUsed when
// the applicant already has an application for the role.
type Store interface {
	Create(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID, cvURL string) (*models.Application, error)
	FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error)
	ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Application, error)
	ListByJobRole(ctx context.Context, jobRoleID domain.JobRoleID) ([]*models.Application, error)
	UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) (*models.Application, error)
}

type Evaluator interface {
	Evaluate(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID, now time.Time) (models.Eligibility, *models.JobRoleSnapshot, error)
}

type ApplicantLookup interface {
	Applicant(ctx context.Context, id domain.UserID) (models.Applicant, error)
}

type BlobStore interface {
	Upload(ctx context.Context, obj blob.Object) (string, error)
	Delete(ctx context.Context, url string) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service coordinates CV submission and the application lifecycle.
type Service struct {
	store          Store
	evaluator      Evaluator
	applicants     ApplicantLookup
	blobs          BlobStore
	locker         lock.Locker
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	cleanupOrphans bool
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithLocker replaces the default in-process submission lock.
func WithLocker(l lock.Locker) Option {
	return func(s *Service) {
		s.locker = l
	}
}

// WithOrphanCleanup deletes an uploaded CV when the application row that
// would reference it cannot be written.
func WithOrphanCleanup(enabled bool) Option {
	return func(s *Service) {
		s.cleanupOrphans = enabled
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, evaluator Evaluator, applicants ApplicantLookup, blobs BlobStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("application store is required")
	}
	if evaluator == nil {
		return nil, errors.New("eligibility evaluator is required")
	}
	if applicants == nil {
		return nil, errors.New("applicant lookup is required")
	}
	if blobs == nil {
		return nil, errors.New("blob store is required")
	}
	s := &Service{
		store:      store,
		evaluator:  evaluator,
		applicants: applicants,
		blobs:      blobs,
		locker:     lock.NewKeyedMutex(),
		logger:     slog.Default(),
		tracer:     otel.Tracer("jobboard/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Submit validates the request, checks eligibility, uploads the CV and
// records the application, in that order. The eligibility check and the
// insert run under a per-(applicant, job role) lock; the store's uniqueness
// constraint catches anything the lock misses.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.Submission, error) {
	ctx, span := s.tracer.Start(ctx, "application.submit")
	defer span.End()

	if req.CV == nil || len(req.CV.Body) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, MsgCVRequired)
	}
	if !req.ApplicantID.IsValid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, MsgNotAuthenticated)
	}
	jobRoleID, err := domain.ParseJobRoleID(req.JobRoleID)
	if err != nil {
		return nil, err
	}
	userID := req.ApplicantID
	span.SetAttributes(
		attribute.Int64("user.id", int64(userID)),
		attribute.Int64("job_role.id", int64(jobRoleID)),
	)

	release, err := s.locker.Lock(ctx, lock.SubmissionKey(userID, jobRoleID))
	if err != nil {
		recordSpanError(span, err)
		if errors.Is(err, sentinel.ErrLockHeld) {
			return nil, dErrors.New(dErrors.CodeConflict, MsgSubmitInProgress)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MsgSubmitFailed)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logger.WarnContext(ctx, "failed to release submission lock",
				"user_id", userID, "job_role_id", jobRoleID, "error", err)
		}
	}()

	now := requestcontext.Now(ctx)
	result, role, err := s.evaluator.Evaluate(ctx, userID, jobRoleID, now)
	if err != nil {
		recordSpanError(span, err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MsgSubmitFailed)
	}
	if !result.Eligible {
		span.SetAttributes(attribute.String("eligibility.denied", result.Code))
		s.metrics.IncrementEligibilityDenial(result.Code)
		s.metrics.IncrementSubmission(outcomeIneligible)
		return nil, dErrors.New(dErrors.CodeBadRequest, result.Reason)
	}

	cvURL, err := s.upload(ctx, userID, req.CV, now)
	if err != nil {
		recordSpanError(span, err)
		s.metrics.IncrementSubmission(outcomeUploadFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeUploadFailed, MsgSubmitFailed)
	}

	app, err := s.store.Create(ctx, userID, jobRoleID, cvURL)
	if err != nil {
		recordSpanError(span, err)
		s.handleOrphan(ctx, cvURL, err)
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.metrics.IncrementSubmission(outcomeDuplicate)
			return nil, dErrors.New(dErrors.CodeBadRequest, eligibility.ReasonAlreadyApplied)
		}
		s.metrics.IncrementSubmission(outcomeStoreFailed)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, MsgSubmitFailed)
	}
	s.metrics.IncrementSubmission(outcomeCreated)
	span.SetAttributes(attribute.Int64("application.id", int64(app.ID)))

	s.logAudit(ctx, audit.EventApplicationSubmitted, app, "")
	return &models.Submission{
		Application: app,
		Applicant:   s.applicant(ctx, userID),
		JobRole:     *role,
	}, nil
}

// CanApply runs the eligibility check without side effects.
func (s *Service) CanApply(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID) (models.Eligibility, error) {
	result, _, err := s.evaluator.Evaluate(ctx, userID, jobRoleID, requestcontext.Now(ctx))
	if err != nil {
		return models.Eligibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to check eligibility")
	}
	return result, nil
}

func (s *Service) ListMine(ctx context.Context, userID domain.UserID) ([]*models.Application, error) {
	apps, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get applications")
	}
	return apps, nil
}

// Get returns an application to its owner or to an admin.
func (s *Service) Get(ctx context.Context, id domain.ApplicationID, caller requestcontext.Identity) (*models.Application, error) {
	app, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.UserID != caller.UserID && !caller.HasRole(domain.RoleAdmin) {
		return nil, dErrors.New(dErrors.CodeForbidden, MsgAccessDenied)
	}
	return app, nil
}

func (s *Service) ListForJobRole(ctx context.Context, jobRoleID domain.JobRoleID) ([]*models.Application, error) {
	apps, err := s.store.ListByJobRole(ctx, jobRoleID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get applications")
	}
	return apps, nil
}

// UpdateStatus moves an application to a review status chosen by an admin.
func (s *Service) UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) (*models.Application, error) {
	app, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, MsgApplicationMissing)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update application status")
	}
	s.logAudit(ctx, audit.EventApplicationStatusChanged, app, string(status))
	return app, nil
}

func (s *Service) find(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	app, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, MsgApplicationMissing)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get application")
	}
	return app, nil
}

func (s *Service) upload(ctx context.Context, userID domain.UserID, cv *models.CVFile, now time.Time) (string, error) {
	ctx, span := s.tracer.Start(ctx, "application.upload_cv")
	defer span.End()

	contentType := cv.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	start := time.Now()
	url, err := s.blobs.Upload(ctx, blob.Object{
		Key:         blob.CVKey(userID, cv.FileName),
		Body:        cv.Body,
		ContentType: contentType,
		Metadata: map[string]string{
			blob.MetaOriginalName: cv.FileName,
			blob.MetaUserID:       userID.String(),
			blob.MetaUploadedAt:   now.UTC().Format(time.RFC3339),
		},
	})
	s.metrics.ObserveCVUpload(time.Since(start))
	if err != nil {
		recordSpanError(span, err)
		return "", err
	}
	return url, nil
}

// handleOrphan deals with a CV whose application row was never written. The
// blob is left in place unless cleanup is enabled.
func (s *Service) handleOrphan(ctx context.Context, url string, cause error) {
	s.metrics.IncrementOrphanedBlob()
	s.logger.WarnContext(ctx, "cv uploaded but application not stored",
		"cv_url", url,
		"cleanup", s.cleanupOrphans,
		"error", cause,
		"request_id", requestcontext.RequestID(ctx),
	)
	if !s.cleanupOrphans {
		return
	}
	if err := s.blobs.Delete(context.WithoutCancel(ctx), url); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete orphaned cv", "cv_url", url, "error", err)
	}
}

// applicant prefers the store's record and falls back to the caller's token.
func (s *Service) applicant(ctx context.Context, userID domain.UserID) models.Applicant {
	applicant, err := s.applicants.Applicant(ctx, userID)
	if err == nil {
		return applicant
	}
	s.logger.WarnContext(ctx, "failed to load applicant summary", "user_id", userID, "error", err)
	fallback := models.Applicant{UserID: userID}
	if identity, ok := requestcontext.IdentityFrom(ctx); ok && identity.UserID == userID {
		fallback.Email = identity.Email
	}
	return fallback
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, app *models.Application, reason string) {
	actor := requestcontext.UserID(ctx)
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"application_id", app.ID,
		"user_id", app.UserID,
		"job_role_id", app.JobRoleID,
		"actor_id", actor,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    app.UserID,
		ActorID:   actor,
		Subject:   "application:" + app.ID.String(),
		Action:    string(event),
		Reason:    reason,
		RequestID: requestID,
		UserAgent: requestcontext.UserAgent(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
