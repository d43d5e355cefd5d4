package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,ApplicationCounter,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	audit "jobboard/pkg/platform/audit"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

const (
	msgNotFound = "Job role not found"

	// MsgHasApplications is returned when deleting a role that applicants
	// have already applied to. Applications are never removed in-band.
	MsgHasApplications = "Job role has applications"
)

type Store interface {
	List(ctx context.Context) ([]*models.JobRole, error)
	FindByID(ctx context.Context, id domain.JobRoleID) (*models.JobRole, error)
	Create(ctx context.Context, f models.JobRoleFields) (*models.JobRole, error)
	Update(ctx context.Context, id domain.JobRoleID, f models.JobRoleFields) (*models.JobRole, error)
	Delete(ctx context.Context, id domain.JobRoleID) error
	Capabilities(ctx context.Context) ([]models.Capability, error)
	Bands(ctx context.Context) ([]models.Band, error)
	Statuses(ctx context.Context) ([]models.Status, error)
}

// ApplicationCounter reports how many applications reference a job role.
type ApplicationCounter interface {
	CountByJobRole(ctx context.Context, id domain.JobRoleID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages job role listings and their reference data.
type Service struct {
	store          Store
	applications   ApplicationCounter
	logger         *slog.Logger
	auditPublisher AuditPublisher
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

// WithApplicationCounter makes Delete refuse roles that have applications.
func WithApplicationCounter(counter ApplicationCounter) Option {
	return func(s *Service) {
		s.applications = counter
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("job role store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) List(ctx context.Context) ([]*models.JobRole, error) {
	roles, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get job roles")
	}
	return roles, nil
}

func (s *Service) Get(ctx context.Context, id domain.JobRoleID) (*models.JobRole, error) {
	role, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, msgNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get job role")
	}
	return role, nil
}

// Create stores a validated request. Unknown reference ids are violations.
func (s *Service) Create(ctx context.Context, req *models.CreateJobRoleRequest) (*models.JobRole, error) {
	fields := req.Fields()
	if err := s.checkReferences(ctx, fields); err != nil {
		return nil, err
	}
	role, err := s.store.Create(ctx, fields)
	if err != nil {
		return nil, s.translateWrite(err, "Failed to create job role")
	}
	s.logAudit(ctx, audit.EventJobRoleCreated, role.ID)
	return role, nil
}

// Update overlays the request onto the current role.
func (s *Service) Update(ctx context.Context, id domain.JobRoleID, req *models.UpdateJobRoleRequest) (*models.JobRole, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	fields := req.ApplyTo(current)
	if err := s.checkReferences(ctx, fields); err != nil {
		return nil, err
	}
	role, err := s.store.Update(ctx, id, fields)
	if err != nil {
		return nil, s.translateWrite(err, "Failed to update job role")
	}
	s.logAudit(ctx, audit.EventJobRoleUpdated, id)
	return role, nil
}

// Delete removes a role with no applications. The store's foreign key
// refuses the delete if an application lands between the count and the
// delete.
func (s *Service) Delete(ctx context.Context, id domain.JobRoleID) error {
	if s.applications != nil {
		n, err := s.applications.CountByJobRole(ctx, id)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "Failed to delete job role")
		}
		if n > 0 {
			return dErrors.New(dErrors.CodeConflict, MsgHasApplications)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeConflict, MsgHasApplications)
		}
		return s.translateWrite(err, "Failed to delete job role")
	}
	s.logAudit(ctx, audit.EventJobRoleDeleted, id)
	return nil
}

func (s *Service) Capabilities(ctx context.Context) ([]models.Capability, error) {
	out, err := s.store.Capabilities(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get capabilities")
	}
	return out, nil
}

func (s *Service) Bands(ctx context.Context) ([]models.Band, error) {
	out, err := s.store.Bands(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get bands")
	}
	return out, nil
}

func (s *Service) Statuses(ctx context.Context) ([]models.Status, error) {
	out, err := s.store.Statuses(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to get statuses")
	}
	return out, nil
}

func (s *Service) checkReferences(ctx context.Context, f models.JobRoleFields) error {
	caps, err := s.Capabilities(ctx)
	if err != nil {
		return err
	}
	bands, err := s.Bands(ctx)
	if err != nil {
		return err
	}
	statuses, err := s.Statuses(ctx)
	if err != nil {
		return err
	}

	var violations []string
	if !containsID(caps, f.CapabilityID, func(c models.Capability) int64 { return c.ID }) {
		violations = append(violations, "capabilityId does not reference an existing capability")
	}
	if !containsID(bands, f.BandID, func(b models.Band) int64 { return b.ID }) {
		violations = append(violations, "bandId does not reference an existing band")
	}
	if !containsID(statuses, f.StatusID, func(st models.Status) int64 { return st.ID }) {
		violations = append(violations, "statusId does not reference an existing status")
	}
	if len(violations) > 0 {
		return dErrors.NewValidation("Validation failed", violations)
	}
	return nil
}

func (s *Service) translateWrite(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, msgNotFound)
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.NewValidation("Validation failed", []string{"reference data changed; retry with current ids"})
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, id domain.JobRoleID) {
	actor := requestcontext.UserID(ctx)
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"job_role_id", id,
		"actor_id", actor,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    actor,
		ActorID:   actor,
		Subject:   "job_role:" + strconv.FormatInt(int64(id), 10),
		Action:    string(event),
		RequestID: requestID,
		UserAgent: requestcontext.UserAgent(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}

func containsID[T any](items []T, id int64, key func(T) int64) bool {
	for _, item := range items {
		if key(item) == id {
			return true
		}
	}
	return false
}
