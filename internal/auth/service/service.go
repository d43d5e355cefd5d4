package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks UserStore,PasswordHasher,TokenIssuer,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"jobboard/internal/auth/models"
	"jobboard/internal/platform/metrics"
	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	audit "jobboard/pkg/platform/audit"
	"jobboard/pkg/platform/sentinel"
	"jobboard/pkg/requestcontext"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgEmailTaken         = "Email is already registered"
	msgInternal           = "Internal server error"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id domain.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) (bool, error)
}

type TokenIssuer interface {
	GenerateAccessToken(userID domain.UserID, email string, role domain.Role, expiresIn time.Duration) (string, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service registers users and exchanges credentials for access tokens.
type Service struct {
	users          UserStore
	hasher         PasswordHasher
	tokens         TokenIssuer
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics

	// dummyHash is verified against when the email is unknown so both
	// login failure paths cost one bcrypt comparison.
	dummyOnce sync.Once
	dummyHash string
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

func New(users UserStore, hasher PasswordHasher, tokens TokenIssuer, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("user store is required")
	}
	if hasher == nil {
		return nil, errors.New("password hasher is required")
	}
	if tokens == nil {
		return nil, errors.New("token issuer is required")
	}
	s := &Service{users: users, hasher: hasher, tokens: tokens, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an APPLICANT account. The request must already be validated.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req.Email, req.Password, domain.RoleApplicant)
}

func (s *Service) createUser(ctx context.Context, email, password string, role domain.Role) (*models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, dErrors.NewValidation("Validation failed", []string{err.Error()})
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, msgEmailTaken)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
	}

	s.logAudit(ctx, audit.EventUserRegistered, user.ID, "")
	s.metrics.IncrementUsersRegistered()
	return user, nil
}

// Login verifies credentials and issues a signed access token. Unknown email
// and wrong password produce the same error.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
		}
		s.burnComparison(req.Password)
		return "", s.loginFailed(ctx, 0, "unknown_email")
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
	}
	if !ok {
		return "", s.loginFailed(ctx, user.ID, "bad_password")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.Role, 0)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
	}

	s.logAudit(ctx, audit.EventTokenIssued, user.ID, "")
	s.metrics.IncrementLogin(true)
	return token, nil
}

// CurrentUser loads the account behind an authenticated identity.
func (s *Service) CurrentUser(ctx context.Context, id domain.UserID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, msgInternal)
	}
	return user, nil
}

// EnsureAdmin creates the bootstrap ADMIN account when it does not exist yet.
// An existing account with the same email is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return dErrors.New(dErrors.CodeConfiguration, "admin email and password are required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up admin")
	}

	user, err := s.createUser(ctx, email, password, domain.RoleAdmin)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) {
			return nil
		}
		return err
	}
	s.logger.InfoContext(ctx, "bootstrap admin created", "user_id", user.ID)
	return nil
}

func (s *Service) burnComparison(password string) {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher.Hash("jobboard-timing-equaliser"); err == nil {
			s.dummyHash = h
		}
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}

func (s *Service) loginFailed(ctx context.Context, userID domain.UserID, reason string) error {
	s.logAudit(ctx, audit.EventLoginFailed, userID, reason)
	s.metrics.IncrementLogin(false)
	return dErrors.New(dErrors.CodeUnauthorized, msgInvalidCredentials)
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, userID domain.UserID, reason string) {
	requestID := requestcontext.RequestID(ctx)
	s.logger.InfoContext(ctx, string(event),
		"user_id", userID,
		"reason", reason,
		"request_id", requestID,
		"log_type", "audit",
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, audit.Event{
		UserID:    userID,
		Subject:   userID.String(),
		Action:    string(event),
		Reason:    reason,
		RequestID: requestID,
		UserAgent: requestcontext.UserAgent(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event, "error", err)
	}
}
