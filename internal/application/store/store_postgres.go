package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"jobboard/internal/application/models"
	"jobboard/internal/platform/postgres"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

const pairConstraint = "applications_user_job_role_key"

const selectApplication = `
	SELECT application_id, user_id, job_role_id, cv_url, application_status, applied_at, updated_at
	FROM applications
`

// PostgresStore persists applications. The (user_id, job_role_id) unique
// constraint backs the eligibility check.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID, cvURL string) (*models.Application, error) {
	query := `
		INSERT INTO applications (user_id, job_role_id, cv_url, application_status)
		VALUES ($1, $2, $3, $4)
		RETURNING application_id, user_id, job_role_id, cv_url, application_status, applied_at, updated_at
	`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query,
		int64(userID), int64(jobRoleID), cvURL, string(models.StatusSubmitted)))
	if err != nil {
		if postgres.IsUniqueViolation(err, pairConstraint) {
			return nil, sentinel.ErrAlreadyUsed
		}
		return nil, fmt.Errorf("insert application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) FindExisting(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE user_id = $1 AND job_role_id = $2`, int64(userID), int64(jobRoleID))
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.ApplicationID) (*models.Application, error) {
	return s.findOne(ctx, `WHERE application_id = $1`, int64(id))
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID domain.UserID) ([]*models.Application, error) {
	return s.list(ctx, `WHERE user_id = $1 ORDER BY applied_at DESC, application_id DESC`, int64(userID))
}

func (s *PostgresStore) ListByJobRole(ctx context.Context, jobRoleID domain.JobRoleID) ([]*models.Application, error) {
	return s.list(ctx, `WHERE job_role_id = $1 ORDER BY applied_at DESC, application_id DESC`, int64(jobRoleID))
}

func (s *PostgresStore) CountByJobRole(ctx context.Context, jobRoleID domain.JobRoleID) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM applications WHERE job_role_id = $1`, int64(jobRoleID)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id domain.ApplicationID, status models.Status) (*models.Application, error) {
	query := `
		UPDATE applications SET application_status = $2, updated_at = now()
		WHERE application_id = $1
		RETURNING application_id, user_id, job_role_id, cv_url, application_status, applied_at, updated_at
	`
	app, err := scanApplication(s.db.QueryRowContext(ctx, query, int64(id), string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update application status: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) findOne(ctx context.Context, where string, args ...any) (*models.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, selectApplication+where, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) list(ctx context.Context, where string, args ...any) ([]*models.Application, error) {
	rows, err := s.db.QueryContext(ctx, selectApplication+where, args...)
	if err != nil {
		return nil, fmt.Errorf("query applications: %w", err)
	}
	defer rows.Close()

	out := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		out = append(out, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate applications: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app                   models.Application
		id, userID, jobRoleID int64
		status                string
	)
	if err := row.Scan(&id, &userID, &jobRoleID, &app.CVURL, &status, &app.AppliedAt, &app.UpdatedAt); err != nil {
		return nil, err
	}
	app.ID = domain.ApplicationID(id)
	app.UserID = domain.UserID(userID)
	app.JobRoleID = domain.JobRoleID(jobRoleID)
	app.Status = models.Status(status)
	return &app, nil
}
