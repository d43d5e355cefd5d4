package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

const foreignKeyViolation = "23503"

const selectJobRole = `
	SELECT j.job_role_id, j.role_name, j.job_location,
	       c.capability_id, c.capability_name,
	       b.band_id, b.band_name,
	       s.status_id, s.status_name,
	       j.closing_date, j.description, j.responsibilities,
	       j.sharepoint_url, j.number_of_open_positions
	FROM job_roles j
	JOIN capabilities c ON c.capability_id = j.capability_id
	JOIN bands b ON b.band_id = j.band_id
	JOIN statuses s ON s.status_id = j.status_id
`

// PostgresStore reads job roles joined with their reference data.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.JobRole, error) {
	rows, err := s.db.QueryContext(ctx, selectJobRole+` ORDER BY j.job_role_id`)
	if err != nil {
		return nil, fmt.Errorf("query job roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.JobRole
	for rows.Next() {
		j, err := scanJobRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate job roles: %w", err)
	}
	return roles, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id domain.JobRoleID) (*models.JobRole, error) {
	j, err := scanJobRole(s.db.QueryRowContext(ctx, selectJobRole+` WHERE j.job_role_id = $1`, int64(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	return j, err
}

func (s *PostgresStore) Create(ctx context.Context, f models.JobRoleFields) (*models.JobRole, error) {
	query := `
		INSERT INTO job_roles (
			role_name, job_location, capability_id, band_id, status_id, closing_date,
			description, responsibilities, sharepoint_url, number_of_open_positions
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING job_role_id
	`
	var id int64
	err := s.db.QueryRowContext(ctx, query,
		f.RoleName, f.Location, f.CapabilityID, f.BandID, f.StatusID, f.ClosingDate,
		f.Description, f.Responsibilities, f.SharepointURL, f.NumberOfOpenPositions,
	).Scan(&id)
	if err != nil {
		return nil, translateWriteError("insert job role", err)
	}
	return s.FindByID(ctx, domain.JobRoleID(id))
}

func (s *PostgresStore) Update(ctx context.Context, id domain.JobRoleID, f models.JobRoleFields) (*models.JobRole, error) {
	query := `
		UPDATE job_roles SET
			role_name = $2, job_location = $3, capability_id = $4, band_id = $5,
			status_id = $6, closing_date = $7, description = $8,
			responsibilities = $9, sharepoint_url = $10, number_of_open_positions = $11
		WHERE job_role_id = $1
	`
	res, err := s.db.ExecContext(ctx, query, int64(id),
		f.RoleName, f.Location, f.CapabilityID, f.BandID, f.StatusID, f.ClosingDate,
		f.Description, f.Responsibilities, f.SharepointURL, f.NumberOfOpenPositions,
	)
	if err != nil {
		return nil, translateWriteError("update job role", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, sentinel.ErrNotFound
	}
	return s.FindByID(ctx, id)
}

func (s *PostgresStore) Delete(ctx context.Context, id domain.JobRoleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_roles WHERE job_role_id = $1`, int64(id))
	if err != nil {
		return translateWriteError("delete job role", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete job role: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Capabilities(ctx context.Context) ([]models.Capability, error) {
	return queryReference(ctx, s.db, `SELECT capability_id, capability_name FROM capabilities ORDER BY capability_id`,
		func(id int64, name string) models.Capability { return models.Capability{ID: id, Name: name} })
}

func (s *PostgresStore) Bands(ctx context.Context) ([]models.Band, error) {
	return queryReference(ctx, s.db, `SELECT band_id, band_name FROM bands ORDER BY band_id`,
		func(id int64, name string) models.Band { return models.Band{ID: id, Name: name} })
}

func (s *PostgresStore) Statuses(ctx context.Context) ([]models.Status, error) {
	return queryReference(ctx, s.db, `SELECT status_id, status_name FROM statuses ORDER BY status_id`,
		func(id int64, name string) models.Status { return models.Status{ID: id, Name: name} })
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJobRole(row rowScanner) (*models.JobRole, error) {
	var (
		j  models.JobRole
		id int64
	)
	err := row.Scan(&id, &j.RoleName, &j.Location,
		&j.Capability.ID, &j.Capability.Name,
		&j.Band.ID, &j.Band.Name,
		&j.Status.ID, &j.Status.Name,
		&j.ClosingDate, &j.Description, &j.Responsibilities,
		&j.SharepointURL, &j.NumberOfOpenPositions)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan job role: %w", err)
	}
	j.ID = domain.JobRoleID(id)
	return &j, nil
}

func queryReference[T any](ctx context.Context, db *sql.DB, query string, build func(int64, string) T) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query reference data: %w", err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scan reference data: %w", err)
		}
		out = append(out, build(id, name))
	}
	return out, rows.Err()
}

// translateWriteError maps a foreign-key violation on a reference id to
// sentinel.ErrInvalidState.
func translateWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return sentinel.ErrInvalidState
	}
	return fmt.Errorf("%s: %w", op, err)
}
