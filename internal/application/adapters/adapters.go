// Package adapters connects the application module to the job role and user
// stores without either side importing the other's service.
package adapters

import (
	"context"
	"fmt"

	"jobboard/internal/application/models"
	authmodels "jobboard/internal/auth/models"
	jobrolemodels "jobboard/internal/jobrole/models"
	"jobboard/pkg/domain"
)

type jobRoleFinder interface {
	FindByID(ctx context.Context, id domain.JobRoleID) (*jobrolemodels.JobRole, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id domain.UserID) (*authmodels.User, error)
}

// JobRoleAdapter exposes a job role store as an eligibility.JobRoleLookup.
type JobRoleAdapter struct {
	store jobRoleFinder
}

func NewJobRoleAdapter(store jobRoleFinder) *JobRoleAdapter {
	return &JobRoleAdapter{store: store}
}

// GetByID wraps store errors, so sentinel.ErrNotFound still matches errors.Is.
func (a *JobRoleAdapter) GetByID(ctx context.Context, id domain.JobRoleID) (*models.JobRoleSnapshot, error) {
	role, err := a.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find job role %d: %w", id, err)
	}
	return &models.JobRoleSnapshot{
		ID:            role.ID,
		RoleName:      role.RoleName,
		Location:      role.Location,
		Status:        role.Status.Name,
		OpenPositions: role.NumberOfOpenPositions,
		ClosingDate:   role.ClosingDate,
	}, nil
}

// UserAdapter resolves applicant summaries from the user store.
type UserAdapter struct {
	store userFinder
}

func NewUserAdapter(store userFinder) *UserAdapter {
	return &UserAdapter{store: store}
}

func (a *UserAdapter) Applicant(ctx context.Context, id domain.UserID) (models.Applicant, error) {
	user, err := a.store.FindByID(ctx, id)
	if err != nil {
		return models.Applicant{}, fmt.Errorf("find user %d: %w", id, err)
	}
	return models.Applicant{UserID: user.ID, Email: user.Email}, nil
}
