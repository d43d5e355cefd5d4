// Package eligibility decides whether an applicant may apply for a job role.
package eligibility

//go:generate mockgen -source=eligibility.go -destination=mocks/mocks.go -package=mocks ApplicationLookup,JobRoleLookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/application/models"
	"jobboard/pkg/domain"
	"jobboard/pkg/platform/sentinel"
)

// Reasons, checked in this order. The first failing check wins.
const (
	ReasonAlreadyApplied = "You have already applied for this job role"
	ReasonRoleNotFound   = "Job role not found"
	ReasonNotOpen        = "This job role is not open for applications"
	ReasonNoPositions    = "No open positions available for this job role"
	ReasonClosed         = "The closing date for this job role has passed"
)

// Metric labels matching each reason.
const (
	CodeAlreadyApplied = "already_applied"
	CodeRoleNotFound   = "role_not_found"
	CodeNotOpen        = "not_open"
	CodeNoPositions    = "no_positions"
	CodeClosed         = "closed"
)

// ApplicationLookup finds an existing application for a pair. It returns
// sentinel.ErrNotFound when there is none.
type ApplicationLookup interface {
	FindExisting(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID) (*models.Application, error)
}

// JobRoleLookup returns sentinel.ErrNotFound for an unknown role.
type JobRoleLookup interface {
	GetByID(ctx context.Context, id domain.JobRoleID) (*models.JobRoleSnapshot, error)
}

// Evaluator reads through its lookups and never writes.
type Evaluator struct {
	applications ApplicationLookup
	jobRoles     JobRoleLookup
}

func New(applications ApplicationLookup, jobRoles JobRoleLookup) *Evaluator {
	return &Evaluator{applications: applications, jobRoles: jobRoles}
}

// Evaluate decides eligibility at now. Lookup failures other than not-found
// are returned as errors, never folded into a reason.
func (e *Evaluator) Evaluate(ctx context.Context, userID domain.UserID, jobRoleID domain.JobRoleID, now time.Time) (models.Eligibility, *models.JobRoleSnapshot, error) {
	existing, err := e.applications.FindExisting(ctx, userID, jobRoleID)
	switch {
	case err == nil && existing != nil:
		return Decide(true, nil, now), nil, nil
	case err != nil && !errors.Is(err, sentinel.ErrNotFound):
		return models.Eligibility{}, nil, fmt.Errorf("find existing application: %w", err)
	}

	role, err := e.jobRoles.GetByID(ctx, jobRoleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Decide(false, nil, now), nil, nil
		}
		return models.Eligibility{}, nil, fmt.Errorf("get job role: %w", err)
	}
	return Decide(false, role, now), role, nil
}

// Decide applies the ordered rules. role is nil when the job role does not exist.
// A closing date equal to now is still open.
func Decide(alreadyApplied bool, role *models.JobRoleSnapshot, now time.Time) models.Eligibility {
	switch {
	case alreadyApplied:
		return deny(CodeAlreadyApplied, ReasonAlreadyApplied)
	case role == nil:
		return deny(CodeRoleNotFound, ReasonRoleNotFound)
	case !strings.EqualFold(strings.TrimSpace(role.Status), "open"):
		return deny(CodeNotOpen, ReasonNotOpen)
	case role.OpenPositions <= 0:
		return deny(CodeNoPositions, ReasonNoPositions)
	case role.ClosingDate.Before(now):
		return deny(CodeClosed, ReasonClosed)
	}
	return models.Eligibility{Eligible: true}
}

func deny(code, reason string) models.Eligibility {
	return models.Eligibility{Code: code, Reason: reason}
}
