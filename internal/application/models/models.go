package models

import (
	"time"

	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

// Status is an application's position in the review pipeline.
type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusReviewing  Status = "REVIEWING"
	StatusAccepted   Status = "ACCEPTED"
	StatusRejected   Status = "REJECTED"
)

// MsgInvalidStatus is returned when an admin status update names a status
// other than the four reviewable ones.
const MsgInvalidStatus = "Valid status is required (IN_PROGRESS, REVIEWING, ACCEPTED, REJECTED)"

func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusInProgress, StatusReviewing, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// ParseReviewStatus accepts the statuses an admin may set. SUBMITTED is only
// ever assigned at creation.
func ParseReviewStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusInProgress, StatusReviewing, StatusAccepted, StatusRejected:
		return s, nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, MsgInvalidStatus)
}

// Application is one applicant's submission against one job role. At most one
// exists per (UserID, JobRoleID).
type Application struct {
	ID        domain.ApplicationID
	UserID    domain.UserID
	JobRoleID domain.JobRoleID
	CVURL     string
	Status    Status
	AppliedAt time.Time
	UpdatedAt time.Time
}

// JobRoleSnapshot is the application-relevant state of a job role at
// evaluation time.
type JobRoleSnapshot struct {
	ID            domain.JobRoleID
	RoleName      string
	Location      string
	Status        string
	OpenPositions int
	ClosingDate   time.Time
}

// Applicant is the account summary attached to submission results.
type Applicant struct {
	UserID domain.UserID
	Email  string
}

// Submission is a persisted application with its related summaries.
type Submission struct {
	Application *Application
	Applicant   Applicant
	JobRole     JobRoleSnapshot
}

// CVFile is an uploaded CV as received from the client.
type CVFile struct {
	FileName    string
	ContentType string
	Body        []byte
}

// SubmitRequest carries the raw inputs of POST /apply. JobRoleID is the
// unparsed form value so missing and malformed can be told apart.
type SubmitRequest struct {
	ApplicantID domain.UserID
	JobRoleID   string
	CV          *CVFile
}

// Eligibility is the outcome of an eligibility evaluation. Code is a stable
// label for metrics; Reason is shown to the applicant.
type Eligibility struct {
	Eligible bool
	Code     string
	Reason   string
}

type EligibilityResponse struct {
	CanApply bool   `json:"canApply"`
	Reason   string `json:"reason,omitempty"`
}

func (e Eligibility) ToResponse() EligibilityResponse {
	return EligibilityResponse{CanApply: e.Eligible, Reason: e.Reason}
}

type ApplicationResponse struct {
	ApplicationID     domain.ApplicationID `json:"applicationId"`
	UserID            domain.UserID        `json:"userId"`
	JobRoleID         domain.JobRoleID     `json:"jobRoleId"`
	CVURL             string               `json:"cvUrl"`
	ApplicationStatus Status               `json:"applicationStatus"`
	AppliedAt         time.Time            `json:"appliedAt"`
	UpdatedAt         time.Time            `json:"updatedAt"`
}

func (a *Application) ToResponse() ApplicationResponse {
	return ApplicationResponse{
		ApplicationID:     a.ID,
		UserID:            a.UserID,
		JobRoleID:         a.JobRoleID,
		CVURL:             a.CVURL,
		ApplicationStatus: a.Status,
		AppliedAt:         a.AppliedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

type ApplicantSummary struct {
	UserID    domain.UserID `json:"userId"`
	UserEmail string        `json:"userEmail"`
}

type JobRoleSummary struct {
	JobRoleID   domain.JobRoleID `json:"jobRoleId"`
	RoleName    string           `json:"roleName"`
	Location    string           `json:"location"`
	ClosingDate time.Time        `json:"closingDate"`
}

type SubmissionDetail struct {
	ApplicationResponse
	User    ApplicantSummary `json:"user"`
	JobRole JobRoleSummary   `json:"jobRole"`
}

type SubmitResponse struct {
	Message     string           `json:"message"`
	Application SubmissionDetail `json:"application"`
}

func (s *Submission) ToResponse() SubmitResponse {
	return SubmitResponse{
		Message: "Application submitted successfully",
		Application: SubmissionDetail{
			ApplicationResponse: s.Application.ToResponse(),
			User:                ApplicantSummary{UserID: s.Applicant.UserID, UserEmail: s.Applicant.Email},
			JobRole: JobRoleSummary{
				JobRoleID:   s.JobRole.ID,
				RoleName:    s.JobRole.RoleName,
				Location:    s.JobRole.Location,
				ClosingDate: s.JobRole.ClosingDate,
			},
		},
	}
}

// UpdateStatusRequest is the body of PATCH /admin/applications/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`

	parsed Status
}

func (r *UpdateStatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, MsgInvalidStatus)
	}
	s, err := ParseReviewStatus(r.Status)
	if err != nil {
		return err
	}
	r.parsed = s
	return nil
}

// Parsed returns the validated status.
func (r *UpdateStatusRequest) Parsed() Status {
	return r.parsed
}
