package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"

	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

// StatusOpen is the status name under which a role accepts applications.
// Comparison is case-insensitive.
const StatusOpen = "Open"

// Capability, Band and Status are reference data a JobRole points at.
type Capability struct {
	ID   int64  `json:"capabilityId"`
	Name string `json:"capabilityName"`
}

type Band struct {
	ID   int64  `json:"bandId"`
	Name string `json:"bandName"`
}

type Status struct {
	ID   int64  `json:"statusId"`
	Name string `json:"statusName"`
}

// JobRole is a listing with its reference data resolved.
type JobRole struct {
	ID                    domain.JobRoleID
	RoleName              string
	Location              string
	Capability            Capability
	Band                  Band
	Status                Status
	ClosingDate           time.Time
	Description           string
	Responsibilities      string
	SharepointURL         string
	NumberOfOpenPositions int
}

// IsOpen reports whether the status name is "open", ignoring case.
func (j *JobRole) IsOpen() bool {
	return strings.EqualFold(strings.TrimSpace(j.Status.Name), StatusOpen)
}

// JobRoleResponse is the JSON view of a JobRole.
type JobRoleResponse struct {
	JobRoleID             domain.JobRoleID `json:"jobRoleId"`
	RoleName              string           `json:"roleName"`
	Location              string           `json:"location"`
	CapabilityID          int64            `json:"capabilityId"`
	Capability            string           `json:"capability"`
	BandID                int64            `json:"bandId"`
	Band                  string           `json:"band"`
	StatusID              int64            `json:"statusId"`
	Status                string           `json:"status"`
	ClosingDate           time.Time        `json:"closingDate"`
	Description           string           `json:"description"`
	Responsibilities      string           `json:"responsibilities"`
	SharepointURL         string           `json:"sharepointUrl"`
	NumberOfOpenPositions int              `json:"numberOfOpenPositions"`
}

func (j *JobRole) ToResponse() JobRoleResponse {
	return JobRoleResponse{
		JobRoleID:             j.ID,
		RoleName:              j.RoleName,
		Location:              j.Location,
		CapabilityID:          j.Capability.ID,
		Capability:            j.Capability.Name,
		BandID:                j.Band.ID,
		Band:                  j.Band.Name,
		StatusID:              j.Status.ID,
		Status:                j.Status.Name,
		ClosingDate:           j.ClosingDate,
		Description:           j.Description,
		Responsibilities:      j.Responsibilities,
		SharepointURL:         j.SharepointURL,
		NumberOfOpenPositions: j.NumberOfOpenPositions,
	}
}

// JobRoleFields is the validated, store-facing shape of a create or update.
type JobRoleFields struct {
	RoleName              string
	Location              string
	CapabilityID          int64
	BandID                int64
	StatusID              int64
	ClosingDate           time.Time
	Description           string
	Responsibilities      string
	SharepointURL         string
	NumberOfOpenPositions int
}

// CreateJobRoleRequest is the body of POST /job-roles. Every field except the
// free-text ones is required.
type CreateJobRoleRequest struct {
	RoleName              string `json:"roleName"`
	Location              string `json:"location"`
	CapabilityID          int64  `json:"capabilityId"`
	BandID                int64  `json:"bandId"`
	StatusID              int64  `json:"statusId"`
	ClosingDate           string `json:"closingDate"`
	Description           string `json:"description"`
	Responsibilities      string `json:"responsibilities"`
	SharepointURL         string `json:"sharepointUrl"`
	NumberOfOpenPositions *int   `json:"numberOfOpenPositions"`

	fields JobRoleFields
}

// Validate checks every field and records the typed result for Fields.
func (r *CreateJobRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	var v violations
	f := JobRoleFields{
		RoleName:         v.requiredText("roleName", r.RoleName),
		Location:         v.requiredText("location", r.Location),
		CapabilityID:     v.positiveID("capabilityId", r.CapabilityID),
		BandID:           v.positiveID("bandId", r.BandID),
		StatusID:         v.positiveID("statusId", r.StatusID),
		ClosingDate:      v.date("closingDate", r.ClosingDate),
		Description:      strings.TrimSpace(r.Description),
		Responsibilities: strings.TrimSpace(r.Responsibilities),
		SharepointURL:    v.optionalURL("sharepointUrl", r.SharepointURL),
	}
	if r.NumberOfOpenPositions == nil {
		v.add("numberOfOpenPositions is required")
	} else {
		f.NumberOfOpenPositions = v.positions(*r.NumberOfOpenPositions)
	}
	if err := v.err(); err != nil {
		return err
	}
	r.fields = f
	return nil
}

// Fields returns the validated values. Only meaningful after Validate succeeds.
func (r *CreateJobRoleRequest) Fields() JobRoleFields {
	return r.fields
}

// UpdateJobRoleRequest is the body of PUT /job-roles/{id}. Absent fields keep
// their current value.
type UpdateJobRoleRequest struct {
	RoleName              *string `json:"roleName"`
	Location              *string `json:"location"`
	CapabilityID          *int64  `json:"capabilityId"`
	BandID                *int64  `json:"bandId"`
	StatusID              *int64  `json:"statusId"`
	ClosingDate           *string `json:"closingDate"`
	Description           *string `json:"description"`
	Responsibilities      *string `json:"responsibilities"`
	SharepointURL         *string `json:"sharepointUrl"`
	NumberOfOpenPositions *int    `json:"numberOfOpenPositions"`
}

func (r *UpdateJobRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	var v violations
	if r.RoleName != nil {
		v.requiredText("roleName", *r.RoleName)
	}
	if r.Location != nil {
		v.requiredText("location", *r.Location)
	}
	if r.CapabilityID != nil {
		v.positiveID("capabilityId", *r.CapabilityID)
	}
	if r.BandID != nil {
		v.positiveID("bandId", *r.BandID)
	}
	if r.StatusID != nil {
		v.positiveID("statusId", *r.StatusID)
	}
	if r.ClosingDate != nil {
		v.date("closingDate", *r.ClosingDate)
	}
	if r.SharepointURL != nil {
		v.optionalURL("sharepointUrl", *r.SharepointURL)
	}
	if r.NumberOfOpenPositions != nil {
		v.positions(*r.NumberOfOpenPositions)
	}
	if r.isEmpty() {
		v.add("at least one field must be provided")
	}
	return v.err()
}

func (r *UpdateJobRoleRequest) isEmpty() bool {
	return r.RoleName == nil && r.Location == nil && r.CapabilityID == nil &&
		r.BandID == nil && r.StatusID == nil && r.ClosingDate == nil &&
		r.Description == nil && r.Responsibilities == nil &&
		r.SharepointURL == nil && r.NumberOfOpenPositions == nil
}

// ApplyTo overlays the provided fields onto current. Call after Validate.
func (r *UpdateJobRoleRequest) ApplyTo(current *JobRole) JobRoleFields {
	f := JobRoleFields{
		RoleName:              current.RoleName,
		Location:              current.Location,
		CapabilityID:          current.Capability.ID,
		BandID:                current.Band.ID,
		StatusID:              current.Status.ID,
		ClosingDate:           current.ClosingDate,
		Description:           current.Description,
		Responsibilities:      current.Responsibilities,
		SharepointURL:         current.SharepointURL,
		NumberOfOpenPositions: current.NumberOfOpenPositions,
	}
	if r.RoleName != nil {
		f.RoleName = strings.TrimSpace(*r.RoleName)
	}
	if r.Location != nil {
		f.Location = strings.TrimSpace(*r.Location)
	}
	if r.CapabilityID != nil {
		f.CapabilityID = *r.CapabilityID
	}
	if r.BandID != nil {
		f.BandID = *r.BandID
	}
	if r.StatusID != nil {
		f.StatusID = *r.StatusID
	}
	if r.ClosingDate != nil {
		if t, err := parseDate(*r.ClosingDate); err == nil {
			f.ClosingDate = t
		}
	}
	if r.Description != nil {
		f.Description = strings.TrimSpace(*r.Description)
	}
	if r.Responsibilities != nil {
		f.Responsibilities = strings.TrimSpace(*r.Responsibilities)
	}
	if r.SharepointURL != nil {
		f.SharepointURL = strings.TrimSpace(*r.SharepointURL)
	}
	if r.NumberOfOpenPositions != nil {
		f.NumberOfOpenPositions = *r.NumberOfOpenPositions
	}
	return f
}

type violations []string

func (v *violations) add(msg string) {
	*v = append(*v, msg)
}

func (v *violations) err() error {
	if len(*v) == 0 {
		return nil
	}
	return dErrors.NewValidation("Validation failed", *v)
}

func (v *violations) requiredText(field, value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		v.add(field + " is required")
	case len(value) > 255:
		v.add(field + " must be at most 255 characters long")
	}
	return value
}

func (v *violations) positiveID(field string, id int64) int64 {
	if id <= 0 {
		v.add(field + " must be a positive integer")
	}
	return id
}

func (v *violations) date(field, raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		v.add(field + " is required")
		return time.Time{}
	}
	t, err := parseDate(raw)
	if err != nil {
		v.add(field + " must be a valid ISO 8601 date")
	}
	return t
}

func (v *violations) optionalURL(field, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw != "" && !govalidator.IsURL(raw) {
		v.add(field + " must be a valid URL")
	}
	return raw
}

func (v *violations) positions(n int) int {
	if n < 0 {
		v.add("numberOfOpenPositions must be a non-negative integer")
	}
	return n
}

// parseDate accepts an RFC 3339 timestamp or a plain YYYY-MM-DD date (UTC midnight).
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(time.DateOnly, raw)
}
