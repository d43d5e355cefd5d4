package domain

import (
	"strconv"
	"strings"

	dErrors "jobboard/pkg/domain-errors"
)

// Typed identifiers keep user, job role and application keys from being
// swapped by accident. All are positive integers assigned by the store.
type (
	UserID        int64
	JobRoleID     int64
	ApplicationID int64
)

// maxIDLength bounds input before strconv sees it.
const maxIDLength = 19

func (id UserID) IsValid() bool        { return id > 0 }
func (id JobRoleID) IsValid() bool     { return id > 0 }
func (id ApplicationID) IsValid() bool { return id > 0 }

func (id UserID) String() string        { return strconv.FormatInt(int64(id), 10) }
func (id JobRoleID) String() string     { return strconv.FormatInt(int64(id), 10) }
func (id ApplicationID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseJobRoleID constructs a JobRoleID from external input. The missing and
// malformed cases carry different messages because callers show them as-is.
func ParseJobRoleID(s string) (JobRoleID, error) {
	v, err := parsePositive(s, "Job role ID is required", "Invalid job role ID")
	return JobRoleID(v), err
}

// ParseApplicationID constructs an ApplicationID from external input.
func ParseApplicationID(s string) (ApplicationID, error) {
	v, err := parsePositive(s, "Application ID is required", "Invalid application ID")
	return ApplicationID(v), err
}

func parsePositive(s, missingMsg, invalidMsg string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, missingMsg)
	}
	if len(s) > maxIDLength {
		return 0, dErrors.New(dErrors.CodeInvalidInput, invalidMsg)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, invalidMsg)
	}
	return v, nil
}
