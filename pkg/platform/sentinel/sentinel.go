package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and infrastructure layers return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row or object does not exist
// - ErrAlreadyUsed: a unique key (email, applicant/job role pair) is already taken
// - ErrInvalidState: entity in wrong state for requested operation
// - ErrUnavailable: backing service (Redis, S3, Postgres) temporarily unavailable
// - ErrLockHeld: a keyed lock could not be acquired before the deadline
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrAlreadyUsed  = errors.New("already used")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
	ErrLockHeld     = errors.New("lock held")
)
