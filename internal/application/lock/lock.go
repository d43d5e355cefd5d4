// Package lock serialises work per key, in process or across instances.
package lock

import (
	"context"
	"fmt"

	"jobboard/pkg/domain"
)

// Release gives a lock back. It is safe to call once.
type Release func(ctx context.Context) error

// Locker acquires an exclusive lock on key, waiting until it is free, ctx is
// done, or the implementation's wait limit passes (sentinel.ErrLockHeld).
type Locker interface {
	Lock(ctx context.Context, key string) (Release, error)
}

// SubmissionKey names the lock guarding one applicant's submission for one role.
func SubmissionKey(userID domain.UserID, jobRoleID domain.JobRoleID) string {
	return fmt.Sprintf("apply:%d:%d", int64(userID), int64(jobRoleID))
}
