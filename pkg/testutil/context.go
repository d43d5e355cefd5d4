package testutil

import (
	"net/http"

	"jobboard/pkg/domain"
	"jobboard/pkg/requestcontext"
)

// WithIdentity attaches an authenticated identity to the request, as the
// auth middleware would.
func WithIdentity(req *http.Request, userID domain.UserID, email string, role domain.Role) *http.Request {
	ctx := requestcontext.WithIdentity(req.Context(), requestcontext.Identity{
		UserID: userID,
		Email:  email,
		Role:   role,
	})
	return req.WithContext(ctx)
}
