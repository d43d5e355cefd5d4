// Package auth authenticates bearer tokens and gates routes by role.
//
// Authenticate and Authorize are plain functions so the rules can be tested
// without HTTP; RequireAuth and RequireRoles adapt them to chi middleware.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
	"jobboard/pkg/platform/httputil"
	request "jobboard/pkg/platform/middleware/request"
	"jobboard/pkg/requestcontext"
)

// TokenVerifier validates a raw bearer token and returns the identity it carries.
type TokenVerifier interface {
	VerifyToken(token string) (requestcontext.Identity, error)
}

// Caller-visible authentication failures. Each names the failing step of the
// header check only; verifier failures share one message.
const (
	MsgHeaderMissing    = "Authorization header is missing"
	MsgHeaderFormat     = "Invalid authorization header format. Use: Bearer <token>"
	MsgTokenEmpty       = "Token is empty"
	MsgTokenSegments    = "Invalid token format. JWT must have 3 parts (header.payload.signature)"
	MsgTokenEmptyPart   = "Invalid token format. JWT parts cannot be empty"
	MsgInvalidToken     = "Invalid or expired token"
	MsgRoleMissing      = "User role is missing"
	MsgInsufficientRole = "Insufficient permissions"
)

// Authenticate checks a raw Authorization header value, short-circuiting on the
// first failing step: presence, "Bearer <token>" shape, non-empty token,
// three non-empty segments, then signature and expiry via the verifier.
func Authenticate(header string, verifier TokenVerifier) (requestcontext.Identity, error) {
	if header == "" {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, MsgHeaderMissing)
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, MsgHeaderFormat)
	}
	token := parts[1]
	if token == "" {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, MsgTokenEmpty)
	}
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, MsgTokenSegments)
	}
	for _, seg := range segments {
		if seg == "" {
			return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, MsgTokenEmptyPart)
		}
	}

	identity, err := verifier.VerifyToken(token)
	if err != nil {
		return requestcontext.Identity{}, dErrors.Wrap(err, dErrors.CodeUnauthorized, MsgInvalidToken)
	}
	return identity, nil
}

// Authorize passes when the identity's role is one of allowed. A missing
// identity or role is reported separately from an insufficient one; both are
// forbidden. An empty allowed set admits nobody.
func Authorize(identity requestcontext.Identity, ok bool, allowed ...domain.Role) error {
	if !ok || identity.Role == "" {
		return dErrors.New(dErrors.CodeForbidden, MsgRoleMissing)
	}
	if !identity.HasRole(allowed...) {
		return dErrors.New(dErrors.CodeForbidden, MsgInsufficientRole)
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// verified identity to the request context.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, err := Authenticate(r.Header.Get("Authorization"), verifier)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access",
					"error", err,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}

			ctx = requestcontext.WithIdentity(ctx, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRoles must run after RequireAuth. It never re-checks the token.
func RequireRoles(logger *slog.Logger, allowed ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, ok := requestcontext.IdentityFrom(ctx)
			if err := Authorize(identity, ok, allowed...); err != nil {
				logger.WarnContext(ctx, "forbidden access",
					"error", err,
					"user_id", identity.UserID,
					"role", identity.Role,
					"path", r.URL.Path,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
