package jwttoken

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"jobboard/pkg/domain"
	dErrors "jobboard/pkg/domain-errors"
)

// DefaultTTL applies when a token is issued without an explicit lifetime.
const DefaultTTL = time.Hour

var errMalformed = errors.New("token must have 3 non-empty dot-separated segments")

// Claims is the payload of an access token. The JSON names are part of the
// token contract shared with the frontend.
type Claims struct {
	UserID    int64  `json:"userId"`
	UserEmail string `json:"userEmail"`
	UserRole  string `json:"userRole"`
	jwt.RegisteredClaims
}

// JWTService handles JWT creation and validation
type JWTService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock overrides the time source for issuing and validating tokens.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) { s.now = now }
}

// NewJWTService fails with a configuration error when no signing key is set,
// so a misconfigured process never starts serving.
func NewJWTService(signingKey string, issuer string, ttl time.Duration, opts ...Option) (*JWTService, error) {
	if signingKey == "" {
		return nil, dErrors.New(dErrors.CodeConfiguration, "JWT signing secret is not configured")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &JWTService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GenerateAccessToken signs a token for the subject. A zero expiresIn uses the
// service's configured lifetime; negative values produce an already-expired token.
func (s *JWTService) GenerateAccessToken(
	userID domain.UserID,
	email string,
	role domain.Role,
	expiresIn time.Duration) (string, error) {
	if !userID.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user id must be a positive integer")
	}
	if strings.TrimSpace(email) == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user email is required")
	}
	if !role.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "user role is invalid")
	}
	if expiresIn == 0 {
		expiresIn = s.ttl
	}

	now := s.now()
	newToken := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:    int64(userID),
		UserEmail: email,
		UserRole:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})

	signedToken, err := newToken.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign token")
	}
	return signedToken, nil
}

// ValidateToken returns the claims of a well-formed, correctly signed,
// unexpired token. Every failure is reported as the same unauthorized error;
// the wrapped cause is for logs only.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if err := checkStructure(tokenString); err != nil {
		return nil, invalid(err)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.signingKey, nil
	}, opts...)
	if err != nil {
		return nil, invalid(err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, invalid(errors.New("unexpected claims type"))
	}
	if !domain.UserID(claims.UserID).IsValid() || claims.UserEmail == "" {
		return nil, invalid(errors.New("token subject claims are incomplete"))
	}
	if _, err := domain.ParseRole(claims.UserRole); err != nil {
		return nil, invalid(err)
	}

	return claims, nil
}

func checkStructure(token string) error {
	if token == "" {
		return errMalformed
	}
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return errMalformed
	}
	for _, p := range parts {
		if p == "" {
			return errMalformed
		}
	}
	return nil
}

func invalid(cause error) error {
	return dErrors.Wrap(cause, dErrors.CodeUnauthorized, "invalid token")
}
