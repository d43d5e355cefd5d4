package jwttoken

import (
	"jobboard/pkg/domain"
	"jobboard/pkg/requestcontext"
)

// ToIdentity converts claims that passed ValidateToken, which has already
// checked the role with domain.ParseRole.
func ToIdentity(claims *Claims) requestcontext.Identity {
	return requestcontext.Identity{
		UserID: domain.UserID(claims.UserID),
		Email:  claims.UserEmail,
		Role:   domain.Role(claims.UserRole),
	}
}

// JWTServiceAdapter satisfies the auth middleware's TokenVerifier.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) VerifyToken(tokenString string) (requestcontext.Identity, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return requestcontext.Identity{}, err
	}
	return ToIdentity(claims), nil
}
