package jwttoken

import (
	"privid/internal/platform/middleware"
	id "privid/pkg/domain"
)

// JWTServiceAdapter satisfies middleware.TokenValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*middleware.Claims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	p, err := id.ParsePrincipal(claims.Subject)
	if err != nil {
		return nil, err
	}
	return &middleware.Claims{Principal: p, JTI: claims.ID}, nil
}
