package auth

import (
	"ceramicflow/internal/pkg/jwt"
)

// TokenGate resolves bearer tokens issued by the jwt service.
type TokenGate struct {
	jwt *jwt.Service
}

func NewTokenGate(svc *jwt.Service) *TokenGate {
	return &TokenGate{jwt: svc}
}

func (g *TokenGate) Resolve(credential string) (Identity, error) {
	if credential == "" {
		return Identity{}, ErrInvalidToken
	}
	claims, err := g.jwt.ValidateToken(credential)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}
	return Identity{ID: claims.UserID, Name: claims.Name}, nil
}
