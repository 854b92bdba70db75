package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	"ceramicflow/internal/pkg/apperr"
)

type Service struct {
	users  UserRepository
	tokens TokenIssuer
}

func NewService(users UserRepository, tokens TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, string, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, "", apperr.Validation("username is required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, "", apperr.Validation("password must be at least %d characters", minPasswordLen)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &User{
		Username:     username,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Identity().Name)
	if err != nil {
		return nil, "", err
	}

	log.Printf("auth: registered user_id=%d username=%s", u.ID, u.Username)
	return u, token, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*User, string, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if !passwordMatches(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(u.ID, u.Identity().Name)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (*User, error) {
	return s.users.GetByID(ctx, id)
}
