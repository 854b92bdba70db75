package auth

import "ceramicflow/internal/pkg/apperr"

var (
	ErrInvalidCredentials = &apperr.Error{Kind: apperr.KindAuth, Detail: "invalid credentials"}
	ErrUsernameTaken      = &apperr.Error{Kind: apperr.KindConflict, Detail: "username already taken"}
	ErrInvalidToken       = &apperr.Error{Kind: apperr.KindAuth, Detail: "invalid token"}
	ErrUserNotFound       = &apperr.Error{Kind: apperr.KindNotFound, Detail: "user not found"}
)
