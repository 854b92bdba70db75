package auth

import "context"

// UserRepository holds only the methods the auth service uses.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

// TokenIssuer signs credentials for authenticated users.
type TokenIssuer interface {
	GenerateToken(userID int64, name string) (string, error)
}

// Gate resolves an inbound credential to a stable identity or fails with an
// apperr.KindAuth error.
type Gate interface {
	Resolve(credential string) (Identity, error)
}
