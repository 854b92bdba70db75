package auth

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ceramicflow/internal/database"
	"ceramicflow/internal/pkg/apperr"
	"ceramicflow/internal/pkg/jwt"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := database.Connect(fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &User{}))
	return db
}

func newTestService(t *testing.T) (*Service, *jwt.Service) {
	t.Helper()
	tokens := jwt.New("test-secret", time.Hour)
	return NewService(NewUserRepository(newTestDB(t)), tokens), tokens
}

func TestRegister_IssuesResolvableToken(t *testing.T) {
	svc, tokens := newTestService(t)
	ctx := context.Background()

	u, token, err := svc.Register(ctx, RegisterRequest{Username: " Alice ", Password: "secret1", DisplayName: "Alice P."})
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	id, err := NewTokenGate(tokens).Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id.ID)
	assert.Equal(t, "Alice P.", id.Name)
}

func TestRegister_DuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Username: "bob", Password: "secret1"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, RegisterRequest{Username: "BOB", Password: "secret2"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.Register(context.Background(), RegisterRequest{Username: "carol", Password: "123"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Username: "dana", Password: "clay-and-fire"})
	require.NoError(t, err)

	t.Run("ok", func(t *testing.T) {
		u, token, err := svc.Login(ctx, LoginRequest{Username: "dana", Password: "clay-and-fire"})
		require.NoError(t, err)
		assert.Equal(t, "dana", u.Username)
		assert.NotEmpty(t, token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, LoginRequest{Username: "dana", Password: "nope"})
		assert.ErrorIs(t, err, apperr.ErrAuth)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, _, err := svc.Login(ctx, LoginRequest{Username: "nobody", Password: "clay-and-fire"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetUser_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPhoneNumber(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &User{Username: "eve", Phone: "+15550001111", PasswordHash: "x"}
	require.NoError(t, repo.Create(ctx, u))

	phone, err := repo.PhoneNumber(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "+15550001111", phone)
}
