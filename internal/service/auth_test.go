package service

import (
	"context"
	"testing"
	"time"

	"bookstore/internal/dto"
	"bookstore/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_RegisterLoginAndParse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuthService(f.users, "test-secret", time.Hour, f.log)

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Email: "Reader@Example.com", Name: "Reader", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "reader@example.com", reg.User.Email)
	assert.Equal(t, model.RoleUser, reg.User.Role)
	assert.NotEqual(t, "correct horse", reg.User.PasswordHash)

	_, err = svc.Register(ctx, &dto.RegisterRequest{Email: "reader@example.com", Name: "Again", Password: "whatever123"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "READER@example.com", Password: "correct horse"})
	require.NoError(t, err)

	id, err := svc.ParseToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, id.UserID)
	assert.Equal(t, "reader@example.com", id.Email)
	assert.Equal(t, model.RoleUser, id.Role)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "reader@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_ParseTokenRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	svc := NewAuthService(f.users, "test-secret", time.Hour, f.log).(*authServiceImpl)

	reg, err := svc.Register(ctx, &dto.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	other := NewAuthService(f.users, "other-secret", time.Hour, f.log)
	_, err = other.ParseToken(reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ParseToken("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	svc.now = func() time.Time { return time.Now().UTC().Add(2 * time.Hour) }
	_, err = svc.ParseToken(reg.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthService_RegisterValidates(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.users, "test-secret", time.Hour, f.log)

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{Email: "not-an-email", Name: "X", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.Register(context.Background(), &dto.RegisterRequest{Email: "x@example.com", Name: "X", Password: "short"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
