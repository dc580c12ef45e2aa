package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"swipe-match-backend/internal/repository/memory"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_CreateUserIssuesToken(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memory.New().Users(), "test-secret", time.Hour)

	user, token, err := svc.CreateUser(ctx, CreateUserRequest{
		Name:  "  Laura ",
		Email: "laura@example.com",
		City:  "Medellin",
	})
	require.NoError(t, err)
	assert.Equal(t, "Laura", user.Name)
	assert.NotEmpty(t, user.ID)

	userID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	own, err := svc.GetProfile(ctx, user.ID, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "laura@example.com", own.Email)
}

func TestUserService_Validation(t *testing.T) {
	svc := NewUserService(memory.New().Users(), "test-secret", time.Hour)

	_, _, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "",
		Email: "not-an-email",
		Bio:   strings.Repeat("x", maxBioLength+1),
		City:  strings.Repeat("c", maxShortLength+1),
	})
	require.Error(t, err)

	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "name")
	assert.Contains(t, verrs, "email")
	assert.Contains(t, verrs, "bio")
	assert.Contains(t, verrs, "city")
	assert.NotContains(t, verrs, "gender")
}

func TestUserService_ValidateJWT(t *testing.T) {
	svc := NewUserService(memory.New().Users(), "test-secret", time.Hour)

	_, err := svc.ValidateJWT("garbage")
	assert.Error(t, err)

	other := NewUserService(memory.New().Users(), "another-secret", time.Hour)
	token, err := other.GenerateJWT("u1")
	require.NoError(t, err)
	_, err = svc.ValidateJWT(token)
	assert.Error(t, err, "signed with a different secret")

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u1",
		"exp":     time.Now().Add(-time.Minute).Unix(),
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(signed)
	assert.Error(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err = noUser.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = svc.ValidateJWT(signed)
	assert.Error(t, err)
}

func TestUserService_ProfileVisibility(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedUsers(t, store, "a", "b")
	svc := NewUserService(store.Users(), "test-secret", time.Hour)

	public, err := svc.GetProfile(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, "name-a", public.Name)
	assert.Empty(t, public.Email)

	_, err = svc.GetProfile(ctx, "b", "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetProfile(ctx, "", "a")
	assert.ErrorIs(t, err, ErrIdentityMissing)
}

func TestUserService_UpdateProfileAndPushToken(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedUsers(t, store, "a")
	svc := NewUserService(store.Users(), "test-secret", time.Hour)

	updated, err := svc.UpdateProfile(ctx, "a", UpdateProfileRequest{Name: "Ana", City: "Cali", Bio: "coffee"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.Name)
	assert.Equal(t, "a@example.com", updated.Email, "email is not editable")

	_, err = svc.UpdateProfile(ctx, "a", UpdateProfileRequest{Name: ""})
	var verrs ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	require.NoError(t, svc.UpdatePushToken(ctx, "a", "device-1"))
	u, err := store.Users().GetByID(ctx, "a")
	require.NoError(t, err)
	require.NotNil(t, u.PushToken)
	assert.Equal(t, "device-1", *u.PushToken)
	assert.Equal(t, "Cali", u.City)

	require.NoError(t, svc.UpdatePushToken(ctx, "a", ""))
	u, err = store.Users().GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, u.PushToken)

	assert.ErrorIs(t, svc.UpdatePushToken(ctx, "ghost", "t"), ErrNotFound)
}
