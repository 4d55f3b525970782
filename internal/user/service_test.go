package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Alexander199824/gym-membership-backend-sub000/internal/auth"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, name, email, passwordHash, role, phone string) (*User, error) {
	args := m.Called(ctx, name, email, passwordHash, role, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id int) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

const jwtSecret = "test-secret"

func TestRegister(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, jwtSecret)

	repo.On("EmailExists", mock.Anything, "ana@example.com").Return(false, nil)
	repo.On("Create", mock.Anything, "Ana", "ana@example.com", mock.Anything, "member", "555-0100").
		Return(&User{ID: 1, Name: "Ana", Email: "ana@example.com", Role: "member"}, nil)

	u, access, refresh, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "s3cret!",
		Phone:    "555-0100",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	// The stored hash must verify against the plain password.
	storedHash := repo.Calls[1].Arguments.String(3)
	assert.True(t, auth.CheckPassword(storedHash, "s3cret!"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, jwtSecret)

	repo.On("EmailExists", mock.Anything, "ana@example.com").Return(true, nil)

	_, _, _, err := svc.Register(context.Background(), RegisterRequest{
		Name:     "Ana",
		Email:    "ana@example.com",
		Password: "s3cret!",
	})

	assert.ErrorIs(t, err, ErrEmailExists)
	repo.AssertNotCalled(t, "Create")
}

func TestLogin(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, jwtSecret)

	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(&User{ID: 1, Email: "ana@example.com", PasswordHash: hash, Role: "member"}, nil)

	u, access, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "s3cret!",
	})

	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)

	claims, err := auth.ValidateToken(access, jwtSecret)
	require.NoError(t, err)
	assert.Equal(t, 1, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, jwtSecret)

	hash, err := auth.HashPassword("s3cret!")
	require.NoError(t, err)

	repo.On("FindByEmail", mock.Anything, "ana@example.com").
		Return(&User{ID: 1, Email: "ana@example.com", PasswordHash: hash}, nil)

	_, _, _, err = svc.Login(context.Background(), LoginRequest{
		Email:    "ana@example.com",
		Password: "wrong",
	})

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, jwtSecret)

	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, ErrUserNotFound)

	_, _, _, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "anything",
	})

	// The same error for unknown email and wrong password.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
