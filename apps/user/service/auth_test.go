package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"order-feedback/apps/user/model"
	"order-feedback/apps/user/service"
	"order-feedback/pkg/apperr"
	"order-feedback/pkg/hash"
	"order-feedback/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MockUserRepo keeps users in memory; the Func fields override behaviour.
type MockUserRepo struct {
	users  []*model.User
	nextID uint

	CreateFunc func(ctx context.Context, u *model.User) error
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	m.nextID++
	u.ID = m.nextID
	m.users = append(m.users, u)
	return nil
}

func (m *MockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (m *MockUserRepo) ExistsByRole(_ context.Context, role string) (bool, error) {
	for _, u := range m.users {
		if u.Role == role {
			return true, nil
		}
	}
	return false, nil
}

func newAuth(repo *MockUserRepo) (*service.AuthService, *jwt.Manager) {
	tokens := jwt.NewManager("test-secret", "order-feedback", "clients", time.Hour)
	return service.NewAuthService(repo, hash.NewBcrypt(bcrypt.MinCost), tokens, zap.NewNop()), tokens
}

func TestRegister(t *testing.T) {
	repo := &MockUserRepo{}
	svc, tokens := newAuth(repo)

	res, err := svc.Register(context.Background(), " Alice@Example.com ", "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.Email)
	assert.Equal(t, model.RoleUser, res.Role)
	assert.NotZero(t, res.ID)

	require.Len(t, repo.users, 1)
	assert.NotEqual(t, "secret1", repo.users[0].Password)

	claims, err := tokens.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, model.RoleUser, claims.Role)
}

func TestRegister_Conflicts(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newAuth(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "bob", "secret1")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "BOB@example.com", "bobby", "secret1")
	assert.ErrorIs(t, err, service.ErrEmailTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Register(ctx, "other@example.com", "bob", "secret1")
	assert.ErrorIs(t, err, service.ErrUsernameTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRegister_DuplicateKeyRaceIsNeutralConflict(t *testing.T) {
	svc, _ := newAuth(&MockUserRepo{CreateFunc: func(context.Context, *model.User) error {
		return gorm.ErrDuplicatedKey
	}})

	_, err := svc.Register(context.Background(), "kim@example.com", "kim", "secret1")
	assert.ErrorIs(t, err, service.ErrAccountTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NotErrorIs(t, err, service.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newAuth(&MockUserRepo{})
	ctx := context.Background()

	for name, args := range map[string][3]string{
		"empty email":    {"", "carol", "secret1"},
		"bad email":      {"not-an-email", "carol", "secret1"},
		"empty username": {"carol@example.com", " ", "secret1"},
		"short password": {"carol@example.com", "carol", "123"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Register(ctx, args[0], args[1], args[2])
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}
}

func TestRegister_RepositoryFailure(t *testing.T) {
	boom := errors.New("db down")
	svc, _ := newAuth(&MockUserRepo{CreateFunc: func(context.Context, *model.User) error { return boom }})

	_, err := svc.Register(context.Background(), "dave@example.com", "dave", "secret1")
	assert.ErrorIs(t, err, boom)
}

func TestLogin_SameErrorForUnknownEmailAndWrongPassword(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newAuth(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, "erin@example.com", "erin", "correct-horse")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "ERIN@example.com", "correct-horse")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	_, wrongPassword := svc.Login(ctx, "erin@example.com", "battery-staple")
	_, unknownEmail := svc.Login(ctx, "nobody@example.com", "correct-horse")

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, apperr.ErrUnauthorized)
	assert.Equal(t, wrongPassword, unknownEmail)
	assert.Equal(t, "invalid credentials", unknownEmail.Error())
}

// countingHasher records how many password comparisons ran.
type countingHasher struct {
	*hash.Bcrypt
	compares int
}

func (h *countingHasher) Compare(hashed, password string) bool {
	h.compares++
	return h.Bcrypt.Compare(hashed, password)
}

func TestLogin_UnknownEmailStillComparesPassword(t *testing.T) {
	repo := &MockUserRepo{}
	hasher := &countingHasher{Bcrypt: hash.NewBcrypt(bcrypt.MinCost)}
	tokens := jwt.NewManager("test-secret", "order-feedback", "clients", time.Hour)
	svc := service.NewAuthService(repo, hasher, tokens, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Login(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 1, hasher.compares)

	_, err = svc.Login(ctx, "ghost@example.com", "")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, 2, hasher.compares)
}

func TestEnsureAdmin(t *testing.T) {
	repo := &MockUserRepo{}
	svc, _ := newAuth(repo)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "", "admin", ""))
	assert.Empty(t, repo.users)

	require.NoError(t, svc.EnsureAdmin(ctx, "admin@example.com", "admin", "admin-pass"))
	require.Len(t, repo.users, 1)
	assert.Equal(t, model.RoleAdmin, repo.users[0].Role)

	require.NoError(t, svc.EnsureAdmin(ctx, "second@example.com", "root", "admin-pass"))
	assert.Len(t, repo.users, 1, "an existing admin is left alone")

	res, err := svc.Login(ctx, "admin@example.com", "admin-pass")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, res.Role)
}
