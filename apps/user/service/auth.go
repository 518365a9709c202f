package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"order-feedback/apps/user/model"
	"order-feedback/pkg/apperr"
	"order-feedback/pkg/database"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("auth-service")

const minPasswordLen = 6

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByRole(ctx context.Context, role string) (bool, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type TokenIssuer interface {
	GenerateToken(userID uint, email, username, role string) (string, time.Time, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	ID        uint      `json:"id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

type AuthService struct {
	users  UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, log *zap.Logger) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: log}
}

func (s *AuthService) Register(ctx context.Context, email, username, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if err := validateAccount(email, username, password); err != nil {
		return nil, err
	}

	u, err := s.createUser(ctx, email, username, password, model.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("username", u.Username))
	return s.issue(u)
}

// Login answers an unknown email and a wrong password with the same error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if u == nil {
		// burn a compare so unknown emails take as long as wrong passwords
		s.hasher.Compare(s.dummy(), password)
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Compare(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("order-feedback-dummy-password")
		if err != nil {
			s.log.Warn("hash dummy password", zap.Error(err))
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// EnsureAdmin creates an Admin account unless one already exists. It does
// nothing when email or password is empty.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, username, password string) error {
	if email == "" || password == "" {
		s.log.Info("admin seeding skipped: no credentials configured")
		return nil
	}
	exists, err := s.users.ExistsByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	if err := validateAccount(email, username, password); err != nil {
		return fmt.Errorf("admin account: %w", err)
	}
	u, err := s.createUser(ctx, email, username, password, model.RoleAdmin)
	if err != nil {
		return err
	}
	s.log.Info("admin account created", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
	return nil
}

func (s *AuthService) createUser(ctx context.Context, email, username, password, role string) (*model.User, error) {
	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	} else if existing != nil {
		return nil, ErrEmailTaken
	}
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	} else if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Email: email, Username: username, Password: hashed, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if database.IsDuplicateKey(err) {
			// a concurrent registration won between the lookups and the insert
			return nil, ErrAccountTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	token, exp, err := s.tokens.GenerateToken(u.ID, u.Email, u.Username, u.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{
		ID:        u.ID,
		Token:     token,
		ExpiresAt: exp,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
	}, nil
}

func validateAccount(email, username, password string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperr.Validation("email is not valid")
	}
	if username == "" {
		return ErrUsernameRequired
	}
	if len(password) < minPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
