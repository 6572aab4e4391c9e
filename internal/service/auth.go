// Package service provides business logic for the application.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/chatvault/chatvault/internal/auth"
	"github.com/chatvault/chatvault/internal/model"
	"github.com/chatvault/chatvault/internal/repository"
)

// Auth service errors.
var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUsernameTaken       = errors.New("username already registered")
	ErrUnknownUser         = errors.New("user for token subject no longer exists")
	ErrInvalidRegistration = errors.New("username and password must not be empty")
)

// UserRepo is the storage surface the auth service needs.
// *repository.Repository satisfies it.
type UserRepo interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// AuthService handles registration, login and identity resolution.
type AuthService struct {
	users  UserRepo
	hasher *auth.Hasher
	tokens *auth.TokenService

	// dummyHash is verified against when a login names an unknown user,
	// so the response time doesn't reveal whether the username exists.
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserRepo, hasher *auth.Hasher, tokens *auth.TokenService) (*AuthService, error) {
	dummy, err := hasher.Hash("chatvault-dummy-credential")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		dummyHash: dummy,
	}, nil
}

// Tokens exposes the token service for middleware wiring.
func (s *AuthService) Tokens() *auth.TokenService {
	return s.tokens
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	FullName string
}

// Register creates a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidRegistration
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		Email:        input.Email,
		FullName:     input.FullName,
		PasswordHash: hash,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies a username/password pair and issues a bearer token.
// An unknown username and a wrong password both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// burn the same hashing cost as a real verification
			_, _ = s.hasher.Verify(password, s.dummyHash)
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	match, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil || !match {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// LoginWithIdentity logs in a user verified by an external identity
// provider. If no user matches the provider email, one is registered with
// the email as username and a random throwaway password.
func (s *AuthService) LoginWithIdentity(ctx context.Context, email, name string) (string, *model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, fmt.Errorf("lookup user: %w", err)
		}

		password, err := randomSecret()
		if err != nil {
			return "", nil, fmt.Errorf("generate password: %w", err)
		}

		user, err = s.Register(ctx, RegisterInput{
			Username: email,
			Password: password,
			Email:    email,
			FullName: name,
		})
		if err != nil {
			// concurrent first-login with the same identity
			if errors.Is(err, ErrUsernameTaken) {
				user, err = s.users.GetUserByUsername(ctx, email)
				if err != nil {
					return "", nil, fmt.Errorf("lookup user after race: %w", err)
				}
			} else {
				return "", nil, err
			}
		}
	}

	token, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	return token, user, nil
}

// Resolve maps validated token claims to a persisted user. A token may be
// structurally valid while its subject no longer exists; that resolves to
// ErrUnknownUser, which the boundary treats like any other validation failure.
func (s *AuthService) Resolve(ctx context.Context, claims *auth.Claims) (*model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}
	return user, nil
}

// randomSecret returns a 32-byte hex-encoded random string.
func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
