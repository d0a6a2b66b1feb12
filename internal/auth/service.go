package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hongminglow/dbgate/internal/common"
	"github.com/hongminglow/dbgate/internal/models"
	"github.com/hongminglow/dbgate/internal/storage"
)

// Service registers and authenticates users and resolves bearer tokens back to
// users. It is the authorization gate every privileged operation passes first.
type Service struct {
	users       storage.UserStore
	tokens      *TokenManager
	hasher      PasswordHasher
	revocations storage.RevocationStore

	// dummyHash is verified against when the username is unknown, so a
	// missing user costs as much as a wrong password.
	dummyHash string
}

type Option func(*Service)

// WithRevocationStore enables logout: revoked token ids are refused by Resolve
// until they expire.
func WithRevocationStore(r storage.RevocationStore) Option {
	return func(s *Service) { s.revocations = r }
}

func NewService(users storage.UserStore, tokens *TokenManager, hasher PasswordHasher, opts ...Option) *Service {
	s := &Service{users: users, tokens: tokens, hasher: hasher}
	for _, opt := range opts {
		opt(s)
	}
	if h, err := hasher.Hash("dbgate-unknown-user"); err == nil {
		s.dummyHash = h
	}
	return s
}

// Register creates a regular user.
func (s *Service) Register(ctx context.Context, username, password, email string) (models.User, error) {
	return s.register(ctx, username, password, email, models.NormalUser)
}

func (s *Service) register(ctx context.Context, username, password, email, role string) (models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: username, password and email are required", common.ErrInvalidRequestBody)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	created, err := s.users.CreateUser(ctx, models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return models.User{}, common.ErrDuplicateUser
		}
		return models.User{}, fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	return created, nil
}

// Authenticate checks the password and issues a token. An unknown user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			if s.dummyHash != "" {
				_, _ = s.hasher.Verify(password, s.dummyHash)
			}
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	if !ok {
		return "", common.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("%w: issue token: %v", common.ErrUnexpected, err)
	}
	return token, nil
}

// Resolve maps a bearer token to the user it was issued for.
func (s *Service) Resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return models.User{}, err
	}
	if claims.Subject == "" {
		return models.User{}, common.ErrTokenInvalid
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return models.User{}, err
	}

	user, err := s.users.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, common.ErrUserNotFound
		}
		return models.User{}, fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	return user, nil
}

// RequireAdmin fails with ErrPermissionDenied unless user is an admin.
func (s *Service) RequireAdmin(user models.User) error {
	if !user.IsAdmin() {
		return common.ErrPermissionDenied
	}
	return nil
}

// Revoke refuses token for the rest of its lifetime. Without a revocation
// store it is a no-op.
func (s *Service) Revoke(ctx context.Context, token string) error {
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return err
	}
	if s.revocations == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.ExpiresAt.Time.Sub(s.tokens.now())
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	return nil
}

func (s *Service) checkRevoked(ctx context.Context, claims *Claims) error {
	if s.revocations == nil || claims.ID == "" {
		return nil
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrUnexpected, err)
	}
	if revoked {
		return common.ErrTokenInvalid
	}
	return nil
}
