// Package auth identifies the user behind a request: accounts with bcrypt
// password hashes and HS256 session tokens carrying the user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Joseda-hg/lazytodo/internal/db"
	"github.com/Joseda-hg/lazytodo/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
)

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// Identity is the authenticated requester.
type Identity struct {
	UserID   int64
	Username string
}

type Service struct {
	users     UserStore
	hasher    *PasswordHasher
	tokens    *JWTManager
	dummyHash string
}

func NewService(users UserStore, hasher *PasswordHasher, tokens *JWTManager) (*Service, error) {
	dummyHash, err := hasher.Hash("lazytodo-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{users: users, hasher: hasher, tokens: tokens, dummyHash: dummyHash}, nil
}

func (s *Service) Register(ctx context.Context, username, password string) (model.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, db.ErrUserExists) {
			return model.User{}, ErrUserExists
		}
		return model.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and returns a signed session token.
func (s *Service) Login(ctx context.Context, username, password string) (model.User, string, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			// Same bcrypt cost for unknown users as for a wrong password.
			s.hasher.Verify(password, s.dummyHash)
			return model.User{}, "", ErrInvalidCredentials
		}
		return model.User{}, "", err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.User{}, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(user)
	if err != nil {
		return model.User{}, "", err
	}
	return user, token, nil
}

func (s *Service) IssueToken(user model.User) (string, error) {
	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *Service) Authenticate(token string) (Identity, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.UserID, Username: claims.Username}, nil
}

func (s *Service) TokenTTL() time.Duration {
	return s.tokens.TokenDuration()
}

type contextKey struct{}

func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, identity)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(contextKey{}).(Identity)
	return identity, ok
}
