// Package auth is the demo sign-in flow: it keeps a single user profile in
// device storage. There are no passwords or sessions.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"guacamaya/internal/domain/entity"
	"guacamaya/internal/repository"
)

// StorageKey is the device storage key holding the signed-in user.
const StorageKey = "auth-demo-v1"

// ErrInvalidEmail is returned when sign-in or sign-up gets a malformed address.
var ErrInvalidEmail = errors.New("invalid email")

// Service stores and reads the demo user.
type Service struct {
	store  repository.KeyValueStore
	logger *slog.Logger
}

// NewService creates a Service over store. A nil logger uses slog.Default().
func NewService(store repository.KeyValueStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// SignIn stores a user named after the local part of email.
func (s *Service) SignIn(ctx context.Context, email string) (entity.User, error) {
	email, err := checkEmail(email)
	if err != nil {
		return entity.User{}, err
	}
	name, _, _ := strings.Cut(email, "@")
	return s.save(ctx, entity.User{Email: email, Name: name})
}

// SignUp stores a user named "first last".
func (s *Service) SignUp(ctx context.Context, firstName, lastName, email string) (entity.User, error) {
	email, err := checkEmail(email)
	if err != nil {
		return entity.User{}, err
	}
	name := strings.TrimSpace(firstName + " " + lastName)
	return s.save(ctx, entity.User{Email: email, Name: name})
}

// SignOut forgets the stored user. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context) error {
	if err := s.store.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	s.logger.Info("user signed out")
	return nil
}

// CurrentUser returns the stored user, or nil when nobody is signed in.
func (s *Service) CurrentUser(ctx context.Context) (*entity.User, error) {
	raw, err := s.store.Get(ctx, StorageKey)
	if errors.Is(err, repository.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	var u entity.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

func (s *Service) save(ctx context.Context, u entity.User) (entity.User, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return entity.User{}, fmt.Errorf("encode user: %w", err)
	}
	if err := s.store.Set(ctx, StorageKey, raw); err != nil {
		return entity.User{}, fmt.Errorf("store user: %w", err)
	}
	s.logger.Info("user signed in", slog.String("name", u.Name))
	return u, nil
}

func checkEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := entity.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}
	return email, nil
}
