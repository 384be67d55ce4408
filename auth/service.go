package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/LucaMelis0/secure-chat/repositories"
)

// ErrInvalidCredentials covers both an unknown username and a wrong
// password; login responses never reveal which one it was.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserStore is what the service needs from the user repository.
type UserStore interface {
	CreateUser(username, passwordHash string) (string, error)
	GetUserByUsername(username string) (repositories.User, error)
	TouchLastLogin(username string) error
}

// Service verifies and registers user credentials. It is the concrete
// form of the verify/register capability the chat core treats as opaque.
type Service struct {
	users UserStore
}

func NewService(users UserStore) *Service {
	return &Service{users: users}
}

// Register validates the credentials, hashes the password, and persists
// the new account. repositories.ErrUserExists surfaces unchanged so the
// handler can answer with a conflict.
func (s *Service) Register(creds Credentials) error {
	if err := ValidateCredentials(creds); err != nil {
		return fmt.Errorf("validate credentials: %w", err)
	}

	hash, err := HashPassword(creds.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	id, err := s.users.CreateUser(creds.Username, hash)
	if err != nil {
		return err
	}
	slog.Info("user registered", "username", creds.Username, "userId", id)
	return nil
}

// Verify checks the credentials against the store and stamps the login
// time on success.
func (s *Service) Verify(creds Credentials) error {
	user, err := s.users.GetUserByUsername(creds.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}

	match, err := ComparePassword(creds.Password, user.PasswordHash)
	if err != nil {
		return err
	}
	if !match {
		slog.Warn("login failed", "username", creds.Username)
		return ErrInvalidCredentials
	}

	if err := s.users.TouchLastLogin(creds.Username); err != nil {
		slog.Warn("update last login", "username", creds.Username, "error", err)
	}
	return nil
}
