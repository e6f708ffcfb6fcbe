package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pkordes/blog/internal/domain"
	"github.com/pkordes/blog/internal/repo"
)

// UserService manages author accounts.
type UserService struct {
	users    repo.UserRepo
	validate *validator.Validate
}

// NewUserService constructs a UserService backed by the provided UserRepo.
func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{users: users, validate: validator.New()}
}

// Create registers an author. Usernames are stored lowercased; a duplicate
// username yields domain.ErrConflict.
func (s *UserService) Create(ctx context.Context, username, email string) (domain.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)

	if err := s.validate.Var(username, "required,max=150,printascii"); err != nil || strings.ContainsRune(username, ' ') {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w: invalid username", domain.ErrValidation)
	}
	if err := s.validate.Var(email, "required,email"); err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w: invalid email", domain.ErrValidation)
	}

	u, err := s.users.Create(ctx, domain.User{Username: username, Email: email})
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Create: %w", err)
	}
	return u, nil
}

// GetByID returns a single author.
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.GetByID: %w", err)
	}
	return u, nil
}
