package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/taskhub/taskhub-api/internal/access"
	"github.com/taskhub/taskhub-api/internal/models"
	"github.com/taskhub/taskhub-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrUserUpdateForbidden = errors.New("only the user themselves or an admin can modify this account")
	ErrRoleChangeForbidden = errors.New("only an admin can change a user's role")
)

// UserService handles user management beyond authentication.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers returns every user, for the assignee picker.
func (s *UserService) ListUsers() ([]models.User, error) {
	users, err := s.userRepo.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput represents a partial user update.
type UpdateUserInput struct {
	Email *string
	Role  *models.UserRole
}

// UpdateUser applies profile changes. Users may edit themselves; only admins
// may edit others or change a role.
func (s *UserService) UpdateUser(userID uint64, actor access.Actor, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !actor.IsAdmin() && actor.ID != user.ID {
		return nil, ErrUserUpdateForbidden
	}

	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, ErrEmailRequired
		}
		user.Email = email
	}
	if input.Role != nil {
		if !actor.IsAdmin() {
			return nil, ErrRoleChangeForbidden
		}
		user.Role = *input.Role
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUser removes a user record. The user's created and assigned tasks are
// left untouched; whether they should cascade is deliberately unresolved.
func (s *UserService) DeleteUser(userID uint64) error {
	if _, err := s.userRepo.FindByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := s.userRepo.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	return nil
}
