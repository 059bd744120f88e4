package service

import (
	"context"
	"errors"
	"strings"

	"hr-workflow/internal/models"
	"hr-workflow/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

// GetByChatID resolves the user linked to a Telegram chat
func (s *UserService) GetByChatID(ctx context.Context, chatID int64) (*models.User, error) {
	user, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, storeError("find user", err)
	}
	if user == nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError("find user", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

type RegisterUserInput struct {
	ChatID    int64
	Username  string
	FirstName string
	LastName  string
	Role      string
}

// Register creates an employee or administrator. ChatID is optional and links
// the user to a Telegram chat.
func (s *UserService) Register(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	role := strings.ToUpper(strings.TrimSpace(input.Role))
	if role == "" {
		role = models.RoleEmployee
	}
	if !models.ValidRole(role) {
		return nil, invalidInput("unknown role %q", input.Role)
	}

	firstName := strings.TrimSpace(input.FirstName)
	if firstName == "" {
		return nil, invalidInput("first name is required")
	}

	user := &models.User{
		Username:  strings.TrimSpace(input.Username),
		FirstName: firstName,
		LastName:  strings.TrimSpace(input.LastName),
		Role:      role,
	}
	if input.ChatID != 0 {
		chatID := input.ChatID
		user.ChatID = &chatID
	}

	err := s.repo.Create(ctx, user)
	if errors.Is(err, repository.ErrUserExists) {
		return nil, invalidInput("chat %d is already linked to a user", input.ChatID)
	}
	if err != nil {
		return nil, storeError("create user", err)
	}

	return user, nil
}

// InitializeAdmin makes the configured chat an administrator, creating the
// user when it does not exist yet
func (s *UserService) InitializeAdmin(ctx context.Context, adminChatID int64) error {
	if adminChatID == 0 {
		return nil
	}

	existing, err := s.repo.GetByChatID(ctx, adminChatID)
	if err != nil {
		return err
	}

	if existing != nil {
		if existing.IsAdmin() {
			return nil
		}
		return s.repo.UpdateRole(ctx, existing.ID, models.RoleAdmin)
	}

	return s.repo.Create(ctx, &models.User{
		ChatID:    &adminChatID,
		Username:  "admin",
		FirstName: "Administrator",
		Role:      models.RoleAdmin,
	})
}
