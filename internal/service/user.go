package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ThanhDoDuy/order-system-hani-BE/internal/domain"
	"github.com/ThanhDoDuy/order-system-hani-BE/internal/repository"
	apperrors "github.com/ThanhDoDuy/order-system-hani-BE/pkg/errors"
	"github.com/ThanhDoDuy/order-system-hani-BE/pkg/pagination"
)

// UserService implements admin-facing directory management. Users created
// here have no Google identity yet; it is attached on their first login.
type UserService struct {
	userRepo repository.UserRepository
	events   AuthEventPublisher
	logger   *slog.Logger
}

// NewUserService creates the user service.
func NewUserService(userRepo repository.UserRepository, events AuthEventPublisher, logger *slog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		events:   events,
		logger:   logger,
	}
}

// CreateUserInput holds the parameters for pre-provisioning a user.
type CreateUserInput struct {
	Email  string `json:"email" validate:"required,email"`
	Name   string `json:"name" validate:"required,min=1,max=120"`
	Role   string `json:"role" validate:"required,oneof=user admin"`
	Status string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// UpdateUserInput holds the parameters for updating a directory user.
// Nil fields are left unchanged.
type UpdateUserInput struct {
	Name   *string `json:"name" validate:"omitempty,min=1,max=120"`
	Role   *string `json:"role" validate:"omitempty,oneof=user admin"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Create pre-provisions a directory user by email.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	status := input.Status
	if status == "" {
		status = domain.StatusActive
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:        uuid.New().String(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	if err := s.events.PublishUserProvisioned(ctx, user); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish user.provisioned event",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "user provisioned",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
	)

	return user, nil
}

// Get returns a directory user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// List returns a page of directory users.
func (s *UserService) List(ctx context.Context, filter repository.UserFilter, params pagination.Params) (*pagination.Result[domain.PublicUser], error) {
	filter.Page = params.Page
	filter.PerPage = params.Limit

	users, total, err := s.userRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	public := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		public = append(public, users[i].Public())
	}

	result := pagination.NewResult(public, total, params)
	return &result, nil
}

// Update modifies a directory user. Demoting or deactivating takes effect on
// the user's next guarded request.
func (s *UserService) Update(ctx context.Context, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Status != nil {
		user.Status = *input.Status
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user updated",
		slog.String("user_id", user.ID),
		slog.String("role", user.Role),
		slog.String("status", user.Status),
	)

	return user, nil
}

// Delete removes a directory user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NotFound("user", id)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "user deleted", slog.String("user_id", id))
	return nil
}
