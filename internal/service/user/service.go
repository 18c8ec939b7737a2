package user

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	"github.com/jwalitptl/hms-api/internal/service/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// UserService is the admin-facing account management surface
type UserService interface {
	ListUsers(ctx context.Context, filter model.UserFilter, page model.Page) ([]*model.User, int, error)
	GetUser(ctx context.Context, id uuid.UUID) (*model.User, error)
	UpdateUser(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, actor *model.Principal, id uuid.UUID) error
	ToggleStatus(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.User, error)
	ListDoctors(ctx context.Context, specialization string) ([]*model.DoctorSummary, error)
}

type Service struct {
	repo     repository.UserRepository
	profiles repository.ProfileRepository
}

func NewService(repo repository.UserRepository, profiles repository.ProfileRepository) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
	}
}

func (s *Service) ListUsers(ctx context.Context, filter model.UserFilter, page model.Page) ([]*model.User, int, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, apperrors.Validation("Validation failed", apperrors.FieldError{Field: "role", Message: "Invalid role"})
	}
	filter.Search = strings.TrimSpace(filter.Search)

	users, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "user")
	}
	return users, total, nil
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "user")
	}
	if err := auth.LoadProfile(ctx, s.profiles, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) UpdateUser(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.IsActive != nil {
		if !*req.IsActive && actor.UserID == id {
			return nil, apperrors.InvalidTarget("you cannot deactivate your own account")
		}
		user.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, service.Classify(err, "user")
	}
	return user, nil
}

// DeleteUser removes the account and, through the foreign key cascade, its
// profile. Users referenced by clinical history cannot be removed.
func (s *Service) DeleteUser(ctx context.Context, actor *model.Principal, id uuid.UUID) error {
	if actor.UserID == id {
		return apperrors.InvalidTarget("you cannot delete your own account")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Classify(err, "user")
	}
	return nil
}

func (s *Service) ToggleStatus(ctx context.Context, actor *model.Principal, id uuid.UUID) (*model.User, error) {
	if actor.UserID == id {
		return nil, apperrors.InvalidTarget("you cannot deactivate your own account")
	}
	user, err := s.repo.ToggleActive(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "user")
	}
	return user, nil
}

func (s *Service) ListDoctors(ctx context.Context, specialization string) ([]*model.DoctorSummary, error) {
	doctors, err := s.profiles.ListDoctors(ctx, strings.TrimSpace(specialization))
	if err != nil {
		return nil, service.Classify(err, "doctor")
	}
	return doctors, nil
}
