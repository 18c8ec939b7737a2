package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

type AuthService interface {
	Authenticate(ctx context.Context, token string) (*model.Principal, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	Logout(ctx context.Context, principal *model.Principal) error
	Me(ctx context.Context, principal *model.Principal) (*model.User, error)
	UpdateProfile(ctx context.Context, principal *model.Principal, req *model.UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, principal *model.Principal, req *model.ChangePasswordRequest) error
}

type Service struct {
	tx       repository.Transactor
	userRepo repository.UserRepository
	profiles repository.ProfileRepository
	tokens   *auth.TokenService
	denylist auth.Denylist
	hasher   security.PasswordHasher
	events   event.Recorder
}

func NewService(tx repository.Transactor, userRepo repository.UserRepository, profiles repository.ProfileRepository,
	tokens *auth.TokenService, denylist auth.Denylist, hasher security.PasswordHasher, events event.Recorder) *Service {
	return &Service{
		tx:       tx,
		userRepo: userRepo,
		profiles: profiles,
		tokens:   tokens,
		denylist: denylist,
		hasher:   hasher,
		events:   events,
	}
}

// Authenticate resolves a bearer token into the principal of an active user.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.Principal, error) {
	claims, err := s.tokens.Parse(token)
	if errors.Is(err, auth.ErrTokenExpired) {
		return nil, apperrors.CredentialExpired(err)
	}
	if err != nil {
		return nil, apperrors.InvalidCredential("invalid token")
	}

	revoked, err := s.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to check token revocation: %w", err))
	}
	if revoked {
		return nil, apperrors.Unauthenticated("token has been revoked", nil)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperrors.InvalidCredential("invalid token")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Unauthenticated("user not found", err)
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !user.IsActive {
		return nil, apperrors.AccountInactive()
	}

	principal := model.NewPrincipal(user)
	principal.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		principal.Expiry = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Register creates the user and its role profile in one transaction.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	profile, err := req.Profile()
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if errors.Is(err, security.ErrPasswordTooShort) {
		return nil, apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters", security.MinPasswordLen),
		})
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &model.User{
		Base:         model.NewBase(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Role:         req.Role,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}
		if err := s.createProfile(ctx, user, profile); err != nil {
			return err
		}
		return s.events.Record(ctx, model.EventUserRegistered, user.ID, model.UserRegisteredPayload{
			UserID: user.ID,
			Email:  user.Email,
			Name:   user.FullName(),
			Role:   user.Role,
		})
	})
	if repository.IsDuplicate(err, "email") {
		return nil, apperrors.Conflict("email already registered", err)
	}
	if err != nil {
		return nil, service.Classify(err, "user")
	}
	return user, nil
}

func (s *Service) createProfile(ctx context.Context, user *model.User, profile model.ProfileFields) error {
	now := user.CreatedAt
	switch p := profile.(type) {
	case model.DoctorFields:
		user.Doctor = &model.Doctor{
			ID:              uuid.New(),
			UserID:          user.ID,
			Specialization:  p.Specialization,
			Qualification:   p.Qualification,
			Experience:      p.Experience,
			ConsultationFee: p.ConsultationFee,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		return s.profiles.CreateDoctor(ctx, user.Doctor)
	case model.ReceptionistFields:
		user.Receptionist = &model.Receptionist{
			ID:        uuid.New(),
			UserID:    user.ID,
			Shift:     p.Shift,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.profiles.CreateReceptionist(ctx, user.Receptionist)
	case model.LabStaffFields:
		user.LabStaff = &model.LabStaff{
			ID:         uuid.New(),
			UserID:     user.ID,
			Department: p.Department,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		return s.profiles.CreateLabStaff(ctx, user.LabStaff)
	}
	return nil
}

func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.InvalidCredential("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		return nil, apperrors.InvalidCredential("invalid credentials")
	}
	if !user.IsActive {
		return nil, apperrors.AccountInactive()
	}

	if err := LoadProfile(ctx, s.profiles, user); err != nil {
		return nil, err
	}

	token, _, err := s.tokens.Generate(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &model.LoginResponse{User: user, Token: token}, nil
}

// Logout revokes the presented token until it would have expired anyway.
func (s *Service) Logout(ctx context.Context, principal *model.Principal) error {
	ttl := time.Until(principal.Expiry)
	if err := s.denylist.Revoke(ctx, principal.TokenID, ttl); err != nil {
		return apperrors.Internal(fmt.Errorf("failed to revoke token: %w", err))
	}
	return nil
}

func (s *Service) Me(ctx context.Context, principal *model.Principal) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return nil, service.Classify(err, "user")
	}
	if err := LoadProfile(ctx, s.profiles, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the caller's own user fields and the fields of their
// role profile. Fields of other roles are ignored.
func (s *Service) UpdateProfile(ctx context.Context, principal *model.Principal, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.Me(ctx, principal)
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

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Update(ctx, user); err != nil {
			return err
		}
		switch {
		case user.Doctor != nil:
			d := user.Doctor
			if req.Specialization != nil {
				d.Specialization = *req.Specialization
			}
			if req.Qualification != nil {
				d.Qualification = *req.Qualification
			}
			if req.Experience != nil {
				d.Experience = *req.Experience
			}
			if req.ConsultationFee != nil {
				d.ConsultationFee = *req.ConsultationFee
			}
			return s.profiles.UpdateDoctor(ctx, d)
		case user.Receptionist != nil && req.Shift != nil:
			user.Receptionist.Shift = req.Shift
			return s.profiles.UpdateReceptionist(ctx, user.Receptionist)
		case user.LabStaff != nil && req.Department != nil:
			user.LabStaff.Department = req.Department
			return s.profiles.UpdateLabStaff(ctx, user.LabStaff)
		}
		return nil
	})
	if err != nil {
		return nil, service.Classify(err, "user")
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, principal *model.Principal, req *model.ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		return service.Classify(err, "user")
	}

	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "currentPassword",
			Message: "Current password is incorrect",
		})
	}
	if req.NewPassword == req.CurrentPassword {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "newPassword",
			Message: "New password must differ from the current password",
		})
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if errors.Is(err, security.ErrPasswordTooShort) {
		return apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "newPassword",
			Message: fmt.Sprintf("must be at least %d characters", security.MinPasswordLen),
		})
	}
	if err != nil {
		return apperrors.Internal(err)
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return service.Classify(err, "user")
	}
	return nil
}

// LoadProfile attaches the role profile to user. A missing profile is not
// an error; the user is returned as stored.
func LoadProfile(ctx context.Context, profiles repository.ProfileRepository, user *model.User) error {
	var err error
	switch user.Role {
	case model.RoleDoctor:
		user.Doctor, err = profiles.GetDoctorByUserID(ctx, user.ID)
	case model.RoleReceptionist:
		user.Receptionist, err = profiles.GetReceptionistByUserID(ctx, user.ID)
	case model.RoleLabStaff:
		user.LabStaff, err = profiles.GetLabStaffByUserID(ctx, user.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to load profile: %w", err))
	}
	return nil
}
