package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/mocks"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type fixture struct {
	svc      *Service
	tx       *mocks.Transactor
	users    *mocks.UserRepository
	profiles *mocks.ProfileRepository
	events   *mocks.Recorder
	tokens   *auth.TokenService
	denylist auth.Denylist
	hasher   security.PasswordHasher
}

func newFixture() *fixture {
	f := &fixture{
		tx:       &mocks.Transactor{},
		users:    &mocks.UserRepository{},
		profiles: &mocks.ProfileRepository{},
		events:   &mocks.Recorder{},
		tokens:   auth.NewTokenService(testSecret, time.Hour, "hms-test"),
		denylist: auth.NewMemoryDenylist(),
		hasher:   security.NewBcryptHasher(bcrypt.MinCost),
	}
	f.svc = NewService(f.tx, f.users, f.profiles, f.tokens, f.denylist, f.hasher, f.events)
	return f
}

func (f *fixture) user(t *testing.T, role model.Role, password string, active bool) *model.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &model.User{
		Base:         model.NewBase(),
		Email:        "jane@example.com",
		PasswordHash: hash,
		Role:         role,
		FirstName:    "Jane",
		LastName:     "Doe",
		IsActive:     active,
	}
}

func strPtr(s string) *string { return &s }

func TestRegister_DoctorCreatesProfileAndEvent(t *testing.T) {
	f := newFixture()
	req := &model.RegisterRequest{
		Email:          "Doc@Example.com",
		Password:       "password123",
		Role:           model.RoleDoctor,
		FirstName:      "Gregory",
		LastName:       "House",
		Phone:          "5550100",
		Specialization: strPtr("Diagnostics"),
		Qualification:  strPtr("MD"),
	}

	f.users.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "doc@example.com" && u.IsActive && u.PasswordHash != "password123"
	})).Return(nil)
	f.profiles.On("CreateDoctor", mock.Anything, mock.MatchedBy(func(d *model.Doctor) bool {
		return d.Specialization == "Diagnostics" && d.Qualification == "MD"
	})).Return(nil)
	f.events.On("Record", mock.Anything, model.EventUserRegistered, mock.Anything, mock.Anything).Return(nil)

	user, err := f.svc.Register(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, user.Doctor)
	assert.Equal(t, user.ID, user.Doctor.UserID)
	assert.Equal(t, 1, f.tx.Calls)
	f.users.AssertExpectations(t)
	f.profiles.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestRegister_DoctorWithoutSpecialization(t *testing.T) {
	f := newFixture()
	req := &model.RegisterRequest{
		Email:     "doc@example.com",
		Password:  "password123",
		Role:      model.RoleDoctor,
		FirstName: "A",
		LastName:  "B",
		Phone:     "5550100",
	}

	_, err := f.svc.Register(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_ProfileFailureSurfaces(t *testing.T) {
	f := newFixture()
	req := &model.RegisterRequest{
		Email:     "lab@example.com",
		Password:  "password123",
		Role:      model.RoleLabStaff,
		FirstName: "A",
		LastName:  "B",
		Phone:     "5550100",
	}
	f.users.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("CreateLabStaff", mock.Anything, mock.Anything).Return(errors.New("insert failed"))

	_, err := f.svc.Register(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	f.events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	f := newFixture()
	req := &model.RegisterRequest{
		Email:     "admin@example.com",
		Password:  "password123",
		Role:      model.RoleAdmin,
		FirstName: "A",
		LastName:  "B",
		Phone:     "5550100",
	}
	f.users.On("Create", mock.Anything, mock.Anything).Return(&repository.DuplicateError{Field: "email"})

	_, err := f.svc.Register(context.Background(), req)
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
}

func TestLogin(t *testing.T) {
	f := newFixture()
	user := f.user(t, model.RoleReceptionist, "password123", true)
	receptionist := &model.Receptionist{ID: uuid.New(), UserID: user.ID}

	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(user, nil)
	f.profiles.On("GetReceptionistByUserID", mock.Anything, user.ID).Return(receptionist, nil)

	resp, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "Jane@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, receptionist, resp.User.Receptionist)

	claims, err := f.tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(f *fixture, t *testing.T)
		password string
		code     apperrors.ErrorCode
	}{
		{
			name: "unknown email",
			setup: func(f *fixture, t *testing.T) {
				f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
			},
			password: "password123",
			code:     apperrors.ErrInvalidCredential,
		},
		{
			name: "wrong password",
			setup: func(f *fixture, t *testing.T) {
				f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(f.user(t, model.RoleAdmin, "password123", true), nil)
			},
			password: "wrong-password",
			code:     apperrors.ErrInvalidCredential,
		},
		{
			name: "inactive account",
			setup: func(f *fixture, t *testing.T) {
				f.users.On("GetByEmail", mock.Anything, mock.Anything).Return(f.user(t, model.RoleAdmin, "password123", false), nil)
			},
			password: "password123",
			code:     apperrors.ErrAccountInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			tt.setup(f, t)
			_, err := f.svc.Login(context.Background(), &model.LoginRequest{Email: "jane@example.com", Password: tt.password})
			assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture()
	user := f.user(t, model.RoleAdmin, "password123", true)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	token, _, err := f.tokens.Generate(user.ID, string(user.Role))
	require.NoError(t, err)

	principal, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.UserID)
	assert.Equal(t, "Jane Doe", principal.Name)
	assert.NotEmpty(t, principal.TokenID)

	require.NoError(t, f.svc.Logout(context.Background(), principal))
	_, err = f.svc.Authenticate(context.Background(), token)
	assert.True(t, apperrors.Is(err, apperrors.ErrUnauthenticated))
}

func TestAuthenticate_Failures(t *testing.T) {
	f := newFixture()
	inactive := f.user(t, model.RoleDoctor, "password123", false)
	missing := uuid.New()
	f.users.On("GetByID", mock.Anything, inactive.ID).Return(inactive, nil)
	f.users.On("GetByID", mock.Anything, missing).Return(nil, repository.ErrNotFound)

	inactiveToken, _, _ := f.tokens.Generate(inactive.ID, "DOCTOR")
	missingToken, _, _ := f.tokens.Generate(missing, "DOCTOR")
	expiredToken, _, _ := auth.NewTokenService(testSecret, -time.Minute, "hms-test").Generate(inactive.ID, "DOCTOR")
	foreignToken, _, _ := auth.NewTokenService("another-secret-that-is-long-enough!!", time.Hour, "x").Generate(inactive.ID, "DOCTOR")

	tests := []struct {
		name  string
		token string
		code  apperrors.ErrorCode
	}{
		{"garbage", "not-a-token", apperrors.ErrInvalidCredential},
		{"bad signature", foreignToken, apperrors.ErrInvalidCredential},
		{"expired", expiredToken, apperrors.ErrCredentialExpired},
		{"unknown user", missingToken, apperrors.ErrUnauthenticated},
		{"inactive user", inactiveToken, apperrors.ErrAccountInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Authenticate(context.Background(), tt.token)
			assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	user := f.user(t, model.RoleAdmin, "password123", true)
	principal := model.NewPrincipal(user)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	err := f.svc.ChangePassword(context.Background(), principal, &model.ChangePasswordRequest{
		CurrentPassword: "not-the-password",
		NewPassword:     "brand-new-pass",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	err = f.svc.ChangePassword(context.Background(), principal, &model.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "password123",
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))

	f.users.On("UpdatePassword", mock.Anything, user.ID, mock.MatchedBy(func(hash string) bool {
		return f.hasher.Compare(hash, "brand-new-pass") == nil
	})).Return(nil)
	err = f.svc.ChangePassword(context.Background(), principal, &model.ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "brand-new-pass",
	})
	require.NoError(t, err)
	f.users.AssertExpectations(t)
}

func TestUpdateProfile_DoctorFields(t *testing.T) {
	f := newFixture()
	user := f.user(t, model.RoleDoctor, "password123", true)
	doctor := &model.Doctor{ID: uuid.New(), UserID: user.ID, Specialization: "Cardiology"}
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	f.profiles.On("GetDoctorByUserID", mock.Anything, user.ID).Return(doctor, nil)
	f.users.On("Update", mock.Anything, user).Return(nil)
	f.profiles.On("UpdateDoctor", mock.Anything, doctor).Return(nil)

	updated, err := f.svc.UpdateProfile(context.Background(), model.NewPrincipal(user), &model.UpdateProfileRequest{
		FirstName:      strPtr("Janet"),
		Specialization: strPtr("Neurology"),
		Shift:          strPtr("night"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)
	assert.Equal(t, "Neurology", updated.Doctor.Specialization)
	assert.Nil(t, updated.Receptionist)
	f.profiles.AssertExpectations(t)
}
