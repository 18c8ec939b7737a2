package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin        Role = "ADMIN"
	RoleDoctor       Role = "DOCTOR"
	RoleReceptionist Role = "RECEPTIONIST"
	RoleLabStaff     Role = "LAB_STAFF"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleReceptionist, RoleLabStaff:
		return true
	}
	return false
}

// User represents a system user. Exactly one of Doctor, Receptionist or
// LabStaff is populated for non-admin roles when the profile is loaded.
type User struct {
	Base
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	Role         Role   `json:"role" db:"role"`
	FirstName    string `json:"firstName" db:"first_name"`
	LastName     string `json:"lastName" db:"last_name"`
	Phone        string `json:"phone" db:"phone"`
	IsActive     bool   `json:"isActive" db:"is_active"`

	Doctor       *Doctor       `json:"doctor,omitempty" db:"-"`
	Receptionist *Receptionist `json:"receptionist,omitempty" db:"-"`
	LabStaff     *LabStaff     `json:"labStaff,omitempty" db:"-"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

type Doctor struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	Specialization  string    `json:"specialization" db:"specialization"`
	Qualification   string    `json:"qualification" db:"qualification"`
	Experience      int       `json:"experience" db:"experience"`
	ConsultationFee float64   `json:"consultationFee" db:"consultation_fee"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

type Receptionist struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Shift     *string   `json:"shift,omitempty" db:"shift"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type LabStaff struct {
	ID         uuid.UUID `json:"id" db:"id"`
	UserID     uuid.UUID `json:"userId" db:"user_id"`
	Department *string   `json:"department,omitempty" db:"department"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// DoctorSummary is a doctor profile joined with its user
type DoctorSummary struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	FirstName       string    `json:"firstName" db:"first_name"`
	LastName        string    `json:"lastName" db:"last_name"`
	Email           string    `json:"email" db:"email"`
	Phone           string    `json:"phone" db:"phone"`
	IsActive        bool      `json:"isActive" db:"is_active"`
	Specialization  string    `json:"specialization" db:"specialization"`
	Qualification   string    `json:"qualification" db:"qualification"`
	Experience      int       `json:"experience" db:"experience"`
	ConsultationFee float64   `json:"consultationFee" db:"consultation_fee"`
}

// Principal is the authenticated caller attached to a request
type Principal struct {
	UserID  uuid.UUID `json:"id"`
	Email   string    `json:"email"`
	Role    Role      `json:"role"`
	Name    string    `json:"name"`
	TokenID string    `json:"-"`
	Expiry  time.Time `json:"-"`
}

func NewPrincipal(u *User) *Principal {
	return &Principal{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Name:   u.FullName(),
	}
}

// UserFilter represents user search parameters
type UserFilter struct {
	Role     Role
	IsActive *bool
	Search   string
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type UpdateProfileRequest struct {
	FirstName  *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName   *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,min=5,max=20"`
	Shift      *string `json:"shift" binding:"omitempty,max=50"`
	Department *string `json:"department" binding:"omitempty,max=100"`

	Specialization  *string  `json:"specialization" binding:"omitempty,min=1"`
	Qualification   *string  `json:"qualification" binding:"omitempty,min=1"`
	Experience      *int     `json:"experience" binding:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultationFee" binding:"omitempty,min=0"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8,nefield=CurrentPassword"`
}

type UpdateUserRequest struct {
	FirstName *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Phone     *string `json:"phone" binding:"omitempty,min=5,max=20"`
	IsActive  *bool   `json:"isActive"`
}
