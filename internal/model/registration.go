package model

import (
	"fmt"
	"strings"

	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// RegisterRequest is the wire shape of a registration. Role selects which
// of the optional profile fields are meaningful; Profile resolves it.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      Role   `json:"role" binding:"required,oneof=ADMIN DOCTOR RECEPTIONIST LAB_STAFF"`
	FirstName string `json:"firstName" binding:"required,max=100"`
	LastName  string `json:"lastName" binding:"required,max=100"`
	Phone     string `json:"phone" binding:"required,min=5,max=20"`

	Specialization  *string  `json:"specialization"`
	Qualification   *string  `json:"qualification"`
	Experience      *int     `json:"experience" binding:"omitempty,min=0"`
	ConsultationFee *float64 `json:"consultationFee" binding:"omitempty,min=0"`
	Shift           *string  `json:"shift" binding:"omitempty,max=50"`
	Department      *string  `json:"department" binding:"omitempty,max=100"`
}

// ProfileFields is the role-specific variant of a registration.
type ProfileFields interface {
	ProfileRole() Role
}

type DoctorFields struct {
	Specialization  string
	Qualification   string
	Experience      int
	ConsultationFee float64
}

type ReceptionistFields struct {
	Shift *string
}

type LabStaffFields struct {
	Department *string
}

func (DoctorFields) ProfileRole() Role       { return RoleDoctor }
func (ReceptionistFields) ProfileRole() Role { return RoleReceptionist }
func (LabStaffFields) ProfileRole() Role     { return RoleLabStaff }

// Profile returns the variant selected by Role, or nil for ADMIN. Fields
// that belong to another role are rejected.
func (r *RegisterRequest) Profile() (ProfileFields, error) {
	var fieldErrs []apperrors.FieldError
	reject := func(field string, set bool) {
		if set {
			fieldErrs = append(fieldErrs, apperrors.FieldError{
				Field:   field,
				Message: fmt.Sprintf("not allowed for role %s", r.Role),
			})
		}
	}
	doctorFieldsSet := func() {
		reject("specialization", r.Specialization != nil)
		reject("qualification", r.Qualification != nil)
		reject("experience", r.Experience != nil)
		reject("consultationFee", r.ConsultationFee != nil)
	}

	var profile ProfileFields
	switch r.Role {
	case RoleAdmin:
		doctorFieldsSet()
		reject("shift", r.Shift != nil)
		reject("department", r.Department != nil)
	case RoleDoctor:
		reject("shift", r.Shift != nil)
		reject("department", r.Department != nil)
		fields := DoctorFields{}
		if r.Specialization == nil || strings.TrimSpace(*r.Specialization) == "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "specialization", Message: "Specialization is required for doctors"})
		} else {
			fields.Specialization = strings.TrimSpace(*r.Specialization)
		}
		if r.Qualification == nil || strings.TrimSpace(*r.Qualification) == "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "qualification", Message: "Qualification is required for doctors"})
		} else {
			fields.Qualification = strings.TrimSpace(*r.Qualification)
		}
		if r.Experience != nil {
			fields.Experience = *r.Experience
		}
		if r.ConsultationFee != nil {
			fields.ConsultationFee = *r.ConsultationFee
		}
		profile = fields
	case RoleReceptionist:
		doctorFieldsSet()
		reject("department", r.Department != nil)
		profile = ReceptionistFields{Shift: r.Shift}
	case RoleLabStaff:
		doctorFieldsSet()
		reject("shift", r.Shift != nil)
		profile = LabStaffFields{Department: r.Department}
	default:
		return nil, apperrors.Validation("Validation failed", apperrors.FieldError{Field: "role", Message: "Invalid role"})
	}

	if len(fieldErrs) > 0 {
		return nil, apperrors.Validation("Validation failed", fieldErrs...)
	}
	return profile, nil
}
