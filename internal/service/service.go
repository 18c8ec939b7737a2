// Package service holds helpers shared by the workflow services.
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// Classify maps repository errors onto the application error taxonomy.
// Errors that are already classified pass through unchanged.
func Classify(err error, resource string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NotFound(resource, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.Conflict(resource+" already exists", err)
	case errors.Is(err, repository.ErrReferenced):
		return apperrors.Conflict(resource+" is referenced by other records", err)
	default:
		return apperrors.Internal(err)
	}
}

// DoctorProfile resolves the doctor profile of the acting principal.
func DoctorProfile(ctx context.Context, profiles repository.ProfileRepository, p *model.Principal) (*model.Doctor, error) {
	doctor, err := profiles.GetDoctorByUserID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("doctor profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return doctor, nil
}

// ReceptionistProfile resolves the receptionist profile of the acting principal.
func ReceptionistProfile(ctx context.Context, profiles repository.ProfileRepository, p *model.Principal) (*model.Receptionist, error) {
	receptionist, err := profiles.GetReceptionistByUserID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("receptionist profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return receptionist, nil
}

// LabStaffProfile resolves the lab staff profile of the acting principal.
func LabStaffProfile(ctx context.Context, profiles repository.ProfileRepository, p *model.Principal) (*model.LabStaff, error) {
	staff, err := profiles.GetLabStaffByUserID(ctx, p.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Forbidden("lab staff profile not found")
	}
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return staff, nil
}

// ActivePatient loads a patient that new clinical records may reference.
// A soft-deleted patient exists but is not a valid target.
func ActivePatient(ctx context.Context, patients repository.PatientRepository, id uuid.UUID) (*model.Patient, error) {
	patient, err := patients.GetByID(ctx, id)
	if err != nil {
		return nil, Classify(err, "patient")
	}
	if patient.IsDeleted {
		return nil, apperrors.InvalidTarget("patient has been deleted")
	}
	return patient, nil
}

// ActiveDoctor loads a doctor that can take on patients or appointments.
func ActiveDoctor(ctx context.Context, profiles repository.ProfileRepository, doctorID uuid.UUID) (*model.DoctorSummary, error) {
	doctor, err := profiles.GetDoctorSummary(ctx, doctorID)
	if err != nil {
		return nil, Classify(err, "doctor")
	}
	if !doctor.IsActive {
		return nil, apperrors.InvalidTarget("doctor is not active")
	}
	return doctor, nil
}
