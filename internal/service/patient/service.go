package patient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

// recentLimit bounds each related collection in the patient detail view.
const recentLimit = 5

type PatientService interface {
	CreatePatient(ctx context.Context, actor *model.Principal, req *model.CreatePatientRequest) (*model.Patient, error)
	ListPatients(ctx context.Context, actor *model.Principal, filter model.PatientFilter, page model.Page) ([]*model.PatientListItem, int, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	MedicalHistory(ctx context.Context, id uuid.UUID) ([]model.MedicalRecord, error)
	AddMedicalRecord(ctx context.Context, id uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error)
	AssignDoctor(ctx context.Context, id uuid.UUID, doctorID uuid.UUID) (*model.Patient, error)
}

type Service struct {
	repo            repository.PatientRepository
	profiles        repository.ProfileRepository
	medicalRepo     repository.MedicalRecordRepository
	appointmentRepo repository.AppointmentRepository
	labReportRepo   repository.LabReportRepository
	now             func() time.Time
}

func NewService(repo repository.PatientRepository, profiles repository.ProfileRepository, medicalRepo repository.MedicalRecordRepository,
	appointmentRepo repository.AppointmentRepository, labReportRepo repository.LabReportRepository) *Service {
	return &Service{
		repo:            repo,
		profiles:        profiles,
		medicalRepo:     medicalRepo,
		appointmentRepo: appointmentRepo,
		labReportRepo:   labReportRepo,
		now:             time.Now,
	}
}

// CreatePatient registers a patient on behalf of the acting receptionist.
func (s *Service) CreatePatient(ctx context.Context, actor *model.Principal, req *model.CreatePatientRequest) (*model.Patient, error) {
	receptionist, err := service.ReceptionistProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	if err := s.checkEmail(ctx, email, nil); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		Base:             model.NewBase(),
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Email:            email,
		Phone:            strings.TrimSpace(req.Phone),
		DateOfBirth:      *req.DateOfBirth,
		Gender:           req.Gender,
		Address:          req.Address,
		BloodGroup:       req.BloodGroup,
		EmergencyContact: req.EmergencyContact,
		RegisteredBy:     receptionist.ID,
	}

	if err := s.repo.Create(ctx, patient); err != nil {
		if repository.IsDuplicate(err, "email") {
			return nil, apperrors.Conflict("a patient with this email already exists", err)
		}
		return nil, service.Classify(err, "patient")
	}
	return patient, nil
}

// ListPatients hides soft-deleted patients unless an admin asks for them.
func (s *Service) ListPatients(ctx context.Context, actor *model.Principal, filter model.PatientFilter, page model.Page) ([]*model.PatientListItem, int, error) {
	if actor.Role != model.RoleAdmin {
		filter.IncludeDeleted = false
	}
	filter.Search = strings.TrimSpace(filter.Search)

	patients, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "patient")
	}
	return patients, total, nil
}

// GetPatient returns the patient with its most recent clinical history.
// Soft-deleted patients remain readable.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.PatientDetail, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "patient")
	}

	detail := &model.PatientDetail{Patient: *patient}
	if patient.AssignedDoctorID != nil {
		doctor, err := s.profiles.GetDoctorSummary(ctx, *patient.AssignedDoctorID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, service.Classify(err, "doctor")
		}
		detail.AssignedDoctor = doctor
	}

	recent := model.Page{Page: 1, Limit: recentLimit}
	if detail.RecentAppointments, _, err = s.appointmentRepo.List(ctx, model.AppointmentFilter{PatientID: &id}, recent); err != nil {
		return nil, service.Classify(err, "appointment")
	}
	if detail.MedicalRecords, err = s.medicalRepo.ListByPatient(ctx, id, recentLimit); err != nil {
		return nil, service.Classify(err, "medical record")
	}
	if detail.LabReports, _, err = s.labReportRepo.List(ctx, model.LabReportFilter{PatientID: &id}, recent); err != nil {
		return nil, service.Classify(err, "lab report")
	}
	return detail, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.livePatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(req.Email)
		if err := s.checkEmail(ctx, email, &id); err != nil {
			return nil, err
		}
		patient.Email = email
	}
	if req.FirstName != nil {
		patient.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		patient.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		patient.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = *req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Address != nil {
		patient.Address = req.Address
	}
	if req.BloodGroup != nil {
		patient.BloodGroup = req.BloodGroup
	}
	if req.EmergencyContact != nil {
		patient.EmergencyContact = req.EmergencyContact
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		if repository.IsDuplicate(err, "email") {
			return nil, apperrors.Conflict("a patient with this email already exists", err)
		}
		return nil, service.Classify(err, "patient")
	}
	return patient, nil
}

// DeletePatient soft deletes; the record and its history stay in place.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return service.Classify(err, "patient")
	}
	return nil
}

func (s *Service) MedicalHistory(ctx context.Context, id uuid.UUID) ([]model.MedicalRecord, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, service.Classify(err, "patient")
	}
	records, err := s.medicalRepo.ListByPatient(ctx, id, 0)
	if err != nil {
		return nil, service.Classify(err, "medical record")
	}
	return records, nil
}

func (s *Service) AddMedicalRecord(ctx context.Context, id uuid.UUID, req *model.CreateMedicalRecordRequest) (*model.MedicalRecord, error) {
	if _, err := service.ActivePatient(ctx, s.repo, id); err != nil {
		return nil, err
	}

	record := &model.MedicalRecord{
		Base:        model.NewBase(),
		PatientID:   id,
		RecordType:  strings.TrimSpace(req.RecordType),
		Description: req.Description,
		RecordDate:  model.NewDate(s.now()),
	}
	if req.RecordDate != nil {
		record.RecordDate = *req.RecordDate
	}

	if err := s.medicalRepo.Create(ctx, record); err != nil {
		return nil, service.Classify(err, "medical record")
	}
	return record, nil
}

// AssignDoctor points the patient at an active doctor, replacing any
// previous assignment.
func (s *Service) AssignDoctor(ctx context.Context, id uuid.UUID, doctorID uuid.UUID) (*model.Patient, error) {
	patient, err := s.livePatient(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := service.ActiveDoctor(ctx, s.profiles, doctorID); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidTarget("doctor not found")
		}
		return nil, err
	}

	if err := s.repo.AssignDoctor(ctx, id, doctorID); err != nil {
		return nil, service.Classify(err, "patient")
	}
	patient.AssignedDoctorID = &doctorID
	return patient, nil
}

// livePatient loads a patient that may still be modified.
func (s *Service) livePatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "patient")
	}
	if patient.IsDeleted {
		return nil, apperrors.NotFound("patient", nil)
	}
	return patient, nil
}

// checkEmail rejects an email held by another patient, deleted or not.
func (s *Service) checkEmail(ctx context.Context, email *string, excludeID *uuid.UUID) error {
	if email == nil {
		return nil
	}
	taken, err := s.repo.EmailTaken(ctx, *email, excludeID)
	if err != nil {
		return service.Classify(err, "patient")
	}
	if taken {
		return apperrors.Conflict("a patient with this email already exists", nil)
	}
	return nil
}

func normalizeEmail(email *string) *string {
	if email == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" {
		return nil
	}
	return &normalized
}
