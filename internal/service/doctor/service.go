package doctor

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

const (
	dashboardAppointments = 50
	dashboardPatients     = 5
)

// DoctorService is the workspace of the authenticated doctor
type DoctorService interface {
	Dashboard(ctx context.Context, actor *model.Principal) (*model.DoctorDashboard, error)
	AssignedPatients(ctx context.Context, actor *model.Principal, search string, page model.Page) ([]*model.AssignedPatient, int, error)
	CreateTreatment(ctx context.Context, actor *model.Principal, patientID uuid.UUID, req *model.CreateTreatmentRequest) (*model.Treatment, error)
	ListTreatments(ctx context.Context, patientID uuid.UUID, search string, page model.Page) ([]model.TreatmentView, int, error)
	UpdateTreatment(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateTreatmentRequest) (*model.Treatment, error)
	LabResults(ctx context.Context, patientID uuid.UUID, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error)
}

type Service struct {
	profiles        repository.ProfileRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	treatmentRepo   repository.TreatmentRepository
	labReportRepo   repository.LabReportRepository
	stats           repository.StatsRepository
	now             func() time.Time
}

func NewService(profiles repository.ProfileRepository, patientRepo repository.PatientRepository, appointmentRepo repository.AppointmentRepository,
	treatmentRepo repository.TreatmentRepository, labReportRepo repository.LabReportRepository, stats repository.StatsRepository) *Service {
	return &Service{
		profiles:        profiles,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		treatmentRepo:   treatmentRepo,
		labReportRepo:   labReportRepo,
		stats:           stats,
		now:             time.Now,
	}
}

func (s *Service) Dashboard(ctx context.Context, actor *model.Principal) (*model.DoctorDashboard, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	today := model.NewDate(s.now())

	stats, err := s.stats.DoctorStats(ctx, doctor.ID, today)
	if err != nil {
		return nil, service.Classify(err, "doctor stats")
	}

	appointments, _, err := s.appointmentRepo.List(ctx,
		model.AppointmentFilter{DoctorID: &doctor.ID, Date: &today},
		model.Page{Page: 1, Limit: dashboardAppointments})
	if err != nil {
		return nil, service.Classify(err, "appointment")
	}

	patients, _, err := s.patientRepo.ListAssigned(ctx, doctor.ID, "", model.Page{Page: 1, Limit: dashboardPatients})
	if err != nil {
		return nil, service.Classify(err, "patient")
	}

	dashboard := &model.DoctorDashboard{
		Stats:             *stats,
		TodayAppointments: appointments,
		AssignedPatients:  make([]model.AssignedPatient, 0, len(patients)),
	}
	for _, p := range patients {
		dashboard.AssignedPatients = append(dashboard.AssignedPatients, *p)
	}
	return dashboard, nil
}

func (s *Service) AssignedPatients(ctx context.Context, actor *model.Principal, search string, page model.Page) ([]*model.AssignedPatient, int, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, 0, err
	}
	patients, total, err := s.patientRepo.ListAssigned(ctx, doctor.ID, strings.TrimSpace(search), page)
	if err != nil {
		return nil, 0, service.Classify(err, "patient")
	}
	return patients, total, nil
}

func (s *Service) CreateTreatment(ctx context.Context, actor *model.Principal, patientID uuid.UUID, req *model.CreateTreatmentRequest) (*model.Treatment, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	if _, err := service.ActivePatient(ctx, s.patientRepo, patientID); err != nil {
		return nil, err
	}

	treatment := &model.Treatment{
		Base:          model.NewBase(),
		PatientID:     patientID,
		DoctorID:      doctor.ID,
		Diagnosis:     strings.TrimSpace(req.Diagnosis),
		Treatment:     strings.TrimSpace(req.Treatment),
		Medications:   req.Medications,
		Notes:         req.Notes,
		FollowUpDate:  req.FollowUpDate,
		TreatmentDate: s.now().UTC(),
	}
	if req.TreatmentDate != nil {
		treatment.TreatmentDate = req.TreatmentDate.Time
	}

	if err := s.treatmentRepo.Create(ctx, treatment); err != nil {
		return nil, service.Classify(err, "treatment")
	}
	return treatment, nil
}

func (s *Service) ListTreatments(ctx context.Context, patientID uuid.UUID, search string, page model.Page) ([]model.TreatmentView, int, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, 0, service.Classify(err, "patient")
	}
	filter := model.TreatmentFilter{PatientID: patientID, Search: strings.TrimSpace(search)}
	treatments, total, err := s.treatmentRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "treatment")
	}
	return treatments, total, nil
}

// UpdateTreatment is limited to the doctor who recorded the treatment.
func (s *Service) UpdateTreatment(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateTreatmentRequest) (*model.Treatment, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	treatment, err := s.treatmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "treatment")
	}
	if treatment.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden("you can only update your own treatments")
	}

	if req.Diagnosis != nil {
		treatment.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.Treatment != nil {
		treatment.Treatment = strings.TrimSpace(*req.Treatment)
	}
	if req.Medications != nil {
		treatment.Medications = req.Medications
	}
	if req.Notes != nil {
		treatment.Notes = req.Notes
	}
	if req.FollowUpDate != nil {
		treatment.FollowUpDate = req.FollowUpDate
	}

	if err := s.treatmentRepo.Update(ctx, treatment); err != nil {
		return nil, service.Classify(err, "treatment")
	}
	return treatment, nil
}

func (s *Service) LabResults(ctx context.Context, patientID uuid.UUID, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error) {
	if _, err := s.patientRepo.GetByID(ctx, patientID); err != nil {
		return nil, 0, service.Classify(err, "patient")
	}
	filter.PatientID = &patientID
	reports, total, err := s.labReportRepo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "lab report")
	}
	return reports, total, nil
}
