package prescription

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	"github.com/jwalitptl/hms-api/internal/service/event"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type PrescriptionService interface {
	CreatePrescription(ctx context.Context, actor *model.Principal, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	ListPrescriptions(ctx context.Context, filter model.PrescriptionFilter, page model.Page) ([]model.PrescriptionView, int, error)
	GetPrescription(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error)
	MyPrescriptions(ctx context.Context, actor *model.Principal, page model.Page) ([]model.PrescriptionView, int, error)
	UpdatePrescription(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error)
}

type Service struct {
	tx              repository.Transactor
	repo            repository.PrescriptionRepository
	appointmentRepo repository.AppointmentRepository
	profiles        repository.ProfileRepository
	events          event.Recorder
}

func NewService(tx repository.Transactor, repo repository.PrescriptionRepository, appointmentRepo repository.AppointmentRepository,
	profiles repository.ProfileRepository, events event.Recorder) *Service {
	return &Service{
		tx:              tx,
		repo:            repo,
		appointmentRepo: appointmentRepo,
		profiles:        profiles,
		events:          events,
	}
}

// CreatePrescription writes the prescription and completes its appointment
// in one transaction. The appointment row stays locked until commit, so two
// concurrent attempts cannot both pass the existence check.
func (s *Service) CreatePrescription(ctx context.Context, actor *model.Principal, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	var created *model.Prescription
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		appointment, err := s.appointmentRepo.GetForUpdate(ctx, req.AppointmentID)
		if err != nil {
			return service.Classify(err, "appointment")
		}
		if appointment.DoctorID != doctor.ID {
			return apperrors.Forbidden("you can only prescribe for your own appointments")
		}
		if appointment.Status == model.AppointmentStatusCancelled {
			return apperrors.InvalidTarget("cannot prescribe for a cancelled appointment")
		}
		if req.PatientID != nil && *req.PatientID != appointment.PatientID {
			return apperrors.InvalidTarget("patient does not match the appointment")
		}

		_, err = s.repo.GetByAppointment(ctx, appointment.ID)
		if err == nil {
			return apperrors.Conflict("prescription already exists for this appointment", nil)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		prescription := &model.Prescription{
			Base:          model.NewBase(),
			AppointmentID: appointment.ID,
			PatientID:     appointment.PatientID,
			DoctorID:      doctor.ID,
			Diagnosis:     strings.TrimSpace(req.Diagnosis),
			Medicines:     req.Medicines,
			Instructions:  req.Instructions,
			FollowUpDate:  req.FollowUpDate,
		}
		if err := s.repo.Create(ctx, prescription); err != nil {
			if repository.IsDuplicate(err, "appointment_id") {
				return apperrors.Conflict("prescription already exists for this appointment", err)
			}
			return err
		}

		if appointment.Status != model.AppointmentStatusCompleted {
			appointment.Status = model.AppointmentStatusCompleted
			if err := s.appointmentRepo.Update(ctx, appointment); err != nil {
				return err
			}
		}

		created = prescription
		return s.events.Record(ctx, model.EventPrescriptionCreated, prescription.ID, model.PrescriptionEventPayload{
			PrescriptionID: prescription.ID,
			AppointmentID:  appointment.ID,
			PatientID:      appointment.PatientID,
			DoctorID:       doctor.ID,
		})
	})
	if err != nil {
		return nil, service.Classify(err, "prescription")
	}
	return created, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, filter model.PrescriptionFilter, page model.Page) ([]model.PrescriptionView, int, error) {
	prescriptions, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "prescription")
	}
	return prescriptions, total, nil
}

func (s *Service) GetPrescription(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error) {
	prescription, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "prescription")
	}
	return prescription, nil
}

func (s *Service) MyPrescriptions(ctx context.Context, actor *model.Principal, page model.Page) ([]model.PrescriptionView, int, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, 0, err
	}
	return s.ListPrescriptions(ctx, model.PrescriptionFilter{DoctorID: &doctor.ID}, page)
}

// UpdatePrescription is limited to the authoring doctor.
func (s *Service) UpdatePrescription(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdatePrescriptionRequest) (*model.Prescription, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	prescription, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "prescription")
	}
	if prescription.DoctorID != doctor.ID {
		return nil, apperrors.Forbidden("you can only update your own prescriptions")
	}

	if req.Diagnosis != nil {
		prescription.Diagnosis = strings.TrimSpace(*req.Diagnosis)
	}
	if req.Medicines != nil {
		prescription.Medicines = req.Medicines
	}
	if req.Instructions != nil {
		prescription.Instructions = req.Instructions
	}
	if req.FollowUpDate != nil {
		prescription.FollowUpDate = req.FollowUpDate
	}

	if err := s.repo.Update(ctx, prescription); err != nil {
		return nil, service.Classify(err, "prescription")
	}
	return prescription, nil
}
