package appointment

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

type AppointmentService interface {
	CreateAppointment(ctx context.Context, actor *model.Principal, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error)
	MyAppointments(ctx context.Context, actor *model.Principal, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error)
	UpdateAppointment(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, req *model.CancelAppointmentRequest) (*model.Appointment, error)
}

type Service struct {
	tx               repository.Transactor
	repo             repository.AppointmentRepository
	patientRepo      repository.PatientRepository
	profiles         repository.ProfileRepository
	prescriptionRepo repository.PrescriptionRepository
	events           event.Recorder
}

func NewService(tx repository.Transactor, repo repository.AppointmentRepository, patientRepo repository.PatientRepository,
	profiles repository.ProfileRepository, prescriptionRepo repository.PrescriptionRepository, events event.Recorder) *Service {
	return &Service{
		tx:               tx,
		repo:             repo,
		patientRepo:      patientRepo,
		profiles:         profiles,
		prescriptionRepo: prescriptionRepo,
		events:           events,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, actor *model.Principal, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	receptionist, err := service.ReceptionistProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}
	patient, err := service.ActivePatient(ctx, s.patientRepo, req.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := service.ActiveDoctor(ctx, s.profiles, req.DoctorID)
	if err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Base:            model.NewBase(),
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		ReceptionistID:  receptionist.ID,
		AppointmentDate: *req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Status:          model.AppointmentStatusScheduled,
		Reason:          req.Reason,
		Notes:           req.Notes,
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, appointment); err != nil {
			return err
		}
		return s.events.Record(ctx, model.EventAppointmentCreated, appointment.ID, eventPayload(appointment, patient, doctor))
	})
	if err != nil {
		return nil, service.Classify(err, "appointment")
	}
	return appointment, nil
}

func (s *Service) ListAppointments(ctx context.Context, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error) {
	appointments, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "appointment")
	}
	return appointments, total, nil
}

// GetAppointment returns the appointment with its prescription, if any.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error) {
	view, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "appointment")
	}

	prescription, err := s.prescriptionRepo.GetByAppointment(ctx, id)
	switch {
	case err == nil:
		view.Prescription = prescription
	case !errors.Is(err, repository.ErrNotFound):
		return nil, service.Classify(err, "prescription")
	}
	return view, nil
}

// MyAppointments lists the acting doctor's appointments with prescriptions
// embedded.
func (s *Service) MyAppointments(ctx context.Context, actor *model.Principal, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error) {
	doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, 0, err
	}
	filter.DoctorID = &doctor.ID

	appointments, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "appointment")
	}
	if len(appointments) == 0 {
		return appointments, total, nil
	}

	ids := make([]uuid.UUID, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.ID)
	}
	prescriptions, err := s.prescriptionRepo.ListByAppointments(ctx, ids)
	if err != nil {
		return nil, 0, service.Classify(err, "prescription")
	}
	byAppointment := make(map[uuid.UUID]*model.Prescription, len(prescriptions))
	for _, p := range prescriptions {
		byAppointment[p.AppointmentID] = p
	}
	for i := range appointments {
		appointments[i].Prescription = byAppointment[appointments[i].ID]
	}
	return appointments, total, nil
}

// UpdateAppointment applies a partial update. Status changes follow the
// appointment state machine; a doctor may only touch their own appointments.
func (s *Service) UpdateAppointment(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	var updated *model.Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		appointment, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if actor.Role == model.RoleDoctor {
			doctor, err := service.DoctorProfile(ctx, s.profiles, actor)
			if err != nil {
				return err
			}
			if appointment.DoctorID != doctor.ID {
				return apperrors.Forbidden("you can only update your own appointments")
			}
		}

		if (req.AppointmentDate != nil || req.AppointmentTime != nil) && appointment.Status.IsTerminal() {
			return apperrors.InvalidTarget("cannot reschedule a " + strings.ToLower(string(appointment.Status)) + " appointment")
		}

		cancelled := false
		if req.Status != nil && *req.Status != appointment.Status {
			if !appointment.Status.CanTransitionTo(*req.Status) {
				return apperrors.InvalidTarget("cannot change appointment status from " + string(appointment.Status) + " to " + string(*req.Status))
			}
			appointment.Status = *req.Status
			cancelled = appointment.Status == model.AppointmentStatusCancelled
		}
		if req.AppointmentDate != nil {
			appointment.AppointmentDate = *req.AppointmentDate
		}
		if req.AppointmentTime != nil {
			appointment.AppointmentTime = *req.AppointmentTime
		}
		if req.Reason != nil {
			appointment.Reason = req.Reason
		}
		if req.Notes != nil {
			appointment.Notes = req.Notes
		}

		if err := s.repo.Update(ctx, appointment); err != nil {
			return err
		}
		if cancelled {
			if err := s.recordCancelled(ctx, appointment); err != nil {
				return err
			}
		}
		updated = appointment
		return nil
	})
	if err != nil {
		return nil, service.Classify(err, "appointment")
	}
	return updated, nil
}

// CancelAppointment moves any non-terminal appointment to CANCELLED and
// appends the reason to its notes.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, req *model.CancelAppointmentRequest) (*model.Appointment, error) {
	var cancelled *model.Appointment
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		appointment, err := s.repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if !appointment.Status.CanTransitionTo(model.AppointmentStatusCancelled) {
			return apperrors.InvalidTarget("cannot cancel a " + strings.ToLower(string(appointment.Status)) + " appointment")
		}

		appointment.Status = model.AppointmentStatusCancelled
		if req != nil && req.Reason != nil && strings.TrimSpace(*req.Reason) != "" {
			note := "Cancellation reason: " + strings.TrimSpace(*req.Reason)
			if appointment.Notes != nil && *appointment.Notes != "" {
				note = *appointment.Notes + "\n" + note
			}
			appointment.Notes = &note
		}

		if err := s.repo.Update(ctx, appointment); err != nil {
			return err
		}
		if err := s.recordCancelled(ctx, appointment); err != nil {
			return err
		}
		cancelled = appointment
		return nil
	})
	if err != nil {
		return nil, service.Classify(err, "appointment")
	}
	return cancelled, nil
}

func (s *Service) recordCancelled(ctx context.Context, appointment *model.Appointment) error {
	patient, err := s.patientRepo.GetByID(ctx, appointment.PatientID)
	if err != nil {
		return err
	}
	doctor, err := s.profiles.GetDoctorSummary(ctx, appointment.DoctorID)
	if err != nil {
		return err
	}
	return s.events.Record(ctx, model.EventAppointmentCancelled, appointment.ID, eventPayload(appointment, patient, doctor))
}

func eventPayload(a *model.Appointment, p *model.Patient, d *model.DoctorSummary) model.AppointmentEventPayload {
	return model.AppointmentEventPayload{
		AppointmentID:   a.ID,
		PatientID:       p.ID,
		PatientName:     strings.TrimSpace(p.FirstName + " " + p.LastName),
		PatientEmail:    p.Email,
		DoctorName:      strings.TrimSpace(d.FirstName + " " + d.LastName),
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		Reason:          a.Reason,
	}
}
