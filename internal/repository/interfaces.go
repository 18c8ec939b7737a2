package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
)

// All repository interfaces in one file
type (
	// Transactor runs fn in a unit of work. Repositories called with the
	// context passed to fn take part in the same transaction.
	Transactor interface {
		WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// UserRepository handles user accounts
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
		ToggleActive(ctx context.Context, id uuid.UUID) (*model.User, error)
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter model.UserFilter, page model.Page) ([]*model.User, int, error)
	}

	// ProfileRepository handles the role-specific extension records
	ProfileRepository interface {
		CreateDoctor(ctx context.Context, doctor *model.Doctor) error
		CreateReceptionist(ctx context.Context, receptionist *model.Receptionist) error
		CreateLabStaff(ctx context.Context, staff *model.LabStaff) error
		UpdateDoctor(ctx context.Context, doctor *model.Doctor) error
		UpdateReceptionist(ctx context.Context, receptionist *model.Receptionist) error
		UpdateLabStaff(ctx context.Context, staff *model.LabStaff) error
		GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
		GetReceptionistByUserID(ctx context.Context, userID uuid.UUID) (*model.Receptionist, error)
		GetLabStaffByUserID(ctx context.Context, userID uuid.UUID) (*model.LabStaff, error)
		GetDoctorSummary(ctx context.Context, doctorID uuid.UUID) (*model.DoctorSummary, error)
		ListDoctors(ctx context.Context, specialization string) ([]*model.DoctorSummary, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
		AssignDoctor(ctx context.Context, patientID, doctorID uuid.UUID) error
		EmailTaken(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error)
		List(ctx context.Context, filter model.PatientFilter, page model.Page) ([]*model.PatientListItem, int, error)
		ListAssigned(ctx context.Context, doctorID uuid.UUID, search string, page model.Page) ([]*model.AssignedPatient, int, error)
	}

	MedicalRecordRepository interface {
		Create(ctx context.Context, record *model.MedicalRecord) error
		ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]model.MedicalRecord, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// GetForUpdate locks the row until the surrounding transaction ends.
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		GetView(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error)
	}

	PrescriptionRepository interface {
		Create(ctx context.Context, prescription *model.Prescription) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		GetView(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error)
		ListByAppointments(ctx context.Context, appointmentIDs []uuid.UUID) ([]*model.Prescription, error)
		Update(ctx context.Context, prescription *model.Prescription) error
		List(ctx context.Context, filter model.PrescriptionFilter, page model.Page) ([]model.PrescriptionView, int, error)
	}

	TreatmentRepository interface {
		Create(ctx context.Context, treatment *model.Treatment) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Treatment, error)
		Update(ctx context.Context, treatment *model.Treatment) error
		List(ctx context.Context, filter model.TreatmentFilter, page model.Page) ([]model.TreatmentView, int, error)
	}

	LabReportRepository interface {
		Create(ctx context.Context, report *model.LabReport) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.LabReport, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LabReport, error)
		GetView(ctx context.Context, id uuid.UUID) (*model.LabReportView, error)
		Update(ctx context.Context, report *model.LabReport) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error)
	}

	BillingRepository interface {
		Create(ctx context.Context, billing *model.Billing) error
		GetByID(ctx context.Context, id uuid.UUID) (*model.Billing, error)
		GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Billing, error)
		GetView(ctx context.Context, id uuid.UUID) (*model.BillingView, error)
		Update(ctx context.Context, billing *model.Billing) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filter model.BillingFilter, page model.Page) ([]model.BillingView, int, error)
	}

	// StatsRepository serves read-only aggregates
	StatsRepository interface {
		Dashboard(ctx context.Context, day model.Date) (*model.DashboardStats, error)
		DoctorStats(ctx context.Context, doctorID uuid.UUID, day model.Date) (*model.DoctorStats, error)
		PatientCounts(ctx context.Context, r model.DateRange) (total int, created int, err error)
		PatientsByGender(ctx context.Context) ([]model.GroupCount, error)
		DoctorsBySpecialization(ctx context.Context) ([]model.GroupCount, error)
		AppointmentsByStatus(ctx context.Context, r model.DateRange) ([]model.GroupCount, error)
		LabReportsByStatus(ctx context.Context, r model.DateRange) ([]model.GroupCount, error)
		RevenueByStatus(ctx context.Context, r model.DateRange) ([]model.RevenueByStatus, error)
		TreatmentCount(ctx context.Context, r model.DateRange) (int, error)
		UsersByRole(ctx context.Context) ([]model.GroupCount, error)
		ActiveUsers(ctx context.Context) (int, error)
	}

	// OutboxRepository stores domain events until the relay publishes them
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkFailed(ctx context.Context, id uuid.UUID, reason string, retryAt time.Time) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
