package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/hms-api/internal/model"
)

// Transactor runs fn directly on the caller's context.
type Transactor struct {
	Calls int
}

func (t *Transactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.Calls++
	return fn(ctx)
}

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *UserRepository) ToggleActive(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *UserRepository) List(ctx context.Context, filter model.UserFilter, page model.Page) ([]*model.User, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.User), args.Get(1).(int), args.Error(2)
}

type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) CreateDoctor(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *ProfileRepository) CreateReceptionist(ctx context.Context, receptionist *model.Receptionist) error {
	return m.Called(ctx, receptionist).Error(0)
}

func (m *ProfileRepository) CreateLabStaff(ctx context.Context, staff *model.LabStaff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *ProfileRepository) UpdateDoctor(ctx context.Context, doctor *model.Doctor) error {
	return m.Called(ctx, doctor).Error(0)
}

func (m *ProfileRepository) UpdateReceptionist(ctx context.Context, receptionist *model.Receptionist) error {
	return m.Called(ctx, receptionist).Error(0)
}

func (m *ProfileRepository) UpdateLabStaff(ctx context.Context, staff *model.LabStaff) error {
	return m.Called(ctx, staff).Error(0)
}

func (m *ProfileRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Doctor), args.Error(1)
}

func (m *ProfileRepository) GetReceptionistByUserID(ctx context.Context, userID uuid.UUID) (*model.Receptionist, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Receptionist), args.Error(1)
}

func (m *ProfileRepository) GetLabStaffByUserID(ctx context.Context, userID uuid.UUID) (*model.LabStaff, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabStaff), args.Error(1)
}

func (m *ProfileRepository) GetDoctorSummary(ctx context.Context, doctorID uuid.UUID) (*model.DoctorSummary, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorSummary), args.Error(1)
}

func (m *ProfileRepository) ListDoctors(ctx context.Context, specialization string) ([]*model.DoctorSummary, error) {
	args := m.Called(ctx, specialization)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.DoctorSummary), args.Error(1)
}

type PatientRepository struct {
	mock.Mock
}

func (m *PatientRepository) Create(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Patient), args.Error(1)
}

func (m *PatientRepository) Update(ctx context.Context, patient *model.Patient) error {
	return m.Called(ctx, patient).Error(0)
}

func (m *PatientRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *PatientRepository) AssignDoctor(ctx context.Context, patientID uuid.UUID, doctorID uuid.UUID) error {
	return m.Called(ctx, patientID, doctorID).Error(0)
}

func (m *PatientRepository) EmailTaken(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, email, excludeID)
	return args.Get(0).(bool), args.Error(1)
}

func (m *PatientRepository) List(ctx context.Context, filter model.PatientFilter, page model.Page) ([]*model.PatientListItem, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.PatientListItem), args.Get(1).(int), args.Error(2)
}

func (m *PatientRepository) ListAssigned(ctx context.Context, doctorID uuid.UUID, search string, page model.Page) ([]*model.AssignedPatient, int, error) {
	args := m.Called(ctx, doctorID, search, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*model.AssignedPatient), args.Get(1).(int), args.Error(2)
}

type MedicalRecordRepository struct {
	mock.Mock
}

func (m *MedicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MedicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]model.MedicalRecord, error) {
	args := m.Called(ctx, patientID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.MedicalRecord), args.Error(1)
}

type AppointmentRepository struct {
	mock.Mock
}

func (m *AppointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Appointment), args.Error(1)
}

func (m *AppointmentRepository) GetView(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AppointmentView), args.Error(1)
}

func (m *AppointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	return m.Called(ctx, appointment).Error(0)
}

func (m *AppointmentRepository) List(ctx context.Context, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.AppointmentView), args.Get(1).(int), args.Error(2)
}

type PrescriptionRepository struct {
	mock.Mock
}

func (m *PrescriptionRepository) Create(ctx context.Context, prescription *model.Prescription) error {
	return m.Called(ctx, prescription).Error(0)
}

func (m *PrescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prescription), args.Error(1)
}

func (m *PrescriptionRepository) GetView(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PrescriptionView), args.Error(1)
}

func (m *PrescriptionRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prescription), args.Error(1)
}

func (m *PrescriptionRepository) ListByAppointments(ctx context.Context, appointmentIDs []uuid.UUID) ([]*model.Prescription, error) {
	args := m.Called(ctx, appointmentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Prescription), args.Error(1)
}

func (m *PrescriptionRepository) Update(ctx context.Context, prescription *model.Prescription) error {
	return m.Called(ctx, prescription).Error(0)
}

func (m *PrescriptionRepository) List(ctx context.Context, filter model.PrescriptionFilter, page model.Page) ([]model.PrescriptionView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.PrescriptionView), args.Get(1).(int), args.Error(2)
}

type TreatmentRepository struct {
	mock.Mock
}

func (m *TreatmentRepository) Create(ctx context.Context, treatment *model.Treatment) error {
	return m.Called(ctx, treatment).Error(0)
}

func (m *TreatmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Treatment), args.Error(1)
}

func (m *TreatmentRepository) Update(ctx context.Context, treatment *model.Treatment) error {
	return m.Called(ctx, treatment).Error(0)
}

func (m *TreatmentRepository) List(ctx context.Context, filter model.TreatmentFilter, page model.Page) ([]model.TreatmentView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.TreatmentView), args.Get(1).(int), args.Error(2)
}

type LabReportRepository struct {
	mock.Mock
}

func (m *LabReportRepository) Create(ctx context.Context, report *model.LabReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *LabReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LabReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabReport), args.Error(1)
}

func (m *LabReportRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LabReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabReport), args.Error(1)
}

func (m *LabReportRepository) GetView(ctx context.Context, id uuid.UUID) (*model.LabReportView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabReportView), args.Error(1)
}

func (m *LabReportRepository) Update(ctx context.Context, report *model.LabReport) error {
	return m.Called(ctx, report).Error(0)
}

func (m *LabReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *LabReportRepository) List(ctx context.Context, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.LabReportView), args.Get(1).(int), args.Error(2)
}

type BillingRepository struct {
	mock.Mock
}

func (m *BillingRepository) Create(ctx context.Context, billing *model.Billing) error {
	return m.Called(ctx, billing).Error(0)
}

func (m *BillingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Billing), args.Error(1)
}

func (m *BillingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Billing), args.Error(1)
}

func (m *BillingRepository) GetView(ctx context.Context, id uuid.UUID) (*model.BillingView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.BillingView), args.Error(1)
}

func (m *BillingRepository) Update(ctx context.Context, billing *model.Billing) error {
	return m.Called(ctx, billing).Error(0)
}

func (m *BillingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *BillingRepository) List(ctx context.Context, filter model.BillingFilter, page model.Page) ([]model.BillingView, int, error) {
	args := m.Called(ctx, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.BillingView), args.Get(1).(int), args.Error(2)
}

type StatsRepository struct {
	mock.Mock
}

func (m *StatsRepository) Dashboard(ctx context.Context, day model.Date) (*model.DashboardStats, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DashboardStats), args.Error(1)
}

func (m *StatsRepository) DoctorStats(ctx context.Context, doctorID uuid.UUID, day model.Date) (*model.DoctorStats, error) {
	args := m.Called(ctx, doctorID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DoctorStats), args.Error(1)
}

func (m *StatsRepository) PatientCounts(ctx context.Context, r model.DateRange) (int, int, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int), args.Get(1).(int), args.Error(2)
}

func (m *StatsRepository) PatientsByGender(ctx context.Context) ([]model.GroupCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupCount), args.Error(1)
}

func (m *StatsRepository) DoctorsBySpecialization(ctx context.Context) ([]model.GroupCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupCount), args.Error(1)
}

func (m *StatsRepository) AppointmentsByStatus(ctx context.Context, r model.DateRange) ([]model.GroupCount, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupCount), args.Error(1)
}

func (m *StatsRepository) LabReportsByStatus(ctx context.Context, r model.DateRange) ([]model.GroupCount, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupCount), args.Error(1)
}

func (m *StatsRepository) RevenueByStatus(ctx context.Context, r model.DateRange) ([]model.RevenueByStatus, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RevenueByStatus), args.Error(1)
}

func (m *StatsRepository) TreatmentCount(ctx context.Context, r model.DateRange) (int, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int), args.Error(1)
}

func (m *StatsRepository) UsersByRole(ctx context.Context) ([]model.GroupCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.GroupCount), args.Error(1)
}

func (m *StatsRepository) ActiveUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Get(0).(int), args.Error(1)
}

type OutboxRepository struct {
	mock.Mock
}

func (m *OutboxRepository) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *OutboxRepository) GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *OutboxRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string, retryAt time.Time) error {
	return m.Called(ctx, id, reason, retryAt).Error(0)
}

func (m *OutboxRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}
