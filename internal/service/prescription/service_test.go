package prescription

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/mocks"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

type fixture struct {
	svc           *Service
	tx            *mocks.Transactor
	prescriptions *mocks.PrescriptionRepository
	appointments  *mocks.AppointmentRepository
	profiles      *mocks.ProfileRepository
	events        *mocks.Recorder

	actor  *model.Principal
	doctor *model.Doctor
}

func newFixture() *fixture {
	f := &fixture{
		tx:            &mocks.Transactor{},
		prescriptions: &mocks.PrescriptionRepository{},
		appointments:  &mocks.AppointmentRepository{},
		profiles:      &mocks.ProfileRepository{},
		events:        &mocks.Recorder{},
		actor:         &model.Principal{UserID: uuid.New(), Role: model.RoleDoctor},
		doctor:        &model.Doctor{ID: uuid.New()},
	}
	f.svc = NewService(f.tx, f.prescriptions, f.appointments, f.profiles, f.events)
	f.profiles.On("GetDoctorByUserID", mock.Anything, f.actor.UserID).Return(f.doctor, nil)
	return f
}

func (f *fixture) appointment(status model.AppointmentStatus, doctorID uuid.UUID) *model.Appointment {
	a := &model.Appointment{Base: model.NewBase(), PatientID: uuid.New(), DoctorID: doctorID, Status: status}
	f.appointments.On("GetForUpdate", mock.Anything, a.ID).Return(a, nil)
	return a
}

func request(appointmentID uuid.UUID) *model.CreatePrescriptionRequest {
	return &model.CreatePrescriptionRequest{
		AppointmentID: appointmentID,
		Diagnosis:     "Hypertension",
		Medicines: []model.Medicine{
			{Name: "Amlodipine", Dosage: "5mg", Frequency: "daily", Duration: "30 days"},
		},
	}
}

func TestCreatePrescription_CompletesAppointment(t *testing.T) {
	f := newFixture()
	appointment := f.appointment(model.AppointmentStatusInProgress, f.doctor.ID)
	f.prescriptions.On("GetByAppointment", mock.Anything, appointment.ID).Return(nil, repository.ErrNotFound)
	f.prescriptions.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.appointments.On("Update", mock.Anything, mock.MatchedBy(func(a *model.Appointment) bool {
		return a.Status == model.AppointmentStatusCompleted
	})).Return(nil)
	f.events.On("Record", mock.Anything, model.EventPrescriptionCreated, mock.Anything, mock.Anything).Return(nil)

	prescription, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
	require.NoError(t, err)
	assert.Equal(t, appointment.PatientID, prescription.PatientID)
	assert.Equal(t, f.doctor.ID, prescription.DoctorID)
	assert.Equal(t, model.AppointmentStatusCompleted, appointment.Status)
	assert.Equal(t, 1, f.tx.Calls)
	f.appointments.AssertExpectations(t)
}

func TestCreatePrescription_AlreadyCompletedWithoutPrescription(t *testing.T) {
	f := newFixture()
	appointment := f.appointment(model.AppointmentStatusCompleted, f.doctor.ID)
	f.prescriptions.On("GetByAppointment", mock.Anything, appointment.ID).Return(nil, repository.ErrNotFound)
	f.prescriptions.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
	require.NoError(t, err)
	f.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreatePrescription_Rejections(t *testing.T) {
	t.Run("other doctor's appointment", func(t *testing.T) {
		f := newFixture()
		appointment := f.appointment(model.AppointmentStatusScheduled, uuid.New())
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
		assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
	})

	t.Run("cancelled appointment", func(t *testing.T) {
		f := newFixture()
		appointment := f.appointment(model.AppointmentStatusCancelled, f.doctor.ID)
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
	})

	t.Run("patient mismatch", func(t *testing.T) {
		f := newFixture()
		appointment := f.appointment(model.AppointmentStatusScheduled, f.doctor.ID)
		req := request(appointment.ID)
		other := uuid.New()
		req.PatientID = &other
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, req)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
	})

	t.Run("second prescription", func(t *testing.T) {
		f := newFixture()
		appointment := f.appointment(model.AppointmentStatusCompleted, f.doctor.ID)
		f.prescriptions.On("GetByAppointment", mock.Anything, appointment.ID).Return(&model.Prescription{}, nil)
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
		f.prescriptions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost race on unique index", func(t *testing.T) {
		f := newFixture()
		appointment := f.appointment(model.AppointmentStatusScheduled, f.doctor.ID)
		f.prescriptions.On("GetByAppointment", mock.Anything, appointment.ID).Return(nil, repository.ErrNotFound)
		f.prescriptions.On("Create", mock.Anything, mock.Anything).Return(&repository.DuplicateError{Field: "appointment_id"})
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(appointment.ID))
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("missing appointment", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.appointments.On("GetForUpdate", mock.Anything, id).Return(nil, repository.ErrNotFound)
		_, err := f.svc.CreatePrescription(context.Background(), f.actor, request(id))
		assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
	})
}

func TestUpdatePrescription_OwnerOnly(t *testing.T) {
	f := newFixture()
	mine := &model.Prescription{Base: model.NewBase(), DoctorID: f.doctor.ID, Diagnosis: "Flu"}
	theirs := &model.Prescription{Base: model.NewBase(), DoctorID: uuid.New()}
	f.prescriptions.On("GetByID", mock.Anything, mine.ID).Return(mine, nil)
	f.prescriptions.On("GetByID", mock.Anything, theirs.ID).Return(theirs, nil)
	f.prescriptions.On("Update", mock.Anything, mine).Return(nil)
	diagnosis := "Influenza A"

	_, err := f.svc.UpdatePrescription(context.Background(), f.actor, theirs.ID, &model.UpdatePrescriptionRequest{Diagnosis: &diagnosis})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	updated, err := f.svc.UpdatePrescription(context.Background(), f.actor, mine.ID, &model.UpdatePrescriptionRequest{Diagnosis: &diagnosis})
	require.NoError(t, err)
	assert.Equal(t, "Influenza A", updated.Diagnosis)
}

func TestMyPrescriptions(t *testing.T) {
	f := newFixture()
	page := model.Page{Page: 1, Limit: 10}
	f.prescriptions.On("List", mock.Anything, model.PrescriptionFilter{DoctorID: &f.doctor.ID}, page).
		Return([]model.PrescriptionView{{}}, 1, nil)

	list, total, err := f.svc.MyPrescriptions(context.Background(), f.actor, page)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
}
