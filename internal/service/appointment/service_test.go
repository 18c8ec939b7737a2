package appointment

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
	appointments  *mocks.AppointmentRepository
	patients      *mocks.PatientRepository
	profiles      *mocks.ProfileRepository
	prescriptions *mocks.PrescriptionRepository
	events        *mocks.Recorder
}

func newFixture() *fixture {
	f := &fixture{
		tx:            &mocks.Transactor{},
		appointments:  &mocks.AppointmentRepository{},
		patients:      &mocks.PatientRepository{},
		profiles:      &mocks.ProfileRepository{},
		prescriptions: &mocks.PrescriptionRepository{},
		events:        &mocks.Recorder{},
	}
	f.svc = NewService(f.tx, f.appointments, f.patients, f.profiles, f.prescriptions, f.events)
	return f
}

func createRequest(patientID, doctorID uuid.UUID) *model.CreateAppointmentRequest {
	day, _ := model.ParseDate("2024-06-03")
	return &model.CreateAppointmentRequest{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: &day,
		AppointmentTime: "10:30",
	}
}

func TestCreateAppointment(t *testing.T) {
	f := newFixture()
	actor := &model.Principal{UserID: uuid.New(), Role: model.RoleReceptionist}
	email := "pat@example.com"
	patient := &model.Patient{Base: model.NewBase(), FirstName: "Pat", LastName: "Lee", Email: &email}
	doctor := &model.DoctorSummary{ID: uuid.New(), FirstName: "Meredith", LastName: "Grey", IsActive: true}

	f.profiles.On("GetReceptionistByUserID", mock.Anything, actor.UserID).Return(&model.Receptionist{ID: uuid.New()}, nil)
	f.patients.On("GetByID", mock.Anything, patient.ID).Return(patient, nil)
	f.profiles.On("GetDoctorSummary", mock.Anything, doctor.ID).Return(doctor, nil)
	f.appointments.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.events.On("Record", mock.Anything, model.EventAppointmentCreated, mock.Anything,
		mock.MatchedBy(func(p model.AppointmentEventPayload) bool {
			return p.PatientName == "Pat Lee" && p.DoctorName == "Meredith Grey" && *p.PatientEmail == email
		})).Return(nil)

	appointment, err := f.svc.CreateAppointment(context.Background(), actor, createRequest(patient.ID, doctor.ID))
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, appointment.Status)
	assert.Equal(t, 1, f.tx.Calls)
	f.events.AssertExpectations(t)
}

func TestCreateAppointment_Preconditions(t *testing.T) {
	actor := &model.Principal{UserID: uuid.New(), Role: model.RoleReceptionist}
	livePatient := &model.Patient{Base: model.NewBase()}
	deletedPatient := &model.Patient{Base: model.NewBase(), IsDeleted: true}
	inactiveDoctor := &model.DoctorSummary{ID: uuid.New()}
	missingDoctor := uuid.New()
	missingPatient := uuid.New()

	tests := []struct {
		name      string
		patientID uuid.UUID
		doctorID  uuid.UUID
		code      apperrors.ErrorCode
	}{
		{"missing patient", missingPatient, inactiveDoctor.ID, apperrors.ErrNotFound},
		{"deleted patient", deletedPatient.ID, inactiveDoctor.ID, apperrors.ErrInvalidTarget},
		{"missing doctor", livePatient.ID, missingDoctor, apperrors.ErrNotFound},
		{"inactive doctor", livePatient.ID, inactiveDoctor.ID, apperrors.ErrInvalidTarget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.profiles.On("GetReceptionistByUserID", mock.Anything, actor.UserID).Return(&model.Receptionist{ID: uuid.New()}, nil)
			f.patients.On("GetByID", mock.Anything, livePatient.ID).Return(livePatient, nil)
			f.patients.On("GetByID", mock.Anything, deletedPatient.ID).Return(deletedPatient, nil)
			f.patients.On("GetByID", mock.Anything, missingPatient).Return(nil, repository.ErrNotFound)
			f.profiles.On("GetDoctorSummary", mock.Anything, inactiveDoctor.ID).Return(inactiveDoctor, nil)
			f.profiles.On("GetDoctorSummary", mock.Anything, missingDoctor).Return(nil, repository.ErrNotFound)

			_, err := f.svc.CreateAppointment(context.Background(), actor, createRequest(tt.patientID, tt.doctorID))
			assert.True(t, apperrors.Is(err, tt.code), "got %v", err)
			f.appointments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateAppointment_Transitions(t *testing.T) {
	receptionist := &model.Principal{UserID: uuid.New(), Role: model.RoleReceptionist}
	status := func(s model.AppointmentStatus) *model.AppointmentStatus { return &s }

	tests := []struct {
		name    string
		current model.AppointmentStatus
		next    model.AppointmentStatus
		ok      bool
	}{
		{"scheduled to in progress", model.AppointmentStatusScheduled, model.AppointmentStatusInProgress, true},
		{"in progress to completed", model.AppointmentStatusInProgress, model.AppointmentStatusCompleted, true},
		{"same status is a no-op", model.AppointmentStatusCompleted, model.AppointmentStatusCompleted, true},
		{"in progress back to scheduled", model.AppointmentStatusInProgress, model.AppointmentStatusScheduled, false},
		{"completed to cancelled", model.AppointmentStatusCompleted, model.AppointmentStatusCancelled, false},
		{"cancelled to scheduled", model.AppointmentStatusCancelled, model.AppointmentStatusScheduled, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			appointment := &model.Appointment{Base: model.NewBase(), Status: tt.current}
			f.appointments.On("GetForUpdate", mock.Anything, appointment.ID).Return(appointment, nil)
			f.appointments.On("Update", mock.Anything, appointment).Return(nil)

			updated, err := f.svc.UpdateAppointment(context.Background(), receptionist, appointment.ID,
				&model.UpdateAppointmentRequest{Status: status(tt.next)})
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.next, updated.Status)
				return
			}
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget), "got %v", err)
			f.appointments.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateAppointment_RescheduleTerminal(t *testing.T) {
	f := newFixture()
	appointment := &model.Appointment{Base: model.NewBase(), Status: model.AppointmentStatusCompleted}
	f.appointments.On("GetForUpdate", mock.Anything, appointment.ID).Return(appointment, nil)
	newTime := "11:00"

	_, err := f.svc.UpdateAppointment(context.Background(), &model.Principal{Role: model.RoleAdmin}, appointment.ID,
		&model.UpdateAppointmentRequest{AppointmentTime: &newTime})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
}

func TestUpdateAppointment_OtherDoctor(t *testing.T) {
	f := newFixture()
	actor := &model.Principal{UserID: uuid.New(), Role: model.RoleDoctor}
	appointment := &model.Appointment{Base: model.NewBase(), DoctorID: uuid.New(), Status: model.AppointmentStatusScheduled}
	f.appointments.On("GetForUpdate", mock.Anything, appointment.ID).Return(appointment, nil)
	f.profiles.On("GetDoctorByUserID", mock.Anything, actor.UserID).Return(&model.Doctor{ID: uuid.New()}, nil)
	notes := "seen"

	_, err := f.svc.UpdateAppointment(context.Background(), actor, appointment.ID, &model.UpdateAppointmentRequest{Notes: &notes})
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestCancelAppointment(t *testing.T) {
	f := newFixture()
	notes := "bring reports"
	appointment := &model.Appointment{Base: model.NewBase(), PatientID: uuid.New(), DoctorID: uuid.New(),
		Status: model.AppointmentStatusInProgress, Notes: &notes}
	f.appointments.On("GetForUpdate", mock.Anything, appointment.ID).Return(appointment, nil)
	f.appointments.On("Update", mock.Anything, appointment).Return(nil)
	f.patients.On("GetByID", mock.Anything, appointment.PatientID).Return(&model.Patient{Base: model.Base{ID: appointment.PatientID}}, nil)
	f.profiles.On("GetDoctorSummary", mock.Anything, appointment.DoctorID).Return(&model.DoctorSummary{ID: appointment.DoctorID}, nil)
	f.events.On("Record", mock.Anything, model.EventAppointmentCancelled, appointment.ID, mock.Anything).Return(nil)
	reason := "patient unwell"

	cancelled, err := f.svc.CancelAppointment(context.Background(), appointment.ID, &model.CancelAppointmentRequest{Reason: &reason})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, "bring reports\nCancellation reason: patient unwell", *cancelled.Notes)
	f.events.AssertExpectations(t)

	_, err = f.svc.CancelAppointment(context.Background(), appointment.ID, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
}

func TestGetAppointment_EmbedsPrescription(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	view := &model.AppointmentView{Appointment: model.Appointment{Base: model.Base{ID: id}}}
	prescription := &model.Prescription{AppointmentID: id, Diagnosis: "Flu"}
	f.appointments.On("GetView", mock.Anything, id).Return(view, nil)
	f.prescriptions.On("GetByAppointment", mock.Anything, id).Return(prescription, nil)

	got, err := f.svc.GetAppointment(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Flu", got.Prescription.Diagnosis)
}

func TestMyAppointments(t *testing.T) {
	f := newFixture()
	actor := &model.Principal{UserID: uuid.New(), Role: model.RoleDoctor}
	doctor := &model.Doctor{ID: uuid.New()}
	first, second := uuid.New(), uuid.New()
	page := model.Page{Page: 1, Limit: 10}

	f.profiles.On("GetDoctorByUserID", mock.Anything, actor.UserID).Return(doctor, nil)
	f.appointments.On("List", mock.Anything, model.AppointmentFilter{DoctorID: &doctor.ID}, page).Return([]model.AppointmentView{
		{Appointment: model.Appointment{Base: model.Base{ID: first}}},
		{Appointment: model.Appointment{Base: model.Base{ID: second}}},
	}, 2, nil)
	f.prescriptions.On("ListByAppointments", mock.Anything, []uuid.UUID{first, second}).
		Return([]*model.Prescription{{AppointmentID: second}}, nil)

	list, total, err := f.svc.MyAppointments(context.Background(), actor, model.AppointmentFilter{}, page)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Nil(t, list[0].Prescription)
	assert.NotNil(t, list[1].Prescription)
}
