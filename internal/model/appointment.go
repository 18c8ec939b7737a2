package model

import (
	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "SCHEDULED"
	AppointmentStatusInProgress AppointmentStatus = "IN_PROGRESS"
	AppointmentStatusCompleted  AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled  AppointmentStatus = "CANCELLED"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusScheduled:  {AppointmentStatusInProgress, AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusInProgress: {AppointmentStatusCompleted, AppointmentStatusCancelled},
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled
}

type Appointment struct {
	Base
	PatientID       uuid.UUID         `json:"patientId" db:"patient_id"`
	DoctorID        uuid.UUID         `json:"doctorId" db:"doctor_id"`
	ReceptionistID  uuid.UUID         `json:"receptionistId" db:"receptionist_id"`
	AppointmentDate Date              `json:"appointmentDate" db:"appointment_date"`
	AppointmentTime string            `json:"appointmentTime" db:"appointment_time"`
	Status          AppointmentStatus `json:"status" db:"status"`
	Reason          *string           `json:"reason,omitempty" db:"reason"`
	Notes           *string           `json:"notes,omitempty" db:"notes"`
}

// DoctorRef is the doctor projection embedded in workflow read models
type DoctorRef struct {
	ID             uuid.UUID `json:"id" db:"id"`
	FirstName      string    `json:"firstName" db:"first_name"`
	LastName       string    `json:"lastName" db:"last_name"`
	Specialization string    `json:"specialization" db:"specialization"`
}

// AppointmentView is an appointment with its patient, doctor and, when
// requested, its prescription.
type AppointmentView struct {
	Appointment
	Patient      PersonRef     `json:"patient" db:"patient"`
	Doctor       DoctorRef     `json:"doctor" db:"doctor"`
	Prescription *Prescription `json:"prescription,omitempty" db:"-"`
}

type AppointmentFilter struct {
	Status    AppointmentStatus
	DoctorID  *uuid.UUID
	PatientID *uuid.UUID
	Date      *Date
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patientId" binding:"required"`
	DoctorID        uuid.UUID `json:"doctorId" binding:"required"`
	AppointmentDate *Date     `json:"appointmentDate" binding:"required"`
	AppointmentTime string    `json:"appointmentTime" binding:"required,datetime=15:04"`
	Reason          *string   `json:"reason" binding:"omitempty,max=500"`
	Notes           *string   `json:"notes"`
}

type UpdateAppointmentRequest struct {
	AppointmentDate *Date              `json:"appointmentDate"`
	AppointmentTime *string            `json:"appointmentTime" binding:"omitempty,datetime=15:04"`
	Status          *AppointmentStatus `json:"status" binding:"omitempty,oneof=SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	Reason          *string            `json:"reason" binding:"omitempty,max=500"`
	Notes           *string            `json:"notes"`
}

type CancelAppointmentRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}
