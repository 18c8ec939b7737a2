package model

import (
	"github.com/google/uuid"
)

type Medicine struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
	Duration  string `json:"duration" binding:"required"`
}

// Prescription belongs to exactly one appointment
type Prescription struct {
	Base
	AppointmentID uuid.UUID          `json:"appointmentId" db:"appointment_id"`
	PatientID     uuid.UUID          `json:"patientId" db:"patient_id"`
	DoctorID      uuid.UUID          `json:"doctorId" db:"doctor_id"`
	Diagnosis     string             `json:"diagnosis" db:"diagnosis"`
	Medicines     JSONList[Medicine] `json:"medicines" db:"medicines"`
	Instructions  *string            `json:"instructions,omitempty" db:"instructions"`
	FollowUpDate  *Date              `json:"followUpDate,omitempty" db:"follow_up_date"`
}

type PrescriptionView struct {
	Prescription
	Patient PersonRef `json:"patient" db:"patient"`
	Doctor  DoctorRef `json:"doctor" db:"doctor"`
}

type PrescriptionFilter struct {
	PatientID *uuid.UUID
	DoctorID  *uuid.UUID
}

type CreatePrescriptionRequest struct {
	AppointmentID uuid.UUID  `json:"appointmentId" binding:"required"`
	PatientID     *uuid.UUID `json:"patientId"`
	Diagnosis     string     `json:"diagnosis" binding:"required"`
	Medicines     []Medicine `json:"medicines" binding:"required,min=1,dive"`
	Instructions  *string    `json:"instructions"`
	FollowUpDate  *Date      `json:"followUpDate"`
}

type UpdatePrescriptionRequest struct {
	Diagnosis    *string    `json:"diagnosis" binding:"omitempty,min=1"`
	Medicines    []Medicine `json:"medicines" binding:"omitempty,min=1,dive"`
	Instructions *string    `json:"instructions"`
	FollowUpDate *Date      `json:"followUpDate"`
}
