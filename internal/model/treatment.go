package model

import (
	"time"

	"github.com/google/uuid"
)

type Medication struct {
	Name      string `json:"name" binding:"required"`
	Dosage    string `json:"dosage" binding:"required"`
	Frequency string `json:"frequency" binding:"required"`
	Duration  string `json:"duration" binding:"required"`
}

type Treatment struct {
	Base
	PatientID     uuid.UUID            `json:"patientId" db:"patient_id"`
	DoctorID      uuid.UUID            `json:"doctorId" db:"doctor_id"`
	Diagnosis     string               `json:"diagnosis" db:"diagnosis"`
	Treatment     string               `json:"treatment" db:"treatment"`
	Medications   JSONList[Medication] `json:"medications,omitempty" db:"medications"`
	Notes         *string              `json:"notes,omitempty" db:"notes"`
	FollowUpDate  *Date                `json:"followUpDate,omitempty" db:"follow_up_date"`
	TreatmentDate time.Time            `json:"treatmentDate" db:"treatment_date"`
}

type TreatmentView struct {
	Treatment
	Doctor DoctorRef `json:"doctor" db:"doctor"`
}

type TreatmentFilter struct {
	PatientID uuid.UUID
	Search    string
}

type CreateTreatmentRequest struct {
	Diagnosis     string       `json:"diagnosis" binding:"required"`
	Treatment     string       `json:"treatment" binding:"required"`
	Medications   []Medication `json:"medications" binding:"omitempty,dive"`
	Notes         *string      `json:"notes"`
	FollowUpDate  *Date        `json:"followUpDate"`
	TreatmentDate *Date        `json:"treatmentDate"`
}

type UpdateTreatmentRequest struct {
	Diagnosis    *string      `json:"diagnosis" binding:"omitempty,min=1"`
	Treatment    *string      `json:"treatment" binding:"omitempty,min=1"`
	Medications  []Medication `json:"medications" binding:"omitempty,dive"`
	Notes        *string      `json:"notes"`
	FollowUpDate *Date        `json:"followUpDate"`
}
