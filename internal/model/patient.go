package model

import (
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Patient is soft deleted: IsDeleted rows stay readable by id.
type Patient struct {
	Base
	FirstName        string     `json:"firstName" db:"first_name"`
	LastName         string     `json:"lastName" db:"last_name"`
	Email            *string    `json:"email,omitempty" db:"email"`
	Phone            string     `json:"phone" db:"phone"`
	DateOfBirth      Date       `json:"dateOfBirth" db:"date_of_birth"`
	Gender           Gender     `json:"gender" db:"gender"`
	Address          *string    `json:"address,omitempty" db:"address"`
	BloodGroup       *string    `json:"bloodGroup,omitempty" db:"blood_group"`
	EmergencyContact *string    `json:"emergencyContact,omitempty" db:"emergency_contact"`
	RegisteredBy     uuid.UUID  `json:"registeredBy" db:"registered_by"`
	AssignedDoctorID *uuid.UUID `json:"assignedDoctorId,omitempty" db:"assigned_doctor_id"`
	IsDeleted        bool       `json:"isDeleted" db:"is_deleted"`
	DeletedAt        *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// PatientListItem is a patient row with the assigned doctor's name
type PatientListItem struct {
	Patient
	AssignedDoctorName *string `json:"assignedDoctorName,omitempty" db:"assigned_doctor_name"`
}

// PatientDetail is the read model for fetching a single patient
type PatientDetail struct {
	Patient
	AssignedDoctor     *DoctorSummary    `json:"assignedDoctor,omitempty"`
	RecentAppointments []AppointmentView `json:"appointments"`
	MedicalRecords     []MedicalRecord   `json:"medicalRecords"`
	LabReports         []LabReportView   `json:"labReports"`
}

// AssignedPatient is a doctor's view of a patient under their care
type AssignedPatient struct {
	Patient
	NextAppointment *Date   `json:"nextAppointment,omitempty" db:"next_appointment"`
	LastDiagnosis   *string `json:"lastDiagnosis,omitempty" db:"last_diagnosis"`
	OpenLabReports  int     `json:"openLabReports" db:"open_lab_reports"`
}

type PatientFilter struct {
	Search           string
	IncludeDeleted   bool
	AssignedDoctorID *uuid.UUID
}

type CreatePatientRequest struct {
	FirstName        string  `json:"firstName" binding:"required,max=100"`
	LastName         string  `json:"lastName" binding:"required,max=100"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            string  `json:"phone" binding:"required,min=5,max=20"`
	DateOfBirth      *Date   `json:"dateOfBirth" binding:"required"`
	Gender           Gender  `json:"gender" binding:"required,oneof=MALE FEMALE OTHER"`
	Address          *string `json:"address"`
	BloodGroup       *string `json:"bloodGroup" binding:"omitempty,max=5"`
	EmergencyContact *string `json:"emergencyContact"`
}

type UpdatePatientRequest struct {
	FirstName        *string `json:"firstName" binding:"omitempty,min=1,max=100"`
	LastName         *string `json:"lastName" binding:"omitempty,min=1,max=100"`
	Email            *string `json:"email" binding:"omitempty,email"`
	Phone            *string `json:"phone" binding:"omitempty,min=5,max=20"`
	DateOfBirth      *Date   `json:"dateOfBirth"`
	Gender           *Gender `json:"gender" binding:"omitempty,oneof=MALE FEMALE OTHER"`
	Address          *string `json:"address"`
	BloodGroup       *string `json:"bloodGroup" binding:"omitempty,max=5"`
	EmergencyContact *string `json:"emergencyContact"`
}

type AssignDoctorRequest struct {
	DoctorID uuid.UUID `json:"doctorId" binding:"required"`
}
