package model

import (
	"github.com/google/uuid"
)

type MedicalRecord struct {
	Base
	PatientID   uuid.UUID `json:"patientId" db:"patient_id"`
	RecordType  string    `json:"recordType" db:"record_type"`
	Description string    `json:"description" db:"description"`
	RecordDate  Date      `json:"recordDate" db:"record_date"`
}

type CreateMedicalRecordRequest struct {
	RecordType  string `json:"recordType" binding:"required,max=100"`
	Description string `json:"description" binding:"required"`
	RecordDate  *Date  `json:"recordDate"`
}
