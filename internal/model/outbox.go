package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusProcessed OutboxStatus = "PROCESSED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Domain event types written to the outbox
const (
	EventUserRegistered       = "user.registered"
	EventAppointmentCreated   = "appointment.created"
	EventAppointmentCancelled = "appointment.cancelled"
	EventPrescriptionCreated  = "prescription.created"
	EventLabReportCompleted   = "labreport.completed"
	EventBillingCreated       = "billing.created"
	EventBillingPaid          = "billing.paid"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	EventType    string          `db:"event_type" json:"eventType"`
	AggregateID  uuid.UUID       `db:"aggregate_id" json:"aggregateId"`
	Payload      json.RawMessage `db:"payload" json:"payload"`
	Status       OutboxStatus    `db:"status" json:"status"`
	ErrorMessage *string         `db:"error_message" json:"errorMessage,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retryCount"`
	RetryAt      *time.Time      `db:"retry_at" json:"retryAt,omitempty"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processedAt,omitempty"`
}

// Event payloads. Contact fields are optional and only present when the
// recipient has an email on file.

type UserRegisteredPayload struct {
	UserID uuid.UUID `json:"userId"`
	Email  string    `json:"email"`
	Name   string    `json:"name"`
	Role   Role      `json:"role"`
}

type AppointmentEventPayload struct {
	AppointmentID   uuid.UUID `json:"appointmentId"`
	PatientID       uuid.UUID `json:"patientId"`
	PatientName     string    `json:"patientName"`
	PatientEmail    *string   `json:"patientEmail,omitempty"`
	DoctorName      string    `json:"doctorName"`
	AppointmentDate Date      `json:"appointmentDate"`
	AppointmentTime string    `json:"appointmentTime"`
	Reason          *string   `json:"reason,omitempty"`
}

type PrescriptionEventPayload struct {
	PrescriptionID uuid.UUID `json:"prescriptionId"`
	AppointmentID  uuid.UUID `json:"appointmentId"`
	PatientID      uuid.UUID `json:"patientId"`
	DoctorID       uuid.UUID `json:"doctorId"`
}

type LabReportEventPayload struct {
	LabReportID uuid.UUID `json:"labReportId"`
	PatientID   uuid.UUID `json:"patientId"`
	TestName    string    `json:"testName"`
}

type BillingEventPayload struct {
	BillingID     uuid.UUID `json:"billingId"`
	InvoiceNumber string    `json:"invoiceNumber"`
	PatientID     uuid.UUID `json:"patientId"`
	PatientName   string    `json:"patientName"`
	PatientEmail  *string   `json:"patientEmail,omitempty"`
	TotalAmount   float64   `json:"totalAmount"`
	PaidAmount    float64   `json:"paidAmount"`
}
