package model

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
)

type BillingStatus string

const (
	BillingStatusPending   BillingStatus = "PENDING"
	BillingStatusPaid      BillingStatus = "PAID"
	BillingStatusCancelled BillingStatus = "CANCELLED"
)

type BilledService struct {
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"min=0"`
	Quantity int     `json:"quantity" binding:"required,min=1"`
}

type Billing struct {
	Base
	PatientID     uuid.UUID               `json:"patientId" db:"patient_id"`
	InvoiceNumber string                  `json:"invoiceNumber" db:"invoice_number"`
	Services      JSONList[BilledService] `json:"services" db:"services"`
	TotalAmount   float64                 `json:"totalAmount" db:"total_amount"`
	PaidAmount    float64                 `json:"paidAmount" db:"paid_amount"`
	Status        BillingStatus           `json:"status" db:"status"`
	PaymentMethod *string                 `json:"paymentMethod,omitempty" db:"payment_method"`
	Notes         *string                 `json:"notes,omitempty" db:"notes"`
	BillingDate   time.Time               `json:"billingDate" db:"billing_date"`
}

func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Balance is derived on every read and never stored.
func (b *Billing) Balance() float64 {
	return float64(cents(b.TotalAmount)-cents(b.PaidAmount)) / 100
}

// DerivedStatus is PAID once the paid amount covers the total.
func DerivedStatus(total, paid float64) BillingStatus {
	if cents(paid) >= cents(total) {
		return BillingStatusPaid
	}
	return BillingStatusPending
}

func (b Billing) MarshalJSON() ([]byte, error) {
	type alias Billing
	return json.Marshal(struct {
		alias
		Balance float64 `json:"balance"`
	}{alias(b), b.Balance()})
}

type BillingView struct {
	Billing
	Patient PersonRef `json:"patient" db:"patient"`
}

func (v BillingView) MarshalJSON() ([]byte, error) {
	type alias Billing
	return json.Marshal(struct {
		alias
		Balance float64   `json:"balance"`
		Patient PersonRef `json:"patient"`
	}{alias(v.Billing), v.Billing.Balance(), v.Patient})
}

type BillingFilter struct {
	PatientID *uuid.UUID
	Status    BillingStatus
	StartDate *Date
	EndDate   *Date
}

type CreateBillingRequest struct {
	PatientID     uuid.UUID       `json:"patientId" binding:"required"`
	Services      []BilledService `json:"services" binding:"required,min=1,dive"`
	// TotalAmount defaults to the sum of the services when absent.
	TotalAmount   *float64        `json:"totalAmount" binding:"omitempty,min=0"`
	PaidAmount    float64         `json:"paidAmount" binding:"min=0"`
	PaymentMethod *string         `json:"paymentMethod" binding:"omitempty,max=50"`
	Notes         *string         `json:"notes"`
}

type UpdateBillingRequest struct {
	Services      []BilledService `json:"services" binding:"omitempty,min=1,dive"`
	TotalAmount   *float64        `json:"totalAmount" binding:"omitempty,min=0"`
	PaidAmount    *float64        `json:"paidAmount" binding:"omitempty,min=0"`
	Status        *BillingStatus  `json:"status" binding:"omitempty,oneof=PENDING PAID CANCELLED"`
	PaymentMethod *string         `json:"paymentMethod" binding:"omitempty,max=50"`
	Notes         *string         `json:"notes"`
}

// InvoiceLine is a billed service with its computed amount
type InvoiceLine struct {
	BilledService
	Amount float64 `json:"amount"`
}

// Invoice is the printable projection of a billing record
type Invoice struct {
	InvoiceNumber string         `json:"invoiceNumber"`
	BillingDate   time.Time      `json:"billingDate"`
	Status        BillingStatus  `json:"status"`
	Patient       InvoicePatient `json:"patient"`
	Services      []InvoiceLine  `json:"services"`
	TotalAmount   float64        `json:"totalAmount"`
	PaidAmount    float64        `json:"paidAmount"`
	Balance       float64        `json:"balance"`
	PaymentMethod *string        `json:"paymentMethod,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

type InvoicePatient struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Email   *string   `json:"email,omitempty"`
	Phone   string    `json:"phone"`
	Address *string   `json:"address,omitempty"`
}

func NewInvoice(b *Billing, p *Patient) *Invoice {
	lines := make([]InvoiceLine, 0, len(b.Services))
	for _, s := range b.Services {
		lines = append(lines, InvoiceLine{
			BilledService: s,
			Amount:        float64(cents(s.Price)*int64(s.Quantity)) / 100,
		})
	}
	return &Invoice{
		InvoiceNumber: b.InvoiceNumber,
		BillingDate:   b.BillingDate,
		Status:        b.Status,
		Patient: InvoicePatient{
			ID:      p.ID,
			Name:    p.FirstName + " " + p.LastName,
			Email:   p.Email,
			Phone:   p.Phone,
			Address: p.Address,
		},
		Services:      lines,
		TotalAmount:   b.TotalAmount,
		PaidAmount:    b.PaidAmount,
		Balance:       b.Balance(),
		PaymentMethod: b.PaymentMethod,
		Notes:         b.Notes,
	}
}
