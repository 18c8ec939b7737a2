package billing

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	"github.com/jwalitptl/hms-api/internal/service/event"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

const (
	invoiceAttempts = 5
	suffixLength    = 6
	base36          = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

type BillingService interface {
	CreateBilling(ctx context.Context, req *model.CreateBillingRequest) (*model.Billing, error)
	ListBillings(ctx context.Context, filter model.BillingFilter, page model.Page) ([]model.BillingView, int, error)
	GetBilling(ctx context.Context, id uuid.UUID) (*model.BillingView, error)
	Invoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	UpdateBilling(ctx context.Context, id uuid.UUID, req *model.UpdateBillingRequest) (*model.Billing, error)
	DeleteBilling(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	tx            repository.Transactor
	repo          repository.BillingRepository
	patientRepo   repository.PatientRepository
	events        event.Recorder
	now           func() time.Time
	invoiceNumber func(time.Time) (string, error)
}

func NewService(tx repository.Transactor, repo repository.BillingRepository, patientRepo repository.PatientRepository, events event.Recorder) *Service {
	return &Service{
		tx:            tx,
		repo:          repo,
		patientRepo:   patientRepo,
		events:        events,
		now:           time.Now,
		invoiceNumber: NewInvoiceNumber,
	}
}

// NewInvoiceNumber returns INV-YYYYMMDD-XXXXXX with a random base-36 suffix.
// Uniqueness is enforced by the database; callers retry on conflict.
func NewInvoiceNumber(now time.Time) (string, error) {
	var sb strings.Builder
	sb.WriteString("INV-")
	sb.WriteString(now.UTC().Format("20060102"))
	sb.WriteByte('-')
	radix := big.NewInt(int64(len(base36)))
	for i := 0; i < suffixLength; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("failed to generate invoice number: %w", err)
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return sb.String(), nil
}

// CreateBilling issues a new invoice. Each attempt runs in its own
// transaction since a unique violation aborts the one it happens in.
func (s *Service) CreateBilling(ctx context.Context, req *model.CreateBillingRequest) (*model.Billing, error) {
	patient, err := service.ActivePatient(ctx, s.patientRepo, req.PatientID)
	if err != nil {
		return nil, err
	}

	total := servicesTotal(req.Services)
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	}
	now := s.now().UTC()
	b := &model.Billing{
		Base:          model.NewBase(),
		PatientID:     patient.ID,
		Services:      req.Services,
		TotalAmount:   total,
		PaidAmount:    req.PaidAmount,
		Status:        model.DerivedStatus(total, req.PaidAmount),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
		BillingDate:   now,
	}

	for attempt := 1; ; attempt++ {
		b.InvoiceNumber, err = s.invoiceNumber(now)
		if err != nil {
			return nil, apperrors.Internal(err)
		}

		err = s.tx.WithTx(ctx, func(ctx context.Context) error {
			if err := s.repo.Create(ctx, b); err != nil {
				return err
			}
			return s.events.Record(ctx, model.EventBillingCreated, b.ID, eventPayload(b, patient))
		})
		if err == nil {
			return b, nil
		}
		if !repository.IsDuplicate(err, "invoice_number") {
			return nil, service.Classify(err, "billing")
		}
		if attempt == invoiceAttempts {
			return nil, apperrors.Conflict("could not allocate a unique invoice number", err)
		}
	}
}

func (s *Service) ListBillings(ctx context.Context, filter model.BillingFilter, page model.Page) ([]model.BillingView, int, error) {
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(filter.StartDate.Time) {
		return nil, 0, apperrors.Validation("endDate must not be before startDate",
			apperrors.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	billings, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "billing")
	}
	return billings, total, nil
}

func (s *Service) GetBilling(ctx context.Context, id uuid.UUID) (*model.BillingView, error) {
	b, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "billing")
	}
	return b, nil
}

func (s *Service) Invoice(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "billing")
	}
	patient, err := s.patientRepo.GetByID(ctx, b.PatientID)
	if err != nil {
		return nil, service.Classify(err, "patient")
	}
	return model.NewInvoice(b, patient), nil
}

// UpdateBilling applies amount and detail changes to the locked row. PAID
// and PENDING are always derived from the amounts; only CANCELLED may be set
// explicitly, and only on a pending invoice that the same update does not
// settle.
func (s *Service) UpdateBilling(ctx context.Context, id uuid.UUID, req *model.UpdateBillingRequest) (*model.Billing, error) {
	var b *model.Billing
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if b, err = s.repo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		previous := b.Status
		if err := applyUpdate(b, req); err != nil {
			return err
		}

		if err := s.repo.Update(ctx, b); err != nil {
			return err
		}
		if previous == model.BillingStatusPaid || b.Status != model.BillingStatusPaid {
			return nil
		}
		patient, err := s.patientRepo.GetByID(ctx, b.PatientID)
		if err != nil {
			return err
		}
		return s.events.Record(ctx, model.EventBillingPaid, b.ID, eventPayload(b, patient))
	})
	if err != nil {
		return nil, service.Classify(err, "billing")
	}
	return b, nil
}

func applyUpdate(b *model.Billing, req *model.UpdateBillingRequest) error {
	if b.Status == model.BillingStatusCancelled {
		return apperrors.InvalidTarget("cancelled invoices cannot be modified")
	}
	cancel := req.Status != nil && *req.Status == model.BillingStatusCancelled
	if cancel && b.Status != model.BillingStatusPending {
		return apperrors.InvalidTarget("only pending invoices can be cancelled")
	}

	if req.Services != nil {
		b.Services = req.Services
	}
	amountsChanged := false
	if req.TotalAmount != nil && *req.TotalAmount != b.TotalAmount {
		b.TotalAmount = *req.TotalAmount
		amountsChanged = true
	}
	if req.PaidAmount != nil && *req.PaidAmount != b.PaidAmount {
		b.PaidAmount = *req.PaidAmount
		amountsChanged = true
	}
	if req.PaymentMethod != nil {
		b.PaymentMethod = req.PaymentMethod
	}
	if req.Notes != nil {
		b.Notes = req.Notes
	}

	derived := model.DerivedStatus(b.TotalAmount, b.PaidAmount)
	switch {
	case cancel && derived == model.BillingStatusPaid:
		return apperrors.InvalidTarget("a fully paid invoice cannot be cancelled")
	case cancel:
		b.Status = model.BillingStatusCancelled
	case amountsChanged:
		b.Status = derived
	}
	return nil
}

func (s *Service) DeleteBilling(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Classify(err, "billing")
	}
	return nil
}

func servicesTotal(services []model.BilledService) float64 {
	var cents int64
	for _, svc := range services {
		cents += int64(svc.Price*100+0.5) * int64(svc.Quantity)
	}
	return float64(cents) / 100
}

func eventPayload(b *model.Billing, p *model.Patient) model.BillingEventPayload {
	return model.BillingEventPayload{
		BillingID:     b.ID,
		InvoiceNumber: b.InvoiceNumber,
		PatientID:     p.ID,
		PatientName:   p.FirstName + " " + p.LastName,
		PatientEmail:  p.Email,
		TotalAmount:   b.TotalAmount,
		PaidAmount:    b.PaidAmount,
	}
}
