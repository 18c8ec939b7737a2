package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const billingColumns = `
	b.id, b.patient_id, b.invoice_number, b.services, b.total_amount, b.paid_amount,
	b.status, b.payment_method, b.notes, b.billing_date, b.created_at, b.updated_at`

const billingViewQuery = `
	SELECT ` + billingColumns + `,
		p.id AS "patient.id", p.first_name AS "patient.first_name", p.last_name AS "patient.last_name"
	FROM billings b
	JOIN patients p ON p.id = b.patient_id`

type billingRepository struct {
	BaseRepository
}

func NewBillingRepository(base BaseRepository) repository.BillingRepository {
	return &billingRepository{base}
}

func (r *billingRepository) Create(ctx context.Context, b *model.Billing) error {
	query := `
		INSERT INTO billings (
			id, patient_id, invoice_number, services, total_amount, paid_amount,
			status, payment_method, notes, billing_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		b.ID, b.PatientID, b.InvoiceNumber, b.Services, b.TotalAmount, b.PaidAmount,
		b.Status, b.PaymentMethod, b.Notes, b.BillingDate, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create billing: %w", mapError(err))
	}
	return nil
}

func (r *billingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	var b model.Billing
	if err := r.get(ctx, &b, `SELECT `+billingColumns+` FROM billings b WHERE b.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	return &b, nil
}

func (r *billingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Billing, error) {
	var b model.Billing
	if err := r.get(ctx, &b, `SELECT `+billingColumns+` FROM billings b WHERE b.id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock billing: %w", err)
	}
	return &b, nil
}

func (r *billingRepository) GetView(ctx context.Context, id uuid.UUID) (*model.BillingView, error) {
	var v model.BillingView
	if err := r.get(ctx, &v, billingViewQuery+` WHERE b.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get billing: %w", err)
	}
	return &v, nil
}

func (r *billingRepository) Update(ctx context.Context, b *model.Billing) error {
	query := `
		UPDATE billings
		SET services = $1, total_amount = $2, paid_amount = $3, status = $4,
			payment_method = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	b.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, query,
		b.Services, b.TotalAmount, b.PaidAmount, b.Status,
		b.PaymentMethod, b.Notes, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update billing: %w", err)
	}
	return nil
}

func (r *billingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM billings WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete billing: %w", err)
	}
	return nil
}

func (r *billingRepository) List(ctx context.Context, filter model.BillingFilter, page model.Page) ([]model.BillingView, int, error) {
	var cond conditions
	if filter.PatientID != nil {
		cond.add("b.patient_id = $%d", *filter.PatientID)
	}
	if filter.Status != "" {
		cond.add("b.status = $%d", filter.Status)
	}
	if filter.StartDate != nil {
		cond.add("b.billing_date >= $%d", filter.StartDate.Time)
	}
	if filter.EndDate != nil {
		_, end := filter.EndDate.Range()
		cond.add("b.billing_date < $%d", end)
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM billings b`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count billings: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := billingViewQuery + cond.where() + ` ORDER BY b.billing_date DESC` + limit

	billings := []model.BillingView{}
	if err := r.selectAll(ctx, &billings, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list billings: %w", err)
	}
	return billings, total, nil
}
