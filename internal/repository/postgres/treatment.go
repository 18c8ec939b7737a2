package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const treatmentColumns = `
	t.id, t.patient_id, t.doctor_id, t.diagnosis, t.treatment, t.medications,
	t.notes, t.follow_up_date, t.treatment_date, t.created_at, t.updated_at`

type treatmentRepository struct {
	BaseRepository
}

func NewTreatmentRepository(base BaseRepository) repository.TreatmentRepository {
	return &treatmentRepository{base}
}

func (r *treatmentRepository) Create(ctx context.Context, t *model.Treatment) error {
	query := `
		INSERT INTO treatments (
			id, patient_id, doctor_id, diagnosis, treatment, medications,
			notes, follow_up_date, treatment_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		t.ID, t.PatientID, t.DoctorID, t.Diagnosis, t.Treatment, t.Medications,
		t.Notes, t.FollowUpDate, t.TreatmentDate, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create treatment: %w", mapError(err))
	}
	return nil
}

func (r *treatmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Treatment, error) {
	var t model.Treatment
	if err := r.get(ctx, &t, `SELECT `+treatmentColumns+` FROM treatments t WHERE t.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get treatment: %w", err)
	}
	return &t, nil
}

func (r *treatmentRepository) Update(ctx context.Context, t *model.Treatment) error {
	query := `
		UPDATE treatments
		SET diagnosis = $1, treatment = $2, medications = $3, notes = $4,
			follow_up_date = $5, updated_at = $6
		WHERE id = $7
	`
	t.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, query,
		t.Diagnosis, t.Treatment, t.Medications, t.Notes,
		t.FollowUpDate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update treatment: %w", err)
	}
	return nil
}

func (r *treatmentRepository) List(ctx context.Context, filter model.TreatmentFilter, page model.Page) ([]model.TreatmentView, int, error) {
	var cond conditions
	cond.add("t.patient_id = $%d", filter.PatientID)
	if filter.Search != "" {
		cond.add("(t.diagnosis ILIKE $%d OR t.treatment ILIKE $%d OR t.notes ILIKE $%d)", likePattern(filter.Search))
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM treatments t`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count treatments: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := `
		SELECT ` + treatmentColumns + `,
			d.id AS "doctor.id", du.first_name AS "doctor.first_name", du.last_name AS "doctor.last_name",
			d.specialization AS "doctor.specialization"
		FROM treatments t
		JOIN doctors d ON d.id = t.doctor_id
		JOIN users du ON du.id = d.user_id` + cond.where() + `
		ORDER BY t.treatment_date DESC` + limit

	treatments := []model.TreatmentView{}
	if err := r.selectAll(ctx, &treatments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list treatments: %w", err)
	}
	return treatments, total, nil
}
