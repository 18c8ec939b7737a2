package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type medicalRecordRepository struct {
	BaseRepository
}

func NewMedicalRecordRepository(base BaseRepository) repository.MedicalRecordRepository {
	return &medicalRecordRepository{base}
}

func (r *medicalRecordRepository) Create(ctx context.Context, record *model.MedicalRecord) error {
	query := `
		INSERT INTO medical_records (
			id, patient_id, record_type, description, record_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		record.ID, record.PatientID, record.RecordType, record.Description,
		record.RecordDate, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create medical record: %w", mapError(err))
	}
	return nil
}

// ListByPatient returns records newest first; limit <= 0 returns all.
func (r *medicalRecordRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]model.MedicalRecord, error) {
	query := `
		SELECT id, patient_id, record_type, description, record_date, created_at, updated_at
		FROM medical_records
		WHERE patient_id = $1
		ORDER BY record_date DESC, created_at DESC
	`
	args := []interface{}{patientID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	records := []model.MedicalRecord{}
	if err := r.selectAll(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list medical records: %w", err)
	}
	return records, nil
}
