package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const prescriptionColumns = `
	rx.id, rx.appointment_id, rx.patient_id, rx.doctor_id, rx.diagnosis,
	rx.medicines, rx.instructions, rx.follow_up_date, rx.created_at, rx.updated_at`

const prescriptionViewQuery = `
	SELECT ` + prescriptionColumns + `,
		p.id AS "patient.id", p.first_name AS "patient.first_name", p.last_name AS "patient.last_name",
		d.id AS "doctor.id", du.first_name AS "doctor.first_name", du.last_name AS "doctor.last_name",
		d.specialization AS "doctor.specialization"
	FROM prescriptions rx
	JOIN patients p ON p.id = rx.patient_id
	JOIN doctors d ON d.id = rx.doctor_id
	JOIN users du ON du.id = d.user_id`

type prescriptionRepository struct {
	BaseRepository
}

func NewPrescriptionRepository(base BaseRepository) repository.PrescriptionRepository {
	return &prescriptionRepository{base}
}

func (r *prescriptionRepository) Create(ctx context.Context, rx *model.Prescription) error {
	query := `
		INSERT INTO prescriptions (
			id, appointment_id, patient_id, doctor_id, diagnosis,
			medicines, instructions, follow_up_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		rx.ID, rx.AppointmentID, rx.PatientID, rx.DoctorID, rx.Diagnosis,
		rx.Medicines, rx.Instructions, rx.FollowUpDate, rx.CreatedAt, rx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create prescription: %w", mapError(err))
	}
	return nil
}

func (r *prescriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	var rx model.Prescription
	if err := r.get(ctx, &rx, `SELECT `+prescriptionColumns+` FROM prescriptions rx WHERE rx.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &rx, nil
}

func (r *prescriptionRepository) GetView(ctx context.Context, id uuid.UUID) (*model.PrescriptionView, error) {
	var v model.PrescriptionView
	if err := r.get(ctx, &v, prescriptionViewQuery+` WHERE rx.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", err)
	}
	return &v, nil
}

func (r *prescriptionRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Prescription, error) {
	var rx model.Prescription
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions rx WHERE rx.appointment_id = $1`
	if err := r.get(ctx, &rx, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to get prescription by appointment: %w", err)
	}
	return &rx, nil
}

func (r *prescriptionRepository) ListByAppointments(ctx context.Context, appointmentIDs []uuid.UUID) ([]*model.Prescription, error) {
	prescriptions := []*model.Prescription{}
	if len(appointmentIDs) == 0 {
		return prescriptions, nil
	}

	ids := make([]string, len(appointmentIDs))
	for i, id := range appointmentIDs {
		ids[i] = id.String()
	}
	query := `SELECT ` + prescriptionColumns + ` FROM prescriptions rx WHERE rx.appointment_id = ANY($1::uuid[])`
	if err := r.selectAll(ctx, &prescriptions, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions by appointment: %w", err)
	}
	return prescriptions, nil
}

func (r *prescriptionRepository) Update(ctx context.Context, rx *model.Prescription) error {
	query := `
		UPDATE prescriptions
		SET diagnosis = $1, medicines = $2, instructions = $3,
			follow_up_date = $4, updated_at = $5
		WHERE id = $6
	`
	rx.UpdatedAt = time.Now().UTC()
	if err := r.exec(ctx, query, rx.Diagnosis, rx.Medicines, rx.Instructions, rx.FollowUpDate, rx.UpdatedAt, rx.ID); err != nil {
		return fmt.Errorf("failed to update prescription: %w", err)
	}
	return nil
}

func (r *prescriptionRepository) List(ctx context.Context, filter model.PrescriptionFilter, page model.Page) ([]model.PrescriptionView, int, error) {
	var cond conditions
	if filter.PatientID != nil {
		cond.add("rx.patient_id = $%d", *filter.PatientID)
	}
	if filter.DoctorID != nil {
		cond.add("rx.doctor_id = $%d", *filter.DoctorID)
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM prescriptions rx`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count prescriptions: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := prescriptionViewQuery + cond.where() + ` ORDER BY rx.created_at DESC` + limit

	prescriptions := []model.PrescriptionView{}
	if err := r.selectAll(ctx, &prescriptions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, total, nil
}
