package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const appointmentColumns = `
	a.id, a.patient_id, a.doctor_id, a.receptionist_id, a.appointment_date,
	a.appointment_time, a.status, a.reason, a.notes, a.created_at, a.updated_at`

const appointmentViewQuery = `
	SELECT ` + appointmentColumns + `,
		p.id AS "patient.id", p.first_name AS "patient.first_name", p.last_name AS "patient.last_name",
		d.id AS "doctor.id", du.first_name AS "doctor.first_name", du.last_name AS "doctor.last_name",
		d.specialization AS "doctor.specialization"
	FROM appointments a
	JOIN patients p ON p.id = a.patient_id
	JOIN doctors d ON d.id = a.doctor_id
	JOIN users du ON du.id = d.user_id`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) Create(ctx context.Context, a *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, receptionist_id, appointment_date,
			appointment_time, status, reason, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		a.ID, a.PatientID, a.DoctorID, a.ReceptionistID, a.AppointmentDate,
		a.AppointmentTime, a.Status, a.Reason, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	if err := r.get(ctx, &a, `SELECT `+appointmentColumns+` FROM appointments a WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	var a model.Appointment
	query := `SELECT ` + appointmentColumns + ` FROM appointments a WHERE a.id = $1 FOR UPDATE`
	if err := r.get(ctx, &a, query, id); err != nil {
		return nil, fmt.Errorf("failed to lock appointment: %w", err)
	}
	return &a, nil
}

func (r *appointmentRepository) GetView(ctx context.Context, id uuid.UUID) (*model.AppointmentView, error) {
	var v model.AppointmentView
	if err := r.get(ctx, &v, appointmentViewQuery+` WHERE a.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &v, nil
}

func (r *appointmentRepository) Update(ctx context.Context, a *model.Appointment) error {
	query := `
		UPDATE appointments
		SET appointment_date = $1, appointment_time = $2, status = $3,
			reason = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	a.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, query,
		a.AppointmentDate, a.AppointmentTime, a.Status,
		a.Reason, a.Notes, a.UpdatedAt, a.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filter model.AppointmentFilter, page model.Page) ([]model.AppointmentView, int, error) {
	var cond conditions
	if filter.Status != "" {
		cond.add("a.status = $%d", filter.Status)
	}
	if filter.DoctorID != nil {
		cond.add("a.doctor_id = $%d", *filter.DoctorID)
	}
	if filter.PatientID != nil {
		cond.add("a.patient_id = $%d", *filter.PatientID)
	}
	if filter.Date != nil {
		cond.add("a.appointment_date = $%d", *filter.Date)
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM appointments a`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := appointmentViewQuery + cond.where() +
		` ORDER BY a.appointment_date DESC, a.appointment_time DESC` + limit

	appointments := []model.AppointmentView{}
	if err := r.selectAll(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}
