package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const patientColumns = `
	p.id, p.first_name, p.last_name, p.email, p.phone, p.date_of_birth, p.gender,
	p.address, p.blood_group, p.emergency_contact, p.registered_by,
	p.assigned_doctor_id, p.is_deleted, p.deleted_at, p.created_at, p.updated_at`

type patientRepository struct {
	BaseRepository
}

func NewPatientRepository(base BaseRepository) repository.PatientRepository {
	return &patientRepository{base}
}

func (r *patientRepository) Create(ctx context.Context, p *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, first_name, last_name, email, phone, date_of_birth, gender,
			address, blood_group, emergency_contact, registered_by,
			assigned_doctor_id, is_deleted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		p.ID, p.FirstName, p.LastName, p.Email, p.Phone, p.DateOfBirth, p.Gender,
		p.Address, p.BloodGroup, p.EmergencyContact, p.RegisteredBy,
		p.AssignedDoctorID, p.IsDeleted, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", mapError(err))
	}
	return nil
}

// GetByID returns soft-deleted patients too.
func (r *patientRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	var p model.Patient
	if err := r.get(ctx, &p, `SELECT `+patientColumns+` FROM patients p WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &p, nil
}

func (r *patientRepository) Update(ctx context.Context, p *model.Patient) error {
	query := `
		UPDATE patients
		SET first_name = $1, last_name = $2, email = $3, phone = $4,
			date_of_birth = $5, gender = $6, address = $7, blood_group = $8,
			emergency_contact = $9, updated_at = $10
		WHERE id = $11 AND is_deleted = FALSE
	`
	p.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, query,
		p.FirstName, p.LastName, p.Email, p.Phone,
		p.DateOfBirth, p.Gender, p.Address, p.BloodGroup,
		p.EmergencyContact, p.UpdatedAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE patients
		SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
		WHERE id = $2 AND is_deleted = FALSE
	`
	if err := r.exec(ctx, query, at, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) AssignDoctor(ctx context.Context, patientID, doctorID uuid.UUID) error {
	query := `
		UPDATE patients
		SET assigned_doctor_id = $1, updated_at = NOW()
		WHERE id = $2 AND is_deleted = FALSE
	`
	if err := r.exec(ctx, query, doctorID, patientID); err != nil {
		return fmt.Errorf("failed to assign doctor: %w", err)
	}
	return nil
}

func (r *patientRepository) EmailTaken(ctx context.Context, email string, excludeID *uuid.UUID) (bool, error) {
	var taken bool
	query := `SELECT EXISTS (SELECT 1 FROM patients WHERE email = $1 AND ($2::uuid IS NULL OR id <> $2))`
	if err := r.get(ctx, &taken, query, email, excludeID); err != nil {
		return false, fmt.Errorf("failed to check patient email: %w", err)
	}
	return taken, nil
}

func (r *patientRepository) List(ctx context.Context, filter model.PatientFilter, page model.Page) ([]*model.PatientListItem, int, error) {
	var cond conditions
	if !filter.IncludeDeleted {
		cond.raw("p.is_deleted = FALSE")
	}
	if filter.AssignedDoctorID != nil {
		cond.add("p.assigned_doctor_id = $%d", *filter.AssignedDoctorID)
	}
	if filter.Search != "" {
		cond.add(`(p.first_name ILIKE $%d OR p.last_name ILIKE $%d
			OR p.phone ILIKE $%d OR p.email ILIKE $%d)`, likePattern(filter.Search))
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM patients p`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := `
		SELECT ` + patientColumns + `,
			NULLIF(CONCAT_WS(' ', u.first_name, u.last_name), '') AS assigned_doctor_name
		FROM patients p
		LEFT JOIN doctors d ON d.id = p.assigned_doctor_id
		LEFT JOIN users u ON u.id = d.user_id` + cond.where() + `
		ORDER BY p.created_at DESC` + limit

	patients := []*model.PatientListItem{}
	if err := r.selectAll(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, total, nil
}

func (r *patientRepository) ListAssigned(ctx context.Context, doctorID uuid.UUID, search string, page model.Page) ([]*model.AssignedPatient, int, error) {
	var cond conditions
	cond.raw("p.is_deleted = FALSE")
	cond.add("p.assigned_doctor_id = $%d", doctorID)
	if search != "" {
		cond.add(`(p.first_name ILIKE $%d OR p.last_name ILIKE $%d
			OR p.phone ILIKE $%d OR p.email ILIKE $%d)`, likePattern(search))
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM patients p`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count assigned patients: %w", err)
	}

	limit, args := cond.page(page.Limit, page.Offset())
	query := `
		SELECT ` + patientColumns + `,
			(SELECT MIN(a.appointment_date) FROM appointments a
				WHERE a.patient_id = p.id AND a.doctor_id = p.assigned_doctor_id
				AND a.status = 'SCHEDULED' AND a.appointment_date >= CURRENT_DATE) AS next_appointment,
			(SELECT t.diagnosis FROM treatments t
				WHERE t.patient_id = p.id ORDER BY t.treatment_date DESC LIMIT 1) AS last_diagnosis,
			(SELECT COUNT(*) FROM lab_reports l
				WHERE l.patient_id = p.id AND l.status <> 'COMPLETED') AS open_lab_reports
		FROM patients p` + cond.where() + `
		ORDER BY p.last_name, p.first_name` + limit

	patients := []*model.AssignedPatient{}
	if err := r.selectAll(ctx, &patients, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list assigned patients: %w", err)
	}
	return patients, total, nil
}
