package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

const doctorSummaryColumns = `
	d.id, d.user_id, u.first_name, u.last_name, u.email, u.phone, u.is_active,
	d.specialization, d.qualification, d.experience, d.consultation_fee`

type profileRepository struct {
	BaseRepository
}

func NewProfileRepository(base BaseRepository) repository.ProfileRepository {
	return &profileRepository{base}
}

func (r *profileRepository) CreateDoctor(ctx context.Context, d *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, user_id, specialization, qualification, experience,
			consultation_fee, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		d.ID, d.UserID, d.Specialization, d.Qualification, d.Experience,
		d.ConsultationFee, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor profile: %w", mapError(err))
	}
	return nil
}

func (r *profileRepository) CreateReceptionist(ctx context.Context, rc *model.Receptionist) error {
	query := `
		INSERT INTO receptionists (id, user_id, shift, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.ext(ctx).ExecContext(ctx, query, rc.ID, rc.UserID, rc.Shift, rc.CreatedAt, rc.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create receptionist profile: %w", mapError(err))
	}
	return nil
}

func (r *profileRepository) CreateLabStaff(ctx context.Context, ls *model.LabStaff) error {
	query := `
		INSERT INTO lab_staff (id, user_id, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.ext(ctx).ExecContext(ctx, query, ls.ID, ls.UserID, ls.Department, ls.CreatedAt, ls.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create lab staff profile: %w", mapError(err))
	}
	return nil
}

func (r *profileRepository) UpdateDoctor(ctx context.Context, d *model.Doctor) error {
	query := `
		UPDATE doctors
		SET specialization = $1, qualification = $2, experience = $3,
			consultation_fee = $4, updated_at = NOW()
		WHERE id = $5
	`
	if err := r.exec(ctx, query, d.Specialization, d.Qualification, d.Experience, d.ConsultationFee, d.ID); err != nil {
		return fmt.Errorf("failed to update doctor profile: %w", err)
	}
	return nil
}

func (r *profileRepository) UpdateReceptionist(ctx context.Context, rc *model.Receptionist) error {
	if err := r.exec(ctx, `UPDATE receptionists SET shift = $1, updated_at = NOW() WHERE id = $2`, rc.Shift, rc.ID); err != nil {
		return fmt.Errorf("failed to update receptionist profile: %w", err)
	}
	return nil
}

func (r *profileRepository) UpdateLabStaff(ctx context.Context, ls *model.LabStaff) error {
	if err := r.exec(ctx, `UPDATE lab_staff SET department = $1, updated_at = NOW() WHERE id = $2`, ls.Department, ls.ID); err != nil {
		return fmt.Errorf("failed to update lab staff profile: %w", err)
	}
	return nil
}

func (r *profileRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var d model.Doctor
	query := `
		SELECT id, user_id, specialization, qualification, experience,
			consultation_fee, created_at, updated_at
		FROM doctors WHERE user_id = $1
	`
	if err := r.get(ctx, &d, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	return &d, nil
}

func (r *profileRepository) GetReceptionistByUserID(ctx context.Context, userID uuid.UUID) (*model.Receptionist, error) {
	var rc model.Receptionist
	query := `SELECT id, user_id, shift, created_at, updated_at FROM receptionists WHERE user_id = $1`
	if err := r.get(ctx, &rc, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get receptionist profile: %w", err)
	}
	return &rc, nil
}

func (r *profileRepository) GetLabStaffByUserID(ctx context.Context, userID uuid.UUID) (*model.LabStaff, error) {
	var ls model.LabStaff
	query := `SELECT id, user_id, department, created_at, updated_at FROM lab_staff WHERE user_id = $1`
	if err := r.get(ctx, &ls, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get lab staff profile: %w", err)
	}
	return &ls, nil
}

func (r *profileRepository) GetDoctorSummary(ctx context.Context, doctorID uuid.UUID) (*model.DoctorSummary, error) {
	var d model.DoctorSummary
	query := `SELECT ` + doctorSummaryColumns + ` FROM doctors d JOIN users u ON u.id = d.user_id WHERE d.id = $1`
	if err := r.get(ctx, &d, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &d, nil
}

func (r *profileRepository) ListDoctors(ctx context.Context, specialization string) ([]*model.DoctorSummary, error) {
	var cond conditions
	cond.raw("u.is_active = TRUE")
	if specialization != "" {
		cond.add("d.specialization ILIKE $%d", likePattern(specialization))
	}

	query := `SELECT ` + doctorSummaryColumns + `
		FROM doctors d JOIN users u ON u.id = d.user_id` + cond.where() + `
		ORDER BY u.first_name, u.last_name`

	doctors := []*model.DoctorSummary{}
	if err := r.selectAll(ctx, &doctors, query, cond.args...); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
