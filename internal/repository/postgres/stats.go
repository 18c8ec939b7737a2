package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
)

type statsRepository struct {
	BaseRepository
}

func NewStatsRepository(base BaseRepository) repository.StatsRepository {
	return &statsRepository{base}
}

// rangeCondition restricts column to r when both ends are set.
func rangeCondition(column string, r model.DateRange) conditions {
	var cond conditions
	if r.Bounded() {
		start, end := r.Bounds()
		cond.add(column+" >= $%d", start)
		cond.add(column+" < $%d", end)
	}
	return cond
}

func (r *statsRepository) Dashboard(ctx context.Context, day model.Date) (*model.DashboardStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients WHERE is_deleted = FALSE) AS total_patients,
			(SELECT COUNT(*) FROM doctors) AS total_doctors,
			(SELECT COUNT(*) FROM appointments) AS total_appointments,
			(SELECT COUNT(*) FROM appointments WHERE appointment_date = $1) AS today_appointments,
			(SELECT COUNT(*) FROM lab_reports WHERE status = 'PENDING') AS pending_lab_reports,
			(SELECT COUNT(*) FROM appointments WHERE status = 'COMPLETED') AS completed_appointments
	`
	var stats model.DashboardStats
	if err := r.get(ctx, &stats, query, day); err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}
	return &stats, nil
}

func (r *statsRepository) DoctorStats(ctx context.Context, doctorID uuid.UUID, day model.Date) (*model.DoctorStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM patients
				WHERE assigned_doctor_id = $1 AND is_deleted = FALSE) AS total_patients,
			(SELECT COUNT(*) FROM appointments WHERE doctor_id = $1) AS total_appointments,
			(SELECT COUNT(*) FROM lab_reports l JOIN patients p ON p.id = l.patient_id
				WHERE p.assigned_doctor_id = $1 AND l.status = 'PENDING') AS pending_lab_reports,
			(SELECT COUNT(*) FROM appointments
				WHERE doctor_id = $1 AND appointment_date = $2) AS today_appointments
	`
	var stats model.DoctorStats
	if err := r.get(ctx, &stats, query, doctorID, day); err != nil {
		return nil, fmt.Errorf("failed to load doctor stats: %w", err)
	}
	return &stats, nil
}

func (r *statsRepository) PatientCounts(ctx context.Context, dr model.DateRange) (int, int, error) {
	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM patients WHERE is_deleted = FALSE`); err != nil {
		return 0, 0, fmt.Errorf("failed to count patients: %w", err)
	}

	cond := rangeCondition("created_at", dr)
	cond.raw("is_deleted = FALSE")
	var created int
	if err := r.get(ctx, &created, `SELECT COUNT(*) FROM patients`+cond.where(), cond.args...); err != nil {
		return 0, 0, fmt.Errorf("failed to count new patients: %w", err)
	}
	return total, created, nil
}

func (r *statsRepository) groupCount(ctx context.Context, query string, args ...interface{}) ([]model.GroupCount, error) {
	counts := []model.GroupCount{}
	if err := r.selectAll(ctx, &counts, query, args...); err != nil {
		return nil, err
	}
	return counts, nil
}

func (r *statsRepository) PatientsByGender(ctx context.Context) ([]model.GroupCount, error) {
	counts, err := r.groupCount(ctx, `
		SELECT gender AS key, COUNT(*) AS count
		FROM patients WHERE is_deleted = FALSE
		GROUP BY gender ORDER BY gender`)
	if err != nil {
		return nil, fmt.Errorf("failed to group patients by gender: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) DoctorsBySpecialization(ctx context.Context) ([]model.GroupCount, error) {
	counts, err := r.groupCount(ctx, `
		SELECT specialization AS key, COUNT(*) AS count
		FROM doctors GROUP BY specialization ORDER BY count DESC, specialization`)
	if err != nil {
		return nil, fmt.Errorf("failed to group doctors by specialization: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) AppointmentsByStatus(ctx context.Context, dr model.DateRange) ([]model.GroupCount, error) {
	cond := rangeCondition("appointment_date", dr)
	counts, err := r.groupCount(ctx, `
		SELECT status AS key, COUNT(*) AS count FROM appointments`+cond.where()+`
		GROUP BY status ORDER BY status`, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group appointments by status: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) LabReportsByStatus(ctx context.Context, dr model.DateRange) ([]model.GroupCount, error) {
	cond := rangeCondition("created_at", dr)
	counts, err := r.groupCount(ctx, `
		SELECT status AS key, COUNT(*) AS count FROM lab_reports`+cond.where()+`
		GROUP BY status ORDER BY status`, cond.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group lab reports by status: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) RevenueByStatus(ctx context.Context, dr model.DateRange) ([]model.RevenueByStatus, error) {
	cond := rangeCondition("billing_date", dr)
	query := `
		SELECT status, COUNT(*) AS count,
			COALESCE(SUM(total_amount), 0) AS total,
			COALESCE(SUM(paid_amount), 0) AS paid
		FROM billings` + cond.where() + `
		GROUP BY status ORDER BY status`

	rows := []model.RevenueByStatus{}
	if err := r.selectAll(ctx, &rows, query, cond.args...); err != nil {
		return nil, fmt.Errorf("failed to group revenue by status: %w", err)
	}
	return rows, nil
}

func (r *statsRepository) TreatmentCount(ctx context.Context, dr model.DateRange) (int, error) {
	cond := rangeCondition("treatment_date", dr)
	var count int
	if err := r.get(ctx, &count, `SELECT COUNT(*) FROM treatments`+cond.where(), cond.args...); err != nil {
		return 0, fmt.Errorf("failed to count treatments: %w", err)
	}
	return count, nil
}

func (r *statsRepository) UsersByRole(ctx context.Context) ([]model.GroupCount, error) {
	counts, err := r.groupCount(ctx, `
		SELECT role AS key, COUNT(*) AS count FROM users GROUP BY role ORDER BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to group users by role: %w", err)
	}
	return counts, nil
}

func (r *statsRepository) ActiveUsers(ctx context.Context) (int, error) {
	var count int
	if err := r.get(ctx, &count, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}
