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

const labReportColumns = `
	l.id, l.patient_id, l.test_name, l.test_type, l.status, l.results, l.file_key,
	l.file_name, l.remarks, l.conducted_by, l.report_date, l.created_at, l.updated_at`

const labReportViewQuery = `
	SELECT ` + labReportColumns + `,
		p.id AS "patient.id", p.first_name AS "patient.first_name", p.last_name AS "patient.last_name",
		NULLIF(CONCAT_WS(' ', su.first_name, su.last_name), '') AS conducted_by_name
	FROM lab_reports l
	JOIN patients p ON p.id = l.patient_id
	LEFT JOIN lab_staff s ON s.id = l.conducted_by
	LEFT JOIN users su ON su.id = s.user_id`

type labReportRepository struct {
	BaseRepository
}

func NewLabReportRepository(base BaseRepository) repository.LabReportRepository {
	return &labReportRepository{base}
}

func (r *labReportRepository) Create(ctx context.Context, l *model.LabReport) error {
	query := `
		INSERT INTO lab_reports (
			id, patient_id, test_name, test_type, status, results, file_key,
			file_name, remarks, conducted_by, report_date, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.ext(ctx).ExecContext(ctx, query,
		l.ID, l.PatientID, l.TestName, l.TestType, l.Status, l.Results, l.FileKey,
		l.FileName, l.Remarks, l.ConductedBy, l.ReportDate, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lab report: %w", mapError(err))
	}
	return nil
}

func (r *labReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.LabReport, error) {
	var l model.LabReport
	if err := r.get(ctx, &l, `SELECT `+labReportColumns+` FROM lab_reports l WHERE l.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get lab report: %w", err)
	}
	return &l, nil
}

func (r *labReportRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.LabReport, error) {
	var l model.LabReport
	if err := r.get(ctx, &l, `SELECT `+labReportColumns+` FROM lab_reports l WHERE l.id = $1 FOR UPDATE`, id); err != nil {
		return nil, fmt.Errorf("failed to lock lab report: %w", err)
	}
	return &l, nil
}

func (r *labReportRepository) GetView(ctx context.Context, id uuid.UUID) (*model.LabReportView, error) {
	var v model.LabReportView
	if err := r.get(ctx, &v, labReportViewQuery+` WHERE l.id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get lab report: %w", err)
	}
	return &v, nil
}

func (r *labReportRepository) Update(ctx context.Context, l *model.LabReport) error {
	query := `
		UPDATE lab_reports
		SET status = $1, results = $2, file_key = $3, file_name = $4, remarks = $5,
			conducted_by = $6, report_date = $7, updated_at = $8
		WHERE id = $9
	`
	l.UpdatedAt = time.Now().UTC()
	err := r.exec(ctx, query,
		l.Status, l.Results, l.FileKey, l.FileName, l.Remarks,
		l.ConductedBy, l.ReportDate, l.UpdatedAt, l.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update lab report: %w", err)
	}
	return nil
}

func (r *labReportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.exec(ctx, `DELETE FROM lab_reports WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete lab report: %w", err)
	}
	return nil
}

func (r *labReportRepository) List(ctx context.Context, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error) {
	var cond conditions
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		cond.add("l.status = ANY($%d)", pq.Array(statuses))
	}
	if filter.PatientID != nil {
		cond.add("l.patient_id = $%d", *filter.PatientID)
	}
	if filter.ConductedBy != nil {
		cond.add("l.conducted_by = $%d", *filter.ConductedBy)
	}
	if filter.TestType != "" {
		cond.add("l.test_type ILIKE $%d", likePattern(filter.TestType))
	}

	var total int
	if err := r.get(ctx, &total, `SELECT COUNT(*) FROM lab_reports l`+cond.where(), cond.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count lab reports: %w", err)
	}

	order := ` ORDER BY l.created_at DESC`
	if filter.OldestFirst {
		order = ` ORDER BY l.created_at ASC`
	}
	limit, args := cond.page(page.Limit, page.Offset())
	query := labReportViewQuery + cond.where() + order + limit

	reports := []model.LabReportView{}
	if err := r.selectAll(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list lab reports: %w", err)
	}
	return reports, total, nil
}
