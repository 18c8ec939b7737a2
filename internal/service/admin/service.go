package admin

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
)

const (
	dashboardCacheKey = "dashboard"
	dashboardTTL      = 30 * time.Second
)

type AdminService interface {
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	Summary(ctx context.Context, r model.DateRange) (*model.SummaryReport, error)
	ReportData(ctx context.Context, actor *model.Principal, reportType model.ReportType, r model.DateRange) (*model.ReportData, error)
}

type Service struct {
	stats repository.StatsRepository
	cache *cache.Cache
	now   func() time.Time
}

func NewService(stats repository.StatsRepository) *Service {
	return &Service{
		stats: stats,
		cache: cache.New(dashboardTTL, time.Minute),
		now:   time.Now,
	}
}

// DashboardStats serves the admin counters, cached briefly since the
// dashboard polls.
func (s *Service) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	if cached, ok := s.cache.Get(dashboardCacheKey); ok {
		return cached.(*model.DashboardStats), nil
	}

	stats, err := s.stats.Dashboard(ctx, model.NewDate(s.now()))
	if err != nil {
		return nil, service.Classify(err, "dashboard stats")
	}
	s.cache.SetDefault(dashboardCacheKey, stats)
	return stats, nil
}

func (s *Service) Summary(ctx context.Context, r model.DateRange) (*model.SummaryReport, error) {
	report := &model.SummaryReport{}
	var err error

	if report.Patients, err = s.patientSummary(ctx, r); err != nil {
		return nil, err
	}

	specializations, err := s.stats.DoctorsBySpecialization(ctx)
	if err != nil {
		return nil, service.Classify(err, "doctor stats")
	}
	report.Doctors = model.DoctorBreakdown{Total: sum(specializations), BySpecialization: specializations}

	appointments, err := s.stats.AppointmentsByStatus(ctx, r)
	if err != nil {
		return nil, service.Classify(err, "appointment stats")
	}
	report.Appointments = statusSummary(appointments, string(model.AppointmentStatusCompleted))

	labReports, err := s.stats.LabReportsByStatus(ctx, r)
	if err != nil {
		return nil, service.Classify(err, "lab report stats")
	}
	report.LabReports = statusSummary(labReports, string(model.LabReportStatusCompleted))

	if report.Revenue, err = s.revenueSummary(ctx, r); err != nil {
		return nil, err
	}

	if report.Treatments.Total, err = s.stats.TreatmentCount(ctx, r); err != nil {
		return nil, service.Classify(err, "treatment stats")
	}

	byRole, err := s.stats.UsersByRole(ctx)
	if err != nil {
		return nil, service.Classify(err, "user stats")
	}
	active, err := s.stats.ActiveUsers(ctx)
	if err != nil {
		return nil, service.Classify(err, "user stats")
	}
	report.Users = model.UserSummary{Active: active, ByRole: byRole}

	return report, nil
}

// ReportData assembles the payload behind a printable report.
func (s *Service) ReportData(ctx context.Context, actor *model.Principal, reportType model.ReportType, r model.DateRange) (*model.ReportData, error) {
	if reportType == "" {
		reportType = model.ReportTypeSummary
	}
	title, ok := reportType.Title()
	if !ok {
		return nil, apperrors.Validation("Validation failed", apperrors.FieldError{
			Field:   "reportType",
			Message: "must be one of summary, patients, revenue, appointments, lab-reports",
		})
	}

	var (
		data interface{}
		err  error
	)
	switch reportType {
	case model.ReportTypeSummary:
		data, err = s.Summary(ctx, r)
	case model.ReportTypePatients:
		data, err = s.patientSummary(ctx, r)
	case model.ReportTypeRevenue:
		data, err = s.revenueSummary(ctx, r)
	case model.ReportTypeAppointments:
		var groups []model.GroupCount
		groups, err = s.stats.AppointmentsByStatus(ctx, r)
		data = statusSummary(groups, string(model.AppointmentStatusCompleted))
	case model.ReportTypeLabReports:
		var groups []model.GroupCount
		groups, err = s.stats.LabReportsByStatus(ctx, r)
		data = statusSummary(groups, string(model.LabReportStatusCompleted))
	}
	if err != nil {
		return nil, service.Classify(err, "report")
	}

	return &model.ReportData{
		ReportType:  reportType,
		Title:       title,
		GeneratedAt: s.now().UTC(),
		GeneratedBy: actor.Name,
		DateRange:   r.String(),
		Data:        data,
	}, nil
}

func (s *Service) patientSummary(ctx context.Context, r model.DateRange) (model.PatientSummary, error) {
	total, created, err := s.stats.PatientCounts(ctx, r)
	if err != nil {
		return model.PatientSummary{}, service.Classify(err, "patient stats")
	}
	byGender, err := s.stats.PatientsByGender(ctx)
	if err != nil {
		return model.PatientSummary{}, service.Classify(err, "patient stats")
	}
	return model.PatientSummary{Total: total, New: created, ByGender: byGender}, nil
}

func (s *Service) revenueSummary(ctx context.Context, r model.DateRange) (model.RevenueSummary, error) {
	rows, err := s.stats.RevenueByStatus(ctx, r)
	if err != nil {
		return model.RevenueSummary{}, service.Classify(err, "revenue stats")
	}

	summary := model.RevenueSummary{ByStatus: rows}
	for _, row := range rows {
		summary.Total += row.Total
		summary.Paid += row.Paid
		if row.Status == model.BillingStatusPending {
			summary.Pending += row.Total - row.Paid
		}
	}
	return summary, nil
}

func statusSummary(groups []model.GroupCount, completed string) model.StatusSummary {
	summary := model.StatusSummary{Total: sum(groups), ByStatus: groups}
	for _, g := range groups {
		if g.Key == completed {
			summary.Completed = g.Count
		}
	}
	return summary
}

func sum(groups []model.GroupCount) int {
	total := 0
	for _, g := range groups {
		total += g.Count
	}
	return total
}
