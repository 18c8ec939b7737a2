package labreport

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/service"
	"github.com/jwalitptl/hms-api/internal/service/event"
	"github.com/jwalitptl/hms-api/internal/storage"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

// DownloadTTL is how long a signed download link stays valid.
const DownloadTTL = time.Hour

type LabReportService interface {
	CreateLabReport(ctx context.Context, req *model.CreateLabReportRequest) (*model.LabReport, error)
	ListLabReports(ctx context.Context, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error)
	GetLabReport(ctx context.Context, id uuid.UUID) (*model.LabReportView, error)
	PendingLabReports(ctx context.Context, page model.Page) ([]model.LabReportView, int, error)
	MyLabReports(ctx context.Context, actor *model.Principal, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error)
	UpdateLabReport(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateLabReportRequest, file *model.UploadedFile) (*model.LabReport, error)
	UploadFile(ctx context.Context, actor *model.Principal, id uuid.UUID, file *model.UploadedFile) (*model.LabReport, error)
	DownloadLink(ctx context.Context, id uuid.UUID) (*model.DownloadLink, error)
	DeleteLabReport(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	tx          repository.Transactor
	repo        repository.LabReportRepository
	patientRepo repository.PatientRepository
	profiles    repository.ProfileRepository
	store       storage.Store
	events      event.Recorder
	log         *logger.Logger
	now         func() time.Time
}

func NewService(tx repository.Transactor, repo repository.LabReportRepository, patientRepo repository.PatientRepository,
	profiles repository.ProfileRepository, store storage.Store, events event.Recorder, log *logger.Logger) *Service {
	return &Service{
		tx:          tx,
		repo:        repo,
		patientRepo: patientRepo,
		profiles:    profiles,
		store:       store,
		events:      events,
		log:         log.With("labreport"),
		now:         time.Now,
	}
}

func (s *Service) CreateLabReport(ctx context.Context, req *model.CreateLabReportRequest) (*model.LabReport, error) {
	if _, err := service.ActivePatient(ctx, s.patientRepo, req.PatientID); err != nil {
		return nil, err
	}

	report := &model.LabReport{
		Base:      model.NewBase(),
		PatientID: req.PatientID,
		TestName:  strings.TrimSpace(req.TestName),
		TestType:  strings.TrimSpace(req.TestType),
		Status:    model.LabReportStatusPending,
		Remarks:   req.Remarks,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, service.Classify(err, "lab report")
	}
	return report, nil
}

func (s *Service) ListLabReports(ctx context.Context, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error) {
	filter.TestType = strings.TrimSpace(filter.TestType)
	reports, total, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, 0, service.Classify(err, "lab report")
	}
	return reports, total, nil
}

func (s *Service) GetLabReport(ctx context.Context, id uuid.UUID) (*model.LabReportView, error) {
	report, err := s.repo.GetView(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "lab report")
	}
	return report, nil
}

// PendingLabReports is the lab work queue, oldest first.
func (s *Service) PendingLabReports(ctx context.Context, page model.Page) ([]model.LabReportView, int, error) {
	return s.ListLabReports(ctx, model.LabReportFilter{
		Status:      []model.LabReportStatus{model.LabReportStatusPending, model.LabReportStatusInProgress},
		OldestFirst: true,
	}, page)
}

// MyLabReports lists the reports conducted by the acting lab staff member.
func (s *Service) MyLabReports(ctx context.Context, actor *model.Principal, filter model.LabReportFilter, page model.Page) ([]model.LabReportView, int, error) {
	staff, err := service.LabStaffProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, 0, err
	}
	filter.ConductedBy = &staff.ID
	return s.ListLabReports(ctx, filter, page)
}

// UpdateLabReport applies result fields and, optionally, a forward status
// change and a result file. Any status change records the acting lab staff
// as conductor.
func (s *Service) UpdateLabReport(ctx context.Context, actor *model.Principal, id uuid.UUID, req *model.UpdateLabReportRequest, file *model.UploadedFile) (*model.LabReport, error) {
	var staff *model.LabStaff
	if file != nil {
		if err := validateFile(file); err != nil {
			return nil, err
		}
		var err error
		if staff, err = service.LabStaffProfile(ctx, s.profiles, actor); err != nil {
			return nil, err
		}
	}

	return s.modify(ctx, id, file, func(ctx context.Context, report *model.LabReport, now time.Time) (bool, error) {
		completed := false
		if req.Status != nil && *req.Status != report.Status {
			if !report.Status.CanTransitionTo(*req.Status) {
				return false, apperrors.InvalidTarget("cannot change lab report status from " + string(report.Status) + " to " + string(*req.Status))
			}
			if staff == nil {
				var err error
				if staff, err = service.LabStaffProfile(ctx, s.profiles, actor); err != nil {
					return false, err
				}
			}
			report.Status = *req.Status
			report.ConductedBy = &staff.ID
			completed = report.Status == model.LabReportStatusCompleted
		}

		if req.Results != nil {
			report.Results = req.Results
		}
		if req.Remarks != nil {
			report.Remarks = req.Remarks
		}
		if req.ReportDate != nil && !req.ReportDate.IsZero() {
			reportDate := req.ReportDate.Time
			report.ReportDate = &reportDate
		} else if completed && report.ReportDate == nil {
			report.ReportDate = &now
		}
		return completed, nil
	})
}

// UploadFile attaches a result file and completes the report.
func (s *Service) UploadFile(ctx context.Context, actor *model.Principal, id uuid.UUID, file *model.UploadedFile) (*model.LabReport, error) {
	if err := validateFile(file); err != nil {
		return nil, err
	}
	staff, err := service.LabStaffProfile(ctx, s.profiles, actor)
	if err != nil {
		return nil, err
	}

	return s.modify(ctx, id, file, func(_ context.Context, report *model.LabReport, now time.Time) (bool, error) {
		completed := report.Status != model.LabReportStatusCompleted
		report.Status = model.LabReportStatusCompleted
		report.ConductedBy = &staff.ID
		report.ReportDate = &now
		return completed, nil
	})
}

func (s *Service) DownloadLink(ctx context.Context, id uuid.UUID) (*model.DownloadLink, error) {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, service.Classify(err, "lab report")
	}
	if !report.HasFile() {
		return nil, apperrors.NotFound("lab report file", nil)
	}

	url, err := s.store.SignedURL(ctx, *report.FileKey, DownloadTTL)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, apperrors.NotFound("lab report file", err)
	}
	if err != nil {
		return nil, upstream(err)
	}

	link := &model.DownloadLink{
		DownloadURL: url,
		ExpiresIn:   int(DownloadTTL.Seconds()),
	}
	if report.FileName != nil {
		link.FileName = *report.FileName
	}
	return link, nil
}

// DeleteLabReport removes the record, then its stored file if it had one.
func (s *Service) DeleteLabReport(ctx context.Context, id uuid.UUID) error {
	report, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return service.Classify(err, "lab report")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return service.Classify(err, "lab report")
	}
	if report.HasFile() {
		s.removeObject(ctx, *report.FileKey)
	}
	return nil
}

// modify runs apply against the locked row and saves the result in one
// transaction, recording labreport.completed when apply reports a completion.
// A file is stored before the transaction and removed again if it fails; the
// object it replaces is removed after commit.
func (s *Service) modify(ctx context.Context, id uuid.UUID, file *model.UploadedFile,
	apply func(ctx context.Context, report *model.LabReport, now time.Time) (bool, error)) (*model.LabReport, error) {
	now := s.now().UTC()

	var key string
	if file != nil {
		key = storage.LabReportKey(id.String(), file.Name, now)
		if err := s.store.Put(ctx, key, file.ContentType, file.Content); err != nil {
			return nil, upstream(err)
		}
	}

	var (
		report      *model.LabReport
		previousKey string
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		if report, err = s.repo.GetForUpdate(ctx, id); err != nil {
			return err
		}
		if file != nil {
			if report.FileKey != nil {
				previousKey = *report.FileKey
			}
			fileName := file.Name
			report.FileKey = &key
			report.FileName = &fileName
		}

		completed, err := apply(ctx, report, now)
		if err != nil {
			return err
		}
		if err := s.repo.Update(ctx, report); err != nil {
			return err
		}
		if !completed {
			return nil
		}
		return s.events.Record(ctx, model.EventLabReportCompleted, report.ID, model.LabReportEventPayload{
			LabReportID: report.ID,
			PatientID:   report.PatientID,
			TestName:    report.TestName,
		})
	})
	if err != nil {
		if file != nil {
			s.removeObject(ctx, key)
		}
		return nil, service.Classify(err, "lab report")
	}

	if previousKey != "" && previousKey != key {
		s.removeObject(ctx, previousKey)
	}
	return report, nil
}

func validateFile(file *model.UploadedFile) error {
	if err := storage.ValidateFile(file.Name, file.ContentType, file.Size); err != nil {
		return apperrors.Validation(err.Error(), apperrors.FieldError{Field: "file", Message: err.Error()})
	}
	return nil
}

func (s *Service) removeObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		s.log.Warn("failed to remove stored file", "key", key, "error", err.Error())
	}
}

func upstream(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Upstream("object storage request failed", err)
}
