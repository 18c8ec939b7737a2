package labreport

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/repository/mocks"
	"github.com/jwalitptl/hms-api/internal/storage"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/logger"
)

var fixedNow = time.Date(2024, 7, 9, 10, 30, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	tx       *mocks.Transactor
	reports  *mocks.LabReportRepository
	patients *mocks.PatientRepository
	profiles *mocks.ProfileRepository
	events   *mocks.Recorder
	store    *storage.MemoryStore

	actor *model.Principal
	staff *model.LabStaff
}

func newFixture() *fixture {
	f := &fixture{
		tx:       &mocks.Transactor{},
		reports:  &mocks.LabReportRepository{},
		patients: &mocks.PatientRepository{},
		profiles: &mocks.ProfileRepository{},
		events:   &mocks.Recorder{},
		store:    storage.NewMemoryStore("lab-reports"),
		actor:    &model.Principal{UserID: uuid.New(), Role: model.RoleLabStaff},
		staff:    &model.LabStaff{ID: uuid.New()},
	}
	f.svc = NewService(f.tx, f.reports, f.patients, f.profiles, f.store, f.events, logger.Nop())
	f.svc.now = func() time.Time { return fixedNow }
	f.profiles.On("GetLabStaffByUserID", mock.Anything, f.actor.UserID).Return(f.staff, nil)
	return f
}

func (f *fixture) report(status model.LabReportStatus) *model.LabReport {
	r := &model.LabReport{Base: model.NewBase(), PatientID: uuid.New(), TestName: "CBC", TestType: "blood", Status: status}
	f.reports.On("GetByID", mock.Anything, r.ID).Return(r, nil)
	f.reports.On("GetForUpdate", mock.Anything, r.ID).Return(r, nil)
	return r
}

func pdf(size int) *model.UploadedFile {
	return &model.UploadedFile{
		Name:        "result.pdf",
		ContentType: "application/pdf",
		Size:        int64(size),
		Content:     []byte(strings.Repeat("x", size)),
	}
}

func TestCreateLabReport(t *testing.T) {
	f := newFixture()
	patient := &model.Patient{Base: model.NewBase()}
	f.patients.On("GetByID", mock.Anything, patient.ID).Return(patient, nil)
	f.reports.On("Create", mock.Anything, mock.Anything).Return(nil)

	report, err := f.svc.CreateLabReport(context.Background(), &model.CreateLabReportRequest{
		PatientID: patient.ID,
		TestName:  " Lipid panel ",
		TestType:  "blood",
	})
	require.NoError(t, err)
	assert.Equal(t, model.LabReportStatusPending, report.Status)
	assert.Equal(t, "Lipid panel", report.TestName)
	assert.Nil(t, report.ConductedBy)
}

func TestCreateLabReport_DeletedPatient(t *testing.T) {
	f := newFixture()
	patient := &model.Patient{Base: model.NewBase(), IsDeleted: true}
	f.patients.On("GetByID", mock.Anything, patient.ID).Return(patient, nil)

	_, err := f.svc.CreateLabReport(context.Background(), &model.CreateLabReportRequest{PatientID: patient.ID, TestName: "CBC", TestType: "blood"})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
	f.reports.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateLabReport_Complete(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusInProgress)
	f.reports.On("Update", mock.Anything, report).Return(nil)
	f.events.On("Record", mock.Anything, model.EventLabReportCompleted, report.ID, mock.Anything).Return(nil)
	status := model.LabReportStatusCompleted
	results := "Hb 13.5 g/dL"

	updated, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Status: &status, Results: &results}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.LabReportStatusCompleted, updated.Status)
	assert.Equal(t, f.staff.ID, *updated.ConductedBy)
	assert.Equal(t, fixedNow, *updated.ReportDate)
	assert.Equal(t, results, *updated.Results)
	f.events.AssertExpectations(t)
	f.reports.AssertCalled(t, "GetForUpdate", mock.Anything, report.ID)
	f.reports.AssertNotCalled(t, "GetByID", mock.Anything, report.ID)
	assert.Equal(t, 1, f.tx.Calls)
}

func TestUpdateLabReport_ExplicitReportDate(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusInProgress)
	f.reports.On("Update", mock.Anything, report).Return(nil)
	f.events.On("Record", mock.Anything, model.EventLabReportCompleted, report.ID, mock.Anything).Return(nil)
	status := model.LabReportStatusCompleted
	reportDate := model.NewDate(time.Date(2024, 7, 8, 0, 0, 0, 0, time.UTC))

	updated, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Status: &status, ReportDate: &reportDate}, nil)
	require.NoError(t, err)
	assert.Equal(t, reportDate.Time, *updated.ReportDate)
}

func TestUpdateLabReport_WithFile(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusInProgress)
	f.reports.On("Update", mock.Anything, report).Return(nil)
	results := "Hb 13.5 g/dL"

	updated, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Results: &results}, pdf(128))
	require.NoError(t, err)
	require.True(t, updated.HasFile())
	assert.True(t, f.store.Has(*updated.FileKey))
	assert.Equal(t, "result.pdf", *updated.FileName)
	assert.Equal(t, model.LabReportStatusInProgress, updated.Status)
	assert.Equal(t, results, *updated.Results)
	assert.Nil(t, updated.ReportDate)
	f.events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLabReport_WithFileAndCompletion(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusInProgress)
	oldKey := "lab-reports/old/result.pdf"
	require.NoError(t, f.store.Put(context.Background(), oldKey, "application/pdf", []byte("old")))
	report.FileKey = &oldKey
	f.reports.On("Update", mock.Anything, report).Return(nil)
	f.events.On("Record", mock.Anything, model.EventLabReportCompleted, report.ID, mock.Anything).Return(nil)
	status := model.LabReportStatusCompleted

	updated, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Status: &status}, pdf(64))
	require.NoError(t, err)
	assert.Equal(t, model.LabReportStatusCompleted, updated.Status)
	assert.Equal(t, f.staff.ID, *updated.ConductedBy)
	assert.False(t, f.store.Has(oldKey))
	assert.True(t, f.store.Has(*updated.FileKey))
	f.events.AssertExpectations(t)
}

func TestUpdateLabReport_RejectedFile(t *testing.T) {
	f := newFixture()
	results := "normal"

	_, err := f.svc.UpdateLabReport(context.Background(), f.actor, uuid.New(), &model.UpdateLabReportRequest{Results: &results},
		&model.UploadedFile{Name: "run.exe", ContentType: "application/octet-stream", Size: 10})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
	f.reports.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
}

func TestUpdateLabReport_RemovesFileWhenTransitionRejected(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusCompleted)
	status := model.LabReportStatusPending

	_, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Status: &status}, pdf(64))
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
	f.reports.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.False(t, f.store.Has(storage.LabReportKey(report.ID.String(), "result.pdf", fixedNow)))
}

func TestUpdateLabReport_ResultsOnly(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusInProgress)
	f.reports.On("Update", mock.Anything, report).Return(nil)
	remarks := "sample slightly hemolysed"

	updated, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Remarks: &remarks}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.LabReportStatusInProgress, updated.Status)
	assert.Nil(t, updated.ReportDate)
	f.events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateLabReport_BackwardsTransition(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusCompleted)
	status := model.LabReportStatusPending

	_, err := f.svc.UpdateLabReport(context.Background(), f.actor, report.ID, &model.UpdateLabReportRequest{Status: &status}, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTarget))
	f.reports.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateLabReport_StatusChangeNeedsLabStaff(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusPending)
	admin := &model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	f.profiles.On("GetLabStaffByUserID", mock.Anything, admin.UserID).Return(nil, repository.ErrNotFound)
	status := model.LabReportStatusInProgress

	_, err := f.svc.UpdateLabReport(context.Background(), admin, report.ID, &model.UpdateLabReportRequest{Status: &status}, nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}

func TestUploadFile(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusPending)
	f.reports.On("Update", mock.Anything, report).Return(nil)
	f.events.On("Record", mock.Anything, model.EventLabReportCompleted, report.ID, mock.Anything).Return(nil)

	updated, err := f.svc.UploadFile(context.Background(), f.actor, report.ID, pdf(128))
	require.NoError(t, err)
	require.True(t, updated.HasFile())
	assert.True(t, f.store.Has(*updated.FileKey))
	assert.Equal(t, "result.pdf", *updated.FileName)
	assert.Equal(t, model.LabReportStatusCompleted, updated.Status)
	assert.Equal(t, f.staff.ID, *updated.ConductedBy)
	assert.Equal(t, 1, f.tx.Calls)
}

func TestUploadFile_ReplacesPreviousObject(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusCompleted)
	oldKey := "lab-reports/old/result.pdf"
	require.NoError(t, f.store.Put(context.Background(), oldKey, "application/pdf", []byte("old")))
	report.FileKey = &oldKey
	f.reports.On("Update", mock.Anything, report).Return(nil)

	updated, err := f.svc.UploadFile(context.Background(), f.actor, report.ID, pdf(64))
	require.NoError(t, err)
	assert.False(t, f.store.Has(oldKey))
	assert.True(t, f.store.Has(*updated.FileKey))
	f.events.AssertNotCalled(t, "Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadFile_RemovesObjectWhenUpdateFails(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusPending)
	f.reports.On("Update", mock.Anything, report).Return(errors.New("connection reset"))

	_, err := f.svc.UploadFile(context.Background(), f.actor, report.ID, pdf(64))
	assert.True(t, apperrors.Is(err, apperrors.ErrInternal))
	require.NotNil(t, report.FileKey)
	assert.False(t, f.store.Has(*report.FileKey))
}

func TestUploadFile_Rejections(t *testing.T) {
	tests := []struct {
		name string
		file *model.UploadedFile
	}{
		{"too large", &model.UploadedFile{Name: "scan.pdf", ContentType: "application/pdf", Size: 15 << 20}},
		{"unsupported type", &model.UploadedFile{Name: "run.exe", ContentType: "application/octet-stream", Size: 10}},
		{"empty", &model.UploadedFile{Name: "result.pdf", ContentType: "application/pdf"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.UploadFile(context.Background(), f.actor, uuid.New(), tt.file)
			assert.True(t, apperrors.Is(err, apperrors.ErrValidationFailed))
			f.reports.AssertNotCalled(t, "GetForUpdate", mock.Anything, mock.Anything)
		})
	}
}

func TestDownloadLink(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusCompleted)
	key, name := "lab-reports/r1/result.pdf", "result.pdf"
	require.NoError(t, f.store.Put(context.Background(), key, "application/pdf", []byte("pdf")))
	report.FileKey, report.FileName = &key, &name

	link, err := f.svc.DownloadLink(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, 3600, link.ExpiresIn)
	assert.Equal(t, name, link.FileName)
	assert.True(t, strings.HasPrefix(link.DownloadURL, "memory://lab-reports/"))
}

func TestDownloadLink_NoFile(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusPending)

	_, err := f.svc.DownloadLink(context.Background(), report.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestDeleteLabReport_RemovesFile(t *testing.T) {
	f := newFixture()
	report := f.report(model.LabReportStatusCompleted)
	key := "lab-reports/r2/result.pdf"
	require.NoError(t, f.store.Put(context.Background(), key, "application/pdf", []byte("pdf")))
	report.FileKey = &key
	f.reports.On("Delete", mock.Anything, report.ID).Return(nil)

	require.NoError(t, f.svc.DeleteLabReport(context.Background(), report.ID))
	assert.False(t, f.store.Has(key))
}

func TestMyLabReports(t *testing.T) {
	f := newFixture()
	page := model.Page{Page: 1, Limit: 10}
	f.reports.On("List", mock.Anything, model.LabReportFilter{
		Status:      []model.LabReportStatus{model.LabReportStatusCompleted},
		ConductedBy: &f.staff.ID,
	}, page).Return([]model.LabReportView{{}}, 1, nil)

	reports, total, err := f.svc.MyLabReports(context.Background(), f.actor,
		model.LabReportFilter{Status: []model.LabReportStatus{model.LabReportStatusCompleted}}, page)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, 1, total)
}

func TestPendingLabReports(t *testing.T) {
	f := newFixture()
	page := model.Page{Page: 1, Limit: 20}
	f.reports.On("List", mock.Anything, model.LabReportFilter{
		Status:      []model.LabReportStatus{model.LabReportStatusPending, model.LabReportStatusInProgress},
		OldestFirst: true,
	}, page).Return([]model.LabReportView{{}, {}}, 2, nil)

	reports, total, err := f.svc.PendingLabReports(context.Background(), page)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, 2, total)
}
