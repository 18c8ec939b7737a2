package labreport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/handler/labreport"
	"github.com/jwalitptl/hms-api/internal/middleware"
	"github.com/jwalitptl/hms-api/internal/model"
	service "github.com/jwalitptl/hms-api/internal/service/labreport"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type stubService struct {
	service.LabReportService

	uploaded *model.UploadedFile
	update   *model.UpdateLabReportRequest
	filter   model.LabReportFilter
	link     *model.DownloadLink
	err      error
}

func (s *stubService) UploadFile(_ context.Context, _ *model.Principal, id uuid.UUID, file *model.UploadedFile) (*model.LabReport, error) {
	s.uploaded = file
	if s.err != nil {
		return nil, s.err
	}
	r := &model.LabReport{Status: model.LabReportStatusCompleted}
	r.ID = id
	return r, nil
}

func (s *stubService) ListLabReports(_ context.Context, filter model.LabReportFilter, _ model.Page) ([]model.LabReportView, int, error) {
	s.filter = filter
	return []model.LabReportView{}, 0, nil
}

func (s *stubService) UpdateLabReport(_ context.Context, _ *model.Principal, id uuid.UUID, req *model.UpdateLabReportRequest, file *model.UploadedFile) (*model.LabReport, error) {
	s.update, s.uploaded = req, file
	if s.err != nil {
		return nil, s.err
	}
	r := &model.LabReport{Status: model.LabReportStatusInProgress}
	r.ID = id
	return r, nil
}

func (s *stubService) MyLabReports(_ context.Context, _ *model.Principal, filter model.LabReportFilter, _ model.Page) ([]model.LabReportView, int, error) {
	s.filter = filter
	return []model.LabReportView{}, 0, nil
}

func (s *stubService) DownloadLink(_ context.Context, _ uuid.UUID) (*model.DownloadLink, error) {
	return s.link, s.err
}

func setup(svc *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(false))
	authorize := func(string) gin.HandlerFunc {
		return func(c *gin.Context) {
			handler.SetPrincipal(c, &model.Principal{UserID: uuid.New(), Role: model.RoleLabStaff})
			c.Next()
		}
	}
	g := r.Group("")
	g.Use(authorize(""))
	labreport.NewHandler(svc).RegisterRoutes(g, authorize)
	return r
}

func multipartBody(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	return multipartForm(t, nil, field, name, content)
}

func multipartForm(t *testing.T, values map[string]string, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range values {
		require.NoError(t, mw.WriteField(k, v))
	}
	if field != "" {
		fw, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func TestUploadFile(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)
	id := uuid.New()

	body, contentType := multipartBody(t, labreport.FileField, "cbc.pdf", []byte("%PDF-1.4 result"))
	req := httptest.NewRequest(http.MethodPost, "/lab-reports/"+id.String()+"/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.uploaded)
	assert.Equal(t, "cbc.pdf", svc.uploaded.Name)
	assert.EqualValues(t, len("%PDF-1.4 result"), svc.uploaded.Size)
	assert.Equal(t, []byte("%PDF-1.4 result"), svc.uploaded.Content)
}

func TestUploadFile_MissingFile(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	body, contentType := multipartBody(t, "", "", nil)
	req := httptest.NewRequest(http.MethodPost, "/lab-reports/"+uuid.NewString()+"/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.uploaded)
	assert.Contains(t, w.Body.String(), `"field":"file"`)
}

func TestUploadFile_RejectedByService(t *testing.T) {
	svc := &stubService{err: apperrors.Validation("file type not allowed",
		apperrors.FieldError{Field: "file", Message: "file type not allowed"})}
	r := setup(svc)

	body, contentType := multipartBody(t, labreport.FileField, "run.exe", []byte("MZ"))
	req := httptest.NewRequest(http.MethodPost, "/lab-reports/"+uuid.NewString()+"/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp httputil.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ValidationFailed", resp.Code)
}

func TestUpdateLabReport_Multipart(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)
	id := uuid.New()

	body, contentType := multipartForm(t, map[string]string{
		"status":     "IN_PROGRESS",
		"results":    "Hb 13.5",
		"reportDate": "2024-07-10",
	}, labreport.FileField, "cbc.pdf", []byte("%PDF-1.4 result"))
	req := httptest.NewRequest(http.MethodPut, "/lab-reports/"+id.String(), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.update)
	require.NotNil(t, svc.update.Status)
	assert.Equal(t, model.LabReportStatusInProgress, *svc.update.Status)
	require.NotNil(t, svc.update.Results)
	assert.Equal(t, "Hb 13.5", *svc.update.Results)
	require.NotNil(t, svc.update.ReportDate)
	assert.Equal(t, "2024-07-10", svc.update.ReportDate.Format("2006-01-02"))
	assert.Nil(t, svc.update.Remarks)
	require.NotNil(t, svc.uploaded)
	assert.Equal(t, "cbc.pdf", svc.uploaded.Name)
	assert.Equal(t, []byte("%PDF-1.4 result"), svc.uploaded.Content)
}

func TestUpdateLabReport_MultipartWithoutFile(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	body, contentType := multipartForm(t, map[string]string{"remarks": "haemolysed"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPut, "/lab-reports/"+uuid.NewString(), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.update.Remarks)
	assert.Equal(t, "haemolysed", *svc.update.Remarks)
	assert.Nil(t, svc.update.Status)
	assert.Nil(t, svc.uploaded)
}

func TestUpdateLabReport_MultipartBadStatus(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	body, contentType := multipartForm(t, map[string]string{"status": "LOST"}, "", "", nil)
	req := httptest.NewRequest(http.MethodPut, "/lab-reports/"+uuid.NewString(), body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, svc.update)
}

func TestUpdateLabReport_JSON(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	req := httptest.NewRequest(http.MethodPut, "/lab-reports/"+uuid.NewString(), bytes.NewBufferString(`{"status":"COMPLETED","results":"normal"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.NotNil(t, svc.update.Status)
	assert.Equal(t, model.LabReportStatusCompleted, *svc.update.Status)
	assert.Nil(t, svc.uploaded)
}

func TestMyLabReports_Filters(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lab-reports/lab-staff/my-reports?status=COMPLETED", nil))

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []model.LabReportStatus{model.LabReportStatusCompleted}, svc.filter.Status)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lab-reports/lab-staff/my-reports?status=LOST", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLabReports_Filters(t *testing.T) {
	svc := &stubService{}
	r := setup(svc)
	patientID := uuid.New()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
		"/lab-reports?status=IN_PROGRESS&testType=blood&patientId="+patientID.String(), nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []model.LabReportStatus{model.LabReportStatusInProgress}, svc.filter.Status)
	assert.Equal(t, "blood", svc.filter.TestType)
	require.NotNil(t, svc.filter.PatientID)
	assert.Equal(t, patientID, *svc.filter.PatientID)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lab-reports?status=LOST", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownload(t *testing.T) {
	svc := &stubService{link: &model.DownloadLink{DownloadURL: "memory://lab-reports/k", FileName: "cbc.pdf", ExpiresIn: 3600}}
	r := setup(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lab-reports/"+uuid.NewString()+"/download", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"downloadUrl":"memory://lab-reports/k"`)
	assert.Contains(t, w.Body.String(), `"expiresIn":3600`)

	svc.link, svc.err = nil, apperrors.NotFound("lab report file", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/lab-reports/"+uuid.NewString()+"/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
