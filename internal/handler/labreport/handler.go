package labreport

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/labreport"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

// FileField is the multipart field carrying the report file.
const FileField = "file"

// Statuses lists the accepted lab report status filter values.
var Statuses = []string{
	string(model.LabReportStatusPending),
	string(model.LabReportStatusInProgress),
	string(model.LabReportStatusCompleted),
}

type Handler struct {
	svc labreport.LabReportService
}

func NewHandler(svc labreport.LabReportService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	reports := r.Group("/lab-reports")
	{
		reports.POST("", authorize("labReports.create"), h.CreateLabReport)
		reports.GET("", h.ListLabReports)
		reports.GET("/pending", authorize("labReports.pending"), h.PendingLabReports)
		reports.GET("/lab-staff/my-reports", authorize("labReports.mine"), h.MyLabReports)
		reports.GET("/:id", h.GetLabReport)
		reports.PUT("/:id", authorize("labReports.update"), h.UpdateLabReport)
		reports.DELETE("/:id", authorize("labReports.delete"), h.DeleteLabReport)
		reports.POST("/:id/upload", authorize("labReports.upload"), h.UploadFile)
		reports.GET("/:id/download", h.Download)
	}
}

func (h *Handler) CreateLabReport(c *gin.Context) {
	var req model.CreateLabReportRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.CreateLabReport(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Lab report created successfully", report)
}

func (h *Handler) ListLabReports(c *gin.Context) {
	filter, ok := BindFilter(c)
	if !ok {
		return
	}
	if filter.PatientID, ok = handler.QueryUUID(c, "patientId"); !ok {
		return
	}
	page := handler.Page(c)

	reports, total, err := h.svc.ListLabReports(c.Request.Context(), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, reports, page, total)
}

func (h *Handler) GetLabReport(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	report, err := h.svc.GetLabReport(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, report)
}

func (h *Handler) PendingLabReports(c *gin.Context) {
	page := handler.Page(c)

	reports, total, err := h.svc.PendingLabReports(c.Request.Context(), page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, reports, page, total)
}

func (h *Handler) MyLabReports(c *gin.Context) {
	filter, ok := BindFilter(c)
	if !ok {
		return
	}
	page := handler.Page(c)

	reports, total, err := h.svc.MyLabReports(c.Request.Context(), handler.Principal(c), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, reports, page, total)
}

// UpdateLabReport accepts a JSON body, or a multipart form whose optional
// file field is attached to the report.
func (h *Handler) UpdateLabReport(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	var (
		req  model.UpdateLabReportRequest
		file *model.UploadedFile
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		if !handler.BindForm(c, &req) {
			return
		}
		if file, ok = readUpload(c, false); !ok {
			return
		}
	} else if !handler.BindJSON(c, &req) {
		return
	}

	report, err := h.svc.UpdateLabReport(c.Request.Context(), handler.Principal(c), id, &req, file)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Lab report updated successfully", report)
}

func (h *Handler) DeleteLabReport(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteLabReport(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Lab report deleted successfully", nil)
}

// UploadFile reads the multipart file into memory and hands it to the
// service, which validates type and size before storing it.
func (h *Handler) UploadFile(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	file, ok := readUpload(c, true)
	if !ok {
		return
	}

	report, err := h.svc.UploadFile(c.Request.Context(), handler.Principal(c), id, file)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "File uploaded successfully", report)
}

func (h *Handler) Download(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	link, err := h.svc.DownloadLink(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, link)
}

// BindFilter reads the status and testType filters shared with the doctor
// lab results view.
func BindFilter(c *gin.Context) (model.LabReportFilter, bool) {
	status, ok := handler.QueryEnum(c, "status", Statuses...)
	if !ok {
		return model.LabReportFilter{}, false
	}

	filter := model.LabReportFilter{TestType: strings.TrimSpace(c.Query("testType"))}
	if status != "" {
		filter.Status = []model.LabReportStatus{model.LabReportStatus(status)}
	}
	return filter, true
}

// readUpload returns the multipart file. A missing file is a validation
// error when required and nil otherwise.
func readUpload(c *gin.Context, required bool) (*model.UploadedFile, bool) {
	header, err := c.FormFile(FileField)
	if err != nil {
		if handler.RejectTooLarge(c, err) {
			return nil, false
		}
		if !required && errors.Is(err, http.ErrMissingFile) {
			return nil, true
		}
		handler.Fail(c, apperrors.Validation("file is required", apperrors.FieldError{
			Field:   FileField,
			Message: "a multipart file is required",
		}))
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		handler.Fail(c, apperrors.Internal(fmt.Errorf("open upload: %w", err)))
		return nil, false
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		handler.Fail(c, apperrors.Internal(fmt.Errorf("read upload: %w", err)))
		return nil, false
	}

	return &model.UploadedFile{
		Name:        header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	}, true
}
