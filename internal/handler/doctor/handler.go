package doctor

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/handler/labreport"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/doctor"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc doctor.DoctorService
}

func NewHandler(svc doctor.DoctorService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	workspace := r.Group("/doctor", authorize("doctor"))
	{
		workspace.GET("/dashboard", h.Dashboard)
		workspace.GET("/patients", h.AssignedPatients)
		workspace.POST("/patients/:id/treatments", h.CreateTreatment)
		workspace.GET("/patients/:id/treatments", h.ListTreatments)
		workspace.GET("/patients/:id/lab-results", h.LabResults)
		workspace.PUT("/treatments/:treatmentId", h.UpdateTreatment)
	}
}

func (h *Handler) Dashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard(c.Request.Context(), handler.Principal(c))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, dashboard)
}

func (h *Handler) AssignedPatients(c *gin.Context) {
	page := handler.Page(c)

	patients, total, err := h.svc.AssignedPatients(c.Request.Context(), handler.Principal(c),
		strings.TrimSpace(c.Query("search")), page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, patients, page, total)
}

func (h *Handler) CreateTreatment(c *gin.Context) {
	patientID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.CreateTreatment(c.Request.Context(), handler.Principal(c), patientID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Treatment created successfully", t)
}

func (h *Handler) ListTreatments(c *gin.Context) {
	patientID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	page := handler.Page(c)

	treatments, total, err := h.svc.ListTreatments(c.Request.Context(), patientID,
		strings.TrimSpace(c.Query("search")), page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, treatments, page, total)
}

func (h *Handler) UpdateTreatment(c *gin.Context) {
	id, ok := handler.ParamID(c, "treatmentId")
	if !ok {
		return
	}
	var req model.UpdateTreatmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.UpdateTreatment(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Treatment updated successfully", t)
}

func (h *Handler) LabResults(c *gin.Context) {
	patientID, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	filter, ok := labreport.BindFilter(c)
	if !ok {
		return
	}
	page := handler.Page(c)

	results, total, err := h.svc.LabResults(c.Request.Context(), patientID, filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, results, page, total)
}
