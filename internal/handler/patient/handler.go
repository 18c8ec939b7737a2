package patient

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/patient"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc patient.PatientService
}

func NewHandler(svc patient.PatientService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	patients := r.Group("/patients")
	{
		patients.POST("", authorize("patients.create"), h.CreatePatient)
		patients.GET("", h.ListPatients)
		patients.GET("/:id", h.GetPatient)
		patients.PUT("/:id", authorize("patients.update"), h.UpdatePatient)
		patients.DELETE("/:id", authorize("patients.delete"), h.DeletePatient)

		patients.POST("/:id/assign-doctor", authorize("patients.assignDoctor"), h.AssignDoctor)
		patients.GET("/:id/medical-history", h.MedicalHistory)
		patients.POST("/:id/medical-records", authorize("patients.addMedicalRecord"), h.AddMedicalRecord)
	}
}

func (h *Handler) CreatePatient(c *gin.Context) {
	var req model.CreatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.CreatePatient(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Patient created successfully", p)
}

// ListPatients honours includeDeleted for admins only; the service drops it
// for everyone else.
func (h *Handler) ListPatients(c *gin.Context) {
	includeDeleted, ok := handler.QueryBool(c, "includeDeleted")
	if !ok {
		return
	}

	filter := model.PatientFilter{
		Search:         strings.TrimSpace(c.Query("search")),
		IncludeDeleted: includeDeleted != nil && *includeDeleted,
	}
	page := handler.Page(c)

	patients, total, err := h.svc.ListPatients(c.Request.Context(), handler.Principal(c), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, patients, page, total)
}

func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, p)
}

func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePatientRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdatePatient(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Patient updated successfully", p)
}

func (h *Handler) DeletePatient(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeletePatient(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Patient deleted successfully", nil)
}

func (h *Handler) AssignDoctor(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.AssignDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.AssignDoctor(c.Request.Context(), id, req.DoctorID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Doctor assigned successfully", p)
}

func (h *Handler) MedicalHistory(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	records, err := h.svc.MedicalHistory(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, records)
}

func (h *Handler) AddMedicalRecord(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CreateMedicalRecordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	record, err := h.svc.AddMedicalRecord(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Medical record added successfully", record)
}
