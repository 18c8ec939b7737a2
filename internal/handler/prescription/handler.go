package prescription

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/prescription"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc prescription.PrescriptionService
}

func NewHandler(svc prescription.PrescriptionService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	prescriptions := r.Group("/prescriptions")
	{
		prescriptions.POST("", authorize("prescriptions.create"), h.CreatePrescription)
		prescriptions.GET("", h.ListPrescriptions)
		prescriptions.GET("/doctor/my-prescriptions", authorize("prescriptions.mine"), h.MyPrescriptions)
		prescriptions.GET("/:id", h.GetPrescription)
		prescriptions.PUT("/:id", authorize("prescriptions.update"), h.UpdatePrescription)
	}
}

func (h *Handler) CreatePrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.CreatePrescription(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Prescription created successfully", p)
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	var (
		filter model.PrescriptionFilter
		ok     bool
	)
	if filter.PatientID, ok = handler.QueryUUID(c, "patientId"); !ok {
		return
	}
	if filter.DoctorID, ok = handler.QueryUUID(c, "doctorId"); !ok {
		return
	}
	page := handler.Page(c)

	prescriptions, total, err := h.svc.ListPrescriptions(c.Request.Context(), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, prescriptions, page, total)
}

func (h *Handler) GetPrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.GetPrescription(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, p)
}

func (h *Handler) MyPrescriptions(c *gin.Context) {
	page := handler.Page(c)

	prescriptions, total, err := h.svc.MyPrescriptions(c.Request.Context(), handler.Principal(c), page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, prescriptions, page, total)
}

func (h *Handler) UpdatePrescription(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.UpdatePrescription(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Prescription updated successfully", p)
}
