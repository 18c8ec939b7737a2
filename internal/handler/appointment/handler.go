package appointment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/appointment"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

var statuses = []string{
	string(model.AppointmentStatusScheduled),
	string(model.AppointmentStatusInProgress),
	string(model.AppointmentStatusCompleted),
	string(model.AppointmentStatusCancelled),
}

type Handler struct {
	svc appointment.AppointmentService
}

func NewHandler(svc appointment.AppointmentService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", authorize("appointments.create"), h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/doctor/my-appointments", authorize("appointments.mine"), h.MyAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", authorize("appointments.update"), h.UpdateAppointment)
		appointments.PATCH("/:id/cancel", authorize("appointments.cancel"), h.CancelAppointment)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.svc.CreateAppointment(c.Request.Context(), handler.Principal(c), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Appointment created successfully", a)
}

func (h *Handler) ListAppointments(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	if filter.DoctorID, ok = handler.QueryUUID(c, "doctorId"); !ok {
		return
	}
	if filter.PatientID, ok = handler.QueryUUID(c, "patientId"); !ok {
		return
	}
	page := handler.Page(c)

	appointments, total, err := h.svc.ListAppointments(c.Request.Context(), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, appointments, page, total)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	a, err := h.svc.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, a)
}

func (h *Handler) MyAppointments(c *gin.Context) {
	filter, ok := bindFilter(c)
	if !ok {
		return
	}
	page := handler.Page(c)

	appointments, total, err := h.svc.MyAppointments(c.Request.Context(), handler.Principal(c), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, appointments, page, total)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.svc.UpdateAppointment(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Appointment updated successfully", a)
}

// CancelAppointment accepts an empty body; the reason is optional.
func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.CancelAppointmentRequest
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	a, err := h.svc.CancelAppointment(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Appointment cancelled successfully", a)
}

func bindFilter(c *gin.Context) (model.AppointmentFilter, bool) {
	status, ok := handler.QueryEnum(c, "status", statuses...)
	if !ok {
		return model.AppointmentFilter{}, false
	}
	date, ok := handler.QueryDate(c, "date")
	if !ok {
		return model.AppointmentFilter{}, false
	}
	return model.AppointmentFilter{Status: model.AppointmentStatus(status), Date: date}, true
}
