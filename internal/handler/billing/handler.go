package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/billing"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc billing.BillingService
}

func NewHandler(svc billing.BillingService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	bills := r.Group("/billing")
	{
		bills.POST("", authorize("billing.create"), h.CreateBilling)
		bills.GET("", h.ListBillings)
		bills.GET("/:id", h.GetBilling)
		bills.GET("/:id/pdf", h.Invoice)
		bills.PUT("/:id", authorize("billing.update"), h.UpdateBilling)
		bills.DELETE("/:id", authorize("billing.delete"), h.DeleteBilling)
	}
}

func (h *Handler) CreateBilling(c *gin.Context) {
	var req model.CreateBillingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.CreateBilling(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusCreated, "Billing created successfully", b)
}

func (h *Handler) ListBillings(c *gin.Context) {
	status, ok := handler.QueryEnum(c, "status",
		string(model.BillingStatusPending), string(model.BillingStatusPaid), string(model.BillingStatusCancelled))
	if !ok {
		return
	}
	patientID, ok := handler.QueryUUID(c, "patientId")
	if !ok {
		return
	}
	dateRange, ok := handler.DateRange(c)
	if !ok {
		return
	}

	filter := model.BillingFilter{
		PatientID: patientID,
		Status:    model.BillingStatus(status),
		StartDate: dateRange.Start,
		EndDate:   dateRange.End,
	}
	page := handler.Page(c)

	bills, total, err := h.svc.ListBillings(c.Request.Context(), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, bills, page, total)
}

func (h *Handler) GetBilling(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	b, err := h.svc.GetBilling(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, b)
}

// Invoice returns the printable invoice projection.
func (h *Handler) Invoice(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	invoice, err := h.svc.Invoice(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, invoice)
}

func (h *Handler) UpdateBilling(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateBillingRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.UpdateBilling(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Billing updated successfully", b)
}

func (h *Handler) DeleteBilling(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteBilling(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "Billing deleted successfully", nil)
}
