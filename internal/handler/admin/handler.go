package admin

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/admin"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc admin.AdminService
}

func NewHandler(svc admin.AdminService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	admin := r.Group("/admin", authorize("admin"))
	{
		admin.GET("/dashboard/stats", h.DashboardStats)
		admin.GET("/reports/summary", h.Summary)
		admin.GET("/reports/pdf", h.ReportData)
	}
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, stats)
}

func (h *Handler) Summary(c *gin.Context) {
	dateRange, ok := handler.DateRange(c)
	if !ok {
		return
	}

	report, err := h.svc.Summary(c.Request.Context(), dateRange)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, report)
}

// ReportData returns the data a client renders into a printable report.
func (h *Handler) ReportData(c *gin.Context) {
	dateRange, ok := handler.DateRange(c)
	if !ok {
		return
	}
	reportType := model.ReportType(strings.TrimSpace(c.Query("reportType")))

	data, err := h.svc.ReportData(c.Request.Context(), handler.Principal(c), reportType, dateRange)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, data)
}
