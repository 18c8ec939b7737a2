package user

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hms-api/internal/handler"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/service/user"
	"github.com/jwalitptl/hms-api/pkg/httputil"
)

type Handler struct {
	svc user.UserService
}

func NewHandler(svc user.UserService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authorize handler.Authorizer) {
	admin := r.Group("/admin", authorize("admin"))
	{
		admin.GET("/users", h.ListUsers)
		admin.GET("/users/:id", h.GetUser)
		admin.PUT("/users/:id", h.UpdateUser)
		admin.DELETE("/users/:id", h.DeleteUser)
		admin.PATCH("/users/:id/toggle-status", h.ToggleStatus)
		admin.GET("/doctors", h.ListDoctors)
	}
}

func (h *Handler) ListUsers(c *gin.Context) {
	role, ok := handler.QueryEnum(c, "role",
		string(model.RoleAdmin), string(model.RoleDoctor), string(model.RoleReceptionist), string(model.RoleLabStaff))
	if !ok {
		return
	}
	isActive, ok := handler.QueryBool(c, "isActive")
	if !ok {
		return
	}

	filter := model.UserFilter{
		Role:     model.Role(role),
		IsActive: isActive,
		Search:   strings.TrimSpace(c.Query("search")),
	}
	page := handler.Page(c)

	users, total, err := h.svc.ListUsers(c.Request.Context(), filter, page)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	handler.RespondWithPage(c, users, page, total)
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateUserRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	u, err := h.svc.UpdateUser(c.Request.Context(), handler.Principal(c), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "User updated successfully", u)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(c.Request.Context(), handler.Principal(c), id); err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithSuccess(c, http.StatusOK, "User deleted successfully", nil)
}

func (h *Handler) ToggleStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id")
	if !ok {
		return
	}

	u, err := h.svc.ToggleStatus(c.Request.Context(), handler.Principal(c), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	msg := "User deactivated successfully"
	if u.IsActive {
		msg = "User activated successfully"
	}
	httputil.RespondWithSuccess(c, http.StatusOK, msg, u)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	doctors, err := h.svc.ListDoctors(c.Request.Context(), strings.TrimSpace(c.Query("specialization")))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	httputil.RespondWithData(c, doctors)
}
