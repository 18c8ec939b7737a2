// Package handler holds the request helpers shared by the resource handlers.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hms-api/internal/model"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/httputil"
	"github.com/jwalitptl/hms-api/pkg/validator"
)

const principalKey = "principal"

// Authorizer builds the role gate for a named operation.
type Authorizer func(op string) gin.HandlerFunc

// Fail hands err to the error middleware and stops the chain.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func SetPrincipal(c *gin.Context, p *model.Principal) {
	c.Set(principalKey, p)
}

// Principal returns the authenticated caller. Routes behind the
// authentication middleware always have one.
func Principal(c *gin.Context) *model.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(*model.Principal); ok {
			return p
		}
	}
	return nil
}

// BindJSON decodes the body into obj and reports validation failures with
// per-field messages.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		failBinding(c, err)
		return false
	}
	return true
}

// BindForm binds url-encoded or multipart form fields into obj using the
// form tags.
func BindForm(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBind(obj); err != nil {
		if !RejectTooLarge(c, err) {
			failBinding(c, err)
		}
		return false
	}
	return true
}

func failBinding(c *gin.Context, err error) {
	if fields := validator.Fields(err); fields != nil {
		Fail(c, apperrors.Validation("validation failed", fields...))
	} else {
		Fail(c, apperrors.Validation("invalid request body: "+err.Error()))
	}
}

// RejectTooLarge answers 413 when err comes from an exhausted body limit.
func RejectTooLarge(c *gin.Context, err error) bool {
	var maxErr *http.MaxBytesError
	if !errors.As(err, &maxErr) {
		return false
	}
	httputil.RespondWithError(c, http.StatusRequestEntityTooLarge, "PayloadTooLarge",
		fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit), nil)
	return true
}

// ParamID parses a uuid path parameter.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		Fail(c, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be a valid UUID"}))
		return uuid.Nil, false
	}
	return id, true
}

// QueryUUID parses an optional uuid query parameter.
func QueryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		Fail(c, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be a valid UUID"}))
		return nil, false
	}
	return &id, true
}

// QueryDate parses an optional YYYY-MM-DD query parameter.
func QueryDate(c *gin.Context, name string) (*model.Date, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		Fail(c, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be a date in YYYY-MM-DD format"}))
		return nil, false
	}
	return &d, true
}

// QueryBool parses an optional boolean query parameter.
func QueryBool(c *gin.Context, name string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		Fail(c, apperrors.Validation("invalid "+name, apperrors.FieldError{Field: name, Message: "must be true or false"}))
		return nil, false
	}
	return &b, true
}

// QueryEnum reads an optional query parameter restricted to allowed values.
func QueryEnum(c *gin.Context, name string, allowed ...string) (string, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return "", true
	}
	for _, a := range allowed {
		if raw == a {
			return raw, true
		}
	}
	Fail(c, apperrors.Validation("invalid "+name, apperrors.FieldError{
		Field:   name,
		Message: "must be one of " + strings.Join(allowed, " "),
	}))
	return "", false
}

// DateRange reads startDate and endDate.
func DateRange(c *gin.Context) (model.DateRange, bool) {
	start, ok := QueryDate(c, "startDate")
	if !ok {
		return model.DateRange{}, false
	}
	end, ok := QueryDate(c, "endDate")
	if !ok {
		return model.DateRange{}, false
	}
	return model.DateRange{Start: start, End: end}, true
}

func Page(c *gin.Context) model.Page {
	page, limit := httputil.PageParams(c)
	return model.Page{Page: page, Limit: limit}
}

// RespondWithPage writes a list result with pagination metadata.
func RespondWithPage(c *gin.Context, data interface{}, page model.Page, total int) {
	httputil.RespondWithPagination(c, data, page.Page, page.Limit, total)
}
