// Package handler exposes the pipeline services over HTTP.
package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"rivo_backend/internal/pipeline/service"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"

	defaultPageSize = 20
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts leads, clients and cases on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.GET("", h.ListLeads)
	leads.POST("", h.CreateLead)
	leads.GET("/:id", h.GetLead)
	leads.PATCH("/:id", h.UpdateLead)
	leads.POST("/:id/drop", h.DropLead)
	leads.POST("/:id/convert", h.ConvertLead)
	h.registerActivity(leads, entityLead)

	clients := rg.Group("/clients")
	clients.GET("", h.ListClients)
	clients.POST("", h.CreateClient)
	clients.GET("/:id", h.GetClient)
	clients.PATCH("/:id", h.UpdateClient)
	clients.DELETE("/:id", h.DeleteClient)
	clients.POST("/:id/not-proceeding", h.MarkNotProceeding)
	clients.POST("/:id/not-eligible", h.MarkNotEligible)
	clients.POST("/:id/cases", h.CreateCase)
	h.registerActivity(clients, entityClient)
	h.registerAttachments(clients.Group("/:id/documents"), documents)

	cases := rg.Group("/cases")
	cases.GET("", h.ListCases)
	cases.GET("/:id", h.GetCase)
	cases.PATCH("/:id", h.UpdateCase)
	cases.POST("/:id/advance", h.AdvanceStage)
	cases.POST("/:id/decline", h.DeclineCase)
	cases.POST("/:id/withdraw", h.WithdrawCase)
	cases.PUT("/:id/stage", h.SetStage)
	h.registerActivity(cases, entityCase)
	h.registerAttachments(cases.Group("/:id/bank-forms"), bankForms)
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidID))
		return 0, false
	}
	return id, true
}

// bindJSON decodes and validates the body. An empty body is accepted when
// optional is set, leaving req at its zero value.
func (h *Handler) bindJSON(c *gin.Context, req any, optional bool) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
			return false
		}
	}
	return h.validate(c, req)
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	return h.validate(c, req)
}

func (h *Handler) validate(c *gin.Context, req any) bool {
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}
