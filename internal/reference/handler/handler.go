// Package handler exposes reference data over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"rivo_backend/internal/reference/service"
	"rivo_backend/internal/reference/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/channels", h.ListChannels)
	rg.GET("/sources", h.ListSources)
	rg.GET("/sub-sources", h.ListSubSources)
	rg.GET("/campaigns", h.ListCampaigns)
	rg.GET("/bank-products", h.ListBankProducts)
	rg.GET("/bank-products/:id", h.GetBankProduct)
	rg.GET("/eibor-rates/latest", h.LatestEiborRates)
}

func (h *Handler) ListChannels(c *gin.Context) {
	items, err := h.svc.ListChannels(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListSources(c *gin.Context) {
	var req transport.ListSourcesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	items, err := h.svc.ListSources(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListSubSources(c *gin.Context) {
	var req transport.ListSubSourcesRequest
	if !h.bindQuery(c, &req) {
		return
	}
	items, err := h.svc.ListSubSources(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListCampaigns(c *gin.Context) {
	var req transport.ListCampaignsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	items, err := h.svc.ListCampaigns(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, items)
}

func (h *Handler) ListBankProducts(c *gin.Context) {
	var req transport.ListBankProductsRequest
	if !h.bindQuery(c, &req) {
		return
	}
	resp, err := h.svc.ListBankProducts(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) GetBankProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	resp, err := h.svc.GetBankProduct(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) LatestEiborRates(c *gin.Context) {
	resp, err := h.svc.LatestEiborRates(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, resp)
}

func (h *Handler) bindQuery(c *gin.Context, req any) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return false
	}
	return true
}
