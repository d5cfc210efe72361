package handler

import (
	"net/http"

	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateClient(c *gin.Context) {
	var req transport.CreateClientRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	client, err := h.svc.CreateClient(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, client)
}

func (h *Handler) UpdateClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateClientRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	client, err := h.svc.UpdateClient(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, client)
}

func (h *Handler) GetClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	client, err := h.svc.GetClient(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, client)
}

func (h *Handler) ListClients(c *gin.Context) {
	req := transport.ListClientsRequest{Page: 1, PageSize: defaultPageSize}
	if !h.bindQuery(c, &req) {
		return
	}
	out, err := h.svc.ListClients(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) DeleteClient(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if httpkit.HandleError(c, h.svc.DeleteClient(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) MarkNotProceeding(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	client, err := h.svc.MarkNotProceeding(c.Request.Context(), id, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, client)
}

func (h *Handler) MarkNotEligible(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	client, err := h.svc.MarkNotEligible(c.Request.Context(), id, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, client)
}

// CreateCase opens a case for the client in the path.
func (h *Handler) CreateCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.CreateCaseRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	out, err := h.svc.CreateCase(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, out)
}
