package handler

import (
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	out, err := h.svc.GetCase(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) ListCases(c *gin.Context) {
	req := transport.ListCasesRequest{Page: 1, PageSize: defaultPageSize}
	if !h.bindQuery(c, &req) {
		return
	}
	out, err := h.svc.ListCases(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) UpdateCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.UpdateCaseRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	out, err := h.svc.UpdateCase(c.Request.Context(), id, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) AdvanceStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.TransitionRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	out, err := h.svc.AdvanceStage(c.Request.Context(), id, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) DeclineCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.ReasonRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	out, err := h.svc.DeclineCase(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

func (h *Handler) WithdrawCase(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.ReasonRequest
	if !h.bindJSON(c, &req, true) {
		return
	}
	out, err := h.svc.WithdrawCase(c.Request.Context(), id, req.Reason)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}

// SetStage is the kanban drag-and-drop write.
func (h *Handler) SetStage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req transport.SetStageRequest
	if !h.bindJSON(c, &req, false) {
		return
	}
	out, err := h.svc.SetStage(c.Request.Context(), id, req.Stage, req.Notes)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, out)
}
