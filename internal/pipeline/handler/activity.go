package handler

import (
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const (
	entityLead   = domain.EntityLead
	entityClient = domain.EntityClient
	entityCase   = domain.EntityCase
)

func (h *Handler) registerActivity(rg *gin.RouterGroup, kind domain.EntityKind) {
	rg.GET("/:id/calls", h.listCalls(kind))
	rg.POST("/:id/calls", h.logCall(kind))
	rg.GET("/:id/notes", h.listNotes(kind))
	rg.POST("/:id/notes", h.addNote(kind))
}

func entityRef(c *gin.Context, kind domain.EntityKind) (domain.EntityRef, bool) {
	id, ok := parseID(c, "id")
	return domain.EntityRef{Kind: kind, ID: id}, ok
}

func (h *Handler) logCall(kind domain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := entityRef(c, kind)
		if !ok {
			return
		}
		var req transport.LogCallRequest
		if !h.bindJSON(c, &req, false) {
			return
		}
		out, err := h.svc.LogCall(c.Request.Context(), ref, req)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Created(c, out)
	}
}

func (h *Handler) listCalls(kind domain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := entityRef(c, kind)
		if !ok {
			return
		}
		out, err := h.svc.ListCallLogs(c.Request.Context(), ref)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
	}
}

func (h *Handler) addNote(kind domain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := entityRef(c, kind)
		if !ok {
			return
		}
		var req transport.AddNoteRequest
		if !h.bindJSON(c, &req, false) {
			return
		}
		out, err := h.svc.AddNote(c.Request.Context(), ref, req)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Created(c, out)
	}
}

func (h *Handler) listNotes(kind domain.EntityKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ref, ok := entityRef(c, kind)
		if !ok {
			return
		}
		out, err := h.svc.ListNotes(c.Request.Context(), ref)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
	}
}
