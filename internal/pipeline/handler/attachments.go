package handler

import (
	"net/http"
	"path/filepath"

	"rivo_backend/internal/adapters/storage"
	"rivo_backend/internal/pipeline/domain"
	"rivo_backend/internal/pipeline/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

var (
	documents = domain.DocumentKind
	bankForms = domain.BankFormKind
)

// registerAttachments mounts list, upload, status, download and delete for
// one attachment kind. rg is already scoped to the owner: /clients/:id/documents.
func (h *Handler) registerAttachments(rg *gin.RouterGroup, kind domain.AttachmentKind) {
	rg.GET("", h.listAttachments(kind))
	rg.POST("", h.uploadAttachment(kind))
	rg.PATCH("/:attachmentId/status", h.setAttachmentStatus(kind))
	rg.GET("/:attachmentId/download", h.downloadAttachment(kind))
	rg.DELETE("/:attachmentId", h.deleteAttachment(kind))
}

func (h *Handler) listAttachments(kind domain.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			return
		}
		out, err := h.svc.ListAttachments(c.Request.Context(), kind, ownerID)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
	}
}

// uploadAttachment accepts multipart/form-data with "type" and "file" fields.
func (h *Handler) uploadAttachment(kind domain.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			return
		}
		header, err := c.FormFile("file")
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
			return
		}

		req := transport.UploadRequest{
			Type:        c.PostForm("type"),
			FileName:    filepath.Base(header.Filename),
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
		}
		if !h.validate(c, &req) {
			return
		}
		if err := storage.ValidateContentType(req.ContentType); err != nil {
			httpkit.Error(c, http.StatusBadRequest, "file type not allowed", nil)
			return
		}

		file, err := header.Open()
		if err != nil {
			httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
			return
		}
		defer file.Close()

		out, err := h.svc.UploadAttachment(c.Request.Context(), kind, ownerID, req, file)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.Created(c, out)
	}
}

func (h *Handler) setAttachmentStatus(kind domain.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			return
		}
		id, ok := parseID(c, "attachmentId")
		if !ok {
			return
		}
		var req transport.SetAttachmentStatusRequest
		if !h.bindJSON(c, &req, false) {
			return
		}
		out, err := h.svc.SetAttachmentStatus(c.Request.Context(), kind, ownerID, id, req.Status)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
	}
}

func (h *Handler) downloadAttachment(kind domain.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			return
		}
		id, ok := parseID(c, "attachmentId")
		if !ok {
			return
		}
		out, err := h.svc.AttachmentDownload(c.Request.Context(), kind, ownerID, id)
		if httpkit.HandleError(c, err) {
			return
		}
		httpkit.OK(c, out)
	}
}

// deleteAttachment answers 204 when the row is gone and 200 with the reset
// placeholder for default types.
func (h *Handler) deleteAttachment(kind domain.AttachmentKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		ownerID, ok := parseID(c, "id")
		if !ok {
			return
		}
		id, ok := parseID(c, "attachmentId")
		if !ok {
			return
		}
		out, err := h.svc.DeleteAttachment(c.Request.Context(), kind, ownerID, id)
		if httpkit.HandleError(c, err) {
			return
		}
		if out == nil {
			c.Status(http.StatusNoContent)
			return
		}
		httpkit.OK(c, out)
	}
}
