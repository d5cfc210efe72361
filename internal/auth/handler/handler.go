package handler

import (
	"net/http"

	"rivo_backend/internal/auth/service"
	"rivo_backend/internal/auth/transport"
	"rivo_backend/platform/apperr"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
	rg.POST("/logout", h.Logout)
}

func (h *Handler) Login(c *gin.Context) {
	var req transport.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.HandleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	token, expiresAt, profile, err := h.svc.Login(c.Request.Context(), req.Login(), req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        toUserResponse(profile),
	})
}

// Logout is a no-op for stateless access tokens; clients drop the token.
func (h *Handler) Logout(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (h *Handler) GetMe(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	profile, err := h.svc.GetMe(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUserResponse(profile))
}

func toUserResponse(p service.Profile) transport.UserResponse {
	return transport.UserResponse{
		ID:        p.ID,
		Username:  p.Username,
		Email:     p.Email,
		Name:      p.DisplayName(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Status:    p.Status,
		IsAdmin:   p.IsAdmin,
	}
}
