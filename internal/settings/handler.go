package settings

import (
	"net/http"

	apphttp "rivo_backend/internal/http"
	"rivo_backend/platform/httpkit"
	"rivo_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// View is the non-secret projection of the settings.
type View struct {
	PasswordConfigured     bool     `json:"passwordConfigured"`
	NotificationsEnabled   bool     `json:"notificationsEnabled"`
	NotificationStages     []string `json:"notificationStages"`
	NotificationRecipients int      `json:"notificationRecipients"`
	PhoneRegion            string   `json:"phoneRegion"`
}

func viewOf(s Settings) View {
	stages := s.Notifications.Stages
	if stages == nil {
		stages = []string{}
	}
	return View{
		PasswordConfigured:     s.SystemPasswordHash != "",
		NotificationsEnabled:   s.Notifications.Enabled,
		NotificationStages:     stages,
		NotificationRecipients: len(s.Notifications.Recipients),
		PhoneRegion:            s.PhoneRegion,
	}
}

// Module exposes the settings over HTTP and implements http.Module.
type Module struct {
	store *Store
	log   *logger.Logger
}

func NewModule(store *Store, log *logger.Logger) *Module {
	return &Module{store: store, log: log}
}

func (m *Module) Name() string {
	return "settings"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/settings", m.get)
	ctx.Admin.POST("/settings/reload", m.reload)
}

func (m *Module) get(c *gin.Context) {
	httpkit.OK(c, viewOf(m.store.Get()))
}

func (m *Module) reload(c *gin.Context) {
	if err := m.store.Reload(); err != nil {
		m.log.Error("settings reload failed", "error", err)
		httpkit.Error(c, http.StatusUnprocessableEntity, "settings reload failed", err.Error())
		return
	}
	m.log.Info("settings reloaded via admin endpoint")
	httpkit.OK(c, viewOf(m.store.Get()))
}

var _ apphttp.Module = (*Module)(nil)
