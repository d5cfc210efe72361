package httpkit

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
)

// RoleAdmin is the role required by the /admin route group.
const RoleAdmin = "admin"

// Identity is the authenticated caller as seen by handlers.
type Identity interface {
	UserID() int64
	Roles() []string
	HasRole(role string) bool
	IsAdmin() bool
	IsAuthenticated() bool
}

type identity struct {
	userID int64
	roles  []string
}

func (i identity) UserID() int64            { return i.userID }
func (i identity) Roles() []string          { return slices.Clone(i.roles) }
func (i identity) HasRole(role string) bool { return slices.Contains(i.roles, role) }
func (i identity) IsAdmin() bool            { return i.HasRole(RoleAdmin) }
func (i identity) IsAuthenticated() bool    { return i.userID > 0 }

// GetIdentity reads the caller set by AuthRequired. On unauthenticated
// routes it returns an identity whose IsAuthenticated is false.
func GetIdentity(c *gin.Context) Identity {
	uid, _ := c.Get(ContextUserIDKey)
	id, ok := uid.(int64)
	if !ok {
		return identity{}
	}
	roles, _ := c.Get(ContextRolesKey)
	list, _ := roles.([]string)
	return identity{userID: id, roles: list}
}

// MustGetIdentity is GetIdentity that aborts with 401 and returns nil when
// nobody is logged in.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
