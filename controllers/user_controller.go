package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/voidswing/ff-l/services"
	"go.uber.org/zap"
)

type UserController struct {
	identity *services.IdentityService
	log      *zap.Logger
}

func NewUserController(identity *services.IdentityService, log *zap.Logger) *UserController {
	return &UserController{identity: identity, log: log}
}

// Login handles POST /api/user/login: create-or-touch for a client UDID.
// There is no credential; the UDID is opaque correlation, not authentication.
func (ct *UserController) Login(c *gin.Context) {
	var input struct {
		UDID string `json:"udid"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		validationError(c, "request body must be a JSON object with a udid field")
		return
	}

	udid := strings.TrimSpace(input.UDID)
	if udid == "" || len(udid) > 64 {
		validationError(c, "udid must be 1-64 characters")
		return
	}

	user, err := ct.identity.Login(udid)
	if err != nil {
		ct.log.Error("user login failed", zap.Error(err))
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"udid":         user.UDID,
		"created_at":   user.CreatedAt,
		"last_seen_at": user.LastSeenAt,
	})
}
