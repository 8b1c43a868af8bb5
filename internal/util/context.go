package util

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
)

const (
	UserIDKey         = "x-user-id"
	UserEmailKey      = "x-user-email"
	OrganizationIDKey = "x-organization-id"
	RoleKey           = "x-role"
)

func SetJWTContext(
	c *gin.Context,
	msg JWTMessage,
) {
	c.Set(UserIDKey, msg.UserID)
	c.Set(UserEmailKey, msg.Email)
	c.Set(OrganizationIDKey, msg.OrganizationID)
	c.Set(RoleKey, msg.Role)
}

// GetToken reads the identity stored by the auth middleware. Missing values
// come back as zero values, which every store call rejects.
func GetToken(ctx *gin.Context) JWTMessage {
	var msg JWTMessage
	if v, ok := ctx.Get(UserIDKey); ok {
		msg.UserID, _ = v.(uuid.UUID)
	}
	if v, ok := ctx.Get(OrganizationIDKey); ok {
		msg.OrganizationID, _ = v.(uuid.UUID)
	}
	msg.Email = ctx.GetString(UserEmailKey)
	if v, ok := ctx.Get(RoleKey); ok {
		msg.Role, _ = v.(model.UserRole)
	}
	return msg
}
