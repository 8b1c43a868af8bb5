package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/store"
)

// AuthProtected validates the bearer token and stores the identity on the
// context. Mutating requests additionally check the user against the database
// so that deactivated users and changed roles take effect before expiry.
func AuthProtected(tokens *util.TokenManager, db *gorm.DB) gin.HandlerFunc {
	users := store.New[model.User](db)
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		t := strings.Split(authHeader, " ")
		if len(t) < 2 || t[0] != "Bearer" {
			resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
			return
		}

		token, err := tokens.CheckToken(t[1])
		if errors.Is(err, util.ErrTokenExpired) {
			resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenExpired)
			return
		}
		if err != nil {
			resputil.HTTPError(c, http.StatusUnauthorized, err.Error(), resputil.TokenInvalid)
			return
		}

		if c.Request.Method != http.MethodGet {
			user, err := users.FindByID(c, token.OrganizationID, token.UserID, store.Select("id", "role", "is_active"))
			if err != nil {
				resputil.HTTPError(c, http.StatusUnauthorized, "User not found", resputil.TokenInvalid)
				return
			}
			if !user.IsActive {
				resputil.HTTPError(c, http.StatusForbidden, "User is deactivated", resputil.UserNotAllowed)
				return
			}
			if user.Role != token.Role {
				resputil.HTTPError(c, http.StatusUnauthorized, "Role not match", resputil.TokenInvalid)
				return
			}
		}

		util.SetJWTContext(c, token)
		c.Next()
	}
}

func AuthAdmin() gin.HandlerFunc {
	return RequireRoles(model.RoleSuperAdmin)
}

// RequireRoles lets the request through when the caller holds one of roles.
// SUPER_ADMIN is always allowed.
func RequireRoles(roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := util.GetToken(c).Role
		if role != model.RoleSuperAdmin && !slices.Contains(roles, role) {
			resputil.HTTPError(c, http.StatusForbidden, "Role not allowed", resputil.UserNotAllowed)
			return
		}
		c.Next()
	}
}
