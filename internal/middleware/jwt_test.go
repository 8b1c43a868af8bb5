package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/testutil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/config"
)

func newRouter(t *testing.T) (*gin.Engine, *util.TokenManager, *model.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	org := testutil.NewTestOrganization(t, db, "Acme")
	user := testutil.NewTestUser(t, db, org.ID, "pm@acme.test", testutil.WithRole(model.RoleProjectManager))

	tokens := util.NewTokenManager(&config.TokenConf{
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    time.Hour,
		AccessTokenSecret:  "a",
		RefreshTokenSecret: "r",
	})
	r := gin.New()
	g := r.Group("/v1", AuthProtected(tokens, db))
	g.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, util.GetToken(c).OrganizationID.String())
	})
	g.POST("/me", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	g.GET("/admin", AuthAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r, tokens, user
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, http.NoBody)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestAuthProtected(t *testing.T) {
	r, tokens, user := newRouter(t)
	access, _, err := tokens.CreateTokens(&util.JWTMessage{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Role:           user.Role,
	})
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/v1/me", access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user.OrganizationID.String(), w.Body.String())

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/v1/me", access).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/v1/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/v1/me", "garbage").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodGet, "/v1/admin", access).Code)
}

func TestAuthProtectedStaleRole(t *testing.T) {
	r, tokens, user := newRouter(t)
	access, _, err := tokens.CreateTokens(&util.JWTMessage{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Role:           model.RoleSuperAdmin,
	})
	require.NoError(t, err)

	// Reads trust the token, writes are checked against the stored role.
	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/v1/admin", access).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/v1/me", access).Code)
}
