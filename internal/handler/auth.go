package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/logutils"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuthMgr)
}

// directory checks credentials against an external user directory.
type directory interface {
	Enabled() bool
	Authenticate(email, password string) error
}

type AuthMgr struct {
	name      string
	tokenMgr  *util.TokenManager
	users     *service.Users
	directory directory
	audit     *service.AuditLog
}

func NewAuthMgr(conf *RegisterConfig) Manager {
	mgr := &AuthMgr{
		name:     "auth",
		tokenMgr: conf.TokenMgr,
		users:    conf.Users,
		audit:    conf.AuditLog,
	}
	if conf.LDAP != nil {
		mgr.directory = conf.LDAP
	}
	return mgr
}

func (mgr *AuthMgr) GetName() string { return mgr.name }

func (mgr *AuthMgr) RegisterPublic(g *gin.RouterGroup) {
	g.POST("/login", mgr.Login)
	g.POST("/refresh", mgr.RefreshToken)
}

func (mgr *AuthMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/me", mgr.Me)
	g.POST("/logout", mgr.Logout)
}

func (mgr *AuthMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	LoginReq struct {
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required"`
		AuthMethod string `json:"auth"` // [local, ldap], local when empty
	}

	LoginResp struct {
		AccessToken  string      `json:"accessToken"`
		RefreshToken string      `json:"refreshToken"`
		User         *model.User `json:"user"`
	}
)

const (
	AuthMethodLocal = "local"
	AuthMethodLDAP  = "ldap"
)

var errMethodDisabled = errors.New("auth method disabled")

// Login godoc
//
//	@Summary		User login
//	@Description	Check the credentials of a user and issue an access and a refresh token
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		LoginReq					true	"Credentials"
//	@Success		200		{object}	resputil.Response[LoginResp]	"Tokens and user"
//	@Failure		400		{object}	resputil.Response[any]		"Request parameter error"
//	@Failure		401		{object}	resputil.Response[any]		"Invalid credentials"
//	@Router			/v1/auth/login [post]
func (mgr *AuthMgr) Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if req.AuthMethod == "" {
		req.AuthMethod = AuthMethodLocal
	}

	l := logutils.Log.WithFields(logutils.Fields{
		"email": req.Email,
		"auth":  req.AuthMethod,
	})

	user, err := mgr.users.FindByEmail(c, req.Email)
	if err != nil {
		l.Warn("user lookup: ", err)
		if errors.Is(err, store.ErrNotFound) {
			resputil.FromError(c, service.ErrInvalidCredential)
			return
		}
		resputil.FromError(c, err)
		return
	}

	switch req.AuthMethod {
	case AuthMethodLocal:
		err = mgr.users.CheckPassword(user, req.Password)
	case AuthMethodLDAP:
		err = mgr.ldapAuth(user, req.Password)
	default:
		resputil.HTTPError(c, http.StatusBadRequest, "Invalid auth method", resputil.InvalidRequest)
		return
	}
	if err != nil {
		l.Warn("invalid credentials: ", err)
		resputil.FromError(c, service.ErrInvalidCredential)
		return
	}

	resp, err := mgr.issue(c, user)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditLogin, model.KindUser, user.ID, nil, nil)
	resputil.Success(c, resp)
}

func (mgr *AuthMgr) ldapAuth(user *model.User, password string) error {
	if mgr.directory == nil || !mgr.directory.Enabled() {
		return errMethodDisabled
	}
	if !user.IsActive {
		return service.ErrInvalidCredential
	}
	return mgr.directory.Authenticate(user.Email, password)
}

// issue creates a token pair for user, stores the refresh token hash and
// puts the identity on the context.
func (mgr *AuthMgr) issue(c *gin.Context, user *model.User) (*LoginResp, error) {
	msg := util.JWTMessage{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		Email:          user.Email,
		Role:           user.Role,
	}
	accessToken, refreshToken, err := mgr.tokenMgr.CreateTokens(&msg)
	if err != nil {
		return nil, err
	}
	if err := mgr.users.RecordLogin(c, user, refreshToken); err != nil {
		return nil, err
	}
	util.SetJWTContext(c, msg)
	return &LoginResp{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

type RefreshReq struct {
	RefreshToken string `json:"refreshToken" binding:"required"` // without the `Bearer ` prefix
}

// RefreshToken godoc
//
//	@Summary		Refresh tokens
//	@Description	Exchange the latest refresh token for a new token pair
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			data	body		RefreshReq					true	"Refresh token"
//	@Success		200		{object}	resputil.Response[LoginResp]	"Tokens and user"
//	@Failure		401		{object}	resputil.Response[any]		"Invalid token"
//	@Router			/v1/auth/refresh [post]
func (mgr *AuthMgr) RefreshToken(c *gin.Context) {
	var req RefreshReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	claims, err := mgr.tokenMgr.CheckRefreshToken(req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
		return
	}
	user, err := mgr.users.CheckRefreshToken(c, claims.OrganizationID, claims.UserID, req.RefreshToken)
	if err != nil {
		resputil.HTTPError(c, http.StatusUnauthorized, "Invalid token", resputil.TokenInvalid)
		return
	}

	resp, err := mgr.issue(c, user)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, resp)
}

// Me godoc
//
//	@Summary		Current user
//	@Tags			Auth
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[model.User]	"Current user"
//	@Router			/v1/auth/me [get]
func (mgr *AuthMgr) Me(c *gin.Context) {
	token := util.GetToken(c)
	user, err := mgr.users.Get(c, token.OrganizationID, token.UserID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, user)
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Invalidate the stored refresh token of the caller
//	@Tags			Auth
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[any]	"Success"
//	@Router			/v1/auth/logout [post]
func (mgr *AuthMgr) Logout(c *gin.Context) {
	token := util.GetToken(c)
	if err := mgr.users.Logout(c, token.OrganizationID, token.UserID); err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, nil)
}
