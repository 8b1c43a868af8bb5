package handler

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/service"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

type UserMgr struct {
	name  string
	db    *gorm.DB
	users *service.Users
	audit *service.AuditLog
}

func NewUserMgr(conf *RegisterConfig) Manager {
	return &UserMgr{
		name:  "users",
		db:    conf.DB,
		users: conf.Users,
		audit: conf.AuditLog,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListUsers)
	g.GET("/:id", mgr.GetUser)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.CreateUser)
	g.PATCH("/:id", mgr.UpdateUser)
	g.DELETE("/:id", mgr.DeleteUser)
}

type CreateUserReq struct {
	Email     string         `json:"email" binding:"required,email"`
	FirstName string         `json:"firstName" binding:"required"`
	LastName  string         `json:"lastName" binding:"required"`
	Role      model.UserRole `json:"role"`
	Password  string         `json:"password" binding:"omitempty,min=8"`
}

// ListUsers godoc
//
//	@Summary		List users
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]model.User]	"Users of the organization"
//	@Router			/v1/users [get]
func (mgr *UserMgr) ListUsers(c *gin.Context) {
	users, err := mgr.users.List(c, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, users)
}

func (mgr *UserMgr) GetUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	user, err := mgr.users.Get(c, util.GetToken(c).OrganizationID, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, user)
}

// CreateUser godoc
//
//	@Summary		Create user
//	@Description	Create a user in the caller's organization; email is unique across organizations
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		CreateUserReq					true	"User"
//	@Success		201		{object}	resputil.Response[model.User]	"Created user"
//	@Failure		409		{object}	resputil.Response[any]			"Email taken"
//	@Router			/v1/admin/users [post]
func (mgr *UserMgr) CreateUser(c *gin.Context) {
	var req CreateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	user := &model.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	}
	if err := mgr.users.Create(c, util.GetToken(c).OrganizationID, user, req.Password); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditCreate, model.KindUser, user.ID, nil, user)
	resputil.Created(c, user)
}

// UpdateUser godoc
//
//	@Summary		Update user
//	@Description	Patch profile fields, role or active flag; a password field replaces the password
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		string							true	"User ID"
//	@Success		200		{object}	resputil.Response[model.User]	"Updated user"
//	@Router			/v1/admin/users/{id} [patch]
func (mgr *UserMgr) UpdateUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	patch, err := bindPatch[model.User](c, mgr.db, "password")
	if err != nil && !errors.Is(err, errEmptyPatch) {
		respondPatchError(c, err)
		return
	}
	// The password travels next to the model fields.
	var extra struct {
		Password string `json:"password" binding:"omitempty,min=8"`
	}
	if err := c.ShouldBindBodyWithJSON(&extra); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	if len(patch) == 0 && extra.Password == "" {
		respondPatchError(c, errEmptyPatch)
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := mgr.users.Get(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	after, err := mgr.users.Update(c, org, id, patch, extra.Password)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindUser, id, before, after)
	resputil.Success(c, after)
}

func (mgr *UserMgr) DeleteUser(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	if id == util.GetToken(c).UserID {
		resputil.BadRequestError(c, "cannot delete yourself")
		return
	}
	if err := mgr.users.Delete(c, org, id); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditDelete, model.KindUser, id, nil, nil)
	resputil.Success(c, nil)
}
