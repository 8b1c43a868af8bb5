package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/middleware"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name       string
	crud       *crud[model.Project, *model.Project]
	projects   *store.Store[model.Project, *model.Project]
	users      *store.Store[model.User, *model.User]
	members    *store.Store[model.ProjectMember, *model.ProjectMember]
	aggregator *reporting.Aggregator
	audit      *service.AuditLog
}

func NewProjectMgr(conf *RegisterConfig) Manager {
	mgr := &ProjectMgr{
		name: "projects",
		crud: newCrud[model.Project](conf, "updated_at desc", map[string]string{
			"programId": "program_id",
			"managerId": "project_manager_id",
			"status":    "status",
			"ragStatus": "rag_status",
		}),
		projects:   store.New[model.Project](conf.DB),
		users:      store.New[model.User](conf.DB),
		members:    store.New[model.ProjectMember](conf.DB),
		aggregator: conf.Aggregator,
		audit:      conf.AuditLog,
	}
	mgr.crud.parents = map[string]parentCheck{
		"program_id":         parentIn(store.New[model.Program](conf.DB)),
		"project_manager_id": parentIn(mgr.users),
	}
	mgr.crud.validate = func(_ *gin.Context, _ uuid.UUID, p *model.Project) error {
		if p.Code == "" {
			p.Code = "PRJ-" + uuid.NewString()[:8]
		}
		return nil
	}
	return mgr
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.crud.List)
	g.GET("/:id", mgr.crud.Get)
	g.GET("/:id/evm", mgr.GetEVM)
	g.GET("/:id/members", mgr.ListMembers)

	w := g.Group("", middleware.RequireRoles(model.RoleProgramManager, model.RoleProjectManager, model.RolePMO))
	w.POST("", mgr.crud.Create)
	w.PATCH("/:id", mgr.crud.Update)
	w.DELETE("/:id", mgr.crud.Delete)
	w.POST("/:id/members", mgr.AddMember)
	w.DELETE("/:id/members/:userId", mgr.RemoveMember)
}

func (mgr *ProjectMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetEVM godoc
//
//	@Summary		Project EVM metrics
//	@Description	Earned value metrics computed from the stored PV, EV, AC and BAC of the project
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		string								true	"Project ID"
//	@Success		200	{object}	resputil.Response[analytics.EVMMetrics]	"Metrics"
//	@Failure		400	{object}	resputil.Response[any]				"Invalid stored amounts"
//	@Failure		404	{object}	resputil.Response[any]				"Project not found"
//	@Router			/v1/projects/{id}/evm [get]
func (mgr *ProjectMgr) GetEVM(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	metrics, err := mgr.aggregator.GetProjectEVM(c, id, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, metrics)
}

type AddMemberReq struct {
	UserID uuid.UUID `json:"userId" binding:"required"`
	Role   string    `json:"role"`
}

func (mgr *ProjectMgr) ListMembers(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	if _, err := mgr.projects.FindByID(c, org, id, store.Select("id")); err != nil {
		resputil.FromError(c, err)
		return
	}
	members, err := mgr.members.FindMany(c, org, store.Filter{"project_id": id}, store.OrderBy("created_at"))
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, members)
}

// AddMember godoc
//
//	@Summary		Add project member
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		string								true	"Project ID"
//	@Param			data	body		AddMemberReq						true	"Member"
//	@Success		201		{object}	resputil.Response[model.ProjectMember]	"Member"
//	@Router			/v1/projects/{id}/members [post]
func (mgr *ProjectMgr) AddMember(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req AddMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	org := util.GetToken(c).OrganizationID
	if _, err := mgr.projects.FindByID(c, org, id, store.Select("id")); err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := existsIn(mgr.users, c, org, &req.UserID); err != nil {
		resputil.FromError(c, err)
		return
	}
	member := &model.ProjectMember{ProjectID: id, UserID: req.UserID, Role: req.Role}
	if member.Role == "" {
		member.Role = "MEMBER"
	}
	if err := mgr.members.Create(c, org, member); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditCreate, model.KindProjectMember, member.ID, nil, member)
	resputil.Created(c, member)
}

func (mgr *ProjectMgr) RemoveMember(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	userID, ok := paramUUID(c, "userId")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	n, err := mgr.members.DeleteMany(c, org, store.Filter{"project_id": id, "user_id": userID})
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if n == 0 {
		resputil.FromError(c, store.ErrNotFound)
		return
	}
	recordAudit(c, mgr.audit, model.AuditDelete, model.KindProjectMember, userID, nil, nil)
	resputil.Success(c, nil)
}
