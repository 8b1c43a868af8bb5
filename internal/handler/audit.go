package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/service"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAuditMgr)
}

type AuditMgr struct {
	name  string
	audit *service.AuditLog
}

func NewAuditMgr(conf *RegisterConfig) Manager {
	return &AuditMgr{
		name:  "audit-logs",
		audit: conf.AuditLog,
	}
}

func (mgr *AuditMgr) GetName() string { return mgr.name }

func (mgr *AuditMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *AuditMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *AuditMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.GET("", mgr.ListAuditLogs)
}

type ListAuditReq struct {
	EntityType model.Kind `form:"entityType"`
	UserID     string     `form:"userId"`
}

// ListAuditLogs godoc
//
//	@Summary		Audit trail
//	@Description	Newest audit entries of the caller's organization
//	@Tags			Audit
//	@Produce		json
//	@Security		Bearer
//	@Param			entityType	query		string								false	"Entity kind, e.g. Project"
//	@Param			userId		query		string								false	"Acting user"
//	@Success		200			{object}	resputil.Response[[]model.AuditLog]	"Entries"
//	@Failure		400			{object}	resputil.Response[any]				"Request parameter error"
//	@Router			/v1/admin/audit-logs [get]
func (mgr *AuditMgr) ListAuditLogs(c *gin.Context) {
	var req ListAuditReq
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	filter := service.AuditFilter{EntityType: req.EntityType}
	if req.UserID != "" {
		id, err := uuid.Parse(req.UserID)
		if err != nil {
			resputil.BadRequestError(c, "invalid userId")
			return
		}
		filter.UserID = &id
	}
	logs, err := mgr.audit.List(c, util.GetToken(c).OrganizationID, filter)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, logs)
}
