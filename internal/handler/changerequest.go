package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/middleware"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/service"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewChangeRequestMgr)
}

type ChangeRequestMgr struct {
	name  string
	crs   *service.ChangeRequests
	audit *service.AuditLog
}

func NewChangeRequestMgr(conf *RegisterConfig) Manager {
	return &ChangeRequestMgr{
		name:  "change-requests",
		crs:   conf.ChangeRequests,
		audit: conf.AuditLog,
	}
}

func (mgr *ChangeRequestMgr) GetName() string { return mgr.name }

func (mgr *ChangeRequestMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ChangeRequestMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.ListChangeRequests)
	g.GET("/:id", mgr.GetChangeRequest)
	g.POST("", mgr.CreateChangeRequest)
	g.DELETE("/:id", mgr.DeleteChangeRequest)

	d := g.Group("", middleware.RequireRoles(
		model.RolePortfolioManager, model.RoleProgramManager, model.RolePMO, model.RoleFinance))
	d.PATCH("/:id/approve", mgr.ApproveChangeRequest)
	d.PATCH("/:id/reject", mgr.RejectChangeRequest)
}

func (mgr *ChangeRequestMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	CreateChangeRequestReq struct {
		ProjectID      uuid.UUID                 `json:"projectId" binding:"required"`
		Title          string                    `json:"title" binding:"required"`
		Description    *string                   `json:"description"`
		Justification  *string                   `json:"justification"`
		Status         model.ChangeRequestStatus `json:"status"` // DRAFT keeps the request out of review
		CostImpact     decimal.Decimal           `json:"costImpact"`
		ScheduleImpact int                       `json:"scheduleImpact"`
	}
	RejectChangeRequestReq struct {
		Reason string `json:"reason" binding:"required"`
	}
)

// ListChangeRequests godoc
//
//	@Summary		List change requests
//	@Description	Live change requests of a project, newest first
//	@Tags			ChangeRequest
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string								true	"Project ID"
//	@Success		200			{object}	resputil.Response[[]model.ChangeRequest]	"Change requests"
//	@Router			/v1/change-requests [get]
func (mgr *ChangeRequestMgr) ListChangeRequests(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	crs, err := mgr.crs.ListByProject(c, util.GetToken(c).OrganizationID, projectID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, crs)
}

func (mgr *ChangeRequestMgr) GetChangeRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	cr, err := mgr.crs.Get(c, util.GetToken(c).OrganizationID, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, cr)
}

// CreateChangeRequest godoc
//
//	@Summary		Create change request
//	@Description	Number the request as CR-<year>-<NNN> and submit it
//	@Tags			ChangeRequest
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		CreateChangeRequestReq				true	"Change request"
//	@Success		201		{object}	resputil.Response[model.ChangeRequest]	"Created request"
//	@Router			/v1/change-requests [post]
func (mgr *ChangeRequestMgr) CreateChangeRequest(c *gin.Context) {
	var req CreateChangeRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	token := util.GetToken(c)
	cr := &model.ChangeRequest{
		Title:          req.Title,
		Description:    req.Description,
		Justification:  req.Justification,
		Status:         req.Status,
		CostImpact:     req.CostImpact,
		ScheduleImpact: req.ScheduleImpact,
	}
	if err := mgr.crs.Create(c, token.OrganizationID, req.ProjectID, token.UserID, cr); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditCreate, model.KindChangeRequest, cr.ID, nil, cr)
	resputil.Created(c, cr)
}

// ApproveChangeRequest godoc
//
//	@Summary		Approve change request
//	@Description	Only SUBMITTED and UNDER_REVIEW requests can be decided
//	@Tags			ChangeRequest
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		string								true	"Change request ID"
//	@Success		200	{object}	resputil.Response[model.ChangeRequest]	"Approved request"
//	@Failure		409	{object}	resputil.Response[any]				"Already decided"
//	@Router			/v1/change-requests/{id}/approve [patch]
func (mgr *ChangeRequestMgr) ApproveChangeRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	token := util.GetToken(c)
	cr, err := mgr.crs.Approve(c, token.OrganizationID, id, token.UserID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindChangeRequest, id, nil, cr)
	resputil.Success(c, cr)
}

// RejectChangeRequest godoc
//
//	@Summary		Reject change request
//	@Tags			ChangeRequest
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		string								true	"Change request ID"
//	@Param			data	body		RejectChangeRequestReq				true	"Reason"
//	@Success		200		{object}	resputil.Response[model.ChangeRequest]	"Rejected request"
//	@Failure		409		{object}	resputil.Response[any]				"Already decided"
//	@Router			/v1/change-requests/{id}/reject [patch]
func (mgr *ChangeRequestMgr) RejectChangeRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req RejectChangeRequestReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	cr, err := mgr.crs.Reject(c, util.GetToken(c).OrganizationID, id, req.Reason)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindChangeRequest, id, nil, cr)
	resputil.Success(c, cr)
}

func (mgr *ChangeRequestMgr) DeleteChangeRequest(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := mgr.crs.Get(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := mgr.crs.Delete(c, org, id); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditDelete, model.KindChangeRequest, id, before, nil)
	resputil.Success(c, nil)
}
