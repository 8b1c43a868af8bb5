package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewRiskMgr)
}

// RiskMgr writes risks through the risk register so that scores never go stale.
type RiskMgr struct {
	name       string
	db         *gorm.DB
	risks      *service.RiskRegister
	users      *store.Store[model.User, *model.User]
	aggregator *reporting.Aggregator
	audit      *service.AuditLog
}

func NewRiskMgr(conf *RegisterConfig) Manager {
	return &RiskMgr{
		name:       "risks",
		db:         conf.DB,
		risks:      conf.Risks,
		users:      store.New[model.User](conf.DB),
		aggregator: conf.Aggregator,
		audit:      conf.AuditLog,
	}
}

func (mgr *RiskMgr) GetName() string { return mgr.name }

func (mgr *RiskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *RiskMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/matrix", mgr.GetMatrix)
	g.GET("", mgr.ListRisks)
	g.GET("/:id", mgr.GetRisk)
	g.POST("", mgr.CreateRisk)
	g.PATCH("/:id", mgr.UpdateRisk)
	g.DELETE("/:id", mgr.DeleteRisk)
}

func (mgr *RiskMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// ListRisks godoc
//
//	@Summary		List risks
//	@Description	Live risks of a project, highest score first
//	@Tags			Risk
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string						true	"Project ID"
//	@Success		200			{object}	resputil.Response[[]model.Risk]	"Risks"
//	@Router			/v1/risks [get]
func (mgr *RiskMgr) ListRisks(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	risks, err := mgr.risks.ListByProject(c, util.GetToken(c).OrganizationID, projectID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, risks)
}

func (mgr *RiskMgr) GetRisk(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	risk, err := mgr.risks.Get(c, util.GetToken(c).OrganizationID, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, risk)
}

// CreateRisk godoc
//
//	@Summary		Create risk
//	@Description	Create a risk; the score is derived from probability and impact
//	@Tags			Risk
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		model.Risk					true	"Risk"
//	@Success		201		{object}	resputil.Response[model.Risk]	"Created risk"
//	@Router			/v1/risks [post]
func (mgr *RiskMgr) CreateRisk(c *gin.Context) {
	var risk model.Risk
	if err := c.ShouldBindJSON(&risk); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	if risk.ProjectID == uuid.Nil {
		resputil.BadRequestError(c, "projectId is required")
		return
	}
	risk.ClearSystemFields()
	if err := existsIn(mgr.users, c, util.GetToken(c).OrganizationID, risk.OwnerID); err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := mgr.risks.Create(c, util.GetToken(c).OrganizationID, risk.ProjectID, &risk); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditCreate, model.KindRisk, risk.ID, nil, &risk)
	resputil.Created(c, &risk)
}

// UpdateRisk godoc
//
//	@Summary		Update risk
//	@Description	Patch a risk; changing probability or impact recomputes the score
//	@Tags			Risk
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		string						true	"Risk ID"
//	@Success		200		{object}	resputil.Response[model.Risk]	"Updated risk"
//	@Router			/v1/risks/{id} [patch]
func (mgr *RiskMgr) UpdateRisk(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	patch, err := bindPatch[model.Risk](c, mgr.db)
	if err != nil {
		respondPatchError(c, err)
		return
	}
	// risks stay with the project they were raised on
	delete(patch, "project_id")
	org := util.GetToken(c).OrganizationID
	before, err := mgr.risks.Get(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if v, ok := patch["owner_id"]; ok {
		if err := existsIn(mgr.users, c, org, uuidRef(v)); err != nil {
			resputil.FromError(c, err)
			return
		}
	}
	after, err := mgr.risks.Update(c, org, id, patch)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindRisk, id, before, after)
	resputil.Success(c, after)
}

func (mgr *RiskMgr) DeleteRisk(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := mgr.risks.Get(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := mgr.risks.Delete(c, org, id); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditDelete, model.KindRisk, id, before, nil)
	resputil.Success(c, nil)
}

// GetMatrix godoc
//
//	@Summary		Risk matrix
//	@Description	Risks of a project with band and status counts and the probability x impact heatmap
//	@Tags			Risk
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string								true	"Project ID"
//	@Success		200			{object}	resputil.Response[analytics.RiskMatrix]	"Matrix"
//	@Failure		404			{object}	resputil.Response[any]				"Project not found"
//	@Router			/v1/risks/matrix [get]
func (mgr *RiskMgr) GetMatrix(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	matrix, err := mgr.aggregator.GetRiskMatrix(c, projectID, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, matrix)
}
