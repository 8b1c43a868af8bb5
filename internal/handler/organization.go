package handler

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

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
	Registers = append(Registers, NewOrganizationMgr)
}

// OrganizationMgr serves the caller's own organization.
type OrganizationMgr struct {
	name          string
	db            *gorm.DB
	organizations *store.Store[model.Organization, *model.Organization]
	aggregator    *reporting.Aggregator
	audit         *service.AuditLog
}

func NewOrganizationMgr(conf *RegisterConfig) Manager {
	return &OrganizationMgr{
		name:          "organization",
		db:            conf.DB,
		organizations: store.New[model.Organization](conf.DB),
		aggregator:    conf.Aggregator,
		audit:         conf.AuditLog,
	}
}

func (mgr *OrganizationMgr) GetName() string { return mgr.name }

func (mgr *OrganizationMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *OrganizationMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.GetOrganization)
	g.GET("/stats", mgr.GetStats)
	g.PATCH("", middleware.AuthAdmin(), mgr.UpdateOrganization)
}

func (mgr *OrganizationMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// GetOrganization godoc
//
//	@Summary		Current organization
//	@Tags			Organization
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[model.Organization]	"Organization"
//	@Router			/v1/organization [get]
func (mgr *OrganizationMgr) GetOrganization(c *gin.Context) {
	org := util.GetToken(c).OrganizationID
	o, err := mgr.organizations.FindByID(c, org, org)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, o)
}

// UpdateOrganization godoc
//
//	@Summary		Update organization
//	@Description	Patch name, domain, settings or active flag of the caller's organization
//	@Tags			Organization
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			data	body		model.Organization						true	"Fields to change"
//	@Success		200		{object}	resputil.Response[model.Organization]	"Organization"
//	@Failure		400		{object}	resputil.Response[any]					"Request parameter error"
//	@Router			/v1/organization [patch]
func (mgr *OrganizationMgr) UpdateOrganization(c *gin.Context) {
	patch, err := bindPatch[model.Organization](c, mgr.db)
	if err != nil {
		respondPatchError(c, err)
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := mgr.organizations.FindByID(c, org, org)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := mgr.organizations.Update(c, org, org, patch); err != nil {
		resputil.FromError(c, err)
		return
	}
	after, err := mgr.organizations.FindByID(c, org, org)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindOrganization, org, before, after)
	resputil.Success(c, after)
}

// GetStats godoc
//
//	@Summary		Organization stats
//	@Description	Counts of portfolios, programs, projects and active users
//	@Tags			Organization
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[reporting.OrganizationStats]	"Stats"
//	@Router			/v1/organization/stats [get]
func (mgr *OrganizationMgr) GetStats(c *gin.Context) {
	stats, err := mgr.aggregator.GetOrganizationStats(c, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, stats)
}
