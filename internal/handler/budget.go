package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/middleware"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewBudgetMgr)
}

type BudgetMgr struct {
	name       string
	crud       *crud[model.Budget, *model.Budget]
	aggregator *reporting.Aggregator
}

func NewBudgetMgr(conf *RegisterConfig) Manager {
	mgr := &BudgetMgr{
		name: "budgets",
		crud: newCrud[model.Budget](conf, "fiscal_year, category", map[string]string{
			"projectId":  "project_id",
			"budgetType": "budget_type",
			"fiscalYear": "fiscal_year",
		}),
		aggregator: conf.Aggregator,
	}
	mgr.crud.parents = map[string]parentCheck{
		"project_id": parentIn(store.New[model.Project](conf.DB)),
	}
	return mgr
}

func (mgr *BudgetMgr) GetName() string { return mgr.name }

func (mgr *BudgetMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *BudgetMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/summary", mgr.GetSummary)
	g.GET("", mgr.crud.List)
	g.GET("/:id", mgr.crud.Get)

	w := g.Group("", middleware.RequireRoles(model.RoleFinance, model.RolePMO, model.RoleProjectManager))
	w.POST("", mgr.crud.Create)
	w.PATCH("/:id", mgr.crud.Update)
	w.DELETE("/:id", mgr.crud.Delete)
}

func (mgr *BudgetMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetSummary godoc
//
//	@Summary		Project budget summary
//	@Description	Budget lines of a project with planned, actual and forecast totals and CAPEX/OPEX subtotals
//	@Tags			Budget
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string								true	"Project ID"
//	@Success		200			{object}	resputil.Response[reporting.BudgetReport]	"Budgets and totals"
//	@Router			/v1/budgets/summary [get]
func (mgr *BudgetMgr) GetSummary(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	report, err := mgr.aggregator.GetBudgetSummary(c, projectID, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, report)
}
