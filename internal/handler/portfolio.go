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
	Registers = append(Registers, NewPortfolioMgr)
}

type PortfolioMgr struct {
	name       string
	crud       *crud[model.Portfolio, *model.Portfolio]
	aggregator *reporting.Aggregator
}

func NewPortfolioMgr(conf *RegisterConfig) Manager {
	mgr := &PortfolioMgr{
		name: "portfolios",
		crud: newCrud[model.Portfolio](conf, "name", map[string]string{
			"ragStatus": "rag_status",
			"ownerId":   "owner_id",
		}),
		aggregator: conf.Aggregator,
	}
	mgr.crud.parents = map[string]parentCheck{
		"owner_id": parentIn(store.New[model.User](conf.DB)),
	}
	return mgr
}

func (mgr *PortfolioMgr) GetName() string { return mgr.name }

func (mgr *PortfolioMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *PortfolioMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/dashboard", mgr.GetDashboard)
	g.GET("", mgr.crud.List)
	g.GET("/:id", mgr.crud.Get)

	w := g.Group("", middleware.RequireRoles(model.RolePortfolioManager, model.RolePMO))
	w.POST("", mgr.crud.Create)
	w.PATCH("/:id", mgr.crud.Update)
	w.DELETE("/:id", mgr.crud.Delete)
}

func (mgr *PortfolioMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetDashboard godoc
//
//	@Summary		Portfolio dashboard
//	@Description	Every portfolio with its project count and RAG distribution
//	@Tags			Portfolio
//	@Produce		json
//	@Security		Bearer
//	@Success		200	{object}	resputil.Response[[]analytics.PortfolioDashboard]	"Dashboard rows"
//	@Router			/v1/portfolios/dashboard [get]
func (mgr *PortfolioMgr) GetDashboard(c *gin.Context) {
	rows, err := mgr.aggregator.GetPortfolioDashboard(c, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, rows)
}
