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
	Registers = append(Registers, NewProgramMgr)
}

type ProgramMgr struct {
	name       string
	crud       *crud[model.Program, *model.Program]
	aggregator *reporting.Aggregator
}

func NewProgramMgr(conf *RegisterConfig) Manager {
	mgr := &ProgramMgr{
		name: "programs",
		crud: newCrud[model.Program](conf, "name", map[string]string{
			"portfolioId": "portfolio_id",
			"status":      "status",
			"ragStatus":   "rag_status",
		}),
		aggregator: conf.Aggregator,
	}
	mgr.crud.parents = map[string]parentCheck{
		"portfolio_id":       parentIn(store.New[model.Portfolio](conf.DB)),
		"program_manager_id": parentIn(store.New[model.User](conf.DB)),
	}
	return mgr
}

func (mgr *ProgramMgr) GetName() string { return mgr.name }

func (mgr *ProgramMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProgramMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.crud.List)
	g.GET("/:id", mgr.crud.Get)
	g.GET("/:id/summary", mgr.GetSummary)

	w := g.Group("", middleware.RequireRoles(model.RolePortfolioManager, model.RoleProgramManager, model.RolePMO))
	w.POST("", mgr.crud.Create)
	w.PATCH("/:id", mgr.crud.Update)
	w.DELETE("/:id", mgr.crud.Delete)
}

func (mgr *ProgramMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetSummary godoc
//
//	@Summary		Program summary
//	@Description	The program with its live projects, budget totals and mean completion
//	@Tags			Program
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		string										true	"Program ID"
//	@Success		200	{object}	resputil.Response[reporting.ProgramWithSummary]	"Summary"
//	@Failure		404	{object}	resputil.Response[any]						"Program not found"
//	@Router			/v1/programs/{id}/summary [get]
func (mgr *ProgramMgr) GetSummary(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	summary, err := mgr.aggregator.GetProgramSummary(c, id, util.GetToken(c).OrganizationID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, summary)
}
