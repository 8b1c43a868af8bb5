package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewMilestoneMgr)
}

type MilestoneMgr struct {
	name string
	crud *crud[model.Milestone, *model.Milestone]
}

func NewMilestoneMgr(conf *RegisterConfig) Manager {
	mgr := &MilestoneMgr{
		name: "milestones",
		crud: newCrud[model.Milestone](conf, "planned_date", map[string]string{
			"projectId": "project_id",
			"status":    "status",
		}),
	}
	mgr.crud.parents = map[string]parentCheck{
		"project_id": parentIn(store.New[model.Project](conf.DB)),
	}
	return mgr
}

func (mgr *MilestoneMgr) GetName() string { return mgr.name }

func (mgr *MilestoneMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *MilestoneMgr) RegisterProtected(g *gin.RouterGroup) {
	mgr.crud.register(g)
}

func (mgr *MilestoneMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}
