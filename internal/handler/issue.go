package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewIssueMgr)
}

type IssueMgr struct {
	name string
	crud *crud[model.Issue, *model.Issue]
}

func NewIssueMgr(conf *RegisterConfig) Manager {
	mgr := &IssueMgr{
		name: "issues",
		crud: newCrud[model.Issue](conf, "created_at desc", map[string]string{
			"projectId":  "project_id",
			"status":     "status",
			"severity":   "severity",
			"assigneeId": "assignee_id",
		}),
	}
	mgr.crud.parents = map[string]parentCheck{
		"project_id":  parentIn(store.New[model.Project](conf.DB)),
		"assignee_id": parentIn(store.New[model.User](conf.DB)),
	}
	return mgr
}

func (mgr *IssueMgr) GetName() string { return mgr.name }

func (mgr *IssueMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *IssueMgr) RegisterProtected(g *gin.RouterGroup) {
	mgr.crud.register(g)
}

func (mgr *IssueMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}
