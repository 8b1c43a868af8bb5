package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewTaskMgr)
}

type TaskMgr struct {
	name  string
	crud  *crud[model.Task, *model.Task]
	tasks *service.Tasks
	audit *service.AuditLog
}

func NewTaskMgr(conf *RegisterConfig) Manager {
	mgr := &TaskMgr{
		name: "tasks",
		crud: newCrud[model.Task](conf, "position, created_at", map[string]string{
			"projectId":    "project_id",
			"status":       "status",
			"priority":     "priority",
			"assigneeId":   "assignee_id",
			"milestoneId":  "milestone_id",
			"parentTaskId": "parent_task_id",
		}),
		tasks: conf.Tasks,
		audit: conf.AuditLog,
	}
	tasks := store.New[model.Task](conf.DB)
	mgr.crud.parents = map[string]parentCheck{
		"project_id":   parentIn(store.New[model.Project](conf.DB)),
		"milestone_id": parentIn(store.New[model.Milestone](conf.DB)),
		"assignee_id":  parentIn(store.New[model.User](conf.DB)),
	}
	// parent tasks must share the project of their subtasks
	sameProject := func(c *gin.Context, org, projectID uuid.UUID, parentID *uuid.UUID) error {
		if parentID == nil {
			return nil
		}
		if _, err := tasks.FindOne(c, org, store.Filter{"id": *parentID, "project_id": projectID},
			store.Select("id")); err != nil {
			return fmt.Errorf("parent task: %w", err)
		}
		return nil
	}
	mgr.crud.validate = func(c *gin.Context, org uuid.UUID, t *model.Task) error {
		return sameProject(c, org, t.ProjectID, t.ParentTaskID)
	}
	mgr.crud.validatePatch = func(c *gin.Context, org uuid.UUID, before *model.Task, patch map[string]any) error {
		_, moved := patch["project_id"]
		_, reparented := patch["parent_task_id"]
		if !moved && !reparented {
			return nil
		}
		projectID := before.ProjectID
		if id := uuidRef(patch["project_id"]); id != nil {
			projectID = *id
		}
		parentID := before.ParentTaskID
		if v, ok := patch["parent_task_id"]; ok {
			parentID = uuidRef(v)
		}
		if parentID != nil && *parentID == before.ID {
			return fmt.Errorf("task cannot be its own parent: %w", errInvalidInput)
		}
		return sameProject(c, org, projectID, parentID)
	}
	return mgr
}

func (mgr *TaskMgr) GetName() string { return mgr.name }

func (mgr *TaskMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *TaskMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/kanban", mgr.GetKanban)
	g.GET("/wbs", mgr.GetWBS)
	g.PATCH("/:id/move", mgr.MoveTask)
	mgr.crud.register(g)
}

func (mgr *TaskMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.crud.Restore)
}

// GetKanban godoc
//
//	@Summary		Kanban board
//	@Description	Top-level tasks of a project grouped into the six status columns
//	@Tags			Task
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string									true	"Project ID"
//	@Success		200			{object}	resputil.Response[[]service.KanbanColumn]	"Columns"
//	@Router			/v1/tasks/kanban [get]
func (mgr *TaskMgr) GetKanban(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	board, err := mgr.tasks.Board(c, util.GetToken(c).OrganizationID, projectID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, board)
}

// GetWBS godoc
//
//	@Summary		Work breakdown structure
//	@Description	Task tree of a project ordered by WBS code
//	@Tags			Task
//	@Produce		json
//	@Security		Bearer
//	@Param			projectId	query		string								true	"Project ID"
//	@Success		200			{object}	resputil.Response[[]service.WBSNode]	"Tree"
//	@Router			/v1/tasks/wbs [get]
func (mgr *TaskMgr) GetWBS(c *gin.Context) {
	projectID, ok := queryUUID(c, "projectId")
	if !ok {
		return
	}
	tree, err := mgr.tasks.WBS(c, util.GetToken(c).OrganizationID, projectID)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, tree)
}

type MoveTaskReq struct {
	Status   model.TaskStatus `json:"status" binding:"required"`
	Position int              `json:"position" binding:"min=0"`
}

// MoveTask godoc
//
//	@Summary		Move task
//	@Description	Place a task in a kanban column at a position
//	@Tags			Task
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			id		path		string						true	"Task ID"
//	@Param			data	body		MoveTaskReq					true	"Target column"
//	@Success		200		{object}	resputil.Response[model.Task]	"Moved task"
//	@Router			/v1/tasks/{id}/move [patch]
func (mgr *TaskMgr) MoveTask(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req MoveTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	task, err := mgr.tasks.Move(c, util.GetToken(c).OrganizationID, id, req.Status, req.Position)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, mgr.audit, model.AuditUpdate, model.KindTask, id, nil, req)
	resputil.Success(c, task)
}
