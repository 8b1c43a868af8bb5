package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

type Tasks struct {
	tasks    *store.Store[model.Task, *model.Task]
	projects *store.Store[model.Project, *model.Project]
}

func NewTasks(db *gorm.DB) *Tasks {
	return &Tasks{
		tasks:    store.New[model.Task](db),
		projects: store.New[model.Project](db),
	}
}

// KanbanColumn is one status column of a board.
type KanbanColumn struct {
	Status model.TaskStatus `json:"status"`
	Tasks  []model.Task     `json:"tasks"`
}

// Board groups the top-level tasks of a project by status, in column order.
// Every status has a column, empty or not.
func (s *Tasks) Board(ctx context.Context, org, projectID uuid.UUID) ([]KanbanColumn, error) {
	if _, err := s.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindMany(ctx, org, store.Filter{"project_id": projectID, "parent_task_id": nil},
		store.OrderBy("position"), store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	byStatus := lo.GroupBy(tasks, func(t model.Task) model.TaskStatus { return t.Status })
	return lo.Map(model.TaskStatuses, func(status model.TaskStatus, _ int) KanbanColumn {
		column := byStatus[status]
		if column == nil {
			column = []model.Task{}
		}
		return KanbanColumn{Status: status, Tasks: column}
	}), nil
}

// WBSNode is a task with its live subtasks.
type WBSNode struct {
	model.Task
	Subtasks []*WBSNode `json:"subtasks"`
}

// WBS returns the task tree of a project ordered by wbs code. Subtasks of a
// deleted task are hidden with it.
func (s *Tasks) WBS(ctx context.Context, org, projectID uuid.UUID) ([]*WBSNode, error) {
	if _, err := s.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindMany(ctx, org, store.Filter{"project_id": projectID},
		store.OrderBy("wbs_code"), store.OrderBy("position"), store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*WBSNode, len(tasks))
	for i := range tasks {
		nodes[tasks[i].ID] = &WBSNode{Task: tasks[i], Subtasks: []*WBSNode{}}
	}
	roots := []*WBSNode{}
	for i := range tasks {
		node := nodes[tasks[i].ID]
		if tasks[i].ParentTaskID == nil {
			roots = append(roots, node)
			continue
		}
		if parent, ok := nodes[*tasks[i].ParentTaskID]; ok {
			parent.Subtasks = append(parent.Subtasks, node)
		}
	}
	return roots, nil
}

// Move places a task in a kanban column at position.
func (s *Tasks) Move(ctx context.Context, org, id uuid.UUID, status model.TaskStatus, position int) (*model.Task, error) {
	if !lo.Contains(model.TaskStatuses, status) {
		return nil, ErrInvalidTransition
	}
	if _, err := s.tasks.FindByID(ctx, org, id, store.Select("id")); err != nil {
		return nil, err
	}
	if err := s.tasks.Update(ctx, org, id, map[string]any{"status": status, "position": position}); err != nil {
		return nil, err
	}
	return s.tasks.FindByID(ctx, org, id)
}
