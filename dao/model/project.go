package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Project is the unit of delivery; its financial snapshot feeds EVM.
type Project struct {
	Base
	ProgramID        *uuid.UUID      `gorm:"type:uuid;index" json:"programId,omitempty"`
	Code             string          `gorm:"type:varchar(32);not null;comment:human readable code" json:"code"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Description      *string         `gorm:"type:text" json:"description,omitempty"`
	Status           ProjectStatus   `gorm:"type:varchar(32);not null;default:DRAFT" json:"status"`
	ProjectManagerID *uuid.UUID      `gorm:"type:uuid;index" json:"projectManagerId,omitempty"`
	StartDate        *time.Time      `json:"startDate,omitempty"`
	EndDate          *time.Time      `json:"endDate,omitempty"`
	TotalBudget      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0;comment:budget at completion" json:"totalBudget"`
	ActualCost       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"actualCost"`
	ForecastCost     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"forecastCost"`
	PlannedValue     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"plannedValue"`
	EarnedValue      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"earnedValue"`
	PercentComplete  int             `gorm:"not null;default:0" json:"percentComplete"`
	RAGStatus        RAGStatus       `gorm:"type:varchar(16);not null;default:GREEN" json:"ragStatus"`
}

func (Project) Kind() Kind { return KindProject }

// ProjectMember links a user to a project. Rows are removed physically.
type ProjectMember struct {
	Base
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_member" json:"projectId"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_member" json:"userId"`
	Role      string    `gorm:"type:varchar(32);not null;default:MEMBER" json:"role"`
}

func (ProjectMember) Kind() Kind { return KindProjectMember }

// Task is a work item, optionally nested under a parent task.
type Task struct {
	Base
	ProjectID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"projectId"`
	ParentTaskID   *uuid.UUID       `gorm:"type:uuid;index" json:"parentTaskId,omitempty"`
	MilestoneID    *uuid.UUID       `gorm:"type:uuid;index" json:"milestoneId,omitempty"`
	Title          string           `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string          `gorm:"type:text" json:"description,omitempty"`
	Status         TaskStatus       `gorm:"type:varchar(32);not null;default:TODO" json:"status"`
	Priority       TaskPriority     `gorm:"type:varchar(16);not null;default:MEDIUM" json:"priority"`
	AssigneeID     *uuid.UUID       `gorm:"type:uuid;index" json:"assigneeId,omitempty"`
	WBSCode        *string          `gorm:"column:wbs_code;type:varchar(32)" json:"wbsCode,omitempty"`
	Position       int              `gorm:"not null;default:0;comment:order inside a kanban column" json:"position"`
	PlannedStart   *time.Time       `json:"plannedStart,omitempty"`
	PlannedEnd     *time.Time       `json:"plannedEnd,omitempty"`
	EstimatedHours *decimal.Decimal `gorm:"type:decimal(10,2)" json:"estimatedHours,omitempty"`
}

func (Task) Kind() Kind { return KindTask }

type Milestone struct {
	Base
	ProjectID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"projectId"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Description *string         `gorm:"type:text" json:"description,omitempty"`
	PlannedDate time.Time       `gorm:"not null" json:"plannedDate"`
	ActualDate  *time.Time      `json:"actualDate,omitempty"`
	Status      MilestoneStatus `gorm:"type:varchar(16);not null;default:PENDING" json:"status"`
}

func (Milestone) Kind() Kind { return KindMilestone }
