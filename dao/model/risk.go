package model

import (
	"github.com/google/uuid"
)

// Risk is an uncertain event on a project. RiskScore is derived from
// Probability and Impact and must be recomputed whenever either changes.
type Risk struct {
	Base
	ProjectID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"projectId"`
	Title          string          `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	Category       *string         `gorm:"type:varchar(64)" json:"category,omitempty"`
	Probability    RiskProbability `gorm:"type:varchar(16);not null;default:MEDIUM" json:"probability"`
	Impact         RiskImpact      `gorm:"type:varchar(16);not null;default:MEDIUM" json:"impact"`
	RiskScore      int             `gorm:"not null;default:9;index;comment:probability weight x impact weight" json:"riskScore"`
	Status         RiskStatus      `gorm:"type:varchar(16);not null;default:OPEN;index" json:"status"`
	OwnerID        *uuid.UUID      `gorm:"type:uuid;index" json:"ownerId,omitempty"`
	MitigationPlan *string         `gorm:"type:text" json:"mitigationPlan,omitempty"`
}

func (Risk) Kind() Kind { return KindRisk }

type Issue struct {
	Base
	ProjectID   uuid.UUID     `gorm:"type:uuid;not null;index" json:"projectId"`
	Title       string        `gorm:"type:varchar(255);not null" json:"title"`
	Description *string       `gorm:"type:text" json:"description,omitempty"`
	Severity    IssueSeverity `gorm:"type:varchar(16);not null;default:MEDIUM" json:"severity"`
	Status      IssueStatus   `gorm:"type:varchar(16);not null;default:OPEN" json:"status"`
	AssigneeID  *uuid.UUID    `gorm:"type:uuid;index" json:"assigneeId,omitempty"`
}

func (Issue) Kind() Kind { return KindIssue }
