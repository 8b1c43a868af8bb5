package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is one planned/actual/forecast line of a project.
type Budget struct {
	Base
	ProjectID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"projectId"`
	BudgetType     BudgetType      `gorm:"type:varchar(8);not null;default:OPEX" json:"budgetType"`
	Category       string          `gorm:"type:varchar(64);not null" json:"category"`
	Description    *string         `gorm:"type:text" json:"description,omitempty"`
	FiscalYear     int             `gorm:"not null" json:"fiscalYear"`
	PlannedAmount  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"plannedAmount"`
	ActualAmount   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"actualAmount"`
	ForecastAmount decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"forecastAmount"`
}

func (Budget) Kind() Kind { return KindBudget }

// ChangeRequest is a proposed change to project scope, cost or schedule.
type ChangeRequest struct {
	Base
	ProjectID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"projectId"`
	CRNumber        string              `gorm:"column:cr_number;type:varchar(32);not null;comment:CR-<year>-<seq>" json:"crNumber"`
	Title           string              `gorm:"type:varchar(255);not null" json:"title"`
	Description     *string             `gorm:"type:text" json:"description,omitempty"`
	Justification   *string             `gorm:"type:text" json:"justification,omitempty"`
	Status          ChangeRequestStatus `gorm:"type:varchar(16);not null;default:SUBMITTED" json:"status"`
	RequestedByID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"requestedById"`
	ApprovedByID    *uuid.UUID          `gorm:"type:uuid" json:"approvedById,omitempty"`
	ApprovedAt      *time.Time          `json:"approvedAt,omitempty"`
	RejectionReason *string             `gorm:"type:text" json:"rejectionReason,omitempty"`
	CostImpact      decimal.Decimal     `gorm:"type:decimal(20,2);not null;default:0" json:"costImpact"`
	ScheduleImpact  int                 `gorm:"not null;default:0;comment:days" json:"scheduleImpact"`
}

func (ChangeRequest) Kind() Kind { return KindChangeRequest }
