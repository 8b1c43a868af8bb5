package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Portfolio groups programs under one strategic owner.
type Portfolio struct {
	Base
	Name                string          `gorm:"type:varchar(255);not null" json:"name"`
	Description         *string         `gorm:"type:text" json:"description,omitempty"`
	OwnerID             *uuid.UUID      `gorm:"type:uuid;index" json:"ownerId,omitempty"`
	StrategicObjectives *string         `gorm:"type:text" json:"strategicObjectives,omitempty"`
	TotalBudget         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalBudget"`
	AllocatedBudget     decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"allocatedBudget"`
	RAGStatus           RAGStatus       `gorm:"type:varchar(16);not null;default:GREEN" json:"ragStatus"`
	StartDate           *time.Time      `json:"startDate,omitempty"`
	EndDate             *time.Time      `json:"endDate,omitempty"`
}

func (Portfolio) Kind() Kind { return KindPortfolio }

// Program belongs to at most one portfolio and owns projects.
type Program struct {
	Base
	PortfolioID      *uuid.UUID      `gorm:"type:uuid;index" json:"portfolioId,omitempty"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Description      *string         `gorm:"type:text" json:"description,omitempty"`
	ProgramManagerID *uuid.UUID      `gorm:"type:uuid;index" json:"programManagerId,omitempty"`
	Status           ProgramStatus   `gorm:"type:varchar(32);not null;default:PLANNING" json:"status"`
	Objectives       *string         `gorm:"type:text" json:"objectives,omitempty"`
	Benefits         *string         `gorm:"type:text" json:"benefits,omitempty"`
	TotalBudget      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalBudget"`
	AllocatedBudget  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"allocatedBudget"`
	RAGStatus        RAGStatus       `gorm:"type:varchar(16);not null;default:GREEN" json:"ragStatus"`
	StartDate        *time.Time      `json:"startDate,omitempty"`
	EndDate          *time.Time      `json:"endDate,omitempty"`
}

func (Program) Kind() Kind { return KindProgram }
