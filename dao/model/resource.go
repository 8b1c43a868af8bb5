package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Resource is a person or role that can be assigned to projects.
type Resource struct {
	Base
	UserID              *uuid.UUID      `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name                string          `gorm:"type:varchar(255);not null" json:"name"`
	Skill               *string         `gorm:"type:varchar(128)" json:"skill,omitempty"`
	CostRate            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;comment:hourly rate" json:"costRate"`
	AvailabilityPercent int             `gorm:"not null;default:100" json:"availabilityPercent"`
	IsActive            bool            `gorm:"not null" json:"isActive"`
}

func (Resource) Kind() Kind { return KindResource }

// ResourceAssignment allocates a share of a resource to a project over a period.
// Rows are removed physically.
type ResourceAssignment struct {
	Base
	ResourceID        uuid.UUID `gorm:"type:uuid;not null;index" json:"resourceId"`
	ProjectID         uuid.UUID `gorm:"type:uuid;not null;index" json:"projectId"`
	StartDate         time.Time `gorm:"not null" json:"startDate"`
	EndDate           time.Time `gorm:"not null" json:"endDate"`
	AllocationPercent int       `gorm:"not null;default:100" json:"allocationPercent"`
}

func (ResourceAssignment) Kind() Kind { return KindResourceAssignment }

// Overlaps reports whether the assignment intersects [start, end].
func (a *ResourceAssignment) Overlaps(start, end time.Time) bool {
	return !a.StartDate.After(end) && !a.EndDate.Before(start)
}
