package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of a mutation. It is never soft deleted;
// retention removes old rows physically.
type AuditLog struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organizationId"`
	UserID         *uuid.UUID     `gorm:"type:uuid;index" json:"userId,omitempty"`
	Action         AuditAction    `gorm:"type:varchar(16);not null" json:"action"`
	EntityType     Kind           `gorm:"type:varchar(32);not null;index" json:"entityType"`
	EntityID       *uuid.UUID     `gorm:"type:uuid" json:"entityId,omitempty"`
	OldValues      datatypes.JSON `json:"oldValues,omitempty"`
	NewValues      datatypes.JSON `json:"newValues,omitempty"`
	IPAddress      *string        `gorm:"type:varchar(64)" json:"ipAddress,omitempty"`
	CreatedAt      time.Time      `gorm:"index" json:"createdAt"`
}

func (AuditLog) Kind() Kind { return KindAuditLog }

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *AuditLog) GetID() uuid.UUID { return a.ID }
func (a *AuditLog) TenantID() uuid.UUID { return a.OrganizationID }
func (a *AuditLog) SetTenantID(org uuid.UUID) { a.OrganizationID = org }
