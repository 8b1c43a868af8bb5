package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Kind names an entity type known to the tenant store.
type Kind string

const (
	KindOrganization       Kind = "Organization"
	KindUser               Kind = "User"
	KindPortfolio          Kind = "Portfolio"
	KindProgram            Kind = "Program"
	KindProject            Kind = "Project"
	KindProjectMember      Kind = "ProjectMember"
	KindTask               Kind = "Task"
	KindMilestone          Kind = "Milestone"
	KindResource           Kind = "Resource"
	KindResourceAssignment Kind = "ResourceAssignment"
	KindBudget             Kind = "Budget"
	KindRisk               Kind = "Risk"
	KindIssue              Kind = "Issue"
	KindChangeRequest      Kind = "ChangeRequest"
	KindDocument           Kind = "Document"
	KindAuditLog           Kind = "AuditLog"
)

// softDeleteKinds is the allow-list of kinds whose deletes are rewritten
// into a deleted_at stamp. Everything else is removed physically.
var softDeleteKinds = map[Kind]struct{}{
	KindOrganization:  {},
	KindUser:          {},
	KindPortfolio:     {},
	KindProgram:       {},
	KindProject:       {},
	KindTask:          {},
	KindMilestone:     {},
	KindResource:      {},
	KindBudget:        {},
	KindRisk:          {},
	KindIssue:         {},
	KindChangeRequest: {},
	KindDocument:      {},
}

// SoftDelete reports whether k is in the soft-delete registry.
func (k Kind) SoftDelete() bool {
	_, ok := softDeleteKinds[k]
	return ok
}

// TenantColumn is the column holding the owning organization of a row.
func (k Kind) TenantColumn() string {
	if k == KindOrganization {
		return "id"
	}
	return "organization_id"
}

// SoftDeleteKinds returns the registered kinds.
func SoftDeleteKinds() []Kind {
	kinds := make([]Kind, 0, len(softDeleteKinds))
	for k := range softDeleteKinds {
		kinds = append(kinds, k)
	}
	return kinds
}

// Entity is implemented by the pointer of every persisted model.
type Entity interface {
	Kind() Kind
	GetID() uuid.UUID
	TenantID() uuid.UUID
	SetTenantID(org uuid.UUID)
}

// Base carries the columns shared by tenant-owned rows.
type Base struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index;comment:owning organization" json:"organizationId"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `gorm:"index;comment:soft delete stamp" json:"deletedAt,omitempty"`
}

func (b *Base) BeforeCreate(_ *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (b *Base) GetID() uuid.UUID { return b.ID }
func (b *Base) TenantID() uuid.UUID { return b.OrganizationID }
func (b *Base) SetTenantID(org uuid.UUID) { b.OrganizationID = org }
func (b *Base) IsDeleted() bool { return b.DeletedAt != nil }

// ClearSystemFields zeroes the columns owned by the server so that a
// client-supplied body cannot set them on create.
func (b *Base) ClearSystemFields() {
	b.ID = uuid.Nil
	b.OrganizationID = uuid.Nil
	b.CreatedAt = time.Time{}
	b.UpdatedAt = time.Time{}
	b.DeletedAt = nil
}

// Root carries the columns of the tenant root itself, whose id is its own tenant.
type Root struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index;comment:soft delete stamp" json:"deletedAt,omitempty"`
}

func (r *Root) BeforeCreate(_ *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Root) GetID() uuid.UUID { return r.ID }
func (r *Root) TenantID() uuid.UUID { return r.ID }
func (r *Root) SetTenantID(org uuid.UUID) { r.ID = org }

func (r *Root) ClearSystemFields() {
	r.ID = uuid.Nil
	r.CreatedAt = time.Time{}
	r.UpdatedAt = time.Time{}
	r.DeletedAt = nil
}
