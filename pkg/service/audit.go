package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/store"
)

// AuditListLimit caps how many entries List returns.
const AuditListLimit = 500

type AuditFilter struct {
	EntityType model.Kind
	UserID     *uuid.UUID
}

// AuditLog appends and reads audit entries. Entries are never soft deleted.
type AuditLog struct {
	db   *gorm.DB
	logs *store.Store[model.AuditLog, *model.AuditLog]
}

func NewAuditLog(db *gorm.DB) *AuditLog {
	return &AuditLog{db: db, logs: store.New[model.AuditLog](db)}
}

// Entry describes one mutation to record. OldValues and NewValues are
// marshalled to JSON.
type Entry struct {
	UserID     *uuid.UUID
	Action     model.AuditAction
	EntityType model.Kind
	EntityID   *uuid.UUID
	OldValues  any
	NewValues  any
	IPAddress  string
}

func (a *AuditLog) Record(ctx context.Context, org uuid.UUID, e Entry) error {
	row := &model.AuditLog{
		UserID:     e.UserID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
	}
	var err error
	if row.OldValues, err = toJSON(e.OldValues); err != nil {
		return err
	}
	if row.NewValues, err = toJSON(e.NewValues); err != nil {
		return err
	}
	if e.IPAddress != "" {
		row.IPAddress = &e.IPAddress
	}
	return a.logs.Create(ctx, org, row)
}

func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit values: %w", err)
	}
	return datatypes.JSON(b), nil
}

// List returns the newest entries of org matching filter.
func (a *AuditLog) List(ctx context.Context, org uuid.UUID, filter AuditFilter) ([]model.AuditLog, error) {
	f := store.Filter{}
	if filter.EntityType != "" {
		f["entity_type"] = filter.EntityType
	}
	if filter.UserID != nil {
		f["user_id"] = *filter.UserID
	}
	return a.logs.FindMany(ctx, org, f, store.OrderBy("created_at desc"), store.Limit(AuditListLimit))
}

// Purge hard deletes the entries of org created before cutoff.
func (a *AuditLog) Purge(ctx context.Context, org uuid.UUID, cutoff time.Time) (int64, error) {
	return a.logs.DeleteMany(ctx, org, store.Filter{}, store.Where("created_at < ?", cutoff))
}

// PurgeAll runs Purge for every organization, deleted ones included.
func (a *AuditLog) PurgeAll(ctx context.Context, cutoff time.Time) (int64, error) {
	orgs, err := OrganizationIDs(ctx, a.db, true)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, org := range orgs {
		n, err := a.Purge(ctx, org, cutoff)
		if err != nil {
			return total, fmt.Errorf("purge audit log of %s: %w", org, err)
		}
		total += n
	}
	return total, nil
}
