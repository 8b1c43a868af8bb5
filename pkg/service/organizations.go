package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppmlab/atlas/dao/model"
)

// OrganizationIDs lists every tenant. Maintenance jobs use it to run
// tenant-scoped work across the whole database.
func OrganizationIDs(ctx context.Context, db *gorm.DB, includeDeleted bool) ([]uuid.UUID, error) {
	tx := db.WithContext(ctx).Model(&model.Organization{})
	if !includeDeleted {
		tx = tx.Where(clause.Eq{Column: "deleted_at", Value: nil})
	}
	var ids []uuid.UUID
	if err := tx.Order("created_at").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return ids, nil
}
