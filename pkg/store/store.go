package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/logutils"
)

const (
	columnID        = "id"
	columnTenant    = "organization_id"
	columnDeletedAt = "deleted_at"
	columnCreatedAt = "created_at"
)

// Record constrains P to be the pointer type of the model T.
type Record[T any] interface {
	*T
	model.Entity
}

// Store is the tenant-scoped data access path for one entity kind.
//
// Every call requires the caller's organization and appends it as a predicate
// that filters cannot override. For kinds in the soft-delete registry, reads
// skip rows with a deleted_at stamp unless WithDeleted is given or the filter
// names deleted_at, and deletes are turned into a deleted_at stamp. Other kinds
// are read and deleted as-is.
type Store[T any, P Record[T]] struct {
	db   *gorm.DB
	kind model.Kind
	now  func() time.Time
}

// New returns a store for T, e.g. store.New[model.Project](db).
func New[T any, P Record[T]](db *gorm.DB) *Store[T, P] {
	return &Store[T, P]{
		db:   db,
		kind: P(new(T)).Kind(),
		now:  time.Now,
	}
}

// Kind returns the entity kind served by the store.
func (s *Store[T, P]) Kind() model.Kind { return s.kind }

// WithDB returns a copy of the store bound to db, typically a transaction.
func (s *Store[T, P]) WithDB(db *gorm.DB) *Store[T, P] {
	c := *s
	c.db = db
	return &c
}

// WithClock returns a copy of the store using now for deletion stamps.
func (s *Store[T, P]) WithClock(now func() time.Time) *Store[T, P] {
	c := *s
	c.now = now
	return &c
}

func sameTenant(v any, org uuid.UUID) bool {
	switch id := v.(type) {
	case uuid.UUID:
		return id == org
	case *uuid.UUID:
		return id != nil && *id == org
	case string:
		return id == org.String()
	default:
		return false
	}
}

func (s *Store[T, P]) column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// scope builds the base statement for org. live adds the soft-delete
// predicate for registered kinds.
func (s *Store[T, P]) scope(ctx context.Context, org uuid.UUID, filter Filter, o *options, live bool) (*gorm.DB, error) {
	if org == uuid.Nil {
		return nil, ErrTenantRequired
	}
	tenantColumn := s.kind.TenantColumn()
	if tenantColumn == columnTenant && filter.has(columnTenant) && !sameTenant(filter[columnTenant], org) {
		return nil, ErrTenantMismatch
	}

	tx := s.db.WithContext(ctx).Model(new(T)).
		Where(clause.Eq{Column: s.column(tenantColumn), Value: org})
	if len(filter) > 0 {
		tx = tx.Where(map[string]any(filter))
	}
	if live && s.kind.SoftDelete() && !o.withDeleted && !filter.has(columnDeletedAt) {
		tx = tx.Where(clause.Eq{Column: s.column(columnDeletedAt), Value: nil})
	}
	for _, c := range o.conds {
		tx = tx.Where(c.query, c.args...)
	}
	return tx, nil
}

func (o *options) apply(tx *gorm.DB) *gorm.DB {
	if len(o.selects) > 0 {
		tx = tx.Select(o.selects)
	}
	for _, order := range o.orders {
		tx = tx.Order(order)
	}
	if o.limit > 0 {
		tx = tx.Limit(o.limit)
	}
	if o.offset > 0 {
		tx = tx.Offset(o.offset)
	}
	return tx
}

// Create stamps entity with org and inserts it.
func (s *Store[T, P]) Create(ctx context.Context, org uuid.UUID, entity *T) error {
	if org == uuid.Nil {
		return ErrTenantRequired
	}
	p := P(entity)
	if current := p.TenantID(); current != uuid.Nil && current != org {
		return ErrTenantMismatch
	}
	p.SetTenantID(org)
	if err := s.db.WithContext(ctx).Create(entity).Error; err != nil {
		return fmt.Errorf("create %s: %w", s.kind, err)
	}
	return nil
}

// FindOne returns the first row matching filter.
func (s *Store[T, P]) FindOne(ctx context.Context, org uuid.UUID, filter Filter, opts ...Option) (*T, error) {
	o := buildOptions(opts)
	tx, err := s.scope(ctx, org, filter, o, true)
	if err != nil {
		return nil, err
	}
	var out T
	if err := o.apply(tx).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find %s: %w", s.kind, err)
	}
	return &out, nil
}

// FindByID returns the row with id.
func (s *Store[T, P]) FindByID(ctx context.Context, org, id uuid.UUID, opts ...Option) (*T, error) {
	return s.FindOne(ctx, org, Filter{columnID: id}, opts...)
}

// FindMany returns every row matching filter.
func (s *Store[T, P]) FindMany(ctx context.Context, org uuid.UUID, filter Filter, opts ...Option) ([]T, error) {
	o := buildOptions(opts)
	tx, err := s.scope(ctx, org, filter, o, true)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	if err := o.apply(tx).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return out, nil
}

// Count returns the number of rows matching filter.
func (s *Store[T, P]) Count(ctx context.Context, org uuid.UUID, filter Filter, opts ...Option) (int64, error) {
	o := buildOptions(opts)
	tx, err := s.scope(ctx, org, filter, o, true)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.kind, err)
	}
	return n, nil
}

func checkPatch(patch map[string]any) error {
	for _, column := range []string{columnID, columnTenant, columnCreatedAt} {
		if _, ok := patch[column]; ok {
			return fmt.Errorf("%s: %w", column, ErrImmutableField)
		}
	}
	return nil
}

// Update applies patch to the row with id. Soft-deleted rows are matched too,
// which is how deleted_at itself is changed.
func (s *Store[T, P]) Update(ctx context.Context, org, id uuid.UUID, patch map[string]any) error {
	if err := checkPatch(patch); err != nil {
		return err
	}
	tx, err := s.scope(ctx, org, Filter{columnID: id}, &options{}, false)
	if err != nil {
		return err
	}
	if len(patch) == 0 {
		var n int64
		if err := tx.Count(&n).Error; err != nil {
			return fmt.Errorf("update %s: %w", s.kind, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return nil
	}
	res := tx.Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("update %s: %w", s.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMany applies patch to every row matching filter and returns the count.
func (s *Store[T, P]) UpdateMany(
	ctx context.Context, org uuid.UUID, filter Filter, patch map[string]any, opts ...Option,
) (int64, error) {
	if err := checkPatch(patch); err != nil {
		return 0, err
	}
	if len(patch) == 0 {
		return 0, nil
	}
	tx, err := s.scope(ctx, org, filter, buildOptions(opts), false)
	if err != nil {
		return 0, err
	}
	res := tx.Updates(patch)
	if res.Error != nil {
		return 0, fmt.Errorf("update %s: %w", s.kind, res.Error)
	}
	return res.RowsAffected, nil
}

// Delete removes the row with id. Registered kinds are stamped with
// deleted_at; calling it again moves the stamp to the latest call.
func (s *Store[T, P]) Delete(ctx context.Context, org, id uuid.UUID) error {
	tx, err := s.scope(ctx, org, Filter{columnID: id}, &options{}, false)
	if err != nil {
		return err
	}
	var res *gorm.DB
	if s.kind.SoftDelete() {
		res = tx.Update(columnDeletedAt, s.now())
	} else {
		res = tx.Delete(new(T))
	}
	if res.Error != nil {
		return fmt.Errorf("delete %s: %w", s.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	logutils.WithTenant(org.String(), string(s.kind)).Debugf("deleted %s, soft: %t", id, s.kind.SoftDelete())
	return nil
}

// DeleteMany removes every live row matching filter and returns the count.
// Rows already carrying a deleted_at stamp keep it.
func (s *Store[T, P]) DeleteMany(ctx context.Context, org uuid.UUID, filter Filter, opts ...Option) (int64, error) {
	tx, err := s.scope(ctx, org, filter, buildOptions(opts), true)
	if err != nil {
		return 0, err
	}
	var res *gorm.DB
	if s.kind.SoftDelete() {
		res = tx.Update(columnDeletedAt, s.now())
	} else {
		res = tx.Delete(new(T))
	}
	if res.Error != nil {
		return 0, fmt.Errorf("delete %s: %w", s.kind, res.Error)
	}
	logutils.WithTenant(org.String(), string(s.kind)).Debugf("deleted %d rows, soft: %t", res.RowsAffected, s.kind.SoftDelete())
	return res.RowsAffected, nil
}

// Restore clears the deleted_at stamp of the row with id.
func (s *Store[T, P]) Restore(ctx context.Context, org, id uuid.UUID) error {
	if !s.kind.SoftDelete() {
		return fmt.Errorf("restore %s: %w", s.kind, errors.ErrUnsupported)
	}
	tx, err := s.scope(ctx, org, Filter{columnID: id}, &options{}, false)
	if err != nil {
		return err
	}
	res := tx.Update(columnDeletedAt, nil)
	if res.Error != nil {
		return fmt.Errorf("restore %s: %w", s.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
