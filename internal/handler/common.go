package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
	"k8s.io/klog/v2"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/analytics"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

var (
	errEmptyPatch   = errors.New("empty patch")
	errUnknownField = errors.New("unknown field")
	errInvalidInput = errors.New("invalid input")
)

// serverFields are never accepted from a request body.
var serverFields = map[string]struct{}{
	"id":              {},
	"organization_id": {},
	"created_at":      {},
	"updated_at":      {},
	"deleted_at":      {},
}

var schemaCache = &sync.Map{}

// paramUUID parses the named path parameter, answering 400 when it is not a uuid.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("invalid %s: %v", name, err))
		return uuid.Nil, false
	}
	return id, true
}

// queryUUID parses a required query parameter.
func queryUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Query(name))
	if err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("invalid %s: %v", name, err))
		return uuid.Nil, false
	}
	return id, true
}

// rawBody returns the request body, caching it so that later
// ShouldBindBodyWithJSON calls can read it again.
func rawBody(c *gin.Context) ([]byte, error) {
	if cached, ok := c.Get(gin.BodyBytesKey); ok {
		if b, ok := cached.([]byte); ok {
			return b, nil
		}
	}
	raw, err := c.GetRawData()
	if err != nil {
		return nil, err
	}
	c.Set(gin.BodyBytesKey, raw)
	return raw, nil
}

// bindPatch reads a partial JSON body of T and returns it keyed by column.
// Values are decoded into T first so that every column keeps its Go type.
// Keys listed in ignore are skipped; the caller reads them separately.
func bindPatch[T any](c *gin.Context, db *gorm.DB, ignore ...string) (map[string]any, error) {
	raw, err := rawBody(c)
	if err != nil {
		return nil, err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	for _, key := range ignore {
		delete(keys, key)
	}
	if len(keys) == 0 {
		return nil, errEmptyPatch
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, err
	}
	s, err := schema.Parse(&value, schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]*schema.Field, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName == "" {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" {
			name = f.Name
		}
		if name != "-" {
			fields[name] = f
		}
	}

	rv := reflect.ValueOf(&value)
	patch := make(map[string]any, len(keys))
	for key := range keys {
		f, ok := fields[key]
		if !ok {
			return nil, fmt.Errorf("%s: %w", key, errUnknownField)
		}
		if _, ok := serverFields[f.DBName]; ok {
			return nil, fmt.Errorf("%s: %w", key, store.ErrImmutableField)
		}
		patch[f.DBName] = f.ReflectValueOf(c, rv).Interface()
	}
	if err := checkAmounts(patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// columnValues returns the column values of entity keyed by column name.
func columnValues[T any](ctx context.Context, db *gorm.DB, entity *T) (map[string]any, error) {
	s, err := schema.Parse(entity, schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, err
	}
	rv := reflect.ValueOf(entity)
	values := make(map[string]any, len(s.Fields))
	for _, f := range s.Fields {
		if f.DBName != "" {
			values[f.DBName] = f.ReflectValueOf(ctx, rv).Interface()
		}
	}
	return values, nil
}

// checkAmounts rejects negative decimal columns. Every decimal column
// written through a patch or the crud handlers is money or effort.
func checkAmounts(values map[string]any) error {
	for column, v := range values {
		var err error
		switch a := v.(type) {
		case decimal.Decimal:
			err = analytics.CheckAmounts(a)
		case *decimal.Decimal:
			if a != nil {
				err = analytics.CheckAmounts(*a)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", column, err)
		}
	}
	return nil
}

// parentCheck fails unless id is nil or names a live row of the tenant.
type parentCheck func(c *gin.Context, org uuid.UUID, id *uuid.UUID) error

func parentIn[T any, P store.Record[T]](s *store.Store[T, P]) parentCheck {
	return func(c *gin.Context, org uuid.UUID, id *uuid.UUID) error {
		return existsIn(s, c, org, id)
	}
}

// uuidRef reads a foreign key value out of a column map.
func uuidRef(v any) *uuid.UUID {
	switch id := v.(type) {
	case uuid.UUID:
		return &id
	case *uuid.UUID:
		return id
	}
	return nil
}

// respondError answers input errors raised inside this package with 400 and
// everything else through resputil.FromError.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, errInvalidInput) || errors.Is(err, errUnknownField) || errors.Is(err, errEmptyPatch) {
		resputil.BadRequestError(c, err.Error())
		return
	}
	resputil.FromError(c, err)
}

// respondPatchError answers a bindPatch failure.
func respondPatchError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrImmutableField) || errors.Is(err, analytics.ErrInvalidNumericInput) {
		resputil.FromError(c, err)
		return
	}
	resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
}

// recordAudit appends an audit entry for the caller. A failed write is
// logged and does not fail the request.
func recordAudit(c *gin.Context, audit *service.AuditLog, action model.AuditAction, kind model.Kind,
	id uuid.UUID, oldValues, newValues any) {
	if audit == nil {
		return
	}
	token := util.GetToken(c)
	entry := service.Entry{
		Action:     action,
		EntityType: kind,
		EntityID:   &id,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  c.ClientIP(),
	}
	if token.UserID != uuid.Nil {
		entry.UserID = &token.UserID
	}
	if err := audit.Record(c, token.OrganizationID, entry); err != nil {
		klog.Errorf("record audit %s %s %s: %v", action, kind, id, err)
	}
}

// canSeeDeleted reports whether the caller may list soft-deleted rows.
func canSeeDeleted(c *gin.Context) bool {
	if c.Query("withDeleted") != "true" {
		return false
	}
	role := util.GetToken(c).Role
	return role == model.RoleSuperAdmin || role == model.RolePMO
}
