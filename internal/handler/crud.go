package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/payload"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/service"
	"github.com/ppmlab/atlas/pkg/store"
)

// crud serves the plain list/get/create/update/delete endpoints of one entity
// kind through the tenant store, recording every mutation in the audit log.
type crud[T any, P store.Record[T]] struct {
	db    *gorm.DB
	store *store.Store[T, P]
	audit *service.AuditLog
	order string
	// filters maps accepted query parameters to columns. Columns ending in
	// _id take uuid values.
	filters map[string]string
	// parents maps foreign key columns to the kind they reference. Create and
	// update both refuse a reference outside the caller's live rows.
	parents map[string]parentCheck
	// validate runs before create with the caller's tenant.
	validate func(c *gin.Context, org uuid.UUID, entity *T) error
	// validatePatch runs before update with the stored row.
	validatePatch func(c *gin.Context, org uuid.UUID, before *T, patch map[string]any) error
}

func newCrud[T any, P store.Record[T]](conf *RegisterConfig, order string, filters map[string]string) *crud[T, P] {
	return &crud[T, P]{
		db:      conf.DB,
		store:   store.New[T, P](conf.DB),
		audit:   conf.AuditLog,
		order:   order,
		filters: filters,
	}
}

// filter builds a store filter from the query string.
func (h *crud[T, P]) filter(c *gin.Context) (store.Filter, error) {
	f := store.Filter{}
	for param, column := range h.filters {
		v, ok := c.GetQuery(param)
		if !ok {
			continue
		}
		if !strings.HasSuffix(column, "_id") {
			f[column] = v
			continue
		}
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", param, err)
		}
		f[column] = id
	}
	return f, nil
}

func (h *crud[T, P]) List(c *gin.Context) {
	var req payload.ListReqQuery
	if err := c.ShouldBindQuery(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	filter, err := h.filter(c)
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	org := util.GetToken(c).OrganizationID

	var opts []store.Option
	if canSeeDeleted(c) {
		opts = append(opts, store.WithDeleted())
	}
	count, err := h.store.Count(c, org, filter, opts...)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	limit, offset := req.Window()
	opts = append(opts, store.OrderBy(h.order), store.Limit(limit), store.Offset(offset))
	rows, err := h.store.FindMany(c, org, filter, opts...)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, payload.ListResp[T]{Rows: rows, Count: count})
}

func (h *crud[T, P]) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	entity, err := h.store.FindByID(c, util.GetToken(c).OrganizationID, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, entity)
}

func (h *crud[T, P]) Create(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("failed to bind request: %v", err))
		return
	}
	if r, ok := any(&entity).(interface{ ClearSystemFields() }); ok {
		r.ClearSystemFields()
	}
	org := util.GetToken(c).OrganizationID
	if h.validate != nil {
		if err := h.validate(c, org, &entity); err != nil {
			respondError(c, err)
			return
		}
	}
	values, err := columnValues(c, h.db, &entity)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := checkAmounts(values); err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := h.checkParents(c, org, values); err != nil {
		respondError(c, err)
		return
	}
	if err := h.store.Create(c, org, &entity); err != nil {
		resputil.FromError(c, err)
		return
	}
	id := P(&entity).GetID()
	recordAudit(c, h.audit, model.AuditCreate, h.store.Kind(), id, nil, &entity)
	resputil.Created(c, &entity)
}

func (h *crud[T, P]) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	patch, err := bindPatch[T](c, h.db)
	if err != nil {
		respondPatchError(c, err)
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := h.store.FindByID(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := h.checkParents(c, org, patch); err != nil {
		respondError(c, err)
		return
	}
	if h.validatePatch != nil {
		if err := h.validatePatch(c, org, before, patch); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := h.store.Update(c, org, id, patch); err != nil {
		resputil.FromError(c, err)
		return
	}
	after, err := h.store.FindByID(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, h.audit, model.AuditUpdate, h.store.Kind(), id, before, after)
	resputil.Success(c, after)
}

func (h *crud[T, P]) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	before, err := h.store.FindByID(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	if err := h.store.Delete(c, org, id); err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, h.audit, model.AuditDelete, h.store.Kind(), id, before, nil)
	resputil.Success(c, nil)
}

// Restore clears the deletion stamp of a soft-deleted row.
func (h *crud[T, P]) Restore(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	org := util.GetToken(c).OrganizationID
	if err := h.store.Restore(c, org, id); err != nil {
		resputil.FromError(c, err)
		return
	}
	after, err := h.store.FindByID(c, org, id)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	recordAudit(c, h.audit, model.AuditUpdate, h.store.Kind(), id, nil, after)
	resputil.Success(c, after)
}

// register mounts the crud routes on g.
func (h *crud[T, P]) register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// checkParents runs the parent check of every foreign key present in values.
func (h *crud[T, P]) checkParents(c *gin.Context, org uuid.UUID, values map[string]any) error {
	for column, check := range h.parents {
		v, ok := values[column]
		if !ok {
			continue
		}
		if err := check(c, org, uuidRef(v)); err != nil {
			return err
		}
	}
	return nil
}

// existsIn fails with ErrNotFound unless id is nil or names a live row of s
// in the caller's tenant.
func existsIn[T any, P store.Record[T]](s *store.Store[T, P], c *gin.Context, org uuid.UUID, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.FindByID(c, org, *id, store.Select("id")); err != nil {
		return fmt.Errorf("%s %s: %w", s.Kind(), id, err)
	}
	return nil
}
