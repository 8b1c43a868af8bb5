package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/middleware"
	"github.com/ppmlab/atlas/internal/resputil"
	"github.com/ppmlab/atlas/internal/util"
	"github.com/ppmlab/atlas/pkg/reporting"
	"github.com/ppmlab/atlas/pkg/store"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewResourceMgr)
}

type ResourceMgr struct {
	name        string
	resources   *crud[model.Resource, *model.Resource]
	assignments *crud[model.ResourceAssignment, *model.ResourceAssignment]
	aggregator  *reporting.Aggregator
}

func NewResourceMgr(conf *RegisterConfig) Manager {
	mgr := &ResourceMgr{
		name: "resources",
		resources: newCrud[model.Resource](conf, "name", map[string]string{
			"userId": "user_id",
			"skill":  "skill",
		}),
		assignments: newCrud[model.ResourceAssignment](conf, "start_date", map[string]string{
			"resourceId": "resource_id",
			"projectId":  "project_id",
		}),
		aggregator: conf.Aggregator,
	}
	mgr.resources.parents = map[string]parentCheck{
		"user_id": parentIn(store.New[model.User](conf.DB)),
	}
	mgr.assignments.parents = map[string]parentCheck{
		"resource_id": parentIn(store.New[model.Resource](conf.DB)),
		"project_id":  parentIn(store.New[model.Project](conf.DB)),
	}
	mgr.resources.validate = func(_ *gin.Context, _ uuid.UUID, r *model.Resource) error {
		if r.AvailabilityPercent == 0 {
			r.AvailabilityPercent = 100
		}
		if r.AvailabilityPercent < 0 || r.AvailabilityPercent > 100 {
			return fmt.Errorf("availabilityPercent must be within 0..100: %w", errInvalidInput)
		}
		r.IsActive = true
		return nil
	}
	mgr.assignments.validate = func(_ *gin.Context, _ uuid.UUID, a *model.ResourceAssignment) error {
		if a.AllocationPercent == 0 {
			a.AllocationPercent = 100
		}
		if a.AllocationPercent < 0 || a.AllocationPercent > 100 {
			return fmt.Errorf("allocationPercent must be within 1..100: %w", errInvalidInput)
		}
		if a.EndDate.Before(a.StartDate) {
			return fmt.Errorf("endDate before startDate: %w", errInvalidInput)
		}
		return nil
	}
	return mgr
}

func (mgr *ResourceMgr) GetName() string { return mgr.name }

func (mgr *ResourceMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ResourceMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/capacity", mgr.GetCapacity)
	g.GET("", mgr.resources.List)
	g.GET("/:id", mgr.resources.Get)
	g.GET("/assignments", mgr.assignments.List)

	w := g.Group("", middleware.RequireRoles(model.RoleResourceManager, model.RolePMO, model.RoleProjectManager))
	w.POST("", mgr.resources.Create)
	w.PATCH("/:id", mgr.resources.Update)
	w.DELETE("/:id", mgr.resources.Delete)
	w.POST("/assignments", mgr.assignments.Create)
	w.PATCH("/assignments/:id", mgr.assignments.Update)
	w.DELETE("/assignments/:id", mgr.assignments.Delete)
}

func (mgr *ResourceMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("/:id/restore", mgr.resources.Restore)
}

// parseDay accepts a date or an RFC 3339 timestamp.
func parseDay(v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, v)
}

// GetCapacity godoc
//
//	@Summary		Resource capacity
//	@Description	Allocation of every active resource over a period; over 100 percent is over-allocated
//	@Tags			Resource
//	@Produce		json
//	@Security		Bearer
//	@Param			startDate	query		string								true	"Period start, YYYY-MM-DD"
//	@Param			endDate		query		string								true	"Period end, YYYY-MM-DD"
//	@Success		200			{object}	resputil.Response[[]analytics.Capacity]	"Capacity rows"
//	@Router			/v1/resources/capacity [get]
func (mgr *ResourceMgr) GetCapacity(c *gin.Context) {
	start, err := parseDay(c.Query("startDate"))
	if err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("invalid startDate: %v", err))
		return
	}
	end, err := parseDay(c.Query("endDate"))
	if err != nil {
		resputil.BadRequestError(c, fmt.Sprintf("invalid endDate: %v", err))
		return
	}
	if end.Before(start) {
		resputil.BadRequestError(c, "endDate before startDate")
		return
	}
	capacity, err := mgr.aggregator.GetResourceCapacity(c, util.GetToken(c).OrganizationID, start, end)
	if err != nil {
		resputil.FromError(c, err)
		return
	}
	resputil.Success(c, capacity)
}
