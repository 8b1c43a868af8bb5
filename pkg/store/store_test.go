package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/testutil"
)

func TestSoftDeletedRowsAreInvisible(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	projects := New[model.Project](db)

	kept := testutil.NewTestProject(t, db, org, "kept")
	gone := testutil.NewTestProject(t, db, org, "gone")
	require.NoError(t, projects.Delete(ctx, org, gone.ID))

	_, err := projects.FindByID(ctx, org, gone.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := projects.FindMany(ctx, org, Filter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, kept.ID, rows[0].ID)

	n, err := projects.Count(ctx, org, Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// still stored, and visible on request
	found, err := projects.FindByID(ctx, org, gone.ID, WithDeleted())
	require.NoError(t, err)
	assert.NotNil(t, found.DeletedAt)

	all, err := projects.FindMany(ctx, org, Filter{}, WithDeleted())
	require.NoError(t, err)
	assert.Len(t, all, 2)

	var raw int64
	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", gone.ID).Count(&raw).Error)
	assert.Equal(t, int64(1), raw)
}

func TestExplicitDeletedAtFilterIsRespected(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	risks := New[model.Risk](db)
	p := testutil.NewTestProject(t, db, org, "p")

	r := testutil.NewTestRisk(t, db, org, p.ID, "r")
	require.NoError(t, risks.Delete(ctx, org, r.ID))

	deleted, err := risks.FindMany(ctx, org, Filter{}, WithDeleted(), Where("deleted_at IS NOT NULL"))
	require.NoError(t, err)
	require.Len(t, deleted, 1)

	live, err := risks.FindMany(ctx, org, Filter{"deleted_at": nil})
	require.NoError(t, err)
	assert.Empty(t, live)
}

func TestTenantIsolation(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	orgA := testutil.NewTestOrganization(t, db, "a").ID
	orgB := testutil.NewTestOrganization(t, db, "b").ID
	projects := New[model.Project](db)

	pa := testutil.NewTestProject(t, db, orgA, "alpha")

	_, err := projects.FindByID(ctx, orgB, pa.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	rows, err := projects.FindMany(ctx, orgB, Filter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	err = projects.Update(ctx, orgB, pa.ID, map[string]any{"name": "stolen"})
	assert.ErrorIs(t, err, ErrNotFound)

	err = projects.Delete(ctx, orgB, pa.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// a condition cannot widen the tenant scope
	rows, err = projects.FindMany(ctx, orgB, Filter{}, Where("organization_id = ? OR 1 = 1", orgA))
	require.NoError(t, err)
	assert.Empty(t, rows)

	got, err := projects.FindByID(ctx, orgA, pa.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Name)
}

func TestTenantErrors(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	orgA := testutil.NewTestOrganization(t, db, "a").ID
	orgB := testutil.NewTestOrganization(t, db, "b").ID
	projects := New[model.Project](db)

	_, err := projects.FindMany(ctx, uuid.Nil, Filter{})
	assert.ErrorIs(t, err, ErrTenantRequired)

	err = projects.Create(ctx, uuid.Nil, &model.Project{Name: "x", Code: "X"})
	assert.ErrorIs(t, err, ErrTenantRequired)

	_, err = projects.FindMany(ctx, orgA, Filter{"organization_id": orgB})
	assert.ErrorIs(t, err, ErrTenantMismatch)

	p := &model.Project{Name: "x", Code: "X"}
	p.OrganizationID = orgB
	err = projects.Create(ctx, orgA, p)
	assert.ErrorIs(t, err, ErrTenantMismatch)

	// matching tenant in the filter is fine
	_, err = projects.FindMany(ctx, orgA, Filter{"organization_id": orgA})
	assert.NoError(t, err)
}

func TestCreateStampsTenant(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	portfolios := New[model.Portfolio](db)

	p := &model.Portfolio{Name: "Growth", RAGStatus: model.RAGGreen}
	require.NoError(t, portfolios.Create(ctx, org, p))
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, org, p.OrganizationID)
	assert.Nil(t, p.DeletedAt)
}

func TestUpdate(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	projects := New[model.Project](db)
	p := testutil.NewTestProject(t, db, org, "p")

	require.NoError(t, projects.Update(ctx, org, p.ID, map[string]any{"name": "renamed", "percent_complete": 40}))
	got, err := projects.FindByID(ctx, org, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.Equal(t, 40, got.PercentComplete)

	for _, column := range []string{"organization_id", "id", "created_at"} {
		err = projects.Update(ctx, org, p.ID, map[string]any{column: uuid.New()})
		assert.ErrorIs(t, err, ErrImmutableField, column)
	}

	assert.ErrorIs(t, projects.Update(ctx, org, uuid.New(), map[string]any{"name": "x"}), ErrNotFound)
	assert.NoError(t, projects.Update(ctx, org, p.ID, map[string]any{}))
}

func TestUpdateReachesDeletedRows(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	projects := New[model.Project](db)
	p := testutil.NewTestProject(t, db, org, "p")

	require.NoError(t, projects.Delete(ctx, org, p.ID))
	require.NoError(t, projects.Update(ctx, org, p.ID, map[string]any{"deleted_at": nil}))

	_, err := projects.FindByID(ctx, org, p.ID)
	assert.NoError(t, err)
}

func TestDoubleDeleteKeepsRowHidden(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")

	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	require.NoError(t, New[model.Project](db).WithClock(func() time.Time { return first }).Delete(ctx, org, p.ID))
	require.NoError(t, New[model.Project](db).WithClock(func() time.Time { return second }).Delete(ctx, org, p.ID))

	projects := New[model.Project](db)
	_, err := projects.FindByID(ctx, org, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := projects.FindByID(ctx, org, p.ID, WithDeleted())
	require.NoError(t, err)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, got.DeletedAt.Equal(second), "latest deletion wins, got %s", got.DeletedAt)

	assert.ErrorIs(t, projects.Delete(ctx, org, uuid.New()), ErrNotFound)
}

func TestDeleteManyAndRestore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	risks := New[model.Risk](db)
	p := testutil.NewTestProject(t, db, org, "p")
	other := testutil.NewTestProject(t, db, org, "other")

	r1 := testutil.NewTestRisk(t, db, org, p.ID, "r1")
	testutil.NewTestRisk(t, db, org, p.ID, "r2")
	testutil.NewTestRisk(t, db, org, other.ID, "r3")

	n, err := risks.DeleteMany(ctx, org, Filter{"project_id": p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// already deleted rows are not counted again
	n, err = risks.DeleteMany(ctx, org, Filter{"project_id": p.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	left, err := risks.FindMany(ctx, org, Filter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "r3", left[0].Title)

	require.NoError(t, risks.Restore(ctx, org, r1.ID))
	got, err := risks.FindByID(ctx, org, r1.ID)
	require.NoError(t, err)
	assert.Nil(t, got.DeletedAt)

	assert.ErrorIs(t, risks.Restore(ctx, org, uuid.New()), ErrNotFound)
}

func TestUnregisteredKindIsHardDeleted(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	logs := New[model.AuditLog](db)

	entry := &model.AuditLog{Action: model.AuditCreate, EntityType: model.KindProject}
	require.NoError(t, logs.Create(ctx, org, entry))
	require.NoError(t, logs.Delete(ctx, org, entry.ID))

	var raw int64
	require.NoError(t, db.Model(&model.AuditLog{}).Count(&raw).Error)
	assert.Equal(t, int64(0), raw)

	err := logs.Restore(ctx, org, entry.ID)
	assert.True(t, errors.Is(err, errors.ErrUnsupported))
}

func TestOrganizationIsItsOwnTenant(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	orgs := New[model.Organization](db)

	id := uuid.New()
	require.NoError(t, orgs.Create(ctx, id, &model.Organization{Name: "acme", Slug: "acme", IsActive: true}))
	other := testutil.NewTestOrganization(t, db, "other")

	got, err := orgs.FindByID(ctx, id, id)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.Name)

	_, err = orgs.FindByID(ctx, id, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := orgs.FindMany(ctx, id, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestReadOptions(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	risks := New[model.Risk](db)
	p := testutil.NewTestProject(t, db, org, "p")

	testutil.NewTestRisk(t, db, org, p.ID, "low", testutil.WithRating(model.ProbabilityLow, model.ImpactLow, 4))
	testutil.NewTestRisk(t, db, org, p.ID, "high", testutil.WithRating(model.ProbabilityHigh, model.ImpactHigh, 16))
	testutil.NewTestRisk(t, db, org, p.ID, "mid", testutil.WithRating(model.ProbabilityMedium, model.ImpactMedium, 9))

	rows, err := risks.FindMany(ctx, org, Filter{"project_id": p.ID}, OrderBy("risk_score desc"), Limit(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "high", rows[0].Title)
	assert.Equal(t, "mid", rows[1].Title)

	rows, err = risks.FindMany(ctx, org, Filter{}, OrderBy("risk_score desc"), Limit(1), Offset(2))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "low", rows[0].Title)

	one, err := risks.FindOne(ctx, org, Filter{"title": "mid"}, Select("id", "title"))
	require.NoError(t, err)
	assert.Equal(t, "mid", one.Title)
	assert.Equal(t, 0, one.RiskScore)
}
