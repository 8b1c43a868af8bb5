package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/testutil"
	"github.com/ppmlab/atlas/pkg/store"
)

func TestRiskCreateComputesScore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	reg := NewRiskRegister(db)

	r := &model.Risk{Title: "vendor", Probability: model.ProbabilityHigh, Impact: model.ImpactHigh, RiskScore: 1}
	require.NoError(t, reg.Create(ctx, org, p.ID, r))
	assert.Equal(t, 16, r.RiskScore)
	assert.Equal(t, model.RiskOpen, r.Status)

	defaulted := &model.Risk{Title: "unrated"}
	require.NoError(t, reg.Create(ctx, org, p.ID, defaulted))
	assert.Equal(t, 9, defaulted.RiskScore)
}

func TestRiskCreateRequiresLiveProjectInTenant(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	acme := testutil.NewTestOrganization(t, db, "acme").ID
	globex := testutil.NewTestOrganization(t, db, "globex").ID
	foreign := testutil.NewTestProject(t, db, globex, "foreign")
	gone := testutil.NewTestProject(t, db, acme, "gone")
	testutil.SoftDelete(t, db, gone)
	reg := NewRiskRegister(db)

	assert.ErrorIs(t, reg.Create(ctx, acme, foreign.ID, &model.Risk{Title: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, reg.Create(ctx, acme, gone.ID, &model.Risk{Title: "x"}), store.ErrNotFound)
	assert.ErrorIs(t, reg.Create(ctx, acme, uuid.New(), &model.Risk{Title: "x"}), store.ErrNotFound)
}

func TestRiskUpdateRecomputesScore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	reg := NewRiskRegister(db)

	r := &model.Risk{Title: "supplier", Probability: model.ProbabilityMedium, Impact: model.ImpactMedium}
	require.NoError(t, reg.Create(ctx, org, p.ID, r))
	require.Equal(t, 9, r.RiskScore)

	updated, err := reg.Update(ctx, org, r.ID, map[string]any{"impact": "CRITICAL"})
	require.NoError(t, err)
	assert.Equal(t, model.ImpactCritical, updated.Impact)
	assert.Equal(t, 15, updated.RiskScore)

	updated, err = reg.Update(ctx, org, r.ID, map[string]any{"probability": model.ProbabilityVeryHigh})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.RiskScore)
}

func TestRiskUpdateIgnoresScoreInPatch(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	reg := NewRiskRegister(db)

	r := &model.Risk{Title: "audit", Probability: model.ProbabilityLow, Impact: model.ImpactLow}
	require.NoError(t, reg.Create(ctx, org, p.ID, r))

	updated, err := reg.Update(ctx, org, r.ID, map[string]any{"risk_score": 25, "title": "audit finding"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.RiskScore)
	assert.Equal(t, "audit finding", updated.Title)
}

func TestRiskUpdateOtherTenantIsNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	acme := testutil.NewTestOrganization(t, db, "acme").ID
	globex := testutil.NewTestOrganization(t, db, "globex").ID
	p := testutil.NewTestProject(t, db, acme, "p")
	r := testutil.NewTestRisk(t, db, acme, p.ID, "r")

	_, err := NewRiskRegister(db).Update(ctx, globex, r.ID, map[string]any{"impact": "HIGH"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRiskRescore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	stale := testutil.NewTestRisk(t, db, org, p.ID, "stale",
		testutil.WithRating(model.ProbabilityHigh, model.ImpactCritical, 9))
	testutil.NewTestRisk(t, db, org, p.ID, "fresh")
	reg := NewRiskRegister(db)

	fixed, err := reg.Rescore(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	got, err := reg.Get(ctx, org, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.RiskScore)
}

func TestRiskListByProjectOrdersByScore(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	testutil.NewTestRisk(t, db, org, p.ID, "low", testutil.WithRating(model.ProbabilityLow, model.ImpactLow, 4))
	testutil.NewTestRisk(t, db, org, p.ID, "high", testutil.WithRating(model.ProbabilityHigh, model.ImpactHigh, 16))
	gone := testutil.NewTestRisk(t, db, org, p.ID, "gone")
	reg := NewRiskRegister(db)
	require.NoError(t, reg.Delete(ctx, org, gone.ID))

	risks, err := reg.ListByProject(ctx, org, p.ID)
	require.NoError(t, err)
	require.Len(t, risks, 2)
	assert.Equal(t, "high", risks[0].Title)
	assert.Equal(t, "low", risks[1].Title)
}
