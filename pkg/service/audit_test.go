package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/testutil"
)

func TestAuditRecordAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	other := testutil.NewTestOrganization(t, db, "globex").ID
	user := testutil.NewTestUser(t, db, org, "pm@acme.test")
	p := testutil.NewTestProject(t, db, org, "p")
	audit := NewAuditLog(db)

	require.NoError(t, audit.Record(ctx, org, Entry{
		UserID:     &user.ID,
		Action:     model.AuditCreate,
		EntityType: model.KindProject,
		EntityID:   &p.ID,
		NewValues:  map[string]any{"name": "p"},
		IPAddress:  "10.0.0.1",
	}))
	require.NoError(t, audit.Record(ctx, org, Entry{
		UserID:     &user.ID,
		Action:     model.AuditUpdate,
		EntityType: model.KindRisk,
		OldValues:  map[string]any{"impact": "LOW"},
		NewValues:  map[string]any{"impact": "HIGH"},
	}))
	require.NoError(t, audit.Record(ctx, other, Entry{Action: model.AuditLogin, EntityType: model.KindUser}))

	entries, err := audit.List(ctx, org, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	projects, err := audit.List(ctx, org, AuditFilter{EntityType: model.KindProject})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, model.AuditCreate, projects[0].Action)
	assert.Equal(t, ptr.To("10.0.0.1"), projects[0].IPAddress)

	var values map[string]any
	require.NoError(t, json.Unmarshal(projects[0].NewValues, &values))
	assert.Equal(t, "p", values["name"])
	assert.Empty(t, projects[0].OldValues)

	mine, err := audit.List(ctx, org, AuditFilter{UserID: &user.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)
}

func TestAuditListNewestFirst(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		row := &model.AuditLog{
			OrganizationID: org,
			Action:         model.AuditUpdate,
			EntityType:     model.KindTask,
			CreatedAt:      base.AddDate(0, 0, i),
		}
		require.NoError(t, db.Create(row).Error)
	}

	entries, err := NewAuditLog(db).List(ctx, org, AuditFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.True(t, entries[0].CreatedAt.After(entries[1].CreatedAt))
	assert.True(t, entries[1].CreatedAt.After(entries[2].CreatedAt))
}

func TestAuditPurgeAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	acme := testutil.NewTestOrganization(t, db, "acme")
	globex := testutil.NewTestOrganization(t, db, "globex")
	testutil.SoftDelete(t, db, globex)

	cutoff := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	insert := func(org *model.Organization, at time.Time) {
		require.NoError(t, db.Create(&model.AuditLog{
			OrganizationID: org.ID,
			Action:         model.AuditDelete,
			EntityType:     model.KindDocument,
			CreatedAt:      at,
		}).Error)
	}
	insert(acme, cutoff.AddDate(0, -2, 0))
	insert(acme, cutoff.AddDate(0, 0, 3))
	insert(globex, cutoff.AddDate(-1, 0, 0))

	n, err := NewAuditLog(db).PurgeAll(ctx, cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var left []model.AuditLog
	require.NoError(t, db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, acme.ID, left[0].OrganizationID)
}
