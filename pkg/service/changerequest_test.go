package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/internal/testutil"
)

type recordingNotifier struct {
	decided []string
	to      []string
	err     error
}

func (n *recordingNotifier) ChangeRequestDecided(_ context.Context, cr *model.ChangeRequest, requester *model.User) error {
	n.decided = append(n.decided, cr.CRNumber+":"+string(cr.Status))
	n.to = append(n.to, requester.Email)
	return n.err
}

func fixedClock() time.Time {
	return time.Date(2026, time.October, 16, 9, 0, 0, 0, time.UTC)
}

func TestFormatCRNumber(t *testing.T) {
	assert.Equal(t, "CR-2026-001", FormatCRNumber(2026, 1))
	assert.Equal(t, "CR-2026-042", FormatCRNumber(2026, 42))
	assert.Equal(t, "CR-2027-1234", FormatCRNumber(2027, 1234))
}

func TestChangeRequestNumbering(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	other := testutil.NewTestProject(t, db, org, "other")
	requester := testutil.NewTestUser(t, db, org, "pm@acme.test")
	crs := NewChangeRequests(db, WithClock(fixedClock))

	first := &model.ChangeRequest{Title: "scope"}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, first))
	assert.Equal(t, "CR-2026-001", first.CRNumber)
	assert.Equal(t, model.CRSubmitted, first.Status)

	require.NoError(t, crs.Delete(ctx, org, first.ID))

	second := &model.ChangeRequest{Title: "budget", Status: model.CRApproved}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, second))
	assert.Equal(t, "CR-2026-002", second.CRNumber)
	assert.Equal(t, model.CRSubmitted, second.Status)

	elsewhere := &model.ChangeRequest{Title: "other"}
	require.NoError(t, crs.Create(ctx, org, other.ID, requester.ID, elsewhere))
	assert.Equal(t, "CR-2026-001", elsewhere.CRNumber)

	listed, err := crs.ListByProject(ctx, org, p.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, second.ID, listed[0].ID)
}

func TestChangeRequestNumberCollision(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	requester := testutil.NewTestUser(t, db, org, "pm@acme.test")
	crs := NewChangeRequests(db, WithClock(fixedClock))
	// takes a number the way a concurrent request would
	claim := func(number string) {
		t.Helper()
		cr := &model.ChangeRequest{ProjectID: p.ID, CRNumber: number, Title: number, RequestedByID: requester.ID}
		cr.OrganizationID = org
		require.NoError(t, db.Create(cr).Error)
	}

	claim("CR-2026-002")
	dup := &model.ChangeRequest{ProjectID: p.ID, CRNumber: "CR-2026-002", Title: "dup", RequestedByID: requester.ID}
	dup.OrganizationID = org
	assert.ErrorIs(t, db.Create(dup).Error, gorm.ErrDuplicatedKey)

	next := &model.ChangeRequest{Title: "scope"}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, next))
	assert.Equal(t, "CR-2026-003", next.CRNumber)

	claim("CR-2026-006")
	claim("CR-2026-007")
	claim("CR-2026-008")
	err := crs.Create(ctx, org, p.ID, requester.ID, &model.ChangeRequest{Title: "late"})
	assert.ErrorIs(t, err, ErrNumberTaken)

	var count int64
	require.NoError(t, db.Model(&model.ChangeRequest{}).Where("project_id = ?", p.ID).Count(&count).Error)
	assert.EqualValues(t, 5, count)
}

func TestChangeRequestApprove(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	requester := testutil.NewTestUser(t, db, org, "pm@acme.test")
	approver := testutil.NewTestUser(t, db, org, "pmo@acme.test", testutil.WithRole(model.RolePMO))
	notifier := &recordingNotifier{}
	crs := NewChangeRequests(db, WithClock(fixedClock), WithNotifier(notifier))

	cr := &model.ChangeRequest{Title: "scope"}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, cr))

	approved, err := crs.Approve(ctx, org, cr.ID, approver.ID)
	require.NoError(t, err)
	assert.Equal(t, model.CRApproved, approved.Status)
	require.NotNil(t, approved.ApprovedByID)
	assert.Equal(t, approver.ID, *approved.ApprovedByID)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, approved.ApprovedAt.Equal(fixedClock()))

	assert.Equal(t, []string{"CR-2026-001:APPROVED"}, notifier.decided)
	assert.Equal(t, []string{"pm@acme.test"}, notifier.to)

	_, err = crs.Approve(ctx, org, cr.ID, approver.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = crs.Reject(ctx, org, cr.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestChangeRequestReject(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	requester := testutil.NewTestUser(t, db, org, "pm@acme.test")
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	crs := NewChangeRequests(db, WithNotifier(notifier))

	cr := &model.ChangeRequest{Title: "scope"}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, cr))

	rejected, err := crs.Reject(ctx, org, cr.ID, "no budget")
	require.NoError(t, err, "notification failures do not fail the decision")
	assert.Equal(t, model.CRRejected, rejected.Status)
	require.NotNil(t, rejected.RejectionReason)
	assert.Equal(t, "no budget", *rejected.RejectionReason)
	assert.Nil(t, rejected.ApprovedByID)
	assert.Len(t, notifier.decided, 1)
}

func TestChangeRequestDraftCannotBeDecided(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	org := testutil.NewTestOrganization(t, db, "acme").ID
	p := testutil.NewTestProject(t, db, org, "p")
	requester := testutil.NewTestUser(t, db, org, "pm@acme.test")
	crs := NewChangeRequests(db)

	draft := &model.ChangeRequest{Title: "idea", Status: model.CRDraft}
	require.NoError(t, crs.Create(ctx, org, p.ID, requester.ID, draft))
	assert.Equal(t, model.CRDraft, draft.Status)

	_, err := crs.Approve(ctx, org, draft.ID, requester.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
