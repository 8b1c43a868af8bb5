package notify

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/config"
)

type captured struct {
	to, subject, body string
}

func (c *captured) SendMessageTo(_ context.Context, to, subject, body string) error {
	c.to, c.subject, c.body = to, subject, body
	return nil
}

func requester() *model.User {
	return &model.User{Email: "pm@acme.test", FirstName: "Pat", LastName: "Morgan"}
}

func TestApprovedMail(t *testing.T) {
	out := &captured{}
	m := &Mailer{sender: out}
	cr := &model.ChangeRequest{
		CRNumber:       "CR-2026-007",
		Title:          "Add reporting module",
		Status:         model.CRApproved,
		ApprovedAt:     ptr.To(time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)),
		CostImpact:     decimal.RequireFromString("12500.5"),
		ScheduleImpact: 14,
	}

	require.NoError(t, m.ChangeRequestDecided(context.Background(), cr, requester()))
	assert.Equal(t, "pm@acme.test", out.to)
	assert.Equal(t, "[CR-2026-007] change request approved", out.subject)
	assert.Contains(t, out.body, "Hello Pat Morgan")
	assert.Contains(t, out.body, "was approved on 2026-10-16 09:30")
	assert.Contains(t, out.body, "Cost impact: 12500.50")
	assert.Contains(t, out.body, "Schedule impact: 14 days")
	assert.NotContains(t, out.body, "Reason")
}

func TestRejectedMail(t *testing.T) {
	out := &captured{}
	m := &Mailer{sender: out}
	cr := &model.ChangeRequest{
		CRNumber:        "CR-2026-008",
		Title:           "Extend pilot",
		Status:          model.CRRejected,
		RejectionReason: ptr.To("No budget left this quarter"),
	}

	require.NoError(t, m.ChangeRequestDecided(context.Background(), cr, requester()))
	assert.Equal(t, "[CR-2026-008] change request rejected", out.subject)
	assert.Contains(t, out.body, "Reason: No budget left this quarter")
	assert.NotContains(t, out.body, "Cost impact")
}

func TestNewMailerWithoutSMTP(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.IsType(t, logSender{}, m.sender)
	assert.NoError(t, m.ChangeRequestDecided(context.Background(), &model.ChangeRequest{Status: model.CRApproved}, requester()))
}
