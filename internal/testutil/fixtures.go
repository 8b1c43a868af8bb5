package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
)

// NewTestOrganization inserts an active organization.
func NewTestOrganization(t *testing.T, db *gorm.DB, name string) *model.Organization {
	t.Helper()
	org := &model.Organization{Name: name, Slug: name + "-" + uuid.NewString()[:8], IsActive: true}
	require.NoError(t, db.Create(org).Error)
	return org
}

type UserOption func(*model.User)

func WithRole(role model.UserRole) UserOption {
	return func(u *model.User) { u.Role = role }
}

func WithPasswordHash(hash string) UserOption {
	return func(u *model.User) { u.PasswordHash = &hash }
}

func NewTestUser(t *testing.T, db *gorm.DB, org uuid.UUID, email string, opts ...UserOption) *model.User {
	t.Helper()
	u := &model.User{Email: email, FirstName: "Test", LastName: "User", Role: model.RoleProjectManager, IsActive: true}
	u.OrganizationID = org
	for _, opt := range opts {
		opt(u)
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func NewTestPortfolio(t *testing.T, db *gorm.DB, org uuid.UUID, name string) *model.Portfolio {
	t.Helper()
	p := &model.Portfolio{Name: name, RAGStatus: model.RAGGreen}
	p.OrganizationID = org
	require.NoError(t, db.Create(p).Error)
	return p
}

func NewTestProgram(t *testing.T, db *gorm.DB, org uuid.UUID, name string, portfolio *uuid.UUID) *model.Program {
	t.Helper()
	p := &model.Program{Name: name, PortfolioID: portfolio, Status: model.ProgramActive, RAGStatus: model.RAGGreen}
	p.OrganizationID = org
	require.NoError(t, db.Create(p).Error)
	return p
}

type ProjectOption func(*model.Project)

// WithFinancials sets budget at completion, actual cost, planned and earned value.
func WithFinancials(bac, ac, pv, ev int64) ProjectOption {
	return func(p *model.Project) {
		p.TotalBudget = decimal.NewFromInt(bac)
		p.ActualCost = decimal.NewFromInt(ac)
		p.PlannedValue = decimal.NewFromInt(pv)
		p.EarnedValue = decimal.NewFromInt(ev)
	}
}

func WithProgram(program uuid.UUID) ProjectOption {
	return func(p *model.Project) { p.ProgramID = &program }
}

func WithRAG(status model.RAGStatus) ProjectOption {
	return func(p *model.Project) { p.RAGStatus = status }
}

func WithPercentComplete(n int) ProjectOption {
	return func(p *model.Project) { p.PercentComplete = n }
}

func NewTestProject(t *testing.T, db *gorm.DB, org uuid.UUID, name string, opts ...ProjectOption) *model.Project {
	t.Helper()
	p := &model.Project{Code: "PRJ-" + uuid.NewString()[:6], Name: name, Status: model.ProjectActive, RAGStatus: model.RAGGreen}
	p.OrganizationID = org
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type RiskOption func(*model.Risk)

func WithRating(p model.RiskProbability, i model.RiskImpact, score int) RiskOption {
	return func(r *model.Risk) {
		r.Probability = p
		r.Impact = i
		r.RiskScore = score
	}
}

func WithRiskStatus(status model.RiskStatus) RiskOption {
	return func(r *model.Risk) { r.Status = status }
}

func NewTestRisk(t *testing.T, db *gorm.DB, org, project uuid.UUID, title string, opts ...RiskOption) *model.Risk {
	t.Helper()
	r := &model.Risk{
		ProjectID:   project,
		Title:       title,
		Probability: model.ProbabilityMedium,
		Impact:      model.ImpactMedium,
		RiskScore:   9,
		Status:      model.RiskOpen,
	}
	r.OrganizationID = org
	for _, opt := range opts {
		opt(r)
	}
	require.NoError(t, db.Create(r).Error)
	return r
}

func NewTestBudget(
	t *testing.T, db *gorm.DB, org, project uuid.UUID, kind model.BudgetType, planned, actual, forecast int64,
) *model.Budget {
	t.Helper()
	b := &model.Budget{
		ProjectID:      project,
		BudgetType:     kind,
		Category:       "General",
		FiscalYear:     time.Now().Year(),
		PlannedAmount:  decimal.NewFromInt(planned),
		ActualAmount:   decimal.NewFromInt(actual),
		ForecastAmount: decimal.NewFromInt(forecast),
	}
	b.OrganizationID = org
	require.NoError(t, db.Create(b).Error)
	return b
}

func NewTestResource(t *testing.T, db *gorm.DB, org uuid.UUID, name string, availability int) *model.Resource {
	t.Helper()
	r := &model.Resource{Name: name, AvailabilityPercent: availability, IsActive: true}
	r.OrganizationID = org
	require.NoError(t, db.Create(r).Error)
	return r
}

func NewTestAssignment(
	t *testing.T, db *gorm.DB, org, resource, project uuid.UUID, start, end time.Time, percent int,
) *model.ResourceAssignment {
	t.Helper()
	a := &model.ResourceAssignment{
		ResourceID:        resource,
		ProjectID:         project,
		StartDate:         start,
		EndDate:           end,
		AllocationPercent: percent,
	}
	a.OrganizationID = org
	require.NoError(t, db.Create(a).Error)
	return a
}

// SoftDelete stamps deleted_at on a row without going through the store.
func SoftDelete(t *testing.T, db *gorm.DB, value any) {
	t.Helper()
	require.NoError(t, db.Model(value).Update("deleted_at", time.Now()).Error)
}
