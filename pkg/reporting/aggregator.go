// Package reporting assembles dashboards from tenant-scoped reads.
//
// Each report fetches its rows level by level without a wrapping transaction,
// so a write landing between two reads can show up in one level only.
package reporting

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/analytics"
	"github.com/ppmlab/atlas/pkg/monitor"
	"github.com/ppmlab/atlas/pkg/store"
)

const defaultTopRisks = 10

type Aggregator struct {
	portfolios  *store.Store[model.Portfolio, *model.Portfolio]
	programs    *store.Store[model.Program, *model.Program]
	projects    *store.Store[model.Project, *model.Project]
	risks       *store.Store[model.Risk, *model.Risk]
	budgets     *store.Store[model.Budget, *model.Budget]
	resources   *store.Store[model.Resource, *model.Resource]
	assignments *store.Store[model.ResourceAssignment, *model.ResourceAssignment]
	users       *store.Store[model.User, *model.User]

	topRisks int
	log      logr.Logger
}

type Option func(*Aggregator)

// WithTopRisks sets how many open risks the executive dashboard lists.
func WithTopRisks(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topRisks = n
		}
	}
}

func WithLogger(log logr.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

func NewAggregator(db *gorm.DB, opts ...Option) *Aggregator {
	a := &Aggregator{
		portfolios:  store.New[model.Portfolio](db),
		programs:    store.New[model.Program](db),
		projects:    store.New[model.Project](db),
		risks:       store.New[model.Risk](db),
		budgets:     store.New[model.Budget](db),
		resources:   store.New[model.Resource](db),
		assignments: store.New[model.ResourceAssignment](db),
		users:       store.New[model.User](db),
		topRisks:    defaultTopRisks,
		log:         logr.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func ids[T any](rows []T, id func(T) uuid.UUID) []uuid.UUID {
	return lo.Map(rows, func(r T, _ int) uuid.UUID { return id(r) })
}

// GetPortfolioDashboard returns every portfolio of org with its programs,
// their projects and RAG counts.
func (a *Aggregator) GetPortfolioDashboard(ctx context.Context, org uuid.UUID) ([]analytics.PortfolioDashboard, error) {
	defer monitor.ObserveReport("portfolio_dashboard", time.Now())

	portfolios, err := a.portfolios.FindMany(ctx, org, store.Filter{}, store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	if len(portfolios) == 0 {
		return []analytics.PortfolioDashboard{}, nil
	}

	programs, err := a.programs.FindMany(ctx, org,
		store.Filter{"portfolio_id": ids(portfolios, func(p model.Portfolio) uuid.UUID { return p.ID })},
		store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}

	var projects []model.Project
	if len(programs) > 0 {
		projects, err = a.projects.FindMany(ctx, org,
			store.Filter{"program_id": ids(programs, func(p model.Program) uuid.UUID { return p.ID })},
			store.OrderBy("created_at"))
		if err != nil {
			return nil, err
		}
	}

	projectsByProgram := lo.GroupBy(projects, func(p model.Project) uuid.UUID { return *p.ProgramID })
	programsByPortfolio := lo.GroupBy(programs, func(p model.Program) uuid.UUID { return *p.PortfolioID })

	dashboards := make([]analytics.PortfolioDashboard, 0, len(portfolios))
	for i := range portfolios {
		nodes := lo.Map(programsByPortfolio[portfolios[i].ID], func(p model.Program, _ int) analytics.ProgramNode {
			children := projectsByProgram[p.ID]
			if children == nil {
				children = []model.Project{}
			}
			return analytics.ProgramNode{Program: p, Projects: children}
		})
		dashboards = append(dashboards, analytics.BuildPortfolioDashboard(portfolios[i], nodes))
	}
	a.log.V(4).Info("built portfolio dashboard", "org", org, "portfolios", len(portfolios), "projects", len(projects))
	return dashboards, nil
}

// ProgramWithSummary is a program, its projects and their totals.
type ProgramWithSummary struct {
	model.Program
	Projects []model.Project          `json:"projects"`
	Summary  analytics.ProgramSummary `json:"summary"`
}

func (a *Aggregator) GetProgramSummary(ctx context.Context, programID, org uuid.UUID) (*ProgramWithSummary, error) {
	defer monitor.ObserveReport("program_summary", time.Now())

	program, err := a.programs.FindByID(ctx, org, programID)
	if err != nil {
		return nil, err
	}
	projects, err := a.projects.FindMany(ctx, org, store.Filter{"program_id": programID}, store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	return &ProgramWithSummary{
		Program:  *program,
		Projects: projects,
		Summary:  analytics.SummarizeProgram(projects),
	}, nil
}

func (a *Aggregator) GetExecutiveDashboard(ctx context.Context, org uuid.UUID) (*analytics.ExecutiveDashboard, error) {
	defer monitor.ObserveReport("executive_dashboard", time.Now())

	// rows under a soft-deleted parent are left out along with the parent
	portfolios, err := a.portfolios.FindMany(ctx, org, store.Filter{}, store.Select("id"))
	if err != nil {
		return nil, err
	}
	programs, err := a.programs.FindMany(ctx, org, store.Filter{}, store.Select("id"),
		store.Where("(portfolio_id IS NULL OR portfolio_id IN ?)",
			ids(portfolios, func(p model.Portfolio) uuid.UUID { return p.ID })))
	if err != nil {
		return nil, err
	}
	projects, err := a.projects.FindMany(ctx, org, store.Filter{},
		store.Select("id", "rag_status", "status", "total_budget", "actual_cost", "percent_complete"),
		store.Where("(program_id IS NULL OR program_id IN ?)",
			ids(programs, func(p model.Program) uuid.UUID { return p.ID })))
	if err != nil {
		return nil, err
	}
	var risks []model.Risk
	if len(projects) > 0 {
		risks, err = a.risks.FindMany(ctx, org,
			store.Filter{"status": model.RiskOpen, "project_id": ids(projects, func(p model.Project) uuid.UUID { return p.ID })},
			store.OrderBy("risk_score desc"), store.OrderBy("created_at"), store.Limit(a.topRisks))
		if err != nil {
			return nil, err
		}
	}

	dash := analytics.BuildExecutiveDashboard(int64(len(portfolios)), int64(len(programs)), projects, risks)
	a.log.V(4).Info("built executive dashboard", "org", org, "projects", len(projects))
	return &dash, nil
}

// GetRiskMatrix returns the risks of a project ranked by score with their
// band counts and heatmap.
func (a *Aggregator) GetRiskMatrix(ctx context.Context, projectID, org uuid.UUID) (*analytics.RiskMatrix, error) {
	defer monitor.ObserveReport("risk_matrix", time.Now())

	if _, err := a.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return nil, err
	}
	risks, err := a.risks.FindMany(ctx, org, store.Filter{"project_id": projectID},
		store.OrderBy("risk_score desc"), store.OrderBy("created_at"))
	if err != nil {
		return nil, err
	}
	m := analytics.BuildRiskMatrix(risks)
	return &m, nil
}

// GetProjectEVM computes EVM from the stored snapshot of a project.
func (a *Aggregator) GetProjectEVM(ctx context.Context, projectID, org uuid.UUID) (*analytics.EVMMetrics, error) {
	p, err := a.projects.FindByID(ctx, org, projectID)
	if err != nil {
		return nil, err
	}
	m, err := analytics.ComputeEVM(p.PlannedValue, p.EarnedValue, p.ActualCost, p.TotalBudget)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

type BudgetReport struct {
	Budgets []model.Budget          `json:"budgets"`
	Summary analytics.BudgetSummary `json:"summary"`
}

func (a *Aggregator) GetBudgetSummary(ctx context.Context, projectID, org uuid.UUID) (*BudgetReport, error) {
	if _, err := a.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return nil, err
	}
	budgets, err := a.budgets.FindMany(ctx, org, store.Filter{"project_id": projectID},
		store.OrderBy("budget_type"), store.OrderBy("fiscal_year"))
	if err != nil {
		return nil, err
	}
	return &BudgetReport{Budgets: budgets, Summary: analytics.SummarizeBudgets(budgets)}, nil
}

// GetResourceCapacity reports the load of every active resource over [start, end].
func (a *Aggregator) GetResourceCapacity(ctx context.Context, org uuid.UUID, start, end time.Time) ([]analytics.Capacity, error) {
	defer monitor.ObserveReport("resource_capacity", time.Now())

	resources, err := a.resources.FindMany(ctx, org, store.Filter{"is_active": true}, store.OrderBy("name"))
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return []analytics.Capacity{}, nil
	}
	assignments, err := a.assignments.FindMany(ctx, org,
		store.Filter{"resource_id": ids(resources, func(r model.Resource) uuid.UUID { return r.ID })})
	if err != nil {
		return nil, err
	}
	return lo.Map(resources, func(r model.Resource, _ int) analytics.Capacity {
		return analytics.ComputeCapacity(r, assignments, start, end)
	}), nil
}

type OrganizationStats struct {
	Portfolios  int64 `json:"portfolios"`
	Programs    int64 `json:"programs"`
	Projects    int64 `json:"projects"`
	ActiveUsers int64 `json:"activeUsers"`
}

func (a *Aggregator) GetOrganizationStats(ctx context.Context, org uuid.UUID) (*OrganizationStats, error) {
	var (
		stats OrganizationStats
		err   error
	)
	if stats.Portfolios, err = a.portfolios.Count(ctx, org, store.Filter{}); err != nil {
		return nil, err
	}
	if stats.Programs, err = a.programs.Count(ctx, org, store.Filter{}); err != nil {
		return nil, err
	}
	if stats.Projects, err = a.projects.Count(ctx, org, store.Filter{}); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = a.users.Count(ctx, org, store.Filter{"is_active": true}); err != nil {
		return nil, err
	}
	return &stats, nil
}
