package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppmlab/atlas/dao/model"
)

func project(rag model.RAGStatus, budget, actual int64, complete int) model.Project {
	return model.Project{
		RAGStatus:       rag,
		TotalBudget:     decimal.NewFromInt(budget),
		ActualCost:      decimal.NewFromInt(actual),
		PercentComplete: complete,
	}
}

func TestSummarizeProgramWithoutProjects(t *testing.T) {
	s := SummarizeProgram(nil)
	assert.Zero(t, s.AvgComplete)
	assert.False(t, math.IsNaN(s.AvgComplete))
	assert.True(t, s.TotalBudget.IsZero())
	assert.True(t, s.ActualCost.IsZero())
}

func TestSummarizeProgram(t *testing.T) {
	s := SummarizeProgram([]model.Project{
		project(model.RAGGreen, 1000, 400, 50),
		project(model.RAGRed, 3000, 500, 25),
	})
	assertDecimal(t, "4000", s.TotalBudget, "budget")
	assertDecimal(t, "900", s.ActualCost, "actual")
	assert.InDelta(t, 37.5, s.AvgComplete, 1e-9)
}

func TestBuildPortfolioDashboard(t *testing.T) {
	programs := []ProgramNode{
		{Projects: []model.Project{project(model.RAGRed, 0, 0, 0), project(model.RAGGreen, 0, 0, 0)}},
		{Projects: []model.Project{project(model.RAGAmber, 0, 0, 0)}},
		{},
	}
	dash := BuildPortfolioDashboard(model.Portfolio{Name: "Growth"}, programs)
	assert.Equal(t, "Growth", dash.Name)
	assert.Equal(t, 3, dash.TotalProjects)
	assert.Equal(t, 1, dash.RedProjects)
	assert.Equal(t, 1, dash.AmberProjects)
	assert.Equal(t, 1, dash.GreenProjects)
	assert.Len(t, dash.Programs, 3)

	empty := BuildPortfolioDashboard(model.Portfolio{}, nil)
	assert.Zero(t, empty.TotalProjects)
	assert.NotNil(t, empty.Programs)
}

func TestBuildExecutiveDashboard(t *testing.T) {
	projects := []model.Project{
		project(model.RAGGreen, 1000, 333, 10),
		project(model.RAGAmber, 2000, 1000, 25),
		project(model.RAGGreen, 0, 0, 30),
	}
	risks := []model.Risk{{Title: "top", RiskScore: 25}}
	dash := BuildExecutiveDashboard(2, 4, projects, risks)

	assert.Equal(t, int64(2), dash.Summary.Portfolios)
	assert.Equal(t, int64(4), dash.Summary.Programs)
	assert.Equal(t, int64(3), dash.Summary.Projects)
	assertDecimal(t, "3000", dash.Summary.TotalBudget, "budget")
	assertDecimal(t, "1333", dash.Summary.TotalActualCost, "actual")
	// 1333 / 3000 = 44.43%
	assert.Equal(t, int64(44), dash.Summary.BudgetUtilization)
	// (10 + 25 + 30) / 3 = 21.67
	assert.Equal(t, int64(22), dash.Summary.AvgCompletion)
	assert.Equal(t, RAGDistribution{Green: 2, Amber: 1}, dash.RAGDistribution)
	assert.Equal(t, risks, dash.TopRisks)
}

func TestBuildExecutiveDashboardEmpty(t *testing.T) {
	dash := BuildExecutiveDashboard(0, 0, nil, nil)
	assert.Zero(t, dash.Summary.BudgetUtilization)
	assert.Zero(t, dash.Summary.AvgCompletion)
	assert.NotNil(t, dash.TopRisks)

	// spending against a zero budget does not divide by zero
	dash = BuildExecutiveDashboard(0, 0, []model.Project{project(model.RAGRed, 0, 500, 0)}, nil)
	assert.Zero(t, dash.Summary.BudgetUtilization)
}

func TestBuildRiskMatrix(t *testing.T) {
	risk := func(p model.RiskProbability, i model.RiskImpact, status model.RiskStatus) model.Risk {
		return model.Risk{Probability: p, Impact: i, RiskScore: ScoreRisk(p, i).Score, Status: status}
	}
	risks := []model.Risk{
		risk(model.ProbabilityVeryHigh, model.ImpactCritical, model.RiskOpen),  // 25
		risk(model.ProbabilityHigh, model.ImpactHigh, model.RiskOpen),          // 16
		risk(model.ProbabilityHigh, model.ImpactHigh, model.RiskMitigated),     // 16
		risk(model.ProbabilityMedium, model.ImpactMedium, model.RiskEscalated), // 9
		risk(model.ProbabilityLow, model.ImpactLow, model.RiskClosed),          // 4
	}
	m := BuildRiskMatrix(risks)

	assert.Equal(t, RiskSummary{Critical: 1, High: 2, Medium: 1, Low: 1, Open: 2, Mitigated: 1}, m.Summary)
	assert.Equal(t, 1, m.Heatmap[4][4])
	assert.Equal(t, 1, m.Heatmap[3][3], "mitigated risk is left out")
	assert.Equal(t, 1, m.Heatmap[2][2])
	assert.Equal(t, 0, m.Heatmap[1][1], "closed risk is left out")

	total := 0
	for _, row := range m.Heatmap {
		for _, c := range row {
			total += c
		}
	}
	assert.Equal(t, 3, total)
}

func TestBuildRiskMatrixUnknownRatingLandsInMiddle(t *testing.T) {
	m := BuildRiskMatrix([]model.Risk{{Probability: "??", Impact: "??", RiskScore: 9, Status: model.RiskOpen}})
	assert.Equal(t, 1, m.Heatmap[2][2])
}

func TestSummarizeBudgets(t *testing.T) {
	line := func(kind model.BudgetType, planned, actual, forecast int64) model.Budget {
		return model.Budget{
			BudgetType:     kind,
			PlannedAmount:  decimal.NewFromInt(planned),
			ActualAmount:   decimal.NewFromInt(actual),
			ForecastAmount: decimal.NewFromInt(forecast),
		}
	}
	s := SummarizeBudgets([]model.Budget{
		line(model.BudgetCapex, 1000, 200, 900),
		line(model.BudgetOpex, 500, 100, 600),
		line(model.BudgetCapex, 250, 0, 250),
	})
	assertDecimal(t, "1750", s.TotalPlanned, "planned")
	assertDecimal(t, "300", s.TotalActual, "actual")
	assertDecimal(t, "1750", s.TotalForecast, "forecast")
	assertDecimal(t, "1250", s.Capex, "capex")
	assertDecimal(t, "500", s.Opex, "opex")

	empty := SummarizeBudgets(nil)
	assert.True(t, empty.TotalPlanned.IsZero())
}

func TestComputeCapacity(t *testing.T) {
	day := func(n int) time.Time { return time.Date(2026, 3, n, 0, 0, 0, 0, time.UTC) }
	res := model.Resource{AvailabilityPercent: 80}
	res.ID = uuid.New()
	assign := func(start, end, percent int) model.ResourceAssignment {
		return model.ResourceAssignment{ResourceID: res.ID, StartDate: day(start), EndDate: day(end), AllocationPercent: percent}
	}
	assignments := []model.ResourceAssignment{
		assign(1, 10, 50),
		assign(5, 20, 60),
		assign(21, 30, 100), // outside the window
	}

	c := ComputeCapacity(res, assignments, day(8), day(12))
	require.Len(t, c.Assignments, 2)
	assert.Equal(t, 110, c.TotalAllocation)
	assert.True(t, c.IsOverAllocated)
	assert.Equal(t, 0, c.AvailableCapacity)

	c = ComputeCapacity(res, assignments, day(15), day(18))
	assert.Equal(t, 60, c.TotalAllocation)
	assert.False(t, c.IsOverAllocated)
	assert.Equal(t, 20, c.AvailableCapacity)
}
