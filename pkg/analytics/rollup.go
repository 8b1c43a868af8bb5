package analytics

import (
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/ppmlab/atlas/dao/model"
)

var hundred = decimal.NewFromInt(100)

// RAGDistribution counts projects by health status.
type RAGDistribution struct {
	Green int `json:"green"`
	Amber int `json:"amber"`
	Red   int `json:"red"`
}

func CountRAG(projects []model.Project) RAGDistribution {
	var d RAGDistribution
	for i := range projects {
		switch projects[i].RAGStatus {
		case model.RAGGreen:
			d.Green++
		case model.RAGAmber:
			d.Amber++
		case model.RAGRed:
			d.Red++
		}
	}
	return d
}

func sumBudget(projects []model.Project) (budget, actual decimal.Decimal) {
	budget, actual = decimal.Zero, decimal.Zero
	for i := range projects {
		budget = budget.Add(projects[i].TotalBudget)
		actual = actual.Add(projects[i].ActualCost)
	}
	return budget, actual
}

func meanComplete(projects []model.Project) float64 {
	if len(projects) == 0 {
		return 0
	}
	total := lo.SumBy(projects, func(p model.Project) int { return p.PercentComplete })
	return float64(total) / float64(len(projects))
}

// ProgramSummary totals the projects of one program.
type ProgramSummary struct {
	TotalBudget decimal.Decimal `json:"totalBudget"`
	ActualCost  decimal.Decimal `json:"actualCost"`
	AvgComplete float64         `json:"avgComplete"`
}

// SummarizeProgram sums budget and actual cost and averages completion.
// A program without projects averages to 0.
func SummarizeProgram(projects []model.Project) ProgramSummary {
	budget, actual := sumBudget(projects)
	return ProgramSummary{TotalBudget: budget, ActualCost: actual, AvgComplete: meanComplete(projects)}
}

// ProgramNode is a program with its live projects.
type ProgramNode struct {
	model.Program
	Projects []model.Project `json:"projects"`
}

// PortfolioDashboard is one portfolio with project counts across its programs.
type PortfolioDashboard struct {
	model.Portfolio
	Programs      []ProgramNode `json:"programs"`
	TotalProjects int           `json:"totalProjects"`
	RedProjects   int           `json:"redProjects"`
	AmberProjects int           `json:"amberProjects"`
	GreenProjects int           `json:"greenProjects"`
}

func BuildPortfolioDashboard(portfolio model.Portfolio, programs []ProgramNode) PortfolioDashboard {
	projects := lo.FlatMap(programs, func(p ProgramNode, _ int) []model.Project { return p.Projects })
	rag := CountRAG(projects)
	if programs == nil {
		programs = []ProgramNode{}
	}
	return PortfolioDashboard{
		Portfolio:     portfolio,
		Programs:      programs,
		TotalProjects: len(projects),
		RedProjects:   rag.Red,
		AmberProjects: rag.Amber,
		GreenProjects: rag.Green,
	}
}

// ExecutiveSummary is the headline block of the organization dashboard.
type ExecutiveSummary struct {
	Portfolios        int64           `json:"portfolios"`
	Programs          int64           `json:"programs"`
	Projects          int64           `json:"projects"`
	TotalBudget       decimal.Decimal `json:"totalBudget"`
	TotalActualCost   decimal.Decimal `json:"totalActualCost"`
	BudgetUtilization int64           `json:"budgetUtilization"` // percent, rounded
	AvgCompletion     int64           `json:"avgCompletion"`     // percent, rounded
}

type ExecutiveDashboard struct {
	Summary         ExecutiveSummary `json:"summary"`
	RAGDistribution RAGDistribution  `json:"ragDistribution"`
	TopRisks        []model.Risk     `json:"topRisks"`
}

// BuildExecutiveDashboard assembles the organization view from entity counts,
// every live project and the already ranked open risks.
func BuildExecutiveDashboard(portfolios, programs int64, projects []model.Project, topRisks []model.Risk) ExecutiveDashboard {
	budget, actual := sumBudget(projects)
	utilization := int64(0)
	if budget.IsPositive() {
		utilization = actual.Div(budget).Mul(hundred).Round(0).IntPart()
	}
	if topRisks == nil {
		topRisks = []model.Risk{}
	}
	return ExecutiveDashboard{
		Summary: ExecutiveSummary{
			Portfolios:        portfolios,
			Programs:          programs,
			Projects:          int64(len(projects)),
			TotalBudget:       budget,
			TotalActualCost:   actual,
			BudgetUtilization: utilization,
			AvgCompletion:     decimal.NewFromFloat(meanComplete(projects)).Round(0).IntPart(),
		},
		RAGDistribution: CountRAG(projects),
		TopRisks:        topRisks,
	}
}

// RiskSummary buckets risks by band and by status.
type RiskSummary struct {
	Critical  int `json:"critical"`
	High      int `json:"high"`
	Medium    int `json:"medium"`
	Low       int `json:"low"`
	Open      int `json:"open"`
	Mitigated int `json:"mitigated"`
}

// Heatmap counts active risks on a probability x impact grid. Rows follow
// model.RiskProbabilities and columns model.RiskImpacts, least severe first.
type Heatmap [5][5]int

type RiskMatrix struct {
	Risks   []model.Risk `json:"risks"`
	Summary RiskSummary  `json:"summary"`
	Heatmap Heatmap      `json:"heatmap"`
}

// BuildRiskMatrix classifies risks by their stored score. The heatmap leaves
// out CLOSED and MITIGATED risks.
func BuildRiskMatrix(risks []model.Risk) RiskMatrix {
	m := RiskMatrix{Risks: risks}
	if m.Risks == nil {
		m.Risks = []model.Risk{}
	}
	for i := range risks {
		r := &risks[i]
		switch BandOf(r.RiskScore) {
		case BandCritical:
			m.Summary.Critical++
		case BandHigh:
			m.Summary.High++
		case BandMedium:
			m.Summary.Medium++
		default:
			m.Summary.Low++
		}
		switch r.Status {
		case model.RiskOpen:
			m.Summary.Open++
		case model.RiskMitigated:
			m.Summary.Mitigated++
		}
		if r.Status == model.RiskClosed || r.Status == model.RiskMitigated {
			continue
		}
		m.Heatmap[ProbabilityWeight(r.Probability)-1][ImpactWeight(r.Impact)-1]++
	}
	return m
}

// BudgetSummary totals the budget lines of a project.
type BudgetSummary struct {
	TotalPlanned  decimal.Decimal `json:"totalPlanned"`
	TotalActual   decimal.Decimal `json:"totalActual"`
	TotalForecast decimal.Decimal `json:"totalForecast"`
	Capex         decimal.Decimal `json:"capex"` // planned CAPEX
	Opex          decimal.Decimal `json:"opex"`  // planned OPEX
}

func SummarizeBudgets(budgets []model.Budget) BudgetSummary {
	s := BudgetSummary{
		TotalPlanned:  decimal.Zero,
		TotalActual:   decimal.Zero,
		TotalForecast: decimal.Zero,
		Capex:         decimal.Zero,
		Opex:          decimal.Zero,
	}
	for i := range budgets {
		b := &budgets[i]
		s.TotalPlanned = s.TotalPlanned.Add(b.PlannedAmount)
		s.TotalActual = s.TotalActual.Add(b.ActualAmount)
		s.TotalForecast = s.TotalForecast.Add(b.ForecastAmount)
		switch b.BudgetType {
		case model.BudgetCapex:
			s.Capex = s.Capex.Add(b.PlannedAmount)
		case model.BudgetOpex:
			s.Opex = s.Opex.Add(b.PlannedAmount)
		}
	}
	return s
}

// Capacity is the load of one resource over a period.
type Capacity struct {
	Resource          model.Resource             `json:"resource"`
	Assignments       []model.ResourceAssignment `json:"assignments"`
	TotalAllocation   int                        `json:"totalAllocation"`
	AvailableCapacity int                        `json:"availableCapacity"`
	IsOverAllocated   bool                       `json:"isOverAllocated"`
}

// ComputeCapacity sums the allocation of assignments overlapping [start, end].
func ComputeCapacity(resource model.Resource, assignments []model.ResourceAssignment, start, end time.Time) Capacity {
	overlapping := lo.Filter(assignments, func(a model.ResourceAssignment, _ int) bool {
		return a.ResourceID == resource.ID && a.Overlaps(start, end)
	})
	total := lo.SumBy(overlapping, func(a model.ResourceAssignment) int { return a.AllocationPercent })
	return Capacity{
		Resource:          resource,
		Assignments:       overlapping,
		TotalAllocation:   total,
		AvailableCapacity: max(0, resource.AvailabilityPercent-total),
		IsOverAllocated:   total > 100,
	}
}
