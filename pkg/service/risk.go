package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ppmlab/atlas/dao/model"
	"github.com/ppmlab/atlas/pkg/analytics"
	"github.com/ppmlab/atlas/pkg/store"
)

const (
	columnProbability = "probability"
	columnImpact      = "impact"
	columnRiskScore   = "risk_score"
)

// RiskRegister writes risks so that risk_score always matches the stored
// probability and impact.
type RiskRegister struct {
	risks    *store.Store[model.Risk, *model.Risk]
	projects *store.Store[model.Project, *model.Project]
}

func NewRiskRegister(db *gorm.DB) *RiskRegister {
	return &RiskRegister{
		risks:    store.New[model.Risk](db),
		projects: store.New[model.Project](db),
	}
}

// ListByProject returns the live risks of a project, highest score first.
func (r *RiskRegister) ListByProject(ctx context.Context, org, projectID uuid.UUID) ([]model.Risk, error) {
	return r.risks.FindMany(ctx, org, store.Filter{"project_id": projectID},
		store.OrderBy("risk_score desc"), store.OrderBy("created_at"))
}

func (r *RiskRegister) Get(ctx context.Context, org, id uuid.UUID) (*model.Risk, error) {
	return r.risks.FindByID(ctx, org, id)
}

// Create scores risk and inserts it under projectID. Any score set by the
// caller is replaced.
func (r *RiskRegister) Create(ctx context.Context, org, projectID uuid.UUID, risk *model.Risk) error {
	if _, err := r.projects.FindByID(ctx, org, projectID, store.Select("id")); err != nil {
		return err
	}
	if risk.Probability == "" {
		risk.Probability = model.ProbabilityMedium
	}
	if risk.Impact == "" {
		risk.Impact = model.ImpactMedium
	}
	if risk.Status == "" {
		risk.Status = model.RiskOpen
	}
	risk.ProjectID = projectID
	risk.RiskScore = analytics.ScoreRisk(risk.Probability, risk.Impact).Score
	return r.risks.Create(ctx, org, risk)
}

// Update applies patch and recomputes risk_score when probability or impact
// is part of it. A risk_score in the patch is ignored.
func (r *RiskRegister) Update(ctx context.Context, org, id uuid.UUID, patch map[string]any) (*model.Risk, error) {
	current, err := r.risks.FindByID(ctx, org, id)
	if err != nil {
		return nil, err
	}

	delete(patch, columnRiskScore)
	p, hasP := patch[columnProbability]
	i, hasI := patch[columnImpact]
	if hasP || hasI {
		probability, impact := current.Probability, current.Impact
		if hasP {
			probability = model.RiskProbability(enumString(p))
			patch[columnProbability] = probability
		}
		if hasI {
			impact = model.RiskImpact(enumString(i))
			patch[columnImpact] = impact
		}
		patch[columnRiskScore] = analytics.ScoreRisk(probability, impact).Score
	}

	if err := r.risks.Update(ctx, org, id, patch); err != nil {
		return nil, err
	}
	return r.risks.FindByID(ctx, org, id)
}

func (r *RiskRegister) Delete(ctx context.Context, org, id uuid.UUID) error {
	return r.risks.Delete(ctx, org, id)
}

// Rescore recomputes risk_score for every live risk of org and returns how
// many rows were out of date.
func (r *RiskRegister) Rescore(ctx context.Context, org uuid.UUID) (int, error) {
	risks, err := r.risks.FindMany(ctx, org, store.Filter{}, store.Select("id", "probability", "impact", "risk_score"))
	if err != nil {
		return 0, err
	}
	fixed := 0
	for i := range risks {
		score := analytics.ScoreRisk(risks[i].Probability, risks[i].Impact).Score
		if score == risks[i].RiskScore {
			continue
		}
		if err := r.risks.Update(ctx, org, risks[i].ID, map[string]any{columnRiskScore: score}); err != nil {
			return fixed, fmt.Errorf("rescore risk %s: %w", risks[i].ID, err)
		}
		fixed++
	}
	return fixed, nil
}

func enumString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	case model.RiskProbability:
		return string(s)
	case model.RiskImpact:
		return string(s)
	case *string:
		if s != nil {
			return *s
		}
	}
	return ""
}
