package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppmlab/atlas/dao/model"
)

func TestScoreRisk(t *testing.T) {
	tests := []struct {
		p     model.RiskProbability
		i     model.RiskImpact
		score int
		band  RiskBand
	}{
		{model.ProbabilityHigh, model.ImpactHigh, 16, BandHigh},
		{model.ProbabilityVeryHigh, model.ImpactCritical, 25, BandCritical},
		{model.ProbabilityVeryLow, model.ImpactVeryLow, 1, BandLow},
		{model.ProbabilityMedium, model.ImpactMedium, 9, BandMedium},
		{model.ProbabilityMedium, model.ImpactCritical, 15, BandHigh},
		{model.ProbabilityHigh, model.ImpactCritical, 20, BandCritical},
		{model.ProbabilityLow, model.ImpactMedium, 6, BandMedium},
		{model.ProbabilityLow, model.ImpactLow, 4, BandLow},
	}
	for _, tt := range tests {
		got := ScoreRisk(tt.p, tt.i)
		assert.Equal(t, tt.score, got.Score, "%s x %s", tt.p, tt.i)
		assert.Equal(t, tt.band, got.Band, "%s x %s", tt.p, tt.i)
	}
}

func TestScoreRiskUnknownValuesCountAsMedium(t *testing.T) {
	assert.Equal(t, 3, ProbabilityWeight("ALMOST_CERTAIN"))
	assert.Equal(t, 3, ImpactWeight(""))
	assert.Equal(t, RiskScore{Score: 12, Band: BandHigh}, ScoreRisk("unknown", model.ImpactHigh))
}

func TestBandOfThresholds(t *testing.T) {
	assert.Equal(t, BandLow, BandOf(5))
	assert.Equal(t, BandMedium, BandOf(6))
	assert.Equal(t, BandMedium, BandOf(11))
	assert.Equal(t, BandHigh, BandOf(12))
	assert.Equal(t, BandHigh, BandOf(19))
	assert.Equal(t, BandCritical, BandOf(20))
}
