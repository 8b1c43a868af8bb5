package analytics

import (
	"github.com/ppmlab/atlas/dao/model"
)

type RiskBand string

const (
	BandCritical RiskBand = "CRITICAL"
	BandHigh     RiskBand = "HIGH"
	BandMedium   RiskBand = "MEDIUM"
	BandLow      RiskBand = "LOW"
)

// Weight used for a rating outside the known scale.
const defaultWeight = 3

var probabilityWeights = map[model.RiskProbability]int{
	model.ProbabilityVeryLow:  1,
	model.ProbabilityLow:      2,
	model.ProbabilityMedium:   3,
	model.ProbabilityHigh:     4,
	model.ProbabilityVeryHigh: 5,
}

var impactWeights = map[model.RiskImpact]int{
	model.ImpactVeryLow:  1,
	model.ImpactLow:      2,
	model.ImpactMedium:   3,
	model.ImpactHigh:     4,
	model.ImpactCritical: 5,
}

// RiskScore is a probability x impact product and its band.
type RiskScore struct {
	Score int      `json:"score"`
	Band  RiskBand `json:"band"`
}

// ProbabilityWeight maps a probability to 1..5; unknown values count as MEDIUM.
func ProbabilityWeight(p model.RiskProbability) int {
	if w, ok := probabilityWeights[p]; ok {
		return w
	}
	return defaultWeight
}

// ImpactWeight maps an impact to 1..5; unknown values count as MEDIUM.
func ImpactWeight(i model.RiskImpact) int {
	if w, ok := impactWeights[i]; ok {
		return w
	}
	return defaultWeight
}

func ScoreRisk(p model.RiskProbability, i model.RiskImpact) RiskScore {
	score := ProbabilityWeight(p) * ImpactWeight(i)
	return RiskScore{Score: score, Band: BandOf(score)}
}

// BandOf classifies a score: CRITICAL >= 20, HIGH >= 12, MEDIUM >= 6, else LOW.
func BandOf(score int) RiskBand {
	switch {
	case score >= 20:
		return BandCritical
	case score >= 12:
		return BandHigh
	case score >= 6:
		return BandMedium
	default:
		return BandLow
	}
}
