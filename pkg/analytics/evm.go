// Package analytics holds the pure earned value, risk scoring and rollup
// computations. Nothing here touches storage; callers pass plain snapshots.
package analytics

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumericInput is returned when a monetary input is negative or not a number.
var ErrInvalidNumericInput = errors.New("invalid numeric input")

type SchedulePerformance string

const (
	OnTrack        SchedulePerformance = "ON_TRACK"
	SlightlyBehind SchedulePerformance = "SLIGHTLY_BEHIND"
	Behind         SchedulePerformance = "BEHIND"
)

type CostPerformance string

const (
	UnderBudget  CostPerformance = "UNDER_BUDGET"
	SlightlyOver CostPerformance = "SLIGHTLY_OVER"
	OverBudget   CostPerformance = "OVER_BUDGET"
)

const moneyPlaces = 2

var (
	one          = decimal.NewFromInt(1)
	warningIndex = decimal.NewFromFloat(0.9)
)

// EVMMetrics are the earned value indicators of one project snapshot.
// All derived values are rounded to two decimal places.
type EVMMetrics struct {
	PlannedValue        decimal.Decimal     `json:"plannedValue"`
	EarnedValue         decimal.Decimal     `json:"earnedValue"`
	ActualCost          decimal.Decimal     `json:"actualCost"`
	BAC                 decimal.Decimal     `json:"bac"`
	CPI                 decimal.Decimal     `json:"cpi"`
	SPI                 decimal.Decimal     `json:"spi"`
	EAC                 decimal.Decimal     `json:"eac"`
	ETC                 decimal.Decimal     `json:"etc"`
	VAC                 decimal.Decimal     `json:"vac"`
	SV                  decimal.Decimal     `json:"sv"`
	CV                  decimal.Decimal     `json:"cv"`
	SchedulePerformance SchedulePerformance `json:"schedulePerformance"`
	CostPerformance     CostPerformance     `json:"costPerformance"`
}

// ComputeEVM derives the EVM indicators from planned value, earned value,
// actual cost and budget at completion.
//
// A zero actual cost or planned value yields an index of 1, and a zero CPI
// leaves the estimate at completion equal to the budget. Negative inputs are
// rejected with ErrInvalidNumericInput.
func ComputeEVM(pv, ev, ac, bac decimal.Decimal) (EVMMetrics, error) {
	for name, v := range map[string]decimal.Decimal{"pv": pv, "ev": ev, "ac": ac, "bac": bac} {
		if v.IsNegative() {
			return EVMMetrics{}, fmt.Errorf("%s is negative: %w", name, ErrInvalidNumericInput)
		}
	}

	cpi := one
	if ac.IsPositive() {
		cpi = ev.Div(ac)
	}
	spi := one
	if pv.IsPositive() {
		spi = ev.Div(pv)
	}

	eac := bac
	switch {
	case cpi.IsZero():
	case ac.IsPositive():
		// BAC / (EV / AC) without the precision loss of dividing by a quotient.
		eac = bac.Mul(ac).Div(ev)
	default:
		eac = bac.Div(cpi)
	}

	return EVMMetrics{
		PlannedValue:        pv,
		EarnedValue:         ev,
		ActualCost:          ac,
		BAC:                 bac,
		CPI:                 cpi.Round(moneyPlaces),
		SPI:                 spi.Round(moneyPlaces),
		EAC:                 eac.Round(moneyPlaces),
		ETC:                 eac.Sub(ac).Round(moneyPlaces),
		VAC:                 bac.Sub(eac).Round(moneyPlaces),
		SV:                  ev.Sub(pv).Round(moneyPlaces),
		CV:                  ev.Sub(ac).Round(moneyPlaces),
		SchedulePerformance: classifySchedule(spi),
		CostPerformance:     classifyCost(cpi),
	}, nil
}

func classifySchedule(spi decimal.Decimal) SchedulePerformance {
	switch {
	case spi.GreaterThanOrEqual(one):
		return OnTrack
	case spi.GreaterThanOrEqual(warningIndex):
		return SlightlyBehind
	default:
		return Behind
	}
}

func classifyCost(cpi decimal.Decimal) CostPerformance {
	switch {
	case cpi.GreaterThanOrEqual(one):
		return UnderBudget
	case cpi.GreaterThanOrEqual(warningIndex):
		return SlightlyOver
	default:
		return OverBudget
	}
}

// CheckAmounts rejects negative monetary values.
func CheckAmounts(amounts ...decimal.Decimal) error {
	for _, a := range amounts {
		if a.IsNegative() {
			return fmt.Errorf("%s is negative: %w", a, ErrInvalidNumericInput)
		}
	}
	return nil
}
