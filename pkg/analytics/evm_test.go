package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, name string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", name, want, got)
}

func TestComputeEVMIdentity(t *testing.T) {
	m, err := ComputeEVM(d("100"), d("100"), d("100"), d("100"))
	require.NoError(t, err)

	assertDecimal(t, "1.00", m.CPI, "cpi")
	assertDecimal(t, "1.00", m.SPI, "spi")
	assertDecimal(t, "100.00", m.EAC, "eac")
	assertDecimal(t, "0", m.ETC, "etc")
	assertDecimal(t, "0", m.VAC, "vac")
	assertDecimal(t, "0", m.SV, "sv")
	assertDecimal(t, "0", m.CV, "cv")
	assert.Equal(t, OnTrack, m.SchedulePerformance)
	assert.Equal(t, UnderBudget, m.CostPerformance)
}

func TestComputeEVMZeroGuards(t *testing.T) {
	m, err := ComputeEVM(decimal.Zero, decimal.Zero, decimal.Zero, d("500000"))
	require.NoError(t, err)

	assertDecimal(t, "1", m.SPI, "spi")
	assertDecimal(t, "1", m.CPI, "cpi")
	assertDecimal(t, "500000", m.EAC, "eac")
	assertDecimal(t, "500000", m.ETC, "etc")
	assertDecimal(t, "0", m.VAC, "vac")
}

func TestComputeEVMNoEarnedValueKeepsBudget(t *testing.T) {
	// spent money without earning any: CPI is 0, EAC falls back to BAC
	m, err := ComputeEVM(d("1000"), decimal.Zero, d("400"), d("5000"))
	require.NoError(t, err)

	assertDecimal(t, "0", m.CPI, "cpi")
	assertDecimal(t, "0", m.SPI, "spi")
	assertDecimal(t, "5000", m.EAC, "eac")
	assertDecimal(t, "4600", m.ETC, "etc")
	assertDecimal(t, "-1000", m.SV, "sv")
	assertDecimal(t, "-400", m.CV, "cv")
	assert.Equal(t, Behind, m.SchedulePerformance)
	assert.Equal(t, OverBudget, m.CostPerformance)
}

func TestComputeEVMProjectScenario(t *testing.T) {
	m, err := ComputeEVM(d("3400000"), d("3200000"), d("3200000"), d("8500000"))
	require.NoError(t, err)

	assertDecimal(t, "1.00", m.CPI, "cpi")
	assertDecimal(t, "0.94", m.SPI, "spi")
	assertDecimal(t, "8500000", m.EAC, "eac")
	assertDecimal(t, "5300000", m.ETC, "etc")
	assertDecimal(t, "-200000", m.SV, "sv")
	assert.Equal(t, SlightlyBehind, m.SchedulePerformance)
	assert.Equal(t, UnderBudget, m.CostPerformance)

	// inputs are echoed unrounded
	assertDecimal(t, "3400000", m.PlannedValue, "pv")
	assertDecimal(t, "8500000", m.BAC, "bac")
}

func TestComputeEVMClassificationBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		pv, ev   string
		ac       string
		schedule SchedulePerformance
		cost     CostPerformance
	}{
		{"exactly on plan", "100", "100", "100", OnTrack, UnderBudget},
		{"ninety percent", "100", "90", "100", SlightlyBehind, SlightlyOver},
		{"just below ninety", "1000", "899", "1000", Behind, OverBudget},
		{"ahead and cheap", "100", "120", "80", OnTrack, UnderBudget},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ComputeEVM(d(tt.pv), d(tt.ev), d(tt.ac), d("1000"))
			require.NoError(t, err)
			assert.Equal(t, tt.schedule, m.SchedulePerformance)
			assert.Equal(t, tt.cost, m.CostPerformance)
		})
	}
}

func TestComputeEVMRejectsNegativeInput(t *testing.T) {
	_, err := ComputeEVM(d("-1"), d("1"), d("1"), d("1"))
	assert.ErrorIs(t, err, ErrInvalidNumericInput)

	_, err = ComputeEVM(d("1"), d("1"), d("1"), d("-100"))
	assert.ErrorIs(t, err, ErrInvalidNumericInput)
}


func TestCheckAmounts(t *testing.T) {
	assert.NoError(t, CheckAmounts(d("0"), d("1250.50")))
	assert.ErrorIs(t, CheckAmounts(d("10"), d("-0.01")), ErrInvalidNumericInput)
}
