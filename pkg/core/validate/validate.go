// Package validate provides reusable reconciliation utilities for the cost
// model. These functions can be called from tests, API handlers, or engine
// code to verify that allocation runs conserve cost and to compute derived
// trend metrics.
package validate

import (
	"fmt"
	"math"
)

// =============================================================================
// PERIOD-OVER-PERIOD CALCULATIONS
// =============================================================================

// ChangeResult holds the result of a period-over-period calculation.
type ChangeResult struct {
	CurrentPeriod string
	PriorPeriod   string
	CurrentValue  float64
	PriorValue    float64
	ChangeAbs     float64 // Absolute change
	ChangePct     float64 // Percentage change
	Label         string  // e.g. "Electricity", "Unit Cost ALPHA"
}

// CalculateChange calculates percentage change between two values:
// (current - prior) / prior * 100.
func CalculateChange(current, prior float64) float64 {
	if prior == 0 {
		if current == 0 {
			return 0
		}
		return math.Inf(1) // Infinite growth from zero
	}
	return (current - prior) / prior * 100
}

// ChangeFromMap calculates period-over-period change from a period->value map.
func ChangeFromMap(values map[string]float64, currentPeriod, priorPeriod, label string) (*ChangeResult, error) {
	current, okCur := values[currentPeriod]
	prior, okPri := values[priorPeriod]

	if !okCur {
		return nil, fmt.Errorf("missing data for period %s", currentPeriod)
	}
	if !okPri {
		return nil, fmt.Errorf("missing data for period %s", priorPeriod)
	}

	return &ChangeResult{
		CurrentPeriod: currentPeriod,
		PriorPeriod:   priorPeriod,
		CurrentValue:  current,
		PriorValue:    prior,
		ChangeAbs:     current - prior,
		ChangePct:     CalculateChange(current, prior),
		Label:         label,
	}, nil
}

// =============================================================================
// COST CONSERVATION
// =============================================================================

// ConservationCheck verifies Input = Allocated + Unabsorbed for one period of
// an allocation run. The step-down method moves cost around; it must never
// create or destroy it.
type ConservationCheck struct {
	PeriodID   string
	Input      float64
	Allocated  float64
	Unabsorbed float64
	Difference float64
	IsBalanced bool
	Tolerance  float64
}

// CheckConservation validates Input = Allocated + Unabsorbed within tolerance.
func CheckConservation(periodID string, input, allocated, unabsorbed, tolerance float64) *ConservationCheck {
	diff := input - (allocated + unabsorbed)
	return &ConservationCheck{
		PeriodID:   periodID,
		Input:      input,
		Allocated:  allocated,
		Unabsorbed: unabsorbed,
		Difference: diff,
		IsBalanced: math.Abs(diff) <= tolerance,
		Tolerance:  tolerance,
	}
}

// =============================================================================
// DISPERSION
// =============================================================================

// Volatility returns the coefficient of variation of a series as a
// percentage: stddev / mean * 100. Zero or single-point series return 0.
func Volatility(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	if mean == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	stddev := math.Sqrt(sq / float64(len(values)))
	return stddev / math.Abs(mean) * 100
}

// =============================================================================
// OUTLIER DETECTION
// =============================================================================

// OutlierCheck identifies suspicious values in a cost series.
type OutlierCheck struct {
	Item       string
	Value      float64
	PriorValue float64
	ChangePct  float64
	IsOutlier  bool
	Reason     string
	Threshold  float64
}

// CheckForOutlier flags a cost movement as suspicious when it drops to zero
// or swings beyond the threshold.
func CheckForOutlier(item string, current, prior, thresholdPct float64) *OutlierCheck {
	changePct := CalculateChange(current, prior)

	check := &OutlierCheck{
		Item:       item,
		Value:      current,
		PriorValue: prior,
		ChangePct:  changePct,
		Threshold:  thresholdPct,
	}

	if current == 0 && prior > 0 {
		check.IsOutlier = true
		check.Reason = "Value dropped to zero (likely missing posting)"
		return check
	}

	if math.Abs(changePct) > thresholdPct {
		check.IsOutlier = true
		check.Reason = fmt.Sprintf("Change of %.1f%% exceeds threshold of %.1f%%", changePct, thresholdPct)
	}

	return check
}
