package kpi

import (
	"fmt"
	"sort"

	"cost_intelligence/pkg/core/allocation"
	"cost_intelligence/pkg/core/dataset"
)

// tornadoDriver bumps one scenario parameter by +/- probePct around the
// scenario under analysis.
type tornadoDriver struct {
	name  string
	apply func(s dataset.Scenario, deltaPct float64) dataset.Scenario
}

var tornadoDrivers = []tornadoDriver{
	{"EUR rate", func(s dataset.Scenario, d float64) dataset.Scenario {
		s.FXShockPct += d
		return s
	}},
	{"Overhead level", func(s dataset.Scenario, d float64) dataset.Scenario {
		s.LedgerGrowthPct += d
		return s
	}},
	{"Salary level", func(s dataset.Scenario, d float64) dataset.Scenario {
		s.SalaryGrowthPct += d
		return s
	}},
	{"Production volume", func(s dataset.Scenario, d float64) dataset.Scenario {
		s.VolumeShiftPct += d
		return s
	}},
}

// Tornado re-runs the allocation with each cost driver bumped down and up by
// probePct and ranks drivers by the swing they cause in the volume-weighted
// average unit cost. Entries come back sorted, largest swing first.
func Tornado(ds *dataset.Dataset, scenario dataset.Scenario, probePct float64) ([]TornadoEntry, error) {
	unitCost := func(s dataset.Scenario) (float64, error) {
		res, err := allocation.Run(ds, s)
		if err != nil {
			return 0, err
		}
		return WeightedUnitCost(ProductKPIs(ds, res, s)), nil
	}

	base, err := unitCost(scenario)
	if err != nil {
		return nil, fmt.Errorf("tornado base run failed: %w", err)
	}

	out := make([]TornadoEntry, 0, len(tornadoDrivers))
	for _, drv := range tornadoDrivers {
		low, err := unitCost(drv.apply(scenario, -probePct))
		if err != nil {
			return nil, fmt.Errorf("tornado low run for %s failed: %w", drv.name, err)
		}
		high, err := unitCost(drv.apply(scenario, probePct))
		if err != nil {
			return nil, fmt.Errorf("tornado high run for %s failed: %w", drv.name, err)
		}

		entry := TornadoEntry{Driver: drv.name, Base: base, Low: low, High: high}
		swingLow := base - low
		if swingLow < 0 {
			swingLow = -swingLow
		}
		swingHigh := high - base
		if swingHigh < 0 {
			swingHigh = -swingHigh
		}
		entry.SwingAbs = swingLow
		if swingHigh > entry.SwingAbs {
			entry.SwingAbs = swingHigh
		}
		out = append(out, entry)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SwingAbs > out[j].SwingAbs })
	return out, nil
}
