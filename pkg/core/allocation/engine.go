package allocation

import (
	"fmt"
	"sort"

	"cost_intelligence/pkg/core/dataset"
)

// SettlementOrder computes the step-down settlement order over the cost-center
// rule graph. Centers with no incoming allocations settle first; remaining
// ties break by cost-center ID so the order is deterministic. A cycle in the
// rules is an error: classic step-down never revisits a settled center.
func SettlementOrder(centers []dataset.CostCenter, rules []dataset.StepDownRule) ([]string, error) {
	inDegree := make(map[string]int, len(centers))
	for _, c := range centers {
		inDegree[c.ID] = 0
	}
	outgoing := make(map[string][]string)
	for _, r := range rules {
		if r.Weight == 0 {
			continue
		}
		inDegree[r.ToCostCenter]++
		outgoing[r.FromCostCenter] = append(outgoing[r.FromCostCenter], r.ToCostCenter)
	}

	// Kahn's algorithm with a sorted ready set.
	var ready []string
	for id, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(centers))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		var released []string
		for _, to := range outgoing[id] {
			inDegree[to]--
			if inDegree[to] == 0 {
				released = append(released, to)
			}
		}
		sort.Strings(released)
		ready = append(ready, released...)
		sort.Strings(ready)
	}

	if len(order) != len(centers) {
		var stuck []string
		for id, deg := range inDegree {
			if deg > 0 {
				stuck = append(stuck, id)
			}
		}
		sort.Strings(stuck)
		return nil, fmt.Errorf("step-down rules contain a cycle involving %v", stuck)
	}
	return order, nil
}

// Run executes the allocation for one scenario across all periods.
//
// Per period:
//  1. Facts convert to base currency at the period EUR rate, shocked by the
//     scenario FX parameter.
//  2. Salary facts (scaled by salary growth) and overhead postings (scaled by
//     ledger growth) build each center's pool.
//  3. Centers settle in step-down order: the pool is split over the center's
//     outgoing rules and direct product allocations, normalized together.
//     A center with no outgoing weights keeps its pool as unabsorbed cost.
//  4. Direct material flows straight into product rows.
func Run(ds *dataset.Dataset, scenario dataset.Scenario) (*Result, error) {
	order, err := SettlementOrder(ds.CostCenters, ds.StepDownRules)
	if err != nil {
		return nil, err
	}

	res := &Result{
		ScenarioID: scenario.ID,
		Order:      order,
		Steps:      make(map[string][]SettlementStep, len(ds.Periods)),
	}

	// Outgoing weights are period-invariant; index them once.
	rulesFrom := make(map[string][]dataset.StepDownRule)
	for _, r := range ds.StepDownRules {
		rulesFrom[r.FromCostCenter] = append(rulesFrom[r.FromCostCenter], r)
	}
	directsFrom := make(map[string][]dataset.DirectAllocation)
	for _, a := range ds.DirectAllocations {
		directsFrom[a.CostCenterID] = append(directsFrom[a.CostCenterID], a)
	}

	salaryScale := 1 + scenario.SalaryGrowthPct/100
	ledgerScale := 1 + scenario.LedgerGrowthPct/100

	for _, period := range ds.Periods {
		eurRate := period.EURRate * (1 + scenario.FXShockPct/100)
		toBase := func(amount float64, currency string) float64 {
			if currency == "EUR" {
				return amount * eurRate
			}
			return amount
		}

		var inputTotal float64

		// 1. Direct material -> product rows.
		for _, m := range ds.MaterialConsumption {
			if m.PeriodID != period.ID {
				continue
			}
			amt := toBase(m.Quantity*m.UnitCost, m.Currency)
			row := Row{
				PeriodID:  period.ID,
				ProductID: m.ProductID,
				Source:    SourceMaterial,
				Amount:    amt,
			}
			if m.Currency == "EUR" {
				row.EURAmount = amt
			}
			res.Rows = append(res.Rows, row)
			inputTotal += amt
		}

		// 2. Build cost-center pools.
		pools := make(map[string]*Pool, len(ds.CostCenters))
		for _, c := range ds.CostCenters {
			pools[c.ID] = &Pool{}
		}
		for _, s := range ds.SalaryFacts {
			if s.PeriodID != period.ID {
				continue
			}
			amt := s.Amount * salaryScale
			pools[s.CostCenterID].Salary += amt
			inputTotal += amt
		}
		for _, o := range ds.OverheadPostings {
			if o.PeriodID != period.ID {
				continue
			}
			ledger := ds.Ledger(o.LedgerID)
			if ledger == nil {
				return nil, fmt.Errorf("overhead posting references unknown ledger %s", o.LedgerID)
			}
			amt := toBase(o.Amount*ledgerScale, ledger.Currency)
			p := pools[o.CostCenterID]
			p.Overhead += amt
			if ledger.Currency == "EUR" {
				p.EUR += amt
			}
			inputTotal += amt
		}

		// 3. Settle in step-down order.
		var steps []SettlementStep
		var allocated, unabsorbed float64
		for _, ccID := range order {
			pool := *pools[ccID]
			if pool.Total() == 0 {
				continue
			}

			rules := rulesFrom[ccID]
			directs := directsFrom[ccID]
			var totalWeight float64
			for _, r := range rules {
				totalWeight += r.Weight
			}
			for _, a := range directs {
				totalWeight += a.Weight
			}

			step := SettlementStep{CostCenterID: ccID, PoolIn: pool.Total()}
			if totalWeight == 0 {
				// Terminal pool: nothing downstream to absorb it.
				step.Unabsorbed = pool.Total()
				unabsorbed += pool.Total()
				steps = append(steps, step)
				continue
			}

			step.ToCenters = make(map[string]float64)
			step.ToProducts = make(map[string]float64)
			for _, r := range rules {
				share := pool.scale(r.Weight / totalWeight)
				pools[r.ToCostCenter].add(share)
				step.ToCenters[r.ToCostCenter] += share.Total()
			}
			for _, a := range directs {
				share := pool.scale(a.Weight / totalWeight)
				eurFrac := 0.0
				if share.Total() > 0 {
					eurFrac = share.EUR / share.Total()
				}
				if share.Salary > 0 {
					res.Rows = append(res.Rows, Row{
						PeriodID:     period.ID,
						ProductID:    a.ProductID,
						CostCenterID: ccID,
						Source:       SourceSalary,
						Amount:       share.Salary,
						EURAmount:    share.Salary * eurFrac,
					})
				}
				if share.Overhead > 0 {
					res.Rows = append(res.Rows, Row{
						PeriodID:     period.ID,
						ProductID:    a.ProductID,
						CostCenterID: ccID,
						Source:       SourceOverhead,
						Amount:       share.Overhead,
						EURAmount:    share.Overhead * eurFrac,
					})
				}
				allocated += share.Total()
				step.ToProducts[a.ProductID] += share.Total()
			}
			steps = append(steps, step)
		}

		// Direct material counts as allocated: it lands on products without
		// passing through a pool.
		for _, r := range res.Rows {
			if r.PeriodID == period.ID && r.Source == SourceMaterial {
				allocated += r.Amount
			}
		}

		res.Steps[period.ID] = steps
		res.Totals = append(res.Totals, PeriodTotals{
			PeriodID:   period.ID,
			Input:      inputTotal,
			Allocated:  allocated,
			Unabsorbed: unabsorbed,
		})
	}

	return res, nil
}
