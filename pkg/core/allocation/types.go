// Package allocation implements the step-down cost-center allocation engine:
// it builds per-center cost pools from salary and overhead facts, settles the
// centers in topological order, and distributes the pools into downstream
// centers and finally into products.
package allocation

// Source tags where an allocated amount originated.
type Source string

const (
	SourceMaterial Source = "material"
	SourceSalary   Source = "salary"
	SourceOverhead Source = "overhead"
)

// Row is one allocated cost amount landing on a product.
type Row struct {
	PeriodID     string  `json:"period_id"`
	ProductID    string  `json:"product_id"`
	CostCenterID string  `json:"cost_center_id,omitempty"` // "" for direct material
	Source       Source  `json:"source"`
	Amount       float64 `json:"amount"`     // base currency
	EURAmount    float64 `json:"eur_amount"` // portion originating in EUR-denominated facts
}

// Pool tracks a cost center's accumulated cost split by origin. EUR is the
// portion of Salary+Overhead that originated in EUR-denominated postings and
// is carried through distributions for the FX exposure KPI.
type Pool struct {
	Salary   float64 `json:"salary"`
	Overhead float64 `json:"overhead"`
	EUR      float64 `json:"eur"`
}

// Total is the full pool amount.
func (p Pool) Total() float64 { return p.Salary + p.Overhead }

func (p Pool) scale(f float64) Pool {
	return Pool{Salary: p.Salary * f, Overhead: p.Overhead * f, EUR: p.EUR * f}
}

func (p *Pool) add(q Pool) {
	p.Salary += q.Salary
	p.Overhead += q.Overhead
	p.EUR += q.EUR
}

// SettlementStep records how one cost center's pool was distributed in one
// period, for the allocation audit trail.
type SettlementStep struct {
	CostCenterID string             `json:"cost_center_id"`
	PoolIn       float64            `json:"pool_in"`
	ToCenters    map[string]float64 `json:"to_centers,omitempty"`
	ToProducts   map[string]float64 `json:"to_products,omitempty"`
	Unabsorbed   float64            `json:"unabsorbed"`
}

// PeriodTotals reconciles one period of the run.
type PeriodTotals struct {
	PeriodID   string  `json:"period_id"`
	Input      float64 `json:"input"`      // material + salary + overhead, base currency
	Allocated  float64 `json:"allocated"`  // landed on products
	Unabsorbed float64 `json:"unabsorbed"` // stuck in terminal pools
}

// Result is a full engine run for one scenario.
type Result struct {
	ScenarioID string                      `json:"scenario_id"`
	Order      []string                    `json:"order"` // settlement order
	Rows       []Row                       `json:"rows"`
	Steps      map[string][]SettlementStep `json:"steps"`  // period -> audit trail
	Totals     []PeriodTotals              `json:"totals"` // per period, dataset order
}
