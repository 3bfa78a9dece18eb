package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"cost_intelligence/pkg/core/allocation"
)

// ScenarioRepo caches allocation runs per scenario. The engine is cheap on
// the demo dataset but the cache keeps the dashboard snappy and gives the
// pipeline CLI a record of past runs.
type ScenarioRepo struct{}

// NewScenarioRepo creates a new repository instance.
func NewScenarioRepo() *ScenarioRepo {
	return &ScenarioRepo{}
}

// Schema assumption:
// CREATE TABLE IF NOT EXISTS scenario_runs (
//   scenario_id TEXT PRIMARY KEY,
//   result JSONB NOT NULL,
//   updated_at TIMESTAMPTZ
// );

// Save upserts a run result by scenario id.
func (r *ScenarioRepo) Save(ctx context.Context, res *allocation.Result) error {
	pool := GetPool()
	if pool == nil {
		return fmt.Errorf("database pool not initialized")
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal scenario result: %w", err)
	}

	query := `
		INSERT INTO scenario_runs (scenario_id, result, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (scenario_id)
		DO UPDATE SET
			result = EXCLUDED.result,
			updated_at = EXCLUDED.updated_at;
	`
	_, err = pool.Exec(ctx, query, res.ScenarioID, payload, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save scenario run: %w", err)
	}
	return nil
}

// Load retrieves the cached run for a scenario id.
func (r *ScenarioRepo) Load(ctx context.Context, scenarioID string) (*allocation.Result, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `SELECT result FROM scenario_runs WHERE scenario_id = $1`

	var payload []byte
	err := pool.QueryRow(ctx, query, scenarioID).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("no cached run for scenario %s", scenarioID)
		}
		return nil, fmt.Errorf("failed to load scenario run: %w", err)
	}

	var res allocation.Result
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal scenario result: %w", err)
	}
	return &res, nil
}
