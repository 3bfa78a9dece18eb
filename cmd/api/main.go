package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	apiconfig "cost_intelligence/pkg/api/config"
	"cost_intelligence/pkg/api/costmodel"
	"cost_intelligence/pkg/api/formbuilder"
	apiinsight "cost_intelligence/pkg/api/insight"
	"cost_intelligence/pkg/core/agent"
	"cost_intelligence/pkg/core/dataset"
	"cost_intelligence/pkg/core/forms"
	"cost_intelligence/pkg/core/fxrates"
	"cost_intelligence/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	ctx := context.Background()

	// Provider config for the insight narrative
	configData, _ := os.ReadFile("config/providers.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	agentMgr := agent.NewManager(agentCfg)

	// Dataset
	ds := dataset.Seed()

	// Optional: restate FX rates from a live reference page
	if url := os.Getenv("FX_RATES_URL"); url != "" {
		rates, err := fxrates.FetchReferenceRates(ctx, url)
		if err != nil {
			fmt.Printf("[WARNING] FX rates refresh failed: %v\n", err)
		} else if fxrates.Apply(ds, rates) {
			fmt.Printf("[FXRATES] Applied reference EUR rate %.4f\n", rates["EUR"])
		}
	}

	// Optional persistence: the API runs compute-only without it
	if err := store.InitDB(ctx); err != nil {
		fmt.Printf("[WARNING] Persistence disabled: %v\n", err)
	} else {
		defer store.Close()
		fmt.Println("[STORE] Connected to Postgres")
	}

	// Form schemas
	registry := forms.NewRegistry()
	schemasDir := "resources/forms"
	if n, err := registry.LoadDir(schemasDir); err != nil {
		fmt.Printf("[WARNING] Failed to load form schemas from %s: %v\n", schemasDir, err)
	} else {
		fmt.Printf("[FORMS] Loaded %d schemas from %s\n", n, schemasDir)
	}

	// Cost model endpoints
	if err := costmodel.InitHandler(ds); err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(1)
	}
	http.HandleFunc("/api/costmodel/scenarios", costmodel.HandleScenarios)
	http.HandleFunc("/api/costmodel/report", costmodel.HandleReport)
	http.HandleFunc("/api/costmodel/report.html", costmodel.HandleReportHTML)

	// Form engine endpoints
	formbuilder.InitHandler(registry)
	http.HandleFunc("/api/forms/schema", formbuilder.HandleSchema)
	http.HandleFunc("/api/forms/validate", formbuilder.HandleValidate)
	http.HandleFunc("/api/forms/submit", formbuilder.HandleSubmit)
	http.HandleFunc("/api/forms/drafts", formbuilder.HandleDrafts)
	http.HandleFunc("/api/forms/draft/complete", formbuilder.HandleComplete)
	http.HandleFunc("/api/forms/draft/discard", formbuilder.HandleDiscard)

	// Insight endpoint
	apiinsight.InitHandler(ds, agentMgr)
	http.HandleFunc("/api/insight/narrative", apiinsight.HandleNarrative)

	// Config endpoints
	configHandler := apiconfig.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	fmt.Println("API server starting on :8080...")
	fmt.Println("  - GET  /api/costmodel/scenarios")
	fmt.Println("  - POST /api/costmodel/report")
	fmt.Println("  - GET  /api/costmodel/report.html?scenario=base")
	fmt.Println("  - GET  /api/forms/schema?entity=")
	fmt.Println("  - POST /api/forms/validate")
	fmt.Println("  - POST /api/forms/submit")
	fmt.Println("  - GET  /api/forms/drafts?entity=")
	fmt.Println("  - POST /api/forms/draft/complete")
	fmt.Println("  - POST /api/forms/draft/discard")
	fmt.Println("  - POST /api/insight/narrative")
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
