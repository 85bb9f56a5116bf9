package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"findash/pkg/api/config"
	apinarrative "findash/pkg/api/narrative"
	"findash/pkg/api/reports"
	"findash/pkg/api/upload"
	"findash/pkg/core/agent"
	"findash/pkg/core/extract"
	"findash/pkg/core/pipeline"
	"findash/pkg/core/report"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize manager from config
	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	if agentCfg.ActiveProvider == "" {
		agentCfg.ActiveProvider = "gemini"
	}
	agentMgr := agent.NewManager(agentCfg)

	store := report.NewMemoryStore()
	extractor := extract.NewExtractor(agentMgr)
	orch := pipeline.NewOrchestrator(extractor, store)

	// Optional Postgres persistence
	if os.Getenv("DATABASE_URL") != "" {
		if err := report.InitDB(context.Background()); err != nil {
			fmt.Printf("[WARNING] Database init failed: %v. Running memory-only.\n", err)
		} else {
			orch.SetRepository(report.NewRepo())
			defer report.Close()
			fmt.Println("[DB] Postgres persistence enabled")
		}
	}

	// Config endpoints
	configHandler := config.NewHandler(agentMgr)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/switch", configHandler.HandleSwitch)

	// Upload endpoint
	uploadHandler := upload.NewHandler(orch)
	http.HandleFunc("/api/upload", uploadHandler.HandleBatch)

	// Report history endpoints
	reportsHandler := reports.NewHandler(store)
	http.HandleFunc("/api/reports", reportsHandler.HandleList)
	http.HandleFunc("/api/reports/get", reportsHandler.HandleGet)
	http.HandleFunc("/api/reports/select", reportsHandler.HandleSelect)
	http.HandleFunc("/api/reports/delete", reportsHandler.HandleDelete)
	http.HandleFunc("/api/reports/clear", reportsHandler.HandleClear)

	// Narrative endpoint
	narrativeHandler := apinarrative.NewHandler(store)
	http.HandleFunc("/api/narrative", narrativeHandler.HandleGenerate)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - GET  /api/config")
	fmt.Println("  - POST /api/config/switch")
	fmt.Println("  - POST /api/upload")
	fmt.Println("  - GET  /api/reports")
	fmt.Println("  - GET  /api/reports/get")
	fmt.Println("  - POST /api/reports/select")
	fmt.Println("  - POST /api/reports/delete")
	fmt.Println("  - POST /api/reports/clear")
	fmt.Println("  - POST /api/narrative")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
