package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"findash/pkg/core/agent"
	"findash/pkg/core/extract"
	"findash/pkg/core/pipeline"
	"findash/pkg/core/report"
)

// CLI runner: processes up to three report text files in one batch and prints
// the merged dataset as JSON.
//
// Usage: pipeline <file1.txt> [file2.txt] [file3.txt]
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: pipeline <file1.txt> [file2.txt] [file3.txt]")
		os.Exit(1)
	}

	configData, _ := os.ReadFile("config/models.yaml")
	var agentCfg agent.Config
	yaml.Unmarshal(configData, &agentCfg)
	if agentCfg.ActiveProvider == "" {
		agentCfg.ActiveProvider = "gemini"
	}
	agentMgr := agent.NewManager(agentCfg)

	var files []pipeline.File
	for _, path := range os.Args[1:] {
		text, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		files = append(files, pipeline.File{Name: filepath.Base(path), Text: string(text)})
	}

	store := report.NewMemoryStore()
	orch := pipeline.NewOrchestrator(extract.NewExtractor(agentMgr), store)

	result, err := orch.RunBatch(context.Background(), files)
	if err != nil {
		if result != nil {
			for _, fs := range result.Files {
				fmt.Printf("  %-40s %s %s\n", fs.File, fs.Status, fs.Error)
			}
		}
		log.Fatalf("Batch failed: %v", err)
	}

	out, err := json.MarshalIndent(result.Report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}
	fmt.Println(string(out))
}
