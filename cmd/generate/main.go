package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/rxtech-lab/argo-fills/internal/engine"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	outputDir        = "./config"
	schemaName       = "fill-engine-config.json"
	sampleConfigName = "fill-engine-config.yaml"
)

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func validatePaths(schemaPath, sampleConfigPath string) error {
	if schemaPath == "" {
		return fmt.Errorf("schema path cannot be empty")
	}

	if sampleConfigPath == "" {
		return fmt.Errorf("sample config path cannot be empty")
	}

	return nil
}

func validateSchemaName(name string) error {
	if name == "" {
		return fmt.Errorf("schema name cannot be empty")
	}

	if !strings.HasSuffix(name, ".json") {
		return fmt.Errorf("schema name %q must have .json extension", name)
	}

	return nil
}

// generateSchemaFile writes the JSON schema of the engine config, creating the folder if needed.
func generateSchemaFile(config engine.Config, schemaPath string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0644); err != nil {
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes the config as YAML with a schema reference. Existing files are kept.
func generateSampleConfig(config engine.Config, samplePath, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	content := append([]byte(getSchemaReference(schemaName)), yamlBytes...)
	if err := os.WriteFile(samplePath, content, 0644); err != nil {
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	log.Printf("Sample config successfully generated at %s", samplePath)

	return nil
}

func main() {
	config := engine.EmptyConfig()
	config.Cash = []engine.CashConfig{{Currency: config.AccountCurrency, Amount: decimal.NewFromInt(100000)}}

	schemaPath := filepath.Join(outputDir, schemaName)
	sampleConfigPath := filepath.Join(outputDir, sampleConfigName)

	if err := validateSchemaName(schemaName); err != nil {
		log.Fatal(err)
	}

	if err := validatePaths(schemaPath, sampleConfigPath); err != nil {
		log.Fatal(err)
	}

	if err := generateSchemaFile(config, schemaPath); err != nil {
		log.Fatal(err)
	}

	if err := generateSampleConfig(config, sampleConfigPath, schemaName); err != nil {
		log.Fatal(err)
	}

	log.Printf("Schema successfully generated at %s", schemaPath)
}
