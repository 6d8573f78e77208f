package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	return verify(cfg, []byte(embeddedSchema))
}

// VerifyAgainstSchema validates the config against the JSON schema from file
func VerifyAgainstSchema(cfg *Config, schemaPath string) error {
	schemaData, err := os.ReadFile(schemaPath) //nolint:gosec // schema path is controlled by us
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}
	return verify(cfg, schemaData)
}

func verify(cfg *Config, schemaData []byte) error {
	// parse schema
	var schema map[string]any
	if err := json.Unmarshal(schemaData, &schema); err != nil {
		return fmt.Errorf("parse schema: %w", err)
	}

	// convert config to JSON and make sure every top-level section is known to the schema
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	if props := schemaProperties(schema); props != nil {
		for key := range configMap {
			if _, ok := props[key]; !ok {
				return fmt.Errorf("section %q is not described by schema", key)
			}
		}
	}

	// basic validation - check required fields match
	if err := validateRequiredFields(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// schemaProperties returns top-level properties of the Config definition
func schemaProperties(schema map[string]any) map[string]any {
	if props, ok := schema["properties"].(map[string]any); ok {
		return props
	}
	defs, ok := schema["$defs"].(map[string]any)
	if !ok {
		return nil
	}
	def, ok := defs["Config"].(map[string]any)
	if !ok {
		return nil
	}
	props, _ := def["properties"].(map[string]any)
	return props
}

// validateRequiredFields performs basic validation of required fields
func validateRequiredFields(cfg *Config) error {
	// check server config
	if cfg.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if cfg.Server.Timeout == 0 {
		return fmt.Errorf("server.timeout is required")
	}

	// check cache config
	if cfg.Cache.ReportTTL == 0 || cfg.Cache.NarrativeTTL == 0 || cfg.Cache.SummaryTTL == 0 {
		return fmt.Errorf("cache ttl values are required")
	}

	// check llm config if enabled
	if cfg.LLM.Enabled {
		if cfg.LLM.Timeout == 0 {
			return fmt.Errorf("llm.timeout is required when llm is enabled")
		}
		if cfg.LLM.MaxTokens <= 0 {
			return fmt.Errorf("llm.max_tokens must be positive when llm is enabled")
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
