package config

import (
	"encoding/json"
	"testing"
)

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema()

	if schema.Title != "Solver Configuration" || schema.Type != "object" {
		t.Errorf("unexpected root: %s %s", schema.Title, schema.Type)
	}

	sections := []string{"oracle", "sampling", "voting", "puzzle", "prompts", "resilience", "storage", "cache", "logging", "telemetry"}
	for _, name := range sections {
		section, ok := schema.Properties[name]
		if !ok {
			t.Errorf("missing section: %s", name)
			continue
		}
		if section.Type != "object" {
			t.Errorf("%s.Type = %s, want object", name, section.Type)
		}
	}
}

func TestGenerateSchema_Defaults(t *testing.T) {
	schema := GenerateSchema()

	k := schema.Properties["voting"].Properties["k"]
	if k.Default != 3 {
		t.Errorf("voting.k default = %v, want 3", k.Default)
	}
	if *k.Minimum != 1 {
		t.Errorf("voting.k minimum = %v, want 1", *k.Minimum)
	}

	delay := schema.Properties["sampling"].Properties["provider_retry_delay"]
	if delay.Default != "1s" || delay.Format != "duration" {
		t.Errorf("provider_retry_delay = %+v", delay)
	}

	providers := schema.Properties["oracle"].Properties["provider"].Enum
	if len(providers) != 4 {
		t.Errorf("provider enum = %v", providers)
	}
}

func TestSchemaJSON(t *testing.T) {
	out, err := SchemaJSON()
	if err != nil {
		t.Fatalf("SchemaJSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("SchemaJSON() produced invalid JSON: %v", err)
	}
	if decoded["$schema"] != "https://json-schema.org/draft/2020-12/schema" {
		t.Errorf("$schema = %v", decoded["$schema"])
	}
}
