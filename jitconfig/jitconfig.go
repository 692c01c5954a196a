// Package jitconfig validates the RFEXPROTO_JIT_CONFIG environment
// variable. No tracing JIT exists here -- nothing in this module
// compiles fexpr code to native code. What this package provides is the
// honest surface a future JIT would read from: a schema-validated,
// typed view of the tuning knobs, so a malformed override is rejected
// at startup instead of silently ignored by a stub.
package jitconfig

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaJSON = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"enabled": {"type": "boolean"},
		"hot_loop_threshold": {"type": "integer", "minimum": 1},
		"trace_max_length": {"type": "integer", "minimum": 1},
		"inline_depth": {"type": "integer", "minimum": 0, "maximum": 16}
	}
}`

var compiled *jsonschema.Schema

func init() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("rfexproto-jit-config.json", bytes.NewReader([]byte(schemaJSON))); err != nil {
		panic(fmt.Sprintf("jitconfig: invalid embedded schema: %v", err))
	}
	s, err := c.Compile("rfexproto-jit-config.json")
	if err != nil {
		panic(fmt.Sprintf("jitconfig: schema did not compile: %v", err))
	}
	compiled = s
}

// Config is the tuning surface a tracing JIT would read. None of these
// fields currently affect evaluation; Parse exists so a bad override
// fails fast at startup rather than being silently ignored later.
type Config struct {
	Enabled           bool `json:"enabled"`
	HotLoopThreshold  int  `json:"hot_loop_threshold"`
	TraceMaxLength    int  `json:"trace_max_length"`
	InlineDepth       int  `json:"inline_depth"`
}

// Default matches an unset RFEXPROTO_JIT_CONFIG: the JIT is disabled
// and the knobs hold their built-in defaults (hot loop threshold 1000,
// trace length 64, inline depth 2).
func Default() *Config {
	return &Config{Enabled: false, HotLoopThreshold: 1000, TraceMaxLength: 64, InlineDepth: 2}
}

// Parse validates raw (the RFEXPROTO_JIT_CONFIG value) against the
// embedded schema and decodes it. An empty raw returns Default, so
// absence of the variable disables tuning overrides exactly as the
// host-level contract requires.
func Parse(raw string) (*Config, error) {
	if raw == "" {
		return Default(), nil
	}

	var doc interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("jitconfig: RFEXPROTO_JIT_CONFIG is not valid JSON: %w", err)
	}
	if err := compiled.Validate(doc); err != nil {
		return nil, fmt.Errorf("jitconfig: RFEXPROTO_JIT_CONFIG failed schema validation: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal([]byte(raw), cfg); err != nil {
		return nil, fmt.Errorf("jitconfig: failed to decode RFEXPROTO_JIT_CONFIG: %w", err)
	}
	return cfg, nil
}
