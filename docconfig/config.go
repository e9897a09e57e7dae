// Package docconfig holds the closed configuration option set from spec
// §6 as a single explicit struct (spec §9 "replace dynamic config
// dictionaries in source with an explicit configuration record
// enumerating the options listed in §6; unknown keys reject at load
// time"), mirroring the teacher's OutputSettings/outputsettings.go shape.
package docconfig

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MonotonicityPolicy is the closed set of strategies the Section
// Hierarchy Builder uses when raw detector levels violate monotonicity
// (spec §4.5, §6 sections.monotonicity_policy).
type MonotonicityPolicy string

const (
	PolicyDemote          MonotonicityPolicy = "demote"
	PolicyInsertSynthetic MonotonicityPolicy = "insert_synthetic"
)

// Config is the full closed option set a pipeline run accepts (spec §6).
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Table    TableConfig    `yaml:"table"`
	Code     CodeConfig     `yaml:"code"`
	Sections SectionsConfig `yaml:"sections"`
	LLM      LLMConfig      `yaml:"llm"`
}

// PipelineConfig configures processor selection and concurrency.
type PipelineConfig struct {
	Processors  []string `yaml:"processors"`
	Parallelism int      `yaml:"parallelism"`
}

// TableConfig configures the table subsystem (spec §4.7).
type TableConfig struct {
	AcceptThreshold    float64 `yaml:"accept_threshold"`
	EarlyExitThreshold float64 `yaml:"early_exit_threshold"`
	MaxCandidates      int     `yaml:"max_candidates"`
	EnableMerging      bool    `yaml:"enable_merging"`
	MinViableScore     float64 `yaml:"min_viable_score"`
}

// CodeConfig configures the code language detector (spec §4.6).
type CodeConfig struct {
	EnableLanguageDetection bool `yaml:"enable_language_detection"`
	DetectionTimeoutMs      int  `yaml:"detection_timeout_ms"`
	MinConfidence           float64 `yaml:"min_confidence"`
}

// SectionsConfig configures the Section Hierarchy Builder (spec §4.5).
type SectionsConfig struct {
	MonotonicityPolicy MonotonicityPolicy `yaml:"monotonicity_policy"`
}

// LLMConfig configures the external LLM enhancement collaborator (spec
// §5, §6, §7).
type LLMConfig struct {
	Enabled         bool `yaml:"enabled"`
	Concurrency     int  `yaml:"concurrency"`
	PerCallTimeoutS int  `yaml:"per_call_timeout_s"`
}

// Default returns the spec-mandated defaults (spec §6).
func Default() Config {
	return Config{
		Pipeline: PipelineConfig{
			Processors:  nil,
			Parallelism: 0, // 0 means min(4, cores); resolved by pipeline.DefaultParallelism
		},
		Table: TableConfig{
			AcceptThreshold:    0.75,
			EarlyExitThreshold: 0.9,
			MaxCandidates:      8,
			EnableMerging:      true,
			MinViableScore:     0.4,
		},
		Code: CodeConfig{
			EnableLanguageDetection: true,
			DetectionTimeoutMs:      1000,
			MinConfidence:           0.6,
		},
		Sections: SectionsConfig{
			MonotonicityPolicy: PolicyDemote,
		},
		LLM: LLMConfig{
			Enabled:         false,
			Concurrency:     3,
			PerCallTimeoutS: 120,
		},
	}
}

// strictConfig is the decode target: identical field shape to Config but
// used only to detect unknown top-level keys, since yaml.v3's KnownFields
// works on the concrete struct being decoded into.
type strictConfig Config

// Load decodes YAML configuration on top of Default(), rejecting unknown
// keys (spec §9 "unknown keys reject at load time").
func Load(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	parsed := strictConfig(Default())
	if err := dec.Decode(&parsed); err != nil {
		return Config{}, fmt.Errorf("docconfig: %w", err)
	}

	applyOverrides(&cfg, Config(parsed))
	return cfg, nil
}

// applyOverrides layers parsed onto the defaults in base. Load decodes
// into a copy of Default(), so a key absent from the YAML keeps its
// default in parsed. Numeric and string fields are taken only when
// non-zero (thresholds, timeouts and counts all want strictly positive
// values), so an explicit zero leaves the default in place. Boolean
// fields are taken as decoded, so an explicit false turns off table
// merging, code language detection or the LLM client.
func applyOverrides(base *Config, parsed Config) {
	if len(parsed.Pipeline.Processors) > 0 {
		base.Pipeline.Processors = parsed.Pipeline.Processors
	}
	if parsed.Pipeline.Parallelism > 0 {
		base.Pipeline.Parallelism = parsed.Pipeline.Parallelism
	}
	if parsed.Table.AcceptThreshold > 0 {
		base.Table.AcceptThreshold = parsed.Table.AcceptThreshold
	}
	if parsed.Table.EarlyExitThreshold > 0 {
		base.Table.EarlyExitThreshold = parsed.Table.EarlyExitThreshold
	}
	if parsed.Table.MaxCandidates > 0 {
		base.Table.MaxCandidates = parsed.Table.MaxCandidates
	}
	base.Table.EnableMerging = parsed.Table.EnableMerging
	if parsed.Table.MinViableScore > 0 {
		base.Table.MinViableScore = parsed.Table.MinViableScore
	}
	base.Code.EnableLanguageDetection = parsed.Code.EnableLanguageDetection
	if parsed.Code.DetectionTimeoutMs > 0 {
		base.Code.DetectionTimeoutMs = parsed.Code.DetectionTimeoutMs
	}
	if parsed.Code.MinConfidence > 0 {
		base.Code.MinConfidence = parsed.Code.MinConfidence
	}
	if parsed.Sections.MonotonicityPolicy != "" {
		base.Sections.MonotonicityPolicy = parsed.Sections.MonotonicityPolicy
	}
	base.LLM.Enabled = parsed.LLM.Enabled
	if parsed.LLM.Concurrency > 0 {
		base.LLM.Concurrency = parsed.LLM.Concurrency
	}
	if parsed.LLM.PerCallTimeoutS > 0 {
		base.LLM.PerCallTimeoutS = parsed.LLM.PerCallTimeoutS
	}
}
