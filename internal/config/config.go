package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/gate"
	"github.com/danielpatrickdp/trajeval/internal/signals"
	"github.com/danielpatrickdp/trajeval/internal/similarity"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
)

var (
	ErrWeights    = errors.New("config: key_weight and value_weight must be non-negative and not both zero")
	ErrThresholds = errors.New("config: thresholds must satisfy 0 <= broken <= degraded <= acceptable <= 1")
)

// #region config

// Config is the full, resolved configuration of one evaluation run.
type Config struct {
	Similarity      similarity.Config
	Eval            eval.EvalConfig
	Gate            gate.GateConfig
	Signals         signals.ProducerConfig
	NamespacePrefix string // empty keeps every tool
	Workers         int    // batch concurrency
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		Similarity:      similarity.DefaultConfig(),
		Eval:            eval.DefaultEvalConfig(),
		Gate:            gate.DefaultGateConfig(),
		Signals:         signals.DefaultProducerConfig(),
		NamespacePrefix: toolcall.DefaultNamespacePrefix,
		Workers:         4,
	}
}

// Filter returns the namespace predicate for this configuration.
func (c Config) Filter() toolcall.Predicate {
	if c.NamespacePrefix == "" {
		return nil
	}
	return toolcall.PrefixFilter(c.NamespacePrefix)
}

// #endregion config

// #region load

// Load reads a YAML (or JSON) config file over the defaults and validates it.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal %q: %w", path, err)
	}

	cfg := f.Apply(Default())
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// #endregion load

// #region validate

// Validate rejects weights and thresholds the engine cannot interpret.
func (c Config) Validate() error {
	s := c.Similarity
	if s.KeyWeight < 0 || s.ValueWeight < 0 || s.KeyWeight+s.ValueWeight == 0 || anyNaN(s.KeyWeight, s.ValueWeight) {
		return ErrWeights
	}
	if s.MaxNumericDiff < 0 || math.IsNaN(s.MaxNumericDiff) {
		return fmt.Errorf("config: max_numeric_diff must be >= 0, got %v", s.MaxNumericDiff)
	}
	if !unit(s.ExactMatchThreshold) {
		return fmt.Errorf("config: exact_match_threshold must be in [0,1], got %v", s.ExactMatchThreshold)
	}
	if !unit(s.TypeDriftScale) || !unit(s.TypeDriftFloor) {
		return fmt.Errorf("config: type drift scale/floor must be in [0,1], got %v/%v", s.TypeDriftScale, s.TypeDriftFloor)
	}

	e := c.Eval
	if !unit(e.ErrorPenalty) {
		return fmt.Errorf("config: error_penalty must be in [0,1], got %v", e.ErrorPenalty)
	}
	if !unit(e.MissingToolCeiling) {
		return fmt.Errorf("config: missing_tool_ceiling must be in [0,1], got %v", e.MissingToolCeiling)
	}
	t := e.Thresholds
	if !unit(t.Broken) || !unit(t.Degraded) || !unit(t.Acceptable) ||
		t.Broken > t.Degraded || t.Degraded > t.Acceptable {
		return ErrThresholds
	}

	if !unit(c.Gate.PassThreshold) {
		return fmt.Errorf("config: pass_threshold must be in [0,1], got %v", c.Gate.PassThreshold)
	}
	if c.Workers < 1 {
		return fmt.Errorf("config: workers must be >= 1, got %d", c.Workers)
	}
	return nil
}

func unit(v float64) bool { return v >= 0 && v <= 1 }

func anyNaN(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

// #endregion validate
