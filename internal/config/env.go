package config

import (
	"fmt"
	"strconv"
	"strings"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TRAJEVAL_"

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overrides cfg from TRAJEVAL_* variables. Unset or empty variables
// are ignored; malformed values are an error.
func ApplyEnv(cfg Config, lookup LookupFunc) (Config, error) {
	floats := []struct {
		key string
		dst *float64
	}{
		{"MAX_NUMERIC_DIFF", &cfg.Similarity.MaxNumericDiff},
		{"KEY_WEIGHT", &cfg.Similarity.KeyWeight},
		{"VALUE_WEIGHT", &cfg.Similarity.ValueWeight},
		{"EXACT_MATCH_THRESHOLD", &cfg.Similarity.ExactMatchThreshold},
		{"ERROR_PENALTY", &cfg.Eval.ErrorPenalty},
		{"MISSING_TOOL_CEILING", &cfg.Eval.MissingToolCeiling},
		{"THRESHOLD_BROKEN", &cfg.Eval.Thresholds.Broken},
		{"THRESHOLD_DEGRADED", &cfg.Eval.Thresholds.Degraded},
		{"THRESHOLD_ACCEPTABLE", &cfg.Eval.Thresholds.Acceptable},
		{"PASS_THRESHOLD", &cfg.Gate.PassThreshold},
	}
	for _, f := range floats {
		v, ok := get(lookup, f.key)
		if !ok {
			continue
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %s%s: %w", EnvPrefix, f.key, err)
		}
		*f.dst = n
	}

	if v, ok := lookup(EnvPrefix + "NAMESPACE_PREFIX"); ok {
		cfg.NamespacePrefix = v // empty disables filtering
	}
	if v, ok := get(lookup, "WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %sWORKERS: %w", EnvPrefix, err)
		}
		cfg.Workers = n
	}
	if v, ok := get(lookup, "VETO_MISSING_TOOLS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: parse %sVETO_MISSING_TOOLS: %w", EnvPrefix, err)
		}
		cfg.Gate.VetoMissingTools = b
	}
	if v, ok := get(lookup, "CRITICAL_OPERATIONS"); ok {
		cfg.Signals.CriticalOperations = splitList(v)
	}
	return cfg, nil
}

func get(lookup LookupFunc, key string) (string, bool) {
	v, ok := lookup(EnvPrefix + key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
