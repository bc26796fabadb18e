package config

import "github.com/danielpatrickdp/trajeval/internal/eval"

// #region file

// File is the on-disk configuration document. Every field is optional; unset
// fields keep their defaults.
type File struct {
	NamespacePrefix *string        `yaml:"namespace_prefix" json:"namespaceFilterPrefix,omitempty"`
	Workers         *int           `yaml:"workers" json:"workers,omitempty"`
	Similarity      SimilarityFile `yaml:"similarity" json:"similarity"`
	Eval            EvalFile       `yaml:"eval" json:"eval"`
	Gate            GateFile       `yaml:"gate" json:"gate"`
	Signals         SignalsFile    `yaml:"signals" json:"signals"`
}

// SimilarityFile overrides similarity.Config.
type SimilarityFile struct {
	MaxNumericDiff      *float64 `yaml:"max_numeric_diff" json:"maxNumericDiff,omitempty"`
	KeyWeight           *float64 `yaml:"key_weight" json:"keyWeight,omitempty"`
	ValueWeight         *float64 `yaml:"value_weight" json:"valueWeight,omitempty"`
	ExactMatchThreshold *float64 `yaml:"exact_match_threshold" json:"exactMatchThreshold,omitempty"`
	TypeDriftScale      *float64 `yaml:"type_drift_scale" json:"typeDriftScale,omitempty"`
	TypeDriftFloor      *float64 `yaml:"type_drift_floor" json:"typeDriftFloor,omitempty"`
}

// EvalFile overrides eval.EvalConfig.
type EvalFile struct {
	ErrorPenalty       *float64         `yaml:"error_penalty" json:"errorPenalty,omitempty"`
	MissingToolCeiling *float64         `yaml:"missing_tool_ceiling" json:"missingToolCeiling,omitempty"`
	Thresholds         *eval.Thresholds `yaml:"thresholds" json:"thresholds,omitempty"`
}

// GateFile overrides gate.GateConfig.
type GateFile struct {
	PassThreshold    *float64 `yaml:"pass_threshold" json:"passThreshold,omitempty"`
	VetoMissingTools *bool    `yaml:"veto_missing_tools" json:"vetoMissingTools,omitempty"`
}

// SignalsFile overrides signals.ProducerConfig.
type SignalsFile struct {
	CriticalOperations []string `yaml:"critical_operations" json:"criticalOperations,omitempty"`
	ErrorKeywords      []string `yaml:"error_keywords" json:"errorKeywords,omitempty"`
	InspectResponses   *bool    `yaml:"inspect_responses" json:"inspectResponses,omitempty"`
}

// #endregion file

// #region apply

// Apply overlays the set fields of f onto base.
func (f File) Apply(base Config) Config {
	cfg := base
	setString(&cfg.NamespacePrefix, f.NamespacePrefix)
	setInt(&cfg.Workers, f.Workers)

	s := f.Similarity
	setFloat(&cfg.Similarity.MaxNumericDiff, s.MaxNumericDiff)
	setFloat(&cfg.Similarity.KeyWeight, s.KeyWeight)
	setFloat(&cfg.Similarity.ValueWeight, s.ValueWeight)
	setFloat(&cfg.Similarity.ExactMatchThreshold, s.ExactMatchThreshold)
	setFloat(&cfg.Similarity.TypeDriftScale, s.TypeDriftScale)
	setFloat(&cfg.Similarity.TypeDriftFloor, s.TypeDriftFloor)

	setFloat(&cfg.Eval.ErrorPenalty, f.Eval.ErrorPenalty)
	setFloat(&cfg.Eval.MissingToolCeiling, f.Eval.MissingToolCeiling)
	if f.Eval.Thresholds != nil {
		cfg.Eval.Thresholds = *f.Eval.Thresholds
	}

	setFloat(&cfg.Gate.PassThreshold, f.Gate.PassThreshold)
	if f.Gate.VetoMissingTools != nil {
		cfg.Gate.VetoMissingTools = *f.Gate.VetoMissingTools
	}

	if f.Signals.CriticalOperations != nil {
		cfg.Signals.CriticalOperations = append([]string(nil), f.Signals.CriticalOperations...)
	}
	if f.Signals.ErrorKeywords != nil {
		cfg.Signals.ErrorKeywords = append([]string(nil), f.Signals.ErrorKeywords...)
	}
	if f.Signals.InspectResponses != nil {
		cfg.Signals.InspectResponses = *f.Signals.InspectResponses
	}
	return cfg
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// #endregion apply
