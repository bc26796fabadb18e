package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/trajeval/internal/config"
	"github.com/danielpatrickdp/trajeval/internal/eval"
	"github.com/danielpatrickdp/trajeval/internal/toolcall"
)

// #region fixture-types

// Fixture is the top-level JSON structure for an engine regression fixture.
type Fixture struct {
	Description string        `json:"description"`
	Config      config.File   `json:"config"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureCase is one baseline/candidate pair and the expected outcome.
type FixtureCase struct {
	Name           string               `json:"name"`
	Baseline       toolcall.Trajectory  `json:"baseline"`
	Candidate      toolcall.Trajectory  `json:"candidate"`
	Status         eval.ExecutionStatus `json:"status"`
	ExpectedLabel  eval.Label           `json:"expected_label"`
	ExpectedAction string               `json:"expected_action,omitempty"` // "pass" | "fail"; empty skips the check
}

// CaseResult pairs one case with what the engine produced.
type CaseResult struct {
	Name           string
	ExpectedLabel  eval.Label
	Label          eval.Label
	ExpectedAction string
	Action         string
	RawScore       float64
	FinalScore     float64
	Reason         string
}

// Match reports whether the case behaved as expected.
func (r CaseResult) Match() bool {
	if r.Label != r.ExpectedLabel {
		return false
	}
	return r.ExpectedAction == "" || r.ExpectedAction == r.Action
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig overlays the fixture config onto the defaults.
func (f *Fixture) ToConfig() (config.Config, error) {
	cfg := f.Config.Apply(config.Default())
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("fixture config: %w", err)
	}
	return cfg, nil
}

// Run evaluates every case in order.
func (f *Fixture) Run() ([]CaseResult, error) {
	cfg, err := f.ToConfig()
	if err != nil {
		return nil, err
	}
	results := make([]CaseResult, len(f.Cases))
	for i, c := range f.Cases {
		cmp := CompareTrajectories(c.Baseline, c.Candidate, c.Status, cfg)
		results[i] = CaseResult{
			Name:           c.Name,
			ExpectedLabel:  c.ExpectedLabel,
			Label:          cmp.Verdict.Label,
			ExpectedAction: c.ExpectedAction,
			Action:         cmp.Gate.Action,
			RawScore:       cmp.Verdict.RawScore,
			FinalScore:     cmp.Verdict.FinalScore,
			Reason:         cmp.Verdict.Reason,
		}
	}
	return results, nil
}

// #endregion fixture-loader
