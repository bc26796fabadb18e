// Package scenario loads YAML scenario definitions: the user intent an agent
// is asked to fulfil, the tool calls it is expected to make and the success
// criteria its run is checked against.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/trajeval/internal/toolcall"
	"github.com/danielpatrickdp/trajeval/internal/value"
)

var ErrNoName = errors.New("scenario: name is empty")

// Scenario is one YAML scenario file.
type Scenario struct {
	Name               string         `yaml:"name"`
	Description        string         `yaml:"description"`
	UserIntent         string         `yaml:"user_intent"`
	Enabled            *bool          `yaml:"enabled"`
	ConfigFile         string         `yaml:"config_file,omitempty"`
	ExpectedCalls      []ExpectedCall `yaml:"expected_trajectory"`
	SuccessCriteria    []string       `yaml:"success_criteria"`
	CriticalTools      []string       `yaml:"critical_tools"`
	CriticalOperations []string       `yaml:"critical_operations"`

	Path string `yaml:"-"`
}

// ExpectedCall is one entry of expected_trajectory.
type ExpectedCall struct {
	Tool string         `yaml:"tool"`
	Args map[string]any `yaml:"args"`
}

// IsEnabled reports whether the scenario runs; scenarios are enabled unless
// they say otherwise.
func (s *Scenario) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// ExpectedTrajectory converts ExpectedCalls to invocations.
func (s *Scenario) ExpectedTrajectory() toolcall.Trajectory {
	t := make(toolcall.Trajectory, len(s.ExpectedCalls))
	for i, c := range s.ExpectedCalls {
		t[i] = toolcall.Invocation{Name: c.Tool, Args: value.FromMap(c.Args)}
	}
	return t
}

// Load parses one scenario file. A missing name falls back to the file stem.
func Load(path string) (*Scenario, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read %q: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("scenario: unmarshal %q: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if strings.TrimSpace(s.Name) == "" {
		return nil, ErrNoName
	}
	for i, c := range s.ExpectedCalls {
		if c.Tool == "" {
			return nil, fmt.Errorf("scenario: %q expected_trajectory[%d] has no tool", s.Name, i)
		}
	}
	s.Path = path
	return &s, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by name, skipping
// disabled scenarios. Duplicate names are an error.
func LoadDir(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scenario: read dir %q: %w", dir, err)
	}

	var out []*Scenario
	seen := make(map[string]string)
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		s, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if !s.IsEnabled() {
			continue
		}
		if prev, ok := seen[s.Name]; ok {
			return nil, fmt.Errorf("scenario: duplicate name %q in %s and %s", s.Name, prev, s.Path)
		}
		seen[s.Name] = s.Path
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// CriteriaResult lists which success criteria a run met.
type CriteriaResult struct {
	Met    []string `json:"met"`
	Unmet  []string `json:"unmet"`
	Passed bool     `json:"passed"`
}

// Summary renders the result the way run transcripts record it.
func (r CriteriaResult) Summary() string {
	total := len(r.Met) + len(r.Unmet)
	switch {
	case total == 0:
		return "SUCCESS - No specific criteria defined"
	case r.Passed:
		return fmt.Sprintf("SUCCESS - All %d criteria met", total)
	default:
		return fmt.Sprintf("PARTIAL - %d/%d criteria met", len(r.Met), total)
	}
}

// CheckCriteria matches each criterion case-insensitively against the tool
// responses and then the transcript.
func (s *Scenario) CheckCriteria(responses []string, transcript string) CriteriaResult {
	res := CriteriaResult{Met: []string{}, Unmet: []string{}}
	lowerTranscript := strings.ToLower(transcript)
	lowerResponses := make([]string, len(responses))
	for i, r := range responses {
		lowerResponses[i] = strings.ToLower(r)
	}

	for _, criterion := range s.SuccessCriteria {
		needle := strings.ToLower(criterion)
		met := strings.Contains(lowerTranscript, needle)
		for _, r := range lowerResponses {
			if met {
				break
			}
			met = strings.Contains(r, needle)
		}
		if met {
			res.Met = append(res.Met, criterion)
		} else {
			res.Unmet = append(res.Unmet, criterion)
		}
	}
	res.Passed = len(res.Unmet) == 0
	return res
}
