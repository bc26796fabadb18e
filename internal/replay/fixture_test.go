package replay

import (
	"os"
	"path/filepath"
	"testing"
)

// #region fixture-tests

// TestFixture_EngineCases loads the engine_cases fixture, runs every case and
// compares label and gate action against the expectation. This is the primary
// regression test: if weights or thresholds change, this catches drift.
func TestFixture_EngineCases(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "engine_cases.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results, err := f.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}

	for i, r := range results {
		if r.Name != f.Cases[i].Name {
			t.Errorf("case %d: expected name=%s, got %s", i, f.Cases[i].Name, r.Name)
		}
		if !r.Match() {
			t.Errorf("case %d (%s): expected %s/%s, got %s/%s (reason: %s)",
				i, r.Name, r.ExpectedLabel, r.ExpectedAction, r.Label, r.Action, r.Reason)
		}
	}
}

// TestFixture_ConfigApplied verifies the fixture namespace overrides the default.
func TestFixture_ConfigApplied(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "engine_cases.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	cfg, err := f.ToConfig()
	if err != nil {
		t.Fatalf("ToConfig: %v", err)
	}
	if cfg.NamespacePrefix != "ns." {
		t.Fatalf("expected namespace ns., got %q", cfg.NamespacePrefix)
	}
	if cfg.Gate.PassThreshold != 0.8 {
		t.Fatalf("expected default pass threshold, got %f", cfg.Gate.PassThreshold)
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

// TestFixture_InvalidConfig verifies Run refuses out-of-range settings.
func TestFixture_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad_config.json")
	body := `{"config": {"gate": {"passThreshold": 1.5}}, "cases": []}`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	f, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}
	if _, err := f.Run(); err == nil {
		t.Fatal("expected config validation error, got nil")
	}
}

// #endregion fixture-tests
