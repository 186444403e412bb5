package config

import (
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != "damped-cavity" {
		t.Errorf("expected scenario damped-cavity, got %s", cfg.Scenario)
	}
	if cfg.NTraj <= 0 {
		t.Error("ntraj should be positive")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestTlist(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 2.0
	cfg.Steps = 4

	tlist := cfg.Tlist()
	if len(tlist) != 5 {
		t.Fatalf("expected 5 grid points, got %d", len(tlist))
	}
	if tlist[0] != 0 || tlist[4] != 2.0 {
		t.Errorf("grid endpoints wrong: %v", tlist)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Duration = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero duration")
	}

	cfg = DefaultConfig()
	cfg.Steps = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero steps")
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")

	cfg := DefaultConfig()
	cfg.Scenario = "relaxing-qubit"
	cfg.Solver = "milstein"
	cfg.Seed = 77
	cfg.StoreMeasurement = true

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if loaded.Scenario != cfg.Scenario || loaded.Solver != cfg.Solver ||
		loaded.Seed != cfg.Seed || !loaded.StoreMeasurement {
		t.Errorf("roundtrip mismatch: %+v", loaded)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("damped-cavity", "quick")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.NTraj != 50 {
		t.Errorf("expected ntraj 50, got %d", cfg.NTraj)
	}

	if GetPreset("damped-cavity", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "quick") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("relaxing-qubit")
	if len(names) != 2 {
		t.Errorf("expected 2 presets, got %v", names)
	}
	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent scenario")
	}
}
