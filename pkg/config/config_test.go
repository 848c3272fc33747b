package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Default() {
		t.Errorf("Load of missing file = %+v, want defaults %+v", cfg, Default())
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Load should have created %s: %v", path, err)
	}
}

func TestLoadParsesRecognizedKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	contents := "server.port=9999\n" +
		"world.name=myworld\n" +
		"world.seed=12345\n" +
		"world.max_coordinate=500\n" +
		"memory.emergency_threshold=0.05\n" +
		"# a comment\n" +
		"unknown.key=ignored\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Port)
	}
	if cfg.WorldName != "myworld" {
		t.Errorf("WorldName = %q, want myworld", cfg.WorldName)
	}
	if cfg.WorldSeed != 12345 {
		t.Errorf("WorldSeed = %d, want 12345", cfg.WorldSeed)
	}
	if cfg.MaxCoordinate != 500 {
		t.Errorf("MaxCoordinate = %d, want 500", cfg.MaxCoordinate)
	}
	if cfg.EmergencyThreshold != 0.05 {
		t.Errorf("EmergencyThreshold = %f, want 0.05", cfg.EmergencyThreshold)
	}
	// Everything not set in the file should fall back to defaults.
	if cfg.MaxRequestsPerSecond != Default().MaxRequestsPerSecond {
		t.Errorf("MaxRequestsPerSecond = %d, want default %d", cfg.MaxRequestsPerSecond, Default().MaxRequestsPerSecond)
	}
}

func TestLoadRejectsMalformedValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.properties")
	if err := os.WriteFile(path, []byte("server.port=not-a-number\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected an error for a malformed server.port value")
	}
}
