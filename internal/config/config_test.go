package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr == "" {
		t.Error("HTTPAddr should have a default")
	}
	if cfg.MatchThreshold != 70 {
		t.Errorf("MatchThreshold default = %d, want 70", cfg.MatchThreshold)
	}
	if cfg.FareMin.String() != "15" || cfg.FareMax.String() != "50" {
		t.Errorf("fare band default = [%s, %s], want [15, 50]", cfg.FareMin, cfg.FareMax)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "85")
	t.Setenv("FARE_MAX", "75.5")
	t.Setenv("HTTP_ADDR", ":9999")

	cfg := Load()

	if cfg.MatchThreshold != 85 {
		t.Errorf("MatchThreshold = %d, want 85", cfg.MatchThreshold)
	}
	if cfg.FareMax.String() != "75.5" {
		t.Errorf("FareMax = %s, want 75.5", cfg.FareMax)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %s, want :9999", cfg.HTTPAddr)
	}
}

func TestBadEnvFallsBack(t *testing.T) {
	t.Setenv("MATCH_THRESHOLD", "not-a-number")
	t.Setenv("FARE_MIN", "also-not")

	cfg := Load()

	if cfg.MatchThreshold != 70 {
		t.Errorf("MatchThreshold = %d, want fallback 70", cfg.MatchThreshold)
	}
	if cfg.FareMin.String() != "15" {
		t.Errorf("FareMin = %s, want fallback 15", cfg.FareMin)
	}
}
