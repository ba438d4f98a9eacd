package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RESTPort != "8080" || cfg.WSPort != "8081" {
		t.Errorf("unexpected ports %s/%s", cfg.RESTPort, cfg.WSPort)
	}
	if cfg.Season != "2024-25" || cfg.DailyRunHour != 6 || !cfg.EnableSchedule {
		t.Errorf("unexpected schedule settings %+v", cfg)
	}
	if cfg.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL = %v", cfg.CacheTTL)
	}

	window, ok, err := cfg.SeasonWindow()
	if err != nil || !ok {
		t.Fatalf("SeasonWindow: ok=%v err=%v", ok, err)
	}
	if !window.Start.Equal(time.Date(2024, 10, 22, 0, 0, 0, 0, time.UTC)) || !window.End.Equal(time.Date(2025, 4, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected window %+v", window)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("REST_PORT", "9090")
	t.Setenv("SEASON", "2023-24")
	t.Setenv("SEASON_START", "2023-10-24")
	t.Setenv("SEASON_END", "2024-04-15")
	t.Setenv("SCORING_WORKERS", "4")
	t.Setenv("ENABLE_SCHEDULER", "false")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.RESTPort != "9090" || cfg.Season != "2023-24" || cfg.ScoringWorkers != 4 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.EnableSchedule || cfg.CacheTTL != 30*time.Minute || cfg.LogFormat != "json" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{Season: "2024-25", DailyRunHour: 6}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"valid", func(c *Config) {}, true},
		{"missing season", func(c *Config) { c.Season = "" }, false},
		{"bad season", func(c *Config) { c.Season = "next year" }, false},
		{"bad hour", func(c *Config) { c.DailyRunHour = 24 }, false},
		{"negative workers", func(c *Config) { c.ScoringWorkers = -1 }, false},
		{"bad start date", func(c *Config) { c.SeasonStart = "22/10/2024" }, false},
		{"inverted window", func(c *Config) { c.SeasonStart, c.SeasonEnd = "2025-04-14", "2024-10-22" }, false},
		{"open ended window", func(c *Config) { c.SeasonStart = "2024-10-22" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}
