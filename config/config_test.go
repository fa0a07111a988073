package config

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	if s.Delay != 1500*time.Millisecond {
		t.Errorf("expected default delay 1.5s, got %v", s.Delay)
	}
	if s.Jitter != 200*time.Millisecond {
		t.Errorf("expected default jitter 200ms, got %v", s.Jitter)
	}
	if s.MaxRetries != 5 {
		t.Errorf("expected 5 max retries, got %d", s.MaxRetries)
	}
	if s.CacheTTL != 7*24*time.Hour {
		t.Errorf("expected 7 day cache TTL, got %v", s.CacheTTL)
	}
}

func TestGetSettings(t *testing.T) {
	t.Run("returns defaults when no overrides", func(t *testing.T) {
		cfg := &Config{}
		got := cfg.GetSettings()
		want := DefaultSettings()
		if got.Delay != want.Delay || got.MaxRetries != want.MaxRetries || got.CacheTTL != want.CacheTTL {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("applies scrape overrides", func(t *testing.T) {
		cfg := &Config{
			Scrape: &ScrapeOverrides{
				DelayMS:    intPtr(500),
				MaxRetries: intPtr(2),
			},
		}
		s := cfg.GetSettings()
		if s.Delay != 500*time.Millisecond {
			t.Errorf("expected overridden delay, got %v", s.Delay)
		}
		if s.MaxRetries != 2 {
			t.Errorf("expected overridden retries, got %d", s.MaxRetries)
		}
		// Untouched values keep defaults
		if s.Jitter != DefaultSettings().Jitter {
			t.Errorf("expected default jitter, got %v", s.Jitter)
		}
	})

	t.Run("applies cache and org overrides", func(t *testing.T) {
		path := "/tmp/pages.db"
		cfg := &Config{
			Cache: &CacheOverrides{TTLDays: intPtr(1), Path: &path},
			Orgs: &OrgOverrides{
				Aliases:        map[string]string{"initech labs": "Initech"},
				BlockedDomains: []string{"relay.example.com"},
			},
		}
		s := cfg.GetSettings()
		if s.CacheTTL != 24*time.Hour {
			t.Errorf("expected 1 day TTL, got %v", s.CacheTTL)
		}
		if s.CachePath != path {
			t.Errorf("expected cache path override, got %q", s.CachePath)
		}
		if s.Aliases["initech labs"] != "Initech" {
			t.Errorf("expected alias carried through, got %v", s.Aliases)
		}
		if len(s.BlockedDomains) != 1 {
			t.Errorf("expected blocked domain carried through, got %v", s.BlockedDomains)
		}
	})
}

func TestMergeConfig(t *testing.T) {
	base := &Config{
		DefaultFormat: "table",
		Scrape:        &ScrapeOverrides{DelayMS: intPtr(1000), JitterMS: intPtr(100)},
	}
	local := &Config{
		DefaultFormat: "json",
		Scrape:        &ScrapeOverrides{DelayMS: intPtr(2000)},
		Orgs:          &OrgOverrides{BlockedDomains: []string{"x.example.com"}},
	}

	merged := mergeConfig(base, local)

	if merged.DefaultFormat != "json" {
		t.Errorf("local format should win, got %q", merged.DefaultFormat)
	}
	if *merged.Scrape.DelayMS != 2000 {
		t.Errorf("local delay should win, got %d", *merged.Scrape.DelayMS)
	}
	if *merged.Scrape.JitterMS != 100 {
		t.Errorf("base jitter should survive, got %d", *merged.Scrape.JitterMS)
	}
	if len(merged.Orgs.BlockedDomains) != 1 {
		t.Errorf("local org section should be adopted, got %+v", merged.Orgs)
	}
}
