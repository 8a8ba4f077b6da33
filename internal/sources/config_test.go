package sources

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("failed to write config fixture: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("EmptyPathGivesEmptyConfig", func(t *testing.T) {
		cfg, err := LoadConfig("")
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if len(cfg.Keywords) != 0 || len(cfg.Sources) != 0 || cfg.WindowDays != 0 {
			t.Errorf("empty path must give a zero config, got %+v", cfg)
		}
	})

	t.Run("MissingFileGivesEmptyConfig", func(t *testing.T) {
		cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		if err != nil {
			t.Fatalf("missing file must not be an error: %v", err)
		}
		if len(cfg.Sources) != 0 {
			t.Errorf("missing file must give a zero config, got %+v", cfg)
		}
	})

	t.Run("MalformedYAMLFails", func(t *testing.T) {
		path := writeConfig(t, "keywords: [unterminated")
		if _, err := LoadConfig(path); err == nil {
			t.Error("malformed YAML must be an error")
		}
	})

	t.Run("FullConfigParses", func(t *testing.T) {
		path := writeConfig(t, `
keywords: [party, karaoke]
window_days: 45
sources:
  - name: Kampala Nights
    url: https://kampalanights.test/events
    selectors:
      card: ".listing"
      title: ".listing-title"
      venue: ".listing-venue"
      location: ".listing-area"
      date: ".listing-date"
    date_grammars:
      - layout: "2 January 2006"
        has_year: true
        strip_ordinals: true
    time_layouts: ["3:04 PM"]
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig returned error: %v", err)
		}
		if cfg.WindowDays != 45 {
			t.Errorf("WindowDays = %d, want 45", cfg.WindowDays)
		}
		if len(cfg.Keywords) != 2 || cfg.Keywords[1] != "karaoke" {
			t.Errorf("Keywords = %v", cfg.Keywords)
		}
		if len(cfg.Sources) != 1 || cfg.Sources[0].Selectors.Card != ".listing" {
			t.Errorf("Sources = %+v", cfg.Sources)
		}
		if !cfg.Sources[0].DateGrammars[0].StripOrdinals {
			t.Error("strip_ordinals must round-trip from YAML")
		}
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Run("KeywordsFallBackToTaxonomy", func(t *testing.T) {
		cfg := &Config{}
		got := cfg.EffectiveKeywords()
		if len(got) != len(DefaultKeywords) {
			t.Errorf("EffectiveKeywords = %v, want the default taxonomy", got)
		}
	})

	t.Run("ConfiguredKeywordsWin", func(t *testing.T) {
		cfg := &Config{Keywords: []string{"rave"}}
		got := cfg.EffectiveKeywords()
		if len(got) != 1 || got[0] != "rave" {
			t.Errorf("EffectiveKeywords = %v, want [rave]", got)
		}
	})

	t.Run("ZeroWindowIsUnbounded", func(t *testing.T) {
		cfg := &Config{}
		if cfg.Window() != 0 {
			t.Errorf("Window = %v, want 0", cfg.Window())
		}
	})

	t.Run("WindowDaysToDuration", func(t *testing.T) {
		cfg := &Config{WindowDays: 30}
		if got := cfg.Window(); got != 30*24*time.Hour {
			t.Errorf("Window = %v, want 720h", got)
		}
	})
}

func TestEffectiveSources(t *testing.T) {
	t.Run("NoOverridesGivesBuiltins", func(t *testing.T) {
		cfg := &Config{}
		got := cfg.EffectiveSources()
		want := Builtin()
		if len(got) != len(want) {
			t.Fatalf("sources = %d, want %d builtins", len(got), len(want))
		}
		for i := range got {
			if got[i].Name != want[i].Name {
				t.Errorf("source[%d] = %q, want %q", i, got[i].Name, want[i].Name)
			}
			if !got[i].Enabled {
				t.Errorf("builtin %q must be enabled by default", got[i].Name)
			}
		}
	})

	t.Run("OverrideByNamePatchesOnlySetFields", func(t *testing.T) {
		disabled := false
		cfg := &Config{Sources: []SourceDef{{
			Name:    "Quicket Uganda",
			Enabled: &disabled,
		}}}

		var quicket *Source
		srcs := cfg.EffectiveSources()
		for i := range srcs {
			if srcs[i].Name == "Quicket Uganda" {
				quicket = &srcs[i]
			}
		}
		if quicket == nil {
			t.Fatal("Quicket Uganda missing from effective sources")
		}
		if quicket.Enabled {
			t.Error("override must disable the source")
		}
		if !quicket.Render || quicket.WaitSelector == "" {
			t.Error("unset override fields must keep the builtin values")
		}
	})

	t.Run("UnknownNameAppendsNewSource", func(t *testing.T) {
		cfg := &Config{Sources: []SourceDef{{
			Name:      "Kampala Nights",
			URL:       "https://kampalanights.test/events",
			Selectors: &SelectorMap{Card: ".listing", Title: ".t", Venue: ".v", Location: ".l", Date: ".d"},
		}}}

		srcs := cfg.EffectiveSources()
		if len(srcs) != len(Builtin())+1 {
			t.Fatalf("sources = %d, want builtins plus one", len(srcs))
		}
		added := srcs[len(srcs)-1]
		if added.Name != "Kampala Nights" || !added.Enabled {
			t.Errorf("appended source = %+v, want enabled Kampala Nights", added)
		}
		if added.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want the 30s default", added.Timeout)
		}
		if len(added.TimeLayouts) == 0 {
			t.Error("appended source must inherit the default time layouts")
		}
	})

	t.Run("TimeoutSecondsOverride", func(t *testing.T) {
		cfg := &Config{Sources: []SourceDef{{
			Name:           "AllEvents Kampala",
			TimeoutSeconds: 90,
		}}}
		srcs := cfg.EffectiveSources()
		if srcs[0].Timeout != 90*time.Second {
			t.Errorf("Timeout = %v, want 90s", srcs[0].Timeout)
		}
	})
}

func TestBuiltinSourcesAreComplete(t *testing.T) {
	for _, src := range Builtin() {
		t.Run(src.Name, func(t *testing.T) {
			if src.URL == "" {
				t.Error("builtin source missing URL")
			}
			sel := src.Selectors
			if sel.Card == "" || sel.Title == "" || sel.Venue == "" || sel.Location == "" || sel.Date == "" {
				t.Errorf("builtin source missing required selectors: %+v", sel)
			}
			if len(src.DateGrammars) == 0 {
				t.Error("builtin source has no date grammars")
			}
			if src.Render && src.WaitSelector == "" {
				t.Error("rendered source must declare a wait selector")
			}
		})
	}
}
