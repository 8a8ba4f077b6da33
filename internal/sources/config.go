package sources

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultKeywords is the fixed taxonomy of enjoyment keywords a candidate's
// name+description must contain to pass the relevance filter. Overridable via
// config so extending the taxonomy never touches pipeline logic.
var DefaultKeywords = []string{"party", "trip", "tour", "concert", "festival", "brunch"}

// Config is the business configuration for a scraping run. All fields are
// optional; zero values fall back to built-in defaults.
type Config struct {
	// Keywords overrides the relevance keyword set
	Keywords []string `yaml:"keywords,omitempty"`
	// WindowDays bounds how far into the future an event may start.
	// 0 means no upper bound.
	WindowDays int `yaml:"window_days,omitempty"`
	// Sources adds new sources or overrides built-in ones by name
	Sources []SourceDef `yaml:"sources,omitempty"`
}

// SourceDef is the YAML shape of a source adapter. For a name matching a
// built-in source it overrides only the fields that are set; otherwise it
// defines a new source and must carry a full selector map and grammar list.
type SourceDef struct {
	Name           string        `yaml:"name"`
	URL            string        `yaml:"url,omitempty"`
	Enabled        *bool         `yaml:"enabled,omitempty"`
	Render         *bool         `yaml:"render,omitempty"`
	WaitSelector   string        `yaml:"wait_selector,omitempty"`
	TimeoutSeconds int           `yaml:"timeout_seconds,omitempty"`
	Selectors      *SelectorMap  `yaml:"selectors,omitempty"`
	DateGrammars   []DateGrammar `yaml:"date_grammars,omitempty"`
	TimeLayouts    []string      `yaml:"time_layouts,omitempty"`
}

// LoadConfig reads a YAML config file. A missing path returns an empty
// config rather than an error.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// EffectiveKeywords returns the configured keyword set, or the default
// taxonomy when none is configured
func (c *Config) EffectiveKeywords() []string {
	if len(c.Keywords) > 0 {
		return c.Keywords
	}
	return DefaultKeywords
}

// Window returns the configured recency upper bound as a duration.
// Zero means unbounded.
func (c *Config) Window() time.Duration {
	if c.WindowDays <= 0 {
		return 0
	}
	return time.Duration(c.WindowDays) * 24 * time.Hour
}

// EffectiveSources merges the config's source definitions over the built-in
// adapters. Matching is by name.
func (c *Config) EffectiveSources() []Source {
	merged := Builtin()

	for _, def := range c.Sources {
		found := false
		for i := range merged {
			if merged[i].Name == def.Name {
				applyDef(&merged[i], def)
				found = true
				break
			}
		}
		if !found {
			src := Source{
				Name:        def.Name,
				Enabled:     true,
				Timeout:     30 * time.Second,
				TimeLayouts: defaultTimeLayouts,
			}
			applyDef(&src, def)
			merged = append(merged, src)
		}
	}

	return merged
}

func applyDef(src *Source, def SourceDef) {
	if def.URL != "" {
		src.URL = def.URL
	}
	if def.Enabled != nil {
		src.Enabled = *def.Enabled
	}
	if def.Render != nil {
		src.Render = *def.Render
	}
	if def.WaitSelector != "" {
		src.WaitSelector = def.WaitSelector
	}
	if def.TimeoutSeconds > 0 {
		src.Timeout = time.Duration(def.TimeoutSeconds) * time.Second
	}
	if def.Selectors != nil {
		src.Selectors = *def.Selectors
	}
	if len(def.DateGrammars) > 0 {
		src.DateGrammars = def.DateGrammars
	}
	if len(def.TimeLayouts) > 0 {
		src.TimeLayouts = def.TimeLayouts
	}
}
