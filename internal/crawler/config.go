package crawler

import (
	"time"

	"github.com/coursehound/coursehound/internal/browser"
	"github.com/coursehound/coursehound/internal/solver"
	"github.com/coursehound/coursehound/pkg/logging"
)

// Config composes the settings of one crawl run.
type Config struct {
	// BaseURL is the site root used to absolutize relative links and
	// media references.
	BaseURL string `json:"base_url"`

	// UseBrowser selects the headless-Chrome page; false falls back
	// to plain HTTP, which cannot solve assessments.
	UseBrowser bool `json:"use_browser"`

	// MaxModules caps how many modules are crawled in total; 0 means
	// no cap. Useful for trial runs.
	MaxModules int `json:"max_modules"`

	// StableTimeout bounds the post-navigation readiness wait.
	StableTimeout time.Duration `json:"stable_timeout"`

	Browser    browser.BrowserConfig `json:"browser"`
	Solver     solver.Config         `json:"solver"`
	Pacing     PacingConfig          `json:"pacing"`
	Checkpoint CheckpointConfig      `json:"checkpoint"`
	Output     OutputConfig          `json:"output"`
	Logging    *logging.LogConfig    `json:"logging"`
}

// PacingConfig spaces navigations so the crawl stays polite.
type PacingConfig struct {
	// SettleDelay is slept after each navigation before extraction.
	SettleDelay time.Duration `json:"settle_delay"`

	// MinNavInterval is the minimum spacing between navigations.
	MinNavInterval time.Duration `json:"min_nav_interval"`

	// FailureBackoff seeds the exponential backoff applied after a
	// failed node; MaxBackoff caps it.
	FailureBackoff time.Duration `json:"failure_backoff"`
	MaxBackoff     time.Duration `json:"max_backoff"`
}

// CheckpointConfig controls periodic snapshots of the partial tree.
type CheckpointConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`

	// EveryModules writes a snapshot each time this many modules
	// complete.
	EveryModules int `json:"every_modules"`
}

// OutputConfig names where final artifacts land.
type OutputConfig struct {
	Dir           string `json:"dir"`
	WriteMarkdown bool   `json:"write_markdown"`
	WriteCSV      bool   `json:"write_csv"`
}

// DefaultConfig returns production crawl settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://learn.microsoft.com",
		UseBrowser:    true,
		StableTimeout: 10 * time.Second,
		Browser:       browser.DefaultBrowserConfig(),
		Solver:        solver.DefaultConfig(),
		Pacing: PacingConfig{
			SettleDelay:    2 * time.Second,
			MinNavInterval: time.Second,
			FailureBackoff: 5 * time.Second,
			MaxBackoff:     2 * time.Minute,
		},
		Checkpoint: CheckpointConfig{
			Enabled:      true,
			Dir:          "output/checkpoints",
			EveryModules: 1,
		},
		Output: OutputConfig{
			Dir:           "output",
			WriteMarkdown: true,
			WriteCSV:      true,
		},
		Logging: logging.DefaultLogConfig(),
	}
}

// DevelopmentConfig returns settings for quick local runs: visible
// browser, small module cap, short delays, pretty logs.
func DevelopmentConfig() Config {
	cfg := DefaultConfig()
	cfg.Browser.Headless = false
	cfg.MaxModules = 3
	cfg.Pacing.SettleDelay = 500 * time.Millisecond
	cfg.Pacing.MinNavInterval = 200 * time.Millisecond
	cfg.Solver.SettleDelay = 500 * time.Millisecond
	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "pretty"
	return cfg
}
