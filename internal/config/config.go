// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure returned by LoadSiteConfig.
var ErrInvalidConfig = errors.New("invalid site config")

// SiteConfig holds the configuration from the site.yaml file.
// It is built once at startup and handed to every command.
type SiteConfig struct {
	Title          string        `yaml:"title"`
	Organization   string        `yaml:"organization"`
	ContentDir     string        `yaml:"content_dir"`
	OutputDir      string        `yaml:"output_dir"`
	Stylesheet     string        `yaml:"stylesheet"`
	TemplateDir    string        `yaml:"template_dir"`
	HighlightStyle string        `yaml:"highlight_style"` // chroma style name
	Unsafe         bool          `yaml:"unsafe"`
	Crawl          CrawlConfig   `yaml:"crawl"`
	Migrate        MigrateConfig `yaml:"migrate"`
}

// CrawlConfig configures the live-site crawler.
type CrawlConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Delay     time.Duration `yaml:"delay"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxPages  int           `yaml:"max_pages"`
	UserAgent string        `yaml:"user_agent"`
}

// MigrateConfig configures the link migration and flatten tools.
type MigrateConfig struct {
	SourceDir  string `yaml:"source_dir"`
	DestDir    string `yaml:"dest_dir"`
	FlattenDir string `yaml:"flatten_dir"`
}

// CSSPath is where every generated page expects the compiled stylesheet,
// relative to the output directory.
const CSSPath = "css/style.css"

// HighlightCSSPath holds the code highlighting rules, next to CSSPath.
const HighlightCSSPath = "css/highlight.css"

// Default returns the configuration used when site.yaml is absent.
func Default() SiteConfig {
	return SiteConfig{
		Title:          "Aurel Systems",
		Organization:   "Aurel Systems Inc.",
		ContentDir:     "content",
		OutputDir:      "live",
		Stylesheet:     "assets/styles/main.scss",
		TemplateDir:    "templates",
		HighlightStyle: "github",
		Crawl: CrawlConfig{
			BaseURL:   "https://www.aurelsystems.com/",
			Delay:     time.Second,
			Timeout:   10 * time.Second,
			UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		},
		Migrate: MigrateConfig{
			SourceDir:  "old",
			DestDir:    "new/html_old",
			FlattenDir: "new",
		},
	}
}

// LoadSiteConfig reads path on top of Default. A missing file is not an
// error: the tool runs on defaults.
func LoadSiteConfig(path string) (SiteConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return SiteConfig{}, fmt.Errorf("could not read config file at %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("could not parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return SiteConfig{}, fmt.Errorf("%w %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, nil
}

// CSSOutputPath is the on-disk location of the compiled stylesheet.
func (c SiteConfig) CSSOutputPath() string {
	return filepath.Join(c.OutputDir, filepath.FromSlash(CSSPath))
}

// HighlightCSSOutputPath is the on-disk location of the highlighting rules.
func (c SiteConfig) HighlightCSSOutputPath() string {
	return filepath.Join(c.OutputDir, filepath.FromSlash(HighlightCSSPath))
}

// Validate checks the fields every command depends on.
func (c SiteConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
		validation.Field(&c.Stylesheet, validation.Required),
		validation.Field(&c.Crawl),
		validation.Field(&c.Migrate),
	)
}

func (c CrawlConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.BaseURL, validation.Required, is.URL),
		validation.Field(&c.Delay, validation.Min(time.Duration(0))),
		validation.Field(&c.MaxPages, validation.Min(0)),
	)
}

func (c MigrateConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.SourceDir, validation.Required),
		validation.Field(&c.DestDir, validation.Required),
		validation.Field(&c.FlattenDir, validation.Required),
	)
}
