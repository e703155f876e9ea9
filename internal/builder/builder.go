// internal/builder/builder.go
package builder

import (
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aurelsite/internal/config"
	"aurelsite/internal/styles"
)

// BuildOptions tune a single BuildSite run. Zero values pick the defaults.
type BuildOptions struct {
	// CleanDestination removes section pages left over from earlier runs.
	CleanDestination bool
	Unsafe           bool
	Debug            bool

	Renderer Renderer
	Styles   styles.Compiler
	Logger   *log.Logger
	Now      func() time.Time
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.Renderer == nil {
		o.Renderer = NewMarkdownRenderer(o.Unsafe)
	}
	if o.Styles == nil {
		o.Styles = styles.NewDartSass()
	}
	if o.Logger == nil {
		o.Logger = log.New(os.Stdout, "", 0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// BuildSite generates one page per content section into site.OutputDir,
// plus the compiled stylesheet and the code highlighting rules. Missing optional inputs and individual bad
// content files are logged rather than returned.
func BuildSite(site config.SiteConfig, tmpl *template.Template, opts BuildOptions) (Report, error) {
	opts = opts.withDefaults()
	logger := opts.Logger
	var report Report

	if err := os.MkdirAll(filepath.Dir(site.CSSOutputPath()), 0755); err != nil {
		return report, err
	}

	items, err := Navigation(site.ContentDir)
	if err != nil {
		return report, fmt.Errorf("listing sections in %s: %w", site.ContentDir, err)
	}
	if len(items) == 0 {
		logger.Printf("No sections found in %s.", site.ContentDir)
	}

	if opts.CleanDestination {
		if err := cleanPages(site.OutputDir, items, logger); err != nil {
			return report, err
		}
	}

	report.StylesCompiled = compileStyles(site, opts.Styles, logger)
	if err := WriteHighlightCSS(site.HighlightCSSOutputPath(), site.HighlightStyle); err != nil {
		return report, err
	}

	year := opts.Now().Year()
	for _, item := range items {
		skipped, err := buildSection(site, tmpl, item, items, year, opts)
		report.SkippedFiles += skipped
		if err != nil {
			return report, err
		}
		report.Pages++
	}
	if err := writeManifest(site.OutputDir, items); err != nil {
		return report, err
	}
	return report, nil
}

func buildSection(site config.SiteConfig, tmpl *template.Template, section string, items []string, year int, opts BuildOptions) (int, error) {
	logger := opts.Logger
	sectionDir := filepath.Join(site.ContentDir, section)
	outputPath := filepath.Join(site.OutputDir, PageFileName(section))
	logger.Printf("Processing Section: %s -> %s", section, PageFileName(section))

	cfg, err := ParseSectionConfig(sectionDir)
	if err != nil {
		logger.Printf("Error reading config for %s: %v", section, err)
	}

	names, err := ContentFiles(sectionDir)
	if err != nil {
		logger.Printf("Error listing %s: %v", sectionDir, err)
	}
	fragments, skipped := renderContent(sectionDir, names, opts.Renderer, logger)
	if opts.Debug {
		logger.Printf("  %d content file(s), %d skipped", len(names), skipped)
	}

	data := PageData{
		Title:         section,
		SiteTitle:     site.Title,
		Organization:  site.Organization,
		CSSHref:       config.CSSPath,
		HighlightHref: config.HighlightCSSPath,
		ThemeClass:    ThemeClass(section, cfg),
		Base:          cfg.Base(),
		NavBar:        template.HTML(NavBar(section, items)),
		Body:          template.HTML(AssembleBody(section, fragments)),
		Year:          year,
	}
	if err := renderPage(tmpl, outputPath, data); err != nil {
		return skipped, fmt.Errorf("failed to render page %s: %w", outputPath, err)
	}
	return skipped, nil
}

// compileStyles refreshes the stylesheet. Failure keeps the build going
// with whatever CSS is already in place.
func compileStyles(site config.SiteConfig, c styles.Compiler, logger *log.Logger) bool {
	dst := site.CSSOutputPath()
	logger.Printf("Compiling SASS: %s -> %s", site.Stylesheet, dst)
	if err := styles.CompileFile(c, site.Stylesheet, dst); err != nil {
		logger.Printf("Error compiling SASS: %v", err)
		return false
	}
	logger.Println("SASS compilation successful.")
	return true
}

// ManifestFile, inside the output directory, lists the section pages the
// last build wrote. Cleaning only ever removes pages named there.
const ManifestFile = ".aurelsite-pages"

// cleanPages removes pages written by an earlier build whose section no
// longer exists. Hand-placed pages and other assets are kept.
func cleanPages(outputDir string, items []string, logger *log.Logger) error {
	logger.Println("Cleaning generated pages...")
	previous, err := readManifest(outputDir)
	if err != nil {
		return err
	}
	current := make(map[string]bool, len(items))
	for _, item := range items {
		current[PageFileName(item)] = true
	}
	for _, name := range previous {
		if current[name] || name != filepath.Base(name) || !strings.HasSuffix(name, ".html") {
			continue
		}
		err := os.Remove(filepath.Join(outputDir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err == nil {
			logger.Printf("Removed stale page: %s", name)
		}
	}
	return nil
}

func readManifest(outputDir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(outputDir, ManifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading page manifest: %w", err)
	}
	return strings.Fields(string(data)), nil
}

func writeManifest(outputDir string, items []string) error {
	var b strings.Builder
	for _, item := range items {
		b.WriteString(PageFileName(item))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(filepath.Join(outputDir, ManifestFile), []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing page manifest: %w", err)
	}
	return nil
}
