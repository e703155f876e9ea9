// Package preview writes standalone theme tester pages for the card themes
// declared in the site stylesheet.
package preview

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"aurelsite/internal/styles"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Kind selects one of the two tester pages.
type Kind struct {
	Name     string // base name of the text input and html output
	MapName  string // SCSS map listing the themes
	Prefix   string // CSS class prefix applied to the wrapper
	Fallback string // initial theme when the map is empty
	template string
}

var (
	People = Kind{
		Name:     "checkout_people",
		MapName:  "people-themes",
		Prefix:   "theme-people-",
		Fallback: "classic-corporate",
		template: "people.html",
	}
	Announcements = Kind{
		Name:     "checkout_announcements",
		MapName:  "announcement-themes",
		Prefix:   "theme-announcement-",
		Fallback: "colorful",
		template: "announcements.html",
	}
)

// ErrNoContent is returned when a tester's text input has nothing usable.
var ErrNoContent = errors.New("no usable content")

// ThemeOption is one entry of the theme <select>.
type ThemeOption struct {
	Value string
	Label string
}

type pageData struct {
	CSSHref    string
	Options    []ThemeOption
	Themes     []string
	Prefix     string
	Initial    string
	Source     string
	People     []Person
	Excerpt    string
	Paragraphs []string
}

var titleCaser = cases.Title(language.English)

// DisplayName turns a theme key such as "classic-corporate" into
// "Classic Corporate".
func DisplayName(theme string) string {
	return titleCaser.String(strings.ReplaceAll(theme, "-", " "))
}

// Options pairs every theme with its display name.
func Options(themes []string) []ThemeOption {
	opts := make([]ThemeOption, 0, len(themes))
	for _, t := range themes {
		opts = append(opts, ThemeOption{Value: t, Label: DisplayName(t)})
	}
	return opts
}

// Generate writes the tester page for kind next to stylesheet, reading its
// sample text from <kind.Name>.txt in the same directory. It returns the
// path written.
func Generate(kind Kind, stylesheet string) (string, error) {
	dir := filepath.Dir(stylesheet)
	textPath := filepath.Join(dir, kind.Name+".txt")
	outPath := filepath.Join(dir, kind.Name+".html")

	raw, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", textPath, err)
	}
	scss, err := os.ReadFile(stylesheet)
	if err != nil {
		return "", fmt.Errorf("%s not found: %w", stylesheet, err)
	}

	themes, err := styles.MapKeys(string(scss), kind.MapName)
	if err != nil && !errors.Is(err, styles.ErrMapNotFound) {
		return "", err
	}

	data := pageData{
		CSSHref: "main.css",
		Options: Options(themes),
		Themes:  themes,
		Prefix:  kind.Prefix,
		Initial: kind.Fallback,
		Source:  filepath.Base(textPath),
	}
	if themes == nil {
		data.Themes = []string{}
	}
	if len(themes) > 0 {
		data.Initial = themes[0]
	}

	switch kind.Name {
	case People.Name:
		data.People = ParsePeople(string(raw))
		if len(data.People) == 0 {
			return "", fmt.Errorf("%w: no valid people data in %s", ErrNoContent, textPath)
		}
	default:
		data.Paragraphs = ParseParagraphs(string(raw))
		if len(data.Paragraphs) == 0 {
			return "", fmt.Errorf("%w: no content in %s", ErrNoContent, textPath)
		}
		data.Excerpt = data.Paragraphs[0]
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, kind.template, data); err != nil {
		return "", err
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return outPath, nil
}

// GenerateAll compiles the stylesheet to main.css beside it, then writes
// both tester pages. Each failure is logged; the joined errors are returned.
func GenerateAll(stylesheet string, compiler styles.Compiler, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}

	css := filepath.Join(filepath.Dir(stylesheet), "main.css")
	if err := styles.CompileFile(compiler, stylesheet, css); err != nil {
		logger.Printf("Error compiling SASS: %v", err)
	}

	var errs []error
	for _, kind := range []Kind{People, Announcements} {
		out, err := Generate(kind, stylesheet)
		if err != nil {
			logger.Printf("Error: %v", err)
			errs = append(errs, err)
			continue
		}
		logger.Printf("Generated %s successfully.", out)
	}
	return errors.Join(errs...)
}
