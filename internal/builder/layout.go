// internal/builder/layout.go
package builder

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
)

// DefaultLayout is the page template used when the site has no
// templates/layout.html of its own. It defines the "main" template.
//
//go:embed layout.html
var DefaultLayout string

// LayoutFile is the override looked up in the site's template directory.
const LayoutFile = "layout.html"

// LoadTemplates parses templateDir/layout.html together with any other
// .html partials next to it. Without an override the embedded default is used.
func LoadTemplates(templateDir string) (*template.Template, error) {
	layoutPath := filepath.Join(templateDir, LayoutFile)
	if _, err := os.Stat(layoutPath); errors.Is(err, fs.ErrNotExist) {
		return template.New("layout").Parse(DefaultLayout)
	} else if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseGlob(filepath.Join(templateDir, "*.html"))
	if err != nil {
		return nil, err
	}
	if tmpl.Lookup("main") == nil {
		return nil, fmt.Errorf("%s does not define a %q template", layoutPath, "main")
	}
	return tmpl, nil
}

// renderPage executes the layout and writes the page, replacing any
// existing file.
func renderPage(tmpl *template.Template, outPath string, data PageData) error {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "main", data); err != nil {
		return err
	}
	return os.WriteFile(outPath, buf.Bytes(), 0644)
}
