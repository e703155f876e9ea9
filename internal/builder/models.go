// internal/builder/models.go
package builder

import "html/template"

// PageData is what the layout template sees for one section page.
type PageData struct {
	Title         string // section name
	SiteTitle     string
	Organization  string
	CSSHref       string
	HighlightHref string // code highlighting rules
	ThemeClass    string
	Base          string // the section's base setting, for custom layouts
	NavBar        template.HTML
	Body          template.HTML
	Year          int
}

// Report summarizes a build run.
type Report struct {
	Pages          int
	SkippedFiles   int
	StylesCompiled bool
}
