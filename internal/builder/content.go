// internal/builder/content.go
package builder

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// datedFilePattern matches post files such as 2026-01-01-MyPost.md.
var datedFilePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(.+)\.md$`)

// reservedFiles are markdown files in a section that are never rendered.
var reservedFiles = map[string]bool{
	"header.md": true,
	"footer.md": true,
}

// IsContentFile reports whether a file name is rendered as section content.
func IsContentFile(name string) bool {
	if datedFilePattern.MatchString(name) {
		return true
	}
	return strings.HasSuffix(name, ".md") && !reservedFiles[name]
}

// ContentFiles returns the renderable markdown files in dir sorted by name,
// which puts dated posts in chronological order.
func ContentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsContentFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// renderContent converts each file to HTML. A file that cannot be read or
// rendered is logged and left out; the count of such files is returned.
func renderContent(dir string, names []string, r Renderer, logger *log.Logger) ([]string, int) {
	fragments := make([]string, 0, len(names))
	skipped := 0
	for _, name := range names {
		path := filepath.Join(dir, name)
		html, err := renderFile(path, r)
		if err != nil {
			logger.Printf("Error processing %s: %v", path, err)
			skipped++
			continue
		}
		fragments = append(fragments, html)
	}
	return fragments, skipped
}

func renderFile(path string, r Renderer) (string, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	html, err := r.Render(source)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return html, nil
}

// postsSections share a single posts container around their cards.
var postsSections = map[string]bool{
	"Announcements": true,
	"Solutions":     true,
	"About":         true,
}

// AssembleBody wraps every fragment in a card and, for some sections, the
// cards in a shared container.
func AssembleBody(section string, fragments []string) string {
	var b strings.Builder
	switch {
	case section == "People":
		b.WriteString(`<div class="team-grid">`)
	case postsSections[section]:
		b.WriteString(`<div class="posts-container">`)
	}

	for _, fragment := range fragments {
		if section == "People" {
			b.WriteString(`<div class="team-card"><div>`)
			b.WriteString(fragment)
			b.WriteString(`</div></div>`)
			continue
		}
		b.WriteString(`<div class="post-card"><div class="post-content">`)
		b.WriteString(fragment)
		b.WriteString(`</div></div>`)
	}

	if section == "People" || postsSections[section] {
		b.WriteString(`</div>`)
	}
	return b.String()
}
