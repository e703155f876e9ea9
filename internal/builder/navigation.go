// internal/builder/navigation.go
package builder

import (
	"errors"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Navigation lists the top-level directories of contentDir in alphabetical
// order. Each one becomes a section page. Symlinks to directories count as
// sections. A missing contentDir is empty.
func Navigation(contentDir string) ([]string, error) {
	entries, err := os.ReadDir(contentDir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []string
	for _, entry := range entries {
		if isDir(contentDir, entry) {
			items = append(items, entry.Name())
		}
	}
	sort.Strings(items)
	return items, nil
}

func isDir(parent string, entry fs.DirEntry) bool {
	if entry.Type()&fs.ModeSymlink == 0 {
		return entry.IsDir()
	}
	info, err := os.Stat(filepath.Join(parent, entry.Name()))
	return err == nil && info.IsDir()
}

// NavBar renders the navigation links for every section, marking active.
func NavBar(active string, items []string) string {
	var b strings.Builder
	b.WriteString(`<nav class="navbar"><ul class="nav-links">`)
	for _, item := range items {
		b.WriteString("<li")
		if item == active {
			b.WriteString(` class="active"`)
		}
		b.WriteString(`><a href="`)
		b.WriteString(template.HTMLEscapeString(PageFileName(item)))
		b.WriteString(`">`)
		b.WriteString(template.HTMLEscapeString(item))
		b.WriteString("</a></li>")
	}
	b.WriteString("</ul></nav>")
	return b.String()
}

// PageFileName is the output file name of a section page.
func PageFileName(section string) string {
	return section + ".html"
}
