// internal/builder/highlight.go
package builder

import (
	"bytes"
	"fmt"
	"os"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	chromastyles "github.com/alecthomas/chroma/v2/styles"
)

// Code blocks carry chroma class names; the colors live in a stylesheet.
var highlightFormat = []chromahtml.Option{chromahtml.WithClasses(true)}

// WriteHighlightCSS writes the class rules of the named chroma style to
// path. Unknown names fall back to chroma's default style.
func WriteHighlightCSS(path, style string) error {
	var buf bytes.Buffer
	if err := chromahtml.New(highlightFormat...).WriteCSS(&buf, chromastyles.Get(style)); err != nil {
		return fmt.Errorf("generating highlight css: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}
