// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// Renderer turns raw markdown text into an HTML fragment.
type Renderer interface {
	Render(source []byte) (string, error)
}

// MarkdownRenderer renders with goldmark and, unless built unsafe, sanitizes
// the result with bluemonday.
type MarkdownRenderer struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewMarkdownRenderer builds the renderer used for section content.
func NewMarkdownRenderer(unsafe bool) *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(highlightFormat...),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithUnsafe(),
		),
	)

	r := &MarkdownRenderer{md: md}
	if !unsafe {
		// Highlighted code keeps its chroma classes.
		policy := bluemonday.UGCPolicy()
		policy.AllowStyling()
		r.sanitizer = policy
	}
	return r
}

// Render converts source to HTML. The whole file is markdown; there is no
// front matter.
func (r *MarkdownRenderer) Render(source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(source, &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}
	if r.sanitizer == nil {
		return buf.String(), nil
	}
	return string(r.sanitizer.SanitizeBytes(buf.Bytes())), nil
}
