package crawl

import (
	"bytes"
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Result is the JSON document written by SaveResults.
type Result struct {
	BaseURL    string                `json:"base_url"`
	TotalPages int                   `json:"total_pages"`
	Pages      map[string]*Page      `json:"pages"`
	LinkMap    map[string][]Backlink `json:"link_map"`
}

// Result snapshots the crawl.
func (c *Crawler) Result() Result {
	return Result{
		BaseURL:    c.base.String(),
		TotalPages: len(c.pages),
		Pages:      c.pages,
		LinkMap:    c.linkMap,
	}
}

// SaveResults writes the crawl as indented JSON to path.
func (c *Crawler) SaveResults(path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c.Result()); err != nil {
		return fmt.Errorf("encoding crawl results: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteSitemap writes every crawled URL, sorted, one per line.
func (c *Crawler) WriteSitemap(path string) error {
	urls := slices.Sorted(maps.Keys(c.pages))
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// MarkdownFileName maps a page URL to its file under the markdown dir:
// the root becomes index.md and "/about/team" becomes about_team.md.
func MarkdownFileName(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return "index.md"
	}
	slug := strings.ReplaceAll(strings.Trim(u.Path, "/"), "/", "_")
	if slug == "" {
		slug = "index"
	}
	return strings.TrimSuffix(slug, ".html") + ".md"
}

// WriteMarkdown saves the captured markdown of each page into dir and
// returns how many files were written. Pages without markdown are skipped.
// When two URLs map to the same file name the later one, in URL order, gets
// a numeric suffix.
func (c *Crawler) WriteMarkdown(dir string) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}
	written := 0
	used := make(map[string]bool)
	for _, u := range slices.Sorted(maps.Keys(c.pages)) {
		page := c.pages[u]
		if page.Markdown == "" {
			continue
		}
		body := page.Markdown + "\n"
		if page.Title != "" && !strings.HasPrefix(page.Markdown, "# ") {
			body = "# " + page.Title + "\n\n" + body
		}
		name := uniqueName(MarkdownFileName(u), used)
		if name != MarkdownFileName(u) {
			c.logger.Printf("Markdown name %s already used, writing %s as %s", MarkdownFileName(u), u, name)
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written++
	}
	return written, nil
}

func uniqueName(name string, used map[string]bool) string {
	stem := strings.TrimSuffix(name, ".md")
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s_%d.md", stem, i)
	}
	used[name] = true
	return name
}

type ranked struct {
	url   string
	count int
}

func topN(counts map[string]int, n int) []ranked {
	list := make([]ranked, 0, len(counts))
	for u, c := range counts {
		list = append(list, ranked{u, c})
	}
	slices.SortFunc(list, func(a, b ranked) int {
		if a.count != b.count {
			return cmp.Compare(b.count, a.count)
		}
		return cmp.Compare(a.url, b.url)
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}

// Summary prints the crawl statistics used to plan a migration.
func (c *Crawler) Summary(w io.Writer) {
	fmt.Fprintln(w, "\n=== Crawl Summary ===")
	fmt.Fprintf(w, "Total pages crawled: %d\n", len(c.pages))

	incoming := make(map[string]int, len(c.linkMap))
	for u, refs := range c.linkMap {
		incoming[u] = len(refs)
	}
	fmt.Fprintln(w, "\nMost linked pages:")
	for _, r := range topN(incoming, 10) {
		fmt.Fprintf(w, "  %s: %d incoming links\n", r.url, r.count)
	}

	paragraphs := make(map[string]int, len(c.pages))
	images := 0
	external := make(map[string]struct{})
	for u, p := range c.pages {
		paragraphs[u] = len(p.Paragraphs)
		images += len(p.Images)
		for _, l := range p.ExternalLinks {
			external[l.URL] = struct{}{}
		}
	}
	fmt.Fprintln(w, "\nPages with most content (by paragraphs):")
	for _, r := range topN(paragraphs, 10) {
		fmt.Fprintf(w, "  %s: %d paragraphs\n", r.url, r.count)
	}

	fmt.Fprintf(w, "\nTotal images found: %d\n", images)
	fmt.Fprintf(w, "Unique external links: %d\n", len(external))
}
