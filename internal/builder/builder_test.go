package builder

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"aurelsite/internal/config"
)

// echoRenderer wraps the source in a marker so tests can see order and
// content without depending on goldmark's output.
type echoRenderer struct{}

func (echoRenderer) Render(source []byte) (string, error) {
	return "[" + strings.TrimSpace(string(source)) + "]", nil
}

type failingRenderer struct{ bad string }

func (f failingRenderer) Render(source []byte) (string, error) {
	if strings.Contains(string(source), f.bad) {
		return "", errors.New("cannot render")
	}
	return echoRenderer{}.Render(source)
}

type stubStyles struct{ err error }

func (s stubStyles) Compile(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "body{margin:0}", nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testSite(t *testing.T) config.SiteConfig {
	t.Helper()
	root := t.TempDir()
	site := config.Default()
	site.ContentDir = filepath.Join(root, "content")
	site.OutputDir = filepath.Join(root, "live")
	site.Stylesheet = filepath.Join(root, "assets", "styles", "main.scss")
	site.TemplateDir = filepath.Join(root, "templates")
	return site
}

func testOptions(buf io.Writer) BuildOptions {
	return BuildOptions{
		Renderer: echoRenderer{},
		Styles:   stubStyles{},
		Logger:   log.New(buf, "", 0),
		Now:      func() time.Time { return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC) },
	}
}

func mustTemplates(t *testing.T, dir string) *template.Template {
	t.Helper()
	tmpl, err := LoadTemplates(dir)
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}
	return tmpl
}

func readPage(t *testing.T, site config.SiteConfig, section string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(site.OutputDir, PageFileName(section)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestBuildSite_OnePagePerSection(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "2026-01-01-First.md"), "first")
	writeFile(t, filepath.Join(site.ContentDir, "People", "alice.md"), "alice")
	if err := os.MkdirAll(filepath.Join(site.ContentDir, "Empty"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(site.ContentDir, "stray.md"), "not a section")

	report, err := BuildSite(site, mustTemplates(t, site.TemplateDir), testOptions(io.Discard))
	if err != nil {
		t.Fatalf("BuildSite() error = %v", err)
	}
	if report.Pages != 3 {
		t.Errorf("report.Pages = %d, want 3", report.Pages)
	}
	if !report.StylesCompiled {
		t.Error("report.StylesCompiled = false, want true")
	}

	entries, err := os.ReadDir(site.OutputDir)
	if err != nil {
		t.Fatal(err)
	}
	var pages []string
	for _, e := range entries {
		if !e.IsDir() && e.Name() != ManifestFile {
			pages = append(pages, e.Name())
		}
	}
	want := []string{"Announcements.html", "Empty.html", "People.html"}
	if !slices.Equal(pages, want) {
		t.Errorf("generated pages = %v, want %v", pages, want)
	}

	css, err := os.ReadFile(site.CSSOutputPath())
	if err != nil {
		t.Fatalf("stylesheet not written: %v", err)
	}
	if string(css) != "body{margin:0}" {
		t.Errorf("stylesheet = %q", css)
	}
}

func TestBuildSite_HighlightStylesheet(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "code.md"), "```go\nfunc main() {}\n```\n")
	opts := testOptions(io.Discard)
	opts.Renderer = NewMarkdownRenderer(false)

	if _, err := BuildSite(site, mustTemplates(t, site.TemplateDir), opts); err != nil {
		t.Fatal(err)
	}

	css, err := os.ReadFile(site.HighlightCSSOutputPath())
	if err != nil {
		t.Fatalf("highlight stylesheet not written: %v", err)
	}
	for _, want := range []string{"/* PreWrapper */ .chroma {", ".chroma .k {", ".chroma .c {"} {
		if !strings.Contains(string(css), want) {
			t.Errorf("highlight stylesheet missing %q:\n%s", want, css)
		}
	}

	page := readPage(t, site, "About")
	for _, want := range []string{
		`<link rel="stylesheet" href="css/highlight.css">`,
		`<pre class="chroma">`,
		`<span class="kd">func</span>`,
	} {
		if !strings.Contains(page, want) {
			t.Errorf("About page missing %q\n%s", want, page)
		}
	}
}

func TestWriteHighlightCSS_UnknownStyle(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "highlight.css")
	if err := WriteHighlightCSS(path, "no-such-style"); err != nil {
		t.Fatal(err)
	}
	css, _ := os.ReadFile(path)
	if !strings.Contains(string(css), ".chroma {") {
		t.Errorf("fallback stylesheet = %q", css)
	}
}

func TestBuildSite_EmptySectionHasNavBar(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	for _, s := range []string{"About", "Contact"} {
		if err := os.MkdirAll(filepath.Join(site.ContentDir, s), 0755); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := BuildSite(site, mustTemplates(t, site.TemplateDir), testOptions(io.Discard)); err != nil {
		t.Fatal(err)
	}

	page := readPage(t, site, "Contact")
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<link rel="stylesheet" href="css/style.css">`,
		`<title>Contact - Aurel Systems</title>`,
		`<li><a href="About.html">About</a></li><li class="active"><a href="Contact.html">Contact</a></li>`,
		`<body class="">`,
		"&copy; 2026 Aurel Systems Inc.",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("Contact page missing %q\n%s", want, page)
		}
	}
}

func TestBuildSite_ThemeAndCards(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "People", "config"), "base: base\ncards: classic\n")
	writeFile(t, filepath.Join(site.ContentDir, "People", "bob.md"), "bob")
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "config"), "cards: colorful")
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "2026-01-01-First.md"), "first")
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "2025-06-01-Second.md"), "second")
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "header.md"), "HEADER")
	writeFile(t, filepath.Join(site.ContentDir, "Announcements", "footer.md"), "FOOTER")

	if _, err := BuildSite(site, mustTemplates(t, site.TemplateDir), testOptions(io.Discard)); err != nil {
		t.Fatal(err)
	}

	people := readPage(t, site, "People")
	if !strings.Contains(people, `<body class="theme-people-classic">`) {
		t.Error("People page missing theme-people-classic body class")
	}
	if !strings.Contains(people, `<div class="team-grid"><div class="team-card"><div>[bob]</div></div></div>`) {
		t.Errorf("People page missing team card markup:\n%s", people)
	}

	ann := readPage(t, site, "Announcements")
	if !strings.Contains(ann, `<body class="theme-announcement-colorful">`) {
		t.Error("Announcements page missing theme-announcement-colorful body class")
	}
	second := strings.Index(ann, "[second]")
	first := strings.Index(ann, "[first]")
	if second < 0 || first < 0 || second > first {
		t.Errorf("dated posts out of order: second at %d, first at %d", second, first)
	}
	for _, reserved := range []string{"HEADER", "FOOTER"} {
		if strings.Contains(ann, reserved) {
			t.Errorf("reserved file content %q rendered", reserved)
		}
	}
}

func TestBuildSite_Idempotent(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "intro.md"), "intro")
	writeFile(t, filepath.Join(site.ContentDir, "Solutions", "a.md"), "a")
	tmpl := mustTemplates(t, site.TemplateDir)

	if _, err := BuildSite(site, tmpl, testOptions(io.Discard)); err != nil {
		t.Fatal(err)
	}
	firstRun := readPage(t, site, "About") + readPage(t, site, "Solutions")
	if _, err := BuildSite(site, tmpl, testOptions(io.Discard)); err != nil {
		t.Fatal(err)
	}
	secondRun := readPage(t, site, "About") + readPage(t, site, "Solutions")
	if firstRun != secondRun {
		t.Error("second run produced different output")
	}
}

func TestBuildSite_MissingContentRoot(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	var logs bytes.Buffer
	report, err := BuildSite(site, mustTemplates(t, site.TemplateDir), testOptions(&logs))
	if err != nil {
		t.Fatalf("BuildSite() error = %v, want nil", err)
	}
	if report.Pages != 0 {
		t.Errorf("report.Pages = %d, want 0", report.Pages)
	}
	if !strings.Contains(logs.String(), "No sections found") {
		t.Errorf("log = %q, want a no-sections line", logs.String())
	}
}

func TestBuildSite_StylesFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "intro.md"), "intro")
	var logs bytes.Buffer
	opts := testOptions(&logs)
	opts.Styles = stubStyles{err: errors.New("sass exploded")}

	report, err := BuildSite(site, mustTemplates(t, site.TemplateDir), opts)
	if err != nil {
		t.Fatalf("BuildSite() error = %v", err)
	}
	if report.StylesCompiled {
		t.Error("report.StylesCompiled = true, want false")
	}
	if report.Pages != 1 {
		t.Errorf("report.Pages = %d, want 1", report.Pages)
	}
	if !strings.Contains(logs.String(), "Error compiling SASS: sass exploded") {
		t.Errorf("log = %q, want the compiler error", logs.String())
	}
}

func TestBuildSite_BadFileIsSkipped(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "a.md"), "good")
	writeFile(t, filepath.Join(site.ContentDir, "About", "b.md"), "poison")
	writeFile(t, filepath.Join(site.ContentDir, "About", "c.md"), "also good")
	var logs bytes.Buffer
	opts := testOptions(&logs)
	opts.Renderer = failingRenderer{bad: "poison"}

	report, err := BuildSite(site, mustTemplates(t, site.TemplateDir), opts)
	if err != nil {
		t.Fatalf("BuildSite() error = %v", err)
	}
	if report.SkippedFiles != 1 {
		t.Errorf("report.SkippedFiles = %d, want 1", report.SkippedFiles)
	}
	page := readPage(t, site, "About")
	if !strings.Contains(page, "[good]") || !strings.Contains(page, "[also good]") {
		t.Errorf("good files missing from page:\n%s", page)
	}
	if !strings.Contains(logs.String(), filepath.Join("About", "b.md")) {
		t.Errorf("log = %q, want the failing file path", logs.String())
	}
}

func TestBuildSite_CleanDestination(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "a.md"), "a")
	writeFile(t, filepath.Join(site.ContentDir, "Removed", "r.md"), "r")
	tmpl := mustTemplates(t, site.TemplateDir)
	if _, err := BuildSite(site, tmpl, testOptions(io.Discard)); err != nil {
		t.Fatal(err)
	}

	if err := os.RemoveAll(filepath.Join(site.ContentDir, "Removed")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(site.OutputDir, "index.html"), "hand-placed landing page")
	writeFile(t, filepath.Join(site.OutputDir, "logo.png"), "png")

	var logs bytes.Buffer
	opts := testOptions(&logs)
	opts.CleanDestination = true
	if _, err := BuildSite(site, tmpl, opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(site.OutputDir, "Removed.html")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("stale page still present, stat err = %v", err)
	}
	for _, kept := range []string{"About.html", "index.html", "logo.png"} {
		if _, err := os.Stat(filepath.Join(site.OutputDir, kept)); err != nil {
			t.Errorf("%s removed by clean: %v", kept, err)
		}
	}
	if !strings.Contains(logs.String(), "Removed stale page: Removed.html") {
		t.Errorf("log = %q", logs.String())
	}

	manifest, err := os.ReadFile(filepath.Join(site.OutputDir, ManifestFile))
	if err != nil {
		t.Fatal(err)
	}
	if string(manifest) != "About.html\n" {
		t.Errorf("manifest = %q, want only About.html", manifest)
	}
}

func TestBuildSite_CleanWithoutManifest(t *testing.T) {
	t.Parallel()

	site := testSite(t)
	writeFile(t, filepath.Join(site.ContentDir, "About", "a.md"), "a")
	writeFile(t, filepath.Join(site.OutputDir, "index.html"), "landing")

	opts := testOptions(io.Discard)
	opts.CleanDestination = true
	if _, err := BuildSite(site, mustTemplates(t, site.TemplateDir), opts); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(site.OutputDir, "index.html")); err != nil {
		t.Errorf("unknown page removed without a manifest: %v", err)
	}
}

func TestLoadTemplates_Override(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LayoutFile), `{{ define "main" }}<p>{{ .Title }}|{{ .Base }}</p>{{ end }}`)
	tmpl := mustTemplates(t, dir)

	out := filepath.Join(t.TempDir(), "x.html")
	if err := renderPage(tmpl, out, PageData{Title: "About", Base: "base"}); err != nil {
		t.Fatal(err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "<p>About|base</p>" {
		t.Errorf("override output = %q", got)
	}
}

func TestLoadTemplates_OverrideWithoutMain(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, LayoutFile), `{{ define "page" }}x{{ end }}`)
	if _, err := LoadTemplates(dir); err == nil {
		t.Error("LoadTemplates() error = nil, want missing main template error")
	}
}
