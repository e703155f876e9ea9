package preview

import (
	"bytes"
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testSCSS = `
$people-themes: ('classic-corporate': (a: 1), 'warm-minimal': (a: 2));
$announcement-themes: ('colorful': (a: 1), "dark": (a: 2));
`

const testPeople = `Ada Lovelace
Chief Engineer
Writes the first programs.
LinkedIn
GitHub

Too Short
Only two lines

Grace Hopper
Compiler Lead
Finds the bugs.
Personal site
`

type okCompiler struct{}

func (okCompiler) Compile(string) (string, error) { return ".x{}", nil }

func setupStyles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return filepath.Join(dir, "main.scss")
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"classic-corporate": "Classic Corporate",
		"dark":              "Dark",
		"warm-minimal-2":    "Warm Minimal 2",
	}
	for in, want := range tests {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParsePeople(t *testing.T) {
	t.Parallel()

	people := ParsePeople(testPeople)
	if len(people) != 2 {
		t.Fatalf("ParsePeople() returned %d people, want 2", len(people))
	}

	ada := people[0]
	if ada.Name != "Ada Lovelace" || ada.Role != "Chief Engineer" || ada.Description != "Writes the first programs." {
		t.Errorf("first person = %+v", ada)
	}
	if len(ada.Links) != 2 || ada.Links[0].Icon != platformIcons[0].icon || ada.Links[1].Icon != platformIcons[1].icon {
		t.Errorf("first person links = %+v", ada.Links)
	}
	if !strings.HasSuffix(ada.Avatar, "img=68") {
		t.Errorf("first avatar = %q", ada.Avatar)
	}

	grace := people[1]
	if len(grace.Links) != 1 || grace.Links[0].Icon != defaultIcon {
		t.Errorf("second person links = %+v", grace.Links)
	}
	if !strings.HasSuffix(grace.Avatar, "img=12") {
		t.Errorf("second avatar = %q", grace.Avatar)
	}
}

func TestParseParagraphs(t *testing.T) {
	t.Parallel()

	got := ParseParagraphs("  first  \n\n\nsecond\n   \n")
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Errorf("ParseParagraphs() = %q", got)
	}
}

func TestGenerate_People(t *testing.T) {
	t.Parallel()

	stylesheet := setupStyles(t, map[string]string{
		"main.scss":           testSCSS,
		"checkout_people.txt": testPeople,
	})

	out, err := Generate(People, stylesheet)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	page, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`<option value="classic-corporate">Classic Corporate</option>`,
		`<option value="warm-minimal">Warm Minimal</option>`,
		`id="wrapper" class="theme-people-classic-corporate"`,
		`<h3>Ada Lovelace</h3>`,
		`<h3>Grace Hopper</h3>`,
		`["classic-corporate","warm-minimal"]`,
	} {
		if !strings.Contains(string(page), want) {
			t.Errorf("people page missing %q", want)
		}
	}
	if strings.Contains(string(page), "Too Short") {
		t.Error("short block should be skipped")
	}
}

func TestGenerate_Announcements(t *testing.T) {
	t.Parallel()

	stylesheet := setupStyles(t, map[string]string{
		"main.scss":                  testSCSS,
		"checkout_announcements.txt": "Big news today.\n\nMore details follow.\n",
	})

	out, err := Generate(Announcements, stylesheet)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	page, _ := os.ReadFile(out)
	for _, want := range []string{
		`<option value="dark">Dark</option>`,
		`class="theme-announcement-colorful"`,
		`<div class="post-excerpt">`,
		`<p>Big news today.</p>`,
		`<p>More details follow.</p>`,
	} {
		if !strings.Contains(string(page), want) {
			t.Errorf("announcement page missing %q", want)
		}
	}
}

func TestGenerate_FallbackTheme(t *testing.T) {
	t.Parallel()

	stylesheet := setupStyles(t, map[string]string{
		"main.scss":                  "body { color: red; }",
		"checkout_announcements.txt": "hello",
	})
	out, err := Generate(Announcements, stylesheet)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	page, _ := os.ReadFile(out)
	if !strings.Contains(string(page), `class="theme-announcement-colorful"`) {
		t.Error("expected fallback theme class")
	}
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing text", func(t *testing.T) {
		t.Parallel()
		stylesheet := setupStyles(t, map[string]string{"main.scss": testSCSS})
		if _, err := Generate(People, stylesheet); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("Generate() error = %v, want not exist", err)
		}
	})

	t.Run("no usable people", func(t *testing.T) {
		t.Parallel()
		stylesheet := setupStyles(t, map[string]string{
			"main.scss":           testSCSS,
			"checkout_people.txt": "just\ntwo",
		})
		if _, err := Generate(People, stylesheet); !errors.Is(err, ErrNoContent) {
			t.Errorf("Generate() error = %v, want ErrNoContent", err)
		}
	})
}

func TestGenerateAll(t *testing.T) {
	t.Parallel()

	stylesheet := setupStyles(t, map[string]string{
		"main.scss":           testSCSS,
		"checkout_people.txt": testPeople,
	})
	var logs bytes.Buffer
	err := GenerateAll(stylesheet, okCompiler{}, log.New(&logs, "", 0))
	if err == nil {
		t.Fatal("GenerateAll() error = nil, want the missing announcements text")
	}

	dir := filepath.Dir(stylesheet)
	if _, err := os.Stat(filepath.Join(dir, "checkout_people.html")); err != nil {
		t.Errorf("people page not written: %v", err)
	}
	if css, _ := os.ReadFile(filepath.Join(dir, "main.css")); string(css) != ".x{}" {
		t.Errorf("main.css = %q", css)
	}
	if !strings.Contains(logs.String(), "Generated ") {
		t.Errorf("log = %q, want a success line", logs.String())
	}
}
