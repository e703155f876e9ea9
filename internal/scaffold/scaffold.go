// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"

	"aurelsite/internal/builder"
	"aurelsite/internal/config"
	"aurelsite/internal/util"
)

// ErrExists is returned when a scaffold target is already present.
var ErrExists = errors.New("already exists")

// ArchetypeFile is the content template, relative to the site root.
const ArchetypeFile = "archetypes/default.md"

// DateLayout prefixes every new content file name.
const DateLayout = "2006-01-02"

// CreateNewSite lays out a ready-to-build site in dir named name.
func CreateNewSite(name string, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}
	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("%s %w", name, ErrExists)
	}
	logger.Println("Scaffolding new site in:", name)

	site := config.Default()
	site.Title = name
	siteYAML, err := yaml.Marshal(site)
	if err != nil {
		return fmt.Errorf("encoding site.yaml: %w", err)
	}

	dirs := []string{"assets/styles", "templates", "archetypes"}
	for section := range sectionConfigs {
		dirs = append(dirs, filepath.Join(site.ContentDir, section))
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(filepath.Join(name, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":   string(siteYAML),
		ArchetypeFile: defaultArchetype,
	}
	files[site.Stylesheet] = mainSCSS
	files[filepath.Join(site.TemplateDir, builder.LayoutFile)] = builder.DefaultLayout
	files[filepath.Join(site.ContentDir, "Announcements", "2026-01-01-Welcome.md")] = welcomePost
	for section, cfg := range sectionConfigs {
		files[filepath.Join(site.ContentDir, section, builder.SectionConfigFile)] = cfg
	}
	for path, content := range files {
		if err := os.WriteFile(filepath.Join(name, path), []byte(content), 0644); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}

	logger.Println("Site scaffolded. You can now:")
	logger.Println("  cd", name)
	logger.Println("  aurelsite serve")
	return nil
}

// ContentFileName is "<date>-<Title-With-Dashes>.md". Path separators in
// the title are dropped.
func ContentFileName(title string, now time.Time) string {
	title = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return -1
		}
		return r
	}, title)
	return now.Format(DateLayout) + "-" + strings.Join(strings.Fields(title), "-") + ".md"
}

// CreateNewContent writes a dated markdown file for title into section,
// filled from the site's archetype or the built-in one. Existing files are
// never overwritten. It returns the path written.
func CreateNewContent(section, title string, site config.SiteConfig, now time.Time) (string, error) {
	if strings.TrimSpace(section) == "" || strings.ContainsAny(section, `/\`) {
		return "", fmt.Errorf("invalid section name %q", section)
	}
	if len(strings.Fields(title)) == 0 {
		return "", errors.New("title must not be empty")
	}

	archetype := defaultArchetype
	archetypePath := filepath.Join(filepath.Dir(site.ContentDir), filepath.FromSlash(ArchetypeFile))
	if raw, err := os.ReadFile(archetypePath); err == nil {
		archetype = string(raw)
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(archetype)
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}
	data := struct {
		Title   string
		Date    string
		Section string
	}{
		Title:   strings.Join(strings.Fields(title), " "),
		Date:    now.Format(DateLayout),
		Section: section,
	}
	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	path := filepath.Join(site.ContentDir, section, ContentFileName(title, now))
	written, err := util.WriteFileIfAbsent(path, output.Bytes())
	if err != nil {
		return "", err
	}
	if !written {
		return "", fmt.Errorf("%s %w", path, ErrExists)
	}
	return path, nil
}

var sectionConfigs = map[string]string{
	"About":         "base: default\ncards: none\n",
	"Announcements": "base: default\ncards: colorful\n",
	"Contact":       "base: default\ncards: classic-corporate\n",
	"People":        "base: default\ncards: classic-corporate\n",
}

const defaultArchetype = `## {{ .Title }}

*{{ .Date }}*

Write the {{ .Section }} post here.
`

const welcomePost = `## Welcome

Your new site is live. Edit the files under content/ and rebuild.
`

const mainSCSS = `$people-themes: (
  'classic-corporate': (bg: #ffffff, text: #222222, accent: #1f3a5f),
  'warm-minimal': (bg: #fbf7f2, text: #3b2f2f, accent: #b5651d),
);

$announcement-themes: (
  'colorful': (bg: #fff8e7, text: #2b2b2b, accent: #e4572e),
  'dark': (bg: #1e1e24, text: #eeeeee, accent: #76b041),
);

body {
  margin: 0;
  font-family: system-ui, sans-serif;
  line-height: 1.6;
}

.navbar {
  position: fixed;
  top: 0;
  width: 100%;
  background: #1f3a5f;

  .nav-links {
    display: flex;
    gap: 1.5rem;
    list-style: none;
    margin: 0;
    padding: 1rem 2rem;
  }

  a {
    color: #ffffff;
    text-decoration: none;
  }

  .active a {
    border-bottom: 2px solid #ffffff;
  }
}

.team-grid {
  display: grid;
  grid-template-columns: repeat(auto-fill, minmax(240px, 1fr));
  gap: 1.5rem;
  padding: 2rem;
}

.posts-container {
  max-width: 760px;
  margin: 0 auto;
  padding: 2rem;
}

footer {
  text-align: center;
  padding: 2rem;
  color: #666666;
}

@each $name, $theme in $people-themes {
  .theme-people-#{$name} {
    background: map-get($theme, bg);
    color: map-get($theme, text);

    .team-card h3 {
      color: map-get($theme, accent);
    }
  }
}

@each $name, $theme in $announcement-themes {
  .theme-announcement-#{$name} {
    background: map-get($theme, bg);
    color: map-get($theme, text);

    .post-card h2 {
      color: map-get($theme, accent);
    }
  }
}
`
