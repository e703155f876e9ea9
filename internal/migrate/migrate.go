// Package migrate moves pages saved from the old site into the flat layout
// the generator serves, rewriting absolute links to the new file names.
package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// IndexFile is the page each saved directory is expected to hold.
const IndexFile = "index.html"

// ErrNoDomain is returned when Options.Domain is empty.
var ErrNoDomain = errors.New("migrate: no domain to rewrite")

// Options configures Migrate.
type Options struct {
	SourceDir string
	DestDir   string
	// Domain is the old site's host, e.g. "www.aurelsystems.com".
	Domain string
	Logger *log.Logger
}

// Report counts what a Migrate or Flatten run did.
type Report struct {
	Found  int
	Copied int
	Failed int
}

// Job is one page to move: Source is the saved index.html, Name the flat
// file name it is written under.
type Job struct {
	Source string
	Name   string
}

// SlugName turns a directory path relative to the source root into its
// flat page name, "a/b" becoming "a_b.html".
func SlugName(rel string) string {
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "_") + ".html"
}

// Scan finds every index.html below sourceDir, excluding the root's own.
// It returns the jobs and the slug map used for link rewriting, which
// always maps "" to index.html.
func Scan(sourceDir string) ([]Job, map[string]string, error) {
	slugs := map[string]string{"": IndexFile}
	var jobs []Job

	err := filepath.WalkDir(sourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != IndexFile {
			return nil
		}
		rel, err := filepath.Rel(sourceDir, filepath.Dir(path))
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		slug := filepath.ToSlash(rel)
		slugs[slug] = SlugName(rel)
		jobs = append(jobs, Job{Source: path, Name: slugs[slug]})
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].Name < jobs[j].Name })
	return jobs, slugs, nil
}

// LinkRewriter rewrites absolute links to one domain using a slug map.
type LinkRewriter struct {
	pattern *regexp.Regexp
	slugs   map[string]string
}

// NewLinkRewriter matches http and https URLs on domain up to the next quote.
func NewLinkRewriter(domain string, slugs map[string]string) *LinkRewriter {
	return &LinkRewriter{
		pattern: regexp.MustCompile(`https?://` + regexp.QuoteMeta(domain) + `/([^"']*)`),
		slugs:   slugs,
	}
}

// Rewrite replaces each known URL with its flat file name. The site root
// maps through the slug map to index.html; unknown paths are left as-is.
func (r *LinkRewriter) Rewrite(content []byte) []byte {
	return r.pattern.ReplaceAllFunc(content, func(match []byte) []byte {
		sub := r.pattern.FindSubmatch(match)
		path := strings.TrimRight(string(sub[1]), "/")
		if name, ok := r.slugs[path]; ok {
			return []byte(name)
		}
		if path == "" {
			return []byte("../" + IndexFile)
		}
		return match
	})
}

// Migrate copies every saved page into DestDir under its flat name with
// links to Domain rewritten. A page that fails is logged and skipped.
func Migrate(opts Options) (Report, error) {
	var report Report
	if opts.Domain == "" {
		return report, ErrNoDomain
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}

	if _, err := os.Stat(opts.SourceDir); err != nil {
		return report, fmt.Errorf("source directory: %w", err)
	}
	if err := os.MkdirAll(opts.DestDir, 0755); err != nil {
		return report, err
	}

	logger.Println("Scanning directories...")
	jobs, slugs, err := Scan(opts.SourceDir)
	if err != nil {
		return report, err
	}
	report.Found = len(jobs)
	logger.Printf("Found %d files to process.", len(jobs))

	rewriter := NewLinkRewriter(opts.Domain, slugs)
	for _, job := range jobs {
		content, err := os.ReadFile(job.Source)
		if err == nil {
			err = os.WriteFile(filepath.Join(opts.DestDir, job.Name), rewriter.Rewrite(content), 0644)
		}
		if err != nil {
			logger.Printf("Error processing %s: %v", job.Source, err)
			report.Failed++
			continue
		}
		report.Copied++
	}

	logger.Println("Migration complete.")
	return report, nil
}
