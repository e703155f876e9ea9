// cmd/aurelsite/commands.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aurelsite/internal/builder"
	"aurelsite/internal/crawl"
	"aurelsite/internal/migrate"
	"aurelsite/internal/preview"
	"aurelsite/internal/scaffold"
	"aurelsite/internal/server"
	"aurelsite/internal/styles"
)

func runServe(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("serve", stdout, &configPath)
	port := fs.IntP("port", "p", 1313, "port for the local preview server")
	unsafe := fs.Bool("unsafe", false, "disable HTML sanitization of rendered markdown")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	logger := log.New(stdout, "", log.LstdFlags)

	build := func(clean bool) error {
		// site.yaml may have changed since the last build.
		current, err := loadSite(configPath)
		if err != nil {
			return err
		}
		return generate(current, builder.BuildOptions{
			CleanDestination: clean,
			Unsafe:           *unsafe || current.Unsafe,
			Logger:           logger,
		})
	}

	return server.Run(ctx, server.Config{
		Port:   *port,
		Root:   site.OutputDir,
		Watch:  []string{site.ContentDir, filepath.Dir(site.Stylesheet), site.TemplateDir, configPath},
		Build:  build,
		Logger: logger,
	})
}

func runThemes(args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("themes", stdout, &configPath)
	if ok, err := parse(fs, args); !ok {
		return err
	}
	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	return preview.GenerateAll(site.Stylesheet, styles.NewDartSass(), log.New(stdout, "", 0))
}

func runCrawl(ctx context.Context, args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("crawl", stdout, &configPath)
	stamp := time.Now().Format(crawlStampLayout)
	out := fs.StringP("out", "o", "crawl_results_"+stamp+".json", "JSON results file")
	sitemap := fs.String("sitemap", "sitemap_"+stamp+".txt", "sitemap file, empty to skip")
	logFile := fs.String("log-file", "crawler_output_"+stamp+".out", "copy of the console output, empty to skip")
	markdownDir := fs.String("markdown-dir", "", "write one markdown file per page into this directory")
	delay := fs.Duration("delay", -1, "pause between requests (default from site.yaml)")
	maxPages := fs.Int("max-pages", -1, "stop after this many pages, 0 for no limit (default from site.yaml)")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			return fmt.Errorf("creating crawl log: %w", err)
		}
		defer f.Close()
		stdout = io.MultiWriter(stdout, f)
	}

	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	opts := crawl.Options{
		Delay:     site.Crawl.Delay,
		Timeout:   site.Crawl.Timeout,
		MaxPages:  site.Crawl.MaxPages,
		UserAgent: site.Crawl.UserAgent,
		Markdown:  *markdownDir != "",
		Logger:    log.New(stdout, "", 0),
	}
	if *delay >= 0 {
		opts.Delay = *delay
	}
	if *maxPages >= 0 {
		opts.MaxPages = *maxPages
	}
	baseURL := site.Crawl.BaseURL
	if fs.NArg() > 0 {
		baseURL = fs.Arg(0)
	}

	c, err := crawl.New(baseURL, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Starting crawl of %s\n", baseURL)
	start := time.Now()
	crawlErr := c.Crawl(ctx)
	if errors.Is(crawlErr, context.Canceled) {
		fmt.Fprintln(stdout, "Crawl interrupted, saving partial results.")
		crawlErr = nil
	}
	fmt.Fprintf(stdout, "Crawled %d pages in %s\n", len(c.Pages()), time.Since(start).Round(time.Millisecond))

	if err := c.SaveResults(*out); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Results saved to %s\n", *out)
	if *sitemap != "" {
		if err := c.WriteSitemap(*sitemap); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Sitemap saved to %s\n", *sitemap)
	}
	if *markdownDir != "" {
		n, err := c.WriteMarkdown(*markdownDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d markdown files to %s\n", n, *markdownDir)
	}
	c.Summary(stdout)
	return crawlErr
}

// crawlStampLayout dates the default crawl output names so runs never
// overwrite each other.
const crawlStampLayout = "20060102_150405"

func runMigrate(args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("migrate", stdout, &configPath)
	source := fs.String("source", "", "directory of saved pages (default from site.yaml)")
	dest := fs.String("dest", "", "output directory (default from site.yaml)")
	domain := fs.String("domain", "", "host whose links are rewritten (default from the crawl base URL)")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	opts := migrate.Options{
		SourceDir: orDefault(*source, site.Migrate.SourceDir),
		DestDir:   orDefault(*dest, site.Migrate.DestDir),
		Domain:    *domain,
		Logger:    log.New(stdout, "", 0),
	}
	if opts.Domain == "" {
		u, err := url.Parse(site.Crawl.BaseURL)
		if err != nil {
			return fmt.Errorf("crawl base url: %w", err)
		}
		opts.Domain = u.Host
	}

	report, err := migrate.Migrate(opts)
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d pages failed to migrate", report.Failed, report.Found)
	}
	return nil
}

func runFlatten(args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("flatten", stdout, &configPath)
	root := fs.String("root", ".", "directory to search for index.html files")
	target := fs.String("target", "", "directory receiving the copies (default from site.yaml)")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	report, err := migrate.Flatten(*root, orDefault(*target, site.Migrate.FlattenDir), log.New(stdout, "", 0))
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Copied %d of %d pages.\n", report.Copied, report.Found)
	return nil
}

func runNew(args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("new", stdout, &configPath)
	if ok, err := parse(fs, args); !ok {
		return err
	}
	if fs.NArg() < 2 {
		printHelp(stdout)
		return errors.New("new needs a kind and a name")
	}

	if fs.Arg(0) == "site" {
		return scaffold.CreateNewSite(fs.Arg(1), log.New(stdout, "", 0))
	}
	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	path, err := scaffold.CreateNewContent(fs.Arg(0), strings.Join(fs.Args()[1:], " "), site, time.Now())
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, "Created:", path)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
