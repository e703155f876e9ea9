// cmd/aurelsite/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"

	"aurelsite/internal/builder"
	"aurelsite/internal/config"
)

const defaultConfigFile = "site.yaml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		os.Exit(1)
	}
}

// run dispatches one command. With no arguments it generates the site.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return runGen(nil, stdout)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "gen":
		return runGen(rest, stdout)
	case "serve":
		return runServe(ctx, rest, stdout)
	case "themes":
		return runThemes(rest, stdout)
	case "crawl":
		return runCrawl(ctx, rest, stdout)
	case "migrate":
		return runMigrate(rest, stdout)
	case "flatten":
		return runFlatten(rest, stdout)
	case "new":
		return runNew(rest, stdout)
	case "help", "-h", "--help":
		printHelp(stdout)
		return nil
	default:
		printHelp(stdout)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// newFlagSet returns a flag set with the shared --config flag.
func newFlagSet(name string, stdout io.Writer, configPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stdout)
	fs.StringVarP(configPath, "config", "c", defaultConfigFile, "site configuration file")
	return fs
}

// parse parses fs and reports whether the command should go on.
// Asking for help is not an error.
func parse(fs *flag.FlagSet, args []string) (bool, error) {
	err := fs.Parse(args)
	if errors.Is(err, flag.ErrHelp) {
		return false, nil
	}
	return err == nil, err
}

func loadSite(path string) (config.SiteConfig, error) {
	site, err := config.LoadSiteConfig(path)
	if err != nil {
		return site, fmt.Errorf("failed to load site config: %w", err)
	}
	return site, nil
}

func runGen(args []string, stdout io.Writer) error {
	var configPath string
	fs := newFlagSet("gen", stdout, &configPath)
	clean := fs.Bool("clean", true, "remove pages of sections deleted since the last build")
	unsafe := fs.Bool("unsafe", false, "disable HTML sanitization of rendered markdown")
	if ok, err := parse(fs, args); !ok {
		return err
	}

	site, err := loadSite(configPath)
	if err != nil {
		return err
	}
	logger := log.New(stdout, "", 0)
	return generate(site, builder.BuildOptions{
		CleanDestination: *clean,
		Unsafe:           *unsafe || site.Unsafe,
		Logger:           logger,
	})
}

// generate runs the full pipeline and prints the progress lines around it.
func generate(site config.SiteConfig, opts builder.BuildOptions) error {
	logger := opts.Logger
	logger.Println("Starting Site Generator...")

	tmpl, err := builder.LoadTemplates(site.TemplateDir)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	report, err := builder.BuildSite(site, tmpl, opts)
	if err != nil {
		return fmt.Errorf("site generation failed: %w", err)
	}
	if report.SkippedFiles > 0 {
		logger.Printf("Generated %d pages, skipped %d files.", report.Pages, report.SkippedFiles)
	}
	logger.Println("Done.")
	return nil
}
