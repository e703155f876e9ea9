// Package styles compiles the site stylesheet and reads theme names out of it.
package styles

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/bep/godartsass/v2"
)

// ErrCompilerUnavailable is returned when no Dart Sass binary can be found.
var ErrCompilerUnavailable = errors.New("dart sass binary not found")

// BinaryEnv names the environment variable that overrides the Dart Sass
// binary location.
const BinaryEnv = "DART_SASS_BINARY"

// Compiler turns a stylesheet source file into CSS text.
type Compiler interface {
	Compile(path string) (string, error)
}

// DartSass compiles SCSS through the Dart Sass embedded protocol.
type DartSass struct {
	// Binary is the sass executable. Empty means $DART_SASS_BINARY, then
	// "sass" on $PATH.
	Binary  string
	Timeout time.Duration
}

// NewDartSass returns a compiler using the default binary lookup.
func NewDartSass() *DartSass {
	return &DartSass{Timeout: 30 * time.Second}
}

func (d *DartSass) binary() (string, error) {
	if d.Binary != "" {
		return d.Binary, nil
	}
	if env := os.Getenv(BinaryEnv); env != "" {
		return env, nil
	}
	path, err := exec.LookPath("sass")
	if err != nil {
		return "", ErrCompilerUnavailable
	}
	return path, nil
}

// Compile transpiles the SCSS file at path. Imports resolve against the
// file's own directory.
func (d *DartSass) Compile(path string) (string, error) {
	bin, err := d.binary()
	if err != nil {
		return "", err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	transpiler, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: bin,
		Timeout:                  d.Timeout,
	})
	if err != nil {
		return "", fmt.Errorf("starting dart sass: %w", err)
	}
	defer transpiler.Close()

	result, err := transpiler.Execute(godartsass.Args{
		Source:       string(source),
		IncludePaths: []string{filepath.Dir(path)},
		OutputStyle:  godartsass.OutputStyleExpanded,
		SourceSyntax: godartsass.SourceSyntaxSCSS,
	})
	if err != nil {
		return "", fmt.Errorf("compiling %s: %w", path, err)
	}
	return result.CSS, nil
}

// CompileFile compiles src with c and writes the CSS to dst, creating dst's
// directory.
func CompileFile(c Compiler, src, dst string) error {
	css, err := c.Compile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(css), 0644)
}
