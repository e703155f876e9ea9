package migrate

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"aurelsite/internal/util"
)

// FlatName names a copied index.html by its directory depth below the
// walk root: "root0.html" for the root itself, "a_b2.html" for a/b.
func FlatName(rel string) string {
	if rel == "." || rel == "" {
		return "root0.html"
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	return fmt.Sprintf("%s%d.html", strings.Join(parts, "_"), len(parts))
}

// Flatten copies every index.html under root into target, named by
// FlatName. The target directory is created if needed and never descended
// into. Copy failures are logged and counted.
func Flatten(root, target string, logger *log.Logger) (Report, error) {
	var report Report
	if logger == nil {
		logger = log.New(os.Stdout, "", 0)
	}

	if _, err := os.Stat(target); os.IsNotExist(err) {
		if err := os.MkdirAll(target, 0755); err != nil {
			return report, err
		}
		logger.Printf("Created directory: %s", target)
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return report, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if abs, err := filepath.Abs(path); err == nil && abs == absTarget {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != IndexFile {
			return nil
		}

		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		report.Found++
		name := FlatName(rel)
		if err := util.CopyFile(path, filepath.Join(target, name)); err != nil {
			logger.Printf("Error copying %s: %v", path, err)
			report.Failed++
			return nil
		}
		report.Copied++
		logger.Printf("Copied: %s/%s -> %s", filepath.ToSlash(rel), IndexFile, filepath.ToSlash(filepath.Join(filepath.Base(target), name)))
		return nil
	})
	return report, err
}
