// internal/builder/section.go
package builder

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// SectionConfigFile is the per-section settings file name.
const SectionConfigFile = "config"

// Recognized section config keys. Other keys are kept but unused.
const (
	KeyBase  = "base"
	KeyCards = "cards"
)

// SectionConfig is the parsed `key: value` content of a section's config file.
type SectionConfig map[string]string

// Cards returns the card theme selector and whether it is set.
func (c SectionConfig) Cards() (string, bool) {
	v, ok := c[KeyCards]
	return v, ok
}

// Base returns the base layout selector, or "" when unset.
func (c SectionConfig) Base() string {
	return c[KeyBase]
}

// ParseSectionConfig reads the config file in dir. A missing file yields an
// empty config and no error.
func ParseSectionConfig(dir string) (SectionConfig, error) {
	cfg := SectionConfig{}
	f, err := os.Open(filepath.Join(dir, SectionConfigFile))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		cfg[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("reading %s: %w", filepath.Join(dir, SectionConfigFile), err)
	}
	return cfg, nil
}

const (
	peopleThemePrefix       = "theme-people-"
	announcementThemePrefix = "theme-announcement-"
)

// ThemeClass resolves the body CSS class for a section from its cards setting.
// An absent cards key, or the value "none" in any case, yields "".
func ThemeClass(section string, cfg SectionConfig) string {
	cards, ok := cfg.Cards()
	if !ok || strings.EqualFold(cards, "none") {
		return ""
	}
	switch section {
	case "People", "Contact":
		return peopleThemePrefix + cards
	default:
		return announcementThemePrefix + cards
	}
}
