// Package file reads and writes list datasets as JSON, YAML, TOML, CSV or
// XLSX files.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is a dataset file format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
	CSV  Format = "csv"
	XLSX Format = "xlsx"
)

// Formats lists the supported formats in lookup order.
var Formats = []Format{JSON, YAML, TOML, CSV, XLSX}

// Ext returns the canonical file extension, with the dot.
func (f Format) Ext() string { return "." + string(f) }

// ParseFormat accepts a format name or extension ("yml", ".xlsx").
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	case "csv":
		return CSV, nil
	case "xlsx":
		return XLSX, nil
	}
	return "", fmt.Errorf("unsupported dataset format %q", s)
}

// DetectFormat picks the format from the extension, falling back to content
// sniffing for files without a known one.
func DetectFormat(path string) (Format, error) {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f, nil
	}

	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect format of %s: %w", path, err)
	}
	switch {
	case mt.Is("application/json"):
		return JSON, nil
	case mt.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"):
		return XLSX, nil
	case mt.Is("text/csv"):
		return CSV, nil
	}
	return "", fmt.Errorf("unsupported dataset format %s for %s", mt.String(), path)
}

// Find returns the dataset file for a screen in dir, trying each format's
// extension in order ("employees.json", "employees.yaml", ...).
func Find(dir, screen string) (string, bool) {
	if dir == "" {
		return "", false
	}
	candidates := make([]string, 0, len(Formats)+1)
	for _, f := range Formats {
		candidates = append(candidates, screen+f.Ext())
	}
	candidates = append(candidates, screen+".yml")

	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, true
		}
	}
	return "", false
}

// ScreenOf returns the screen name a dataset path belongs to.
func ScreenOf(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
