// Package validation checks command-line inputs before a batch is submitted.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IsValidPath checks if a given path exists and is accessible.
func IsValidPath(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("path does not exist: %s", path)
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}

	// Ensure it's an absolute path
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}

	// Check if it's a file or directory
	if !info.IsDir() && !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is neither a file nor a directory", path)
	}

	return nil
}

// IsValidExportMode checks if the given export mode is supported.
func IsValidExportMode(mode string) error {
	switch mode {
	case "separate", "combined":
		return nil
	default:
		return fmt.Errorf("unsupported export mode: %s. Supported modes are 'separate', 'combined'", mode)
	}
}

// IsSupportedDocument checks the file extension against the allowed list.
func IsSupportedDocument(path string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowed {
		if strings.ToLower(a) == ext {
			return nil
		}
	}
	return fmt.Errorf("unsupported document type %q for %s. Supported types are %s",
		ext, filepath.Base(path), strings.Join(allowed, ", "))
}

// CollectDocuments resolves inputs into absolute document paths. Directories
// contribute their supported files in name order and skip the rest; a file
// given explicitly must itself be supported.
func CollectDocuments(inputs []string, allowed []string) ([]string, error) {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, input := range inputs {
		abs, err := filepath.Abs(input)
		if err != nil {
			return nil, fmt.Errorf("error resolving %s: %w", input, err)
		}
		if err := IsValidPath(abs); err != nil {
			return nil, err
		}

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("error checking path %s: %w", abs, err)
		}
		if !info.IsDir() {
			if err := IsSupportedDocument(abs, allowed); err != nil {
				return nil, err
			}
			add(abs)
			continue
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("error reading directory %s: %w", abs, err)
		}
		var names []string
		for _, entry := range entries {
			if entry.Type().IsRegular() && IsSupportedDocument(entry.Name(), allowed) == nil {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(abs, name))
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported documents found in %s", strings.Join(inputs, ", "))
	}
	return paths, nil
}
