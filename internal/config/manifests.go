// pattern: Imperative Shell

package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const manifestsDirName = "manifests"

// ManifestsDir is where user-provided build manifests live.
func ManifestsDir(configDir string) string {
	return filepath.Join(ResolveDir(configDir), manifestsDirName)
}

// ListManifests returns the names of the *.yaml files in dir, sorted.
// A missing directory yields an empty list.
func ListManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ext := filepath.Ext(name); ext == ".yaml" || ext == ".yml" {
			names = append(names, strings.TrimSuffix(name, ext))
		}
	}
	sort.Strings(names)
	return names, nil
}

// ResolveManifest maps a manifest reference to what manifest.Load expects.
// A bare name matching a file in the manifests directory becomes that file's
// path; anything else is returned unchanged.
func ResolveManifest(configDir, ref string) string {
	if ref == "" || strings.ContainsRune(ref, os.PathSeparator) || filepath.Ext(ref) != "" {
		return ref
	}
	dir := ManifestsDir(configDir)
	for _, ext := range []string{".yaml", ".yml"} {
		candidate := filepath.Join(dir, ref+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ref
}
