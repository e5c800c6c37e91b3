// pattern: Imperative Shell

// Package rootfind locates the root of a repo/superproject checkout by
// walking up from a starting directory, and falls back to a fixed relative
// offset when no checkout marker exists.
package rootfind

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	// RepoMarker is the directory created by `repo init` at the checkout root.
	RepoMarker = ".repo"
	// SuperManifestMarker is the file present at the root of a superproject checkout.
	SuperManifestMarker = ".supermanifest"
	// OutDirName is the conventional build output directory under the checkout root.
	OutDirName = "out"

	// SettingsFile and BuildLogicDir together mark the AAOS apps Gradle root.
	SettingsFile  = "settings.gradle.kts"
	BuildLogicDir = "buildLogic"
)

// StatFunc is the function signature used to probe the filesystem.
type StatFunc func(name string) (os.FileInfo, error)

// Status describes the outcome of a Locate call.
type Status int

const (
	NotFound Status = iota
	Found
	Failed
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "not-found"
	}
}

// Result is the outcome of walking up the directory tree.
type Result struct {
	Status Status
	// Dir is the nearest ancestor (or the start itself) holding a checkout marker.
	Dir string
	// GradleRoot is the highest ancestor seen below Dir that holds both
	// settings.gradle.kts and buildLogic. Empty when none was seen.
	GradleRoot string
	// Err is set when Status is Failed.
	Err error
}

// Locate walks up from start looking for a checkout marker using os.Stat.
func Locate(start string) Result {
	return LocateWith(start, os.Stat)
}

// LocateWith walks up from start looking for a checkout marker, probing the
// filesystem through stat. The walk stops at the first directory containing
// .repo or .supermanifest, or at the filesystem root.
func LocateWith(start string, stat StatFunc) Result {
	dir, err := filepath.Abs(start)
	if err != nil {
		return Result{Status: Failed, Err: fmt.Errorf("resolve start directory %q: %w", start, err)}
	}

	var gradleRoot string
	for {
		found, err := hasMarker(dir, stat)
		if err != nil {
			return Result{Status: Failed, GradleRoot: gradleRoot, Err: err}
		}
		if found {
			return Result{Status: Found, Dir: dir, GradleRoot: gradleRoot}
		}

		isGradle, err := isGradleRoot(dir, stat)
		if err != nil {
			return Result{Status: Failed, GradleRoot: gradleRoot, Err: err}
		}
		if isGradle {
			gradleRoot = dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Result{Status: NotFound, GradleRoot: gradleRoot}
		}
		dir = parent
	}
}

func hasMarker(dir string, stat StatFunc) (bool, error) {
	for _, marker := range []string{RepoMarker, SuperManifestMarker} {
		ok, err := exists(filepath.Join(dir, marker), stat)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

func isGradleRoot(dir string, stat StatFunc) (bool, error) {
	ok, err := exists(filepath.Join(dir, SettingsFile), stat)
	if err != nil || !ok {
		return false, err
	}
	return exists(filepath.Join(dir, BuildLogicDir), stat)
}

// exists reports whether path exists. A missing entry is not an error;
// anything else (permission denied, I/O failure) is.
func exists(path string, stat StatFunc) (bool, error) {
	_, err := stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("probe %s: %w", path, err)
}
