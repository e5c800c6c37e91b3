// pattern: Functional Core

// Package outdir computes where each project's build output goes.
package outdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"aaosbuild/internal/rootfind"
)

const (
	// EnvOutDir overrides the output root when set and non-empty.
	EnvOutDir = "OUT_DIR"
	// GradleBuildDir is the directory under the output root holding all
	// Gradle build directories.
	GradleBuildDir = "aaos-apps-gradle-build"

	cmakeStagingDir = "cmake-build-staging"
	localMavenRepo  = "unbundled_m2repo"
)

// ErrNoRepoRoot is returned by operations that need the checkout root when
// it was never resolved because OUT_DIR was set.
var ErrNoRepoRoot = errors.New("checkout root was not resolved")

// LookupEnvFunc is the function signature for reading environment variables.
type LookupEnvFunc func(key string) (string, bool)

// RootResolver finds the checkout root for a root project directory.
type RootResolver interface {
	Resolve(projectDir string) (rootfind.Resolution, error)
}

// Settings carries the per-invocation inputs of path computation. It is
// computed once and passed explicitly to everything that needs it.
type Settings struct {
	// RepoRoot is the resolved checkout root. Empty when the OUT_DIR
	// override skipped root discovery.
	RepoRoot string `json:"repo_root,omitempty"`
	// OutDirOverride is the verbatim OUT_DIR value, when set.
	OutDirOverride string `json:"out_dir_override,omitempty"`
	// FellBack is true when RepoRoot came from the fallback offset.
	FellBack bool `json:"fell_back,omitempty"`
}

// Override returns the OUT_DIR value when it is set and non-empty.
func Override(lookup LookupEnvFunc) (string, bool) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	v, ok := lookup(EnvOutDir)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Configure builds Settings for a root project directory. When OUT_DIR is
// set the resolver is never called.
func Configure(projectDir string, lookup LookupEnvFunc, resolver RootResolver) (Settings, error) {
	if v, ok := Override(lookup); ok {
		return Settings{OutDirOverride: v}, nil
	}
	res, err := resolver.Resolve(projectDir)
	if err != nil {
		return Settings{}, err
	}
	return Settings{RepoRoot: res.Root, FellBack: res.FellBack}, nil
}

// Builder turns relative project paths into output directories.
type Builder struct {
	settings Settings
}

// NewBuilder creates a builder from settings.
func NewBuilder(s Settings) *Builder {
	return &Builder{settings: s}
}

// Settings returns the settings the builder was created with.
func (b *Builder) Settings() Settings {
	return b.settings
}

// OutRoot is OUT_DIR verbatim when set, otherwise <repo-root>/out.
func (b *Builder) OutRoot() string {
	if b.settings.OutDirOverride != "" {
		return b.settings.OutDirOverride
	}
	return filepath.Join(b.settings.RepoRoot, rootfind.OutDirName)
}

// GradleRoot is <out-root>/aaos-apps-gradle-build.
func (b *Builder) GradleRoot() string {
	return filepath.Join(b.OutRoot(), GradleBuildDir)
}

// BuildDir returns <out-root>/aaos-apps-gradle-build/<rel...>.
func (b *Builder) BuildDir(rel []string) string {
	return filepath.Join(append([]string{b.GradleRoot()}, rel...)...)
}

// CMakeStagingDir is where a project's native build is staged, kept outside
// its build directory.
func (b *Builder) CMakeStagingDir(projectName string) string {
	return filepath.Join(b.GradleRoot(), cmakeStagingDir, projectName)
}

// LocalMavenRepo is the local publishing repository at the base of the build output.
func (b *Builder) LocalMavenRepo() string {
	return filepath.Join(b.GradleRoot(), localMavenRepo)
}

// SystemStubsJar is the prebuilt system SDK stubs jar for sdk.
func (b *Builder) SystemStubsJar(sdk string) (string, error) {
	if b.settings.RepoRoot == "" {
		return "", fmt.Errorf("system stubs for sdk %s: %w", sdk, ErrNoRepoRoot)
	}
	return filepath.Join(b.settings.RepoRoot, "prebuilts", "sdk", sdk, "system", "android.jar"), nil
}
