// pattern: Imperative Shell
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"aaosbuild/internal/config"
	"aaosbuild/internal/logging"
	"aaosbuild/internal/manifest"
	"aaosbuild/internal/outdir"
	"aaosbuild/internal/project"
	"aaosbuild/internal/rootfind"
)

// Env carries the global options of one invocation.
type Env struct {
	ConfigDir   string
	ProjectDir  string
	ManifestRef string
	EntryName   string
	Config      config.Config

	// LookupEnv reads environment variables. Defaults to os.LookupEnv.
	LookupEnv outdir.LookupEnvFunc
	// Stat probes the filesystem during root discovery. Defaults to os.Stat.
	Stat rootfind.StatFunc
	Logs logging.LoggerProvider

	Stdout io.Writer
	Stderr io.Writer
}

// Resolved is everything one invocation computes before running a command.
type Resolved struct {
	ProjectDir   string
	ManifestPath string
	Manifest     *manifest.Manifest
	Tree         *project.Tree
	Entry        rootfind.EntryPoint
	Settings     outdir.Settings
	Builder      *outdir.Builder
}

func (e *Env) stdout() io.Writer {
	if e.Stdout == nil {
		return os.Stdout
	}
	return e.Stdout
}

func (e *Env) logs() logging.LoggerProvider {
	if e.Logs == nil {
		return logging.NopProvider{}
	}
	return e.Logs
}

// withoutOutDir copies e with OUT_DIR hidden, for commands that need the
// checkout root itself rather than the output root.
func (e *Env) withoutOutDir() *Env {
	c := *e
	c.LookupEnv = func(string) (string, bool) { return "", false }
	return &c
}

// manifestRef picks the manifest: the --manifest flag, then the config
// file, then the embedded default.
func (e *Env) manifestRef() string {
	ref := e.ManifestRef
	if ref == "" {
		ref = e.Config.Manifest
	}
	if ref == "" {
		ref = manifest.DefaultName
	}
	return config.ResolveManifest(e.ConfigDir, ref)
}

// entryPoint picks the entry point: the --entry flag, then the manifest,
// then the config file, then settings-plugin.
func (e *Env) entryPoint(m *manifest.Manifest) (rootfind.EntryPoint, error) {
	for _, name := range []string{e.EntryName, m.Entry, e.Config.Entry} {
		if name != "" {
			return rootfind.EntryPointByName(name)
		}
	}
	return rootfind.SettingsPlugin, nil
}

// Resolve loads the manifest and computes the output settings.
func (e *Env) Resolve() (*Resolved, error) {
	projectDir := e.ProjectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		projectDir = wd
	}
	projectDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolve project directory: %w", err)
	}

	ref := e.manifestRef()
	m, err := manifest.Load(ref)
	if err != nil {
		return nil, err
	}
	tree, err := m.Tree()
	if err != nil {
		return nil, err
	}
	entry, err := e.entryPoint(m)
	if err != nil {
		return nil, err
	}

	resolver := rootfind.NewResolver(entry, e.logs().For("rootfind"))
	if e.Stat != nil {
		resolver.Stat = e.Stat
	}
	settings, err := outdir.Configure(projectDir, e.LookupEnv, resolver)
	if err != nil {
		return nil, err
	}
	e.logs().For("outdir").Debug("output settings",
		"repo_root", settings.RepoRoot, "out_dir", settings.OutDirOverride, "fell_back", settings.FellBack)

	r := &Resolved{
		ProjectDir: projectDir,
		Manifest:   m,
		Tree:       tree,
		Entry:      entry,
		Settings:   settings,
		Builder:    outdir.NewBuilder(settings),
	}
	if !isBuiltin(ref) {
		r.ManifestPath = ref
	}
	return r, nil
}

func isBuiltin(ref string) bool {
	for _, name := range manifest.Builtins() {
		if name == ref {
			return true
		}
	}
	return false
}
