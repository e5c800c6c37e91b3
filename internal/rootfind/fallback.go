// pattern: Imperative Shell

package rootfind

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lithammer/dedent"

	"aaosbuild/internal/logging"
)

// ErrRootNotFound is returned when neither a checkout marker nor a fallback
// anchor could be found.
var ErrRootNotFound = errors.New("unable to find the root of the repo/superproject checkout")

// Anchor selects the directory a fallback offset is applied to.
type Anchor int

const (
	// AnchorProjectDir applies the offset to the root project's directory.
	AnchorProjectDir Anchor = iota
	// AnchorGradleRoot applies the offset to the AAOS apps Gradle project root
	// discovered during the upward walk.
	AnchorGradleRoot
)

// EntryPoint describes one caller of root resolution. Each entry point keeps
// its own fallback depth because each sits at a different place in the tree.
type EntryPoint struct {
	Name   string
	Anchor Anchor
	Levels int
	// AlwaysCheckOut warns about a missing out directory even when the root
	// was found through a marker.
	AlwaysCheckOut bool
}

var (
	// SettingsPlugin is the settings plugin applied by the main build.
	// packages/apps/Car/libs/aaos-apps-gradle-build is five levels deep.
	SettingsPlugin = EntryPoint{Name: "settings-plugin", Anchor: AnchorProjectDir, Levels: 5}
	// BuildLogic is the buildLogic included build, one level deeper.
	BuildLogic = EntryPoint{Name: "build-logic", Anchor: AnchorProjectDir, Levels: 6}
	// SharedSettings is the shared settings script that also exposes the
	// checkout root to project plugins.
	SharedSettings = EntryPoint{Name: "shared-settings", Anchor: AnchorGradleRoot, Levels: 5, AlwaysCheckOut: true}
)

// EntryPoints lists every known entry point in a stable order.
func EntryPoints() []EntryPoint {
	return []EntryPoint{SettingsPlugin, BuildLogic, SharedSettings}
}

// EntryPointByName looks up an entry point by its name.
func EntryPointByName(name string) (EntryPoint, error) {
	for _, ep := range EntryPoints() {
		if ep.Name == name {
			return ep, nil
		}
	}
	names := make([]string, 0, 3)
	for _, ep := range EntryPoints() {
		names = append(names, ep.Name)
	}
	return EntryPoint{}, fmt.Errorf("unknown entry point %q (want one of %s)", name, strings.Join(names, ", "))
}

// Fallback moves levels directories up from anchor. No validation is done:
// if the layout assumption is wrong the result is simply the wrong directory.
func Fallback(anchor string, levels int) string {
	parts := []string{anchor}
	for i := 0; i < levels; i++ {
		parts = append(parts, "..")
	}
	return filepath.Join(parts...)
}

// HasOutDir reports whether dir contains an out entry.
func HasOutDir(dir string) bool {
	return HasOutDirWith(dir, os.Stat)
}

// HasOutDirWith is HasOutDir probing through stat.
func HasOutDirWith(dir string, stat StatFunc) bool {
	_, err := stat(filepath.Join(dir, OutDirName))
	return err == nil
}

var (
	rootNotFoundWarning = "Reached file system root without finding " + RepoMarker + " or " +
		SuperManifestMarker + ". Falling back to relative path."

	missingOutWarning = strings.TrimSpace(dedent.Dedent(`
		Warning! Failed to find 'out' directory in at %s.
		It could be that this is the first build (it will be created later in
		the build) or that there is some kind of build misconfiguration!
	`))
)

// Resolution is the checkout root chosen for one build invocation.
type Resolution struct {
	Root     string
	FellBack bool
	// GradleRoot mirrors Result.GradleRoot.
	GradleRoot string
}

// Resolver combines Locate with the entry point's fallback policy.
type Resolver struct {
	Entry  EntryPoint
	Stat   StatFunc
	// Canonical resolves symlinks in the path quoted by the missing-out
	// warning. Nil quotes the path unchanged.
	Canonical func(path string) (string, error)
	Logger    *logging.ScopedLogger
}

// NewResolver creates a resolver for the given entry point.
func NewResolver(entry EntryPoint, logger *logging.ScopedLogger) *Resolver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Resolver{Entry: entry, Stat: os.Stat, Canonical: filepath.EvalSymlinks, Logger: logger}
}

// Resolve finds the checkout root for a build whose root project lives in
// projectDir. Root-not-found is recovered by the fallback offset and logged;
// a probing failure is returned as an error.
func (r *Resolver) Resolve(projectDir string) (Resolution, error) {
	res := LocateWith(projectDir, r.stat())
	switch res.Status {
	case Failed:
		return Resolution{}, fmt.Errorf("locate checkout root from %s: %w", projectDir, res.Err)
	case Found:
		r.Logger.Debug("found checkout root", "root", res.Dir, "entry", r.Entry.Name)
		if r.Entry.AlwaysCheckOut {
			r.warnIfMissingOut(res.Dir)
		}
		return Resolution{Root: res.Dir, GradleRoot: res.GradleRoot}, nil
	}

	r.Logger.Warn(rootNotFoundWarning, "start", projectDir, "entry", r.Entry.Name)

	var anchor string
	switch r.Entry.Anchor {
	case AnchorGradleRoot:
		if res.GradleRoot == "" {
			return Resolution{}, fmt.Errorf("%w from %s", ErrRootNotFound, projectDir)
		}
		anchor = res.GradleRoot
	default:
		abs, err := filepath.Abs(projectDir)
		if err != nil {
			return Resolution{}, fmt.Errorf("resolve project directory %q: %w", projectDir, err)
		}
		anchor = abs
	}

	root := Fallback(anchor, r.Entry.Levels)
	r.warnIfMissingOut(root)
	return Resolution{Root: root, FellBack: true, GradleRoot: res.GradleRoot}, nil
}

func (r *Resolver) stat() StatFunc {
	if r.Stat == nil {
		return os.Stat
	}
	return r.Stat
}

func (r *Resolver) warnIfMissingOut(root string) {
	if HasOutDirWith(root, r.stat()) {
		return
	}
	canonical := root
	if r.Canonical != nil {
		if resolved, err := r.Canonical(root); err == nil {
			canonical = resolved
		}
	}
	r.Logger.Warn(fmt.Sprintf(missingOutWarning, canonical))
}
