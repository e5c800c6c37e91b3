// pattern: Imperative Shell
package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aaosbuild/internal/layout"
	"aaosbuild/internal/logging"
)

type harness struct {
	env    *Env
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	logs   *logging.TestLogManager
	exit   int
}

// newHarness builds an app whose root project lives at <checkout>/packages/apps/Car.
// The checkout gets a .repo marker when withMarker is set.
func newHarness(t *testing.T, withMarker bool, vars map[string]string) (*harness, string) {
	t.Helper()
	checkout := t.TempDir()
	projectDir := filepath.Join(checkout, "packages", "apps", "Car")
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		t.Fatal(err)
	}
	if withMarker {
		if err := os.Mkdir(filepath.Join(checkout, ".repo"), 0755); err != nil {
			t.Fatal(err)
		}
	}

	h := &harness{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		logs:   logging.NewTestLogManager(),
		exit:   -1,
	}
	h.env = &Env{
		ConfigDir:  t.TempDir(),
		ProjectDir: projectDir,
		LookupEnv: func(key string) (string, bool) {
			v, ok := vars[key]
			return v, ok
		},
		Logs:   h.logs,
		Stdout: h.stdout,
		Stderr: h.stderr,
	}
	h.app = BuildApp("1.2.3", h.env)
	h.app.ExitFunc = func(code int) { h.exit = code }
	return h, checkout
}

func (h *harness) run(args ...string) string {
	h.app.Execute(args)
	return strings.TrimSpace(h.stdout.String())
}

func TestVersionCommand_PrintsVersion(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	if got := h.run("version"); got != "1.2.3" {
		t.Errorf("version output = %q, want 1.2.3", got)
	}
	if h.exit != -1 {
		t.Errorf("exit code = %d, want no exit", h.exit)
	}
}

func TestExecute_NoArgsPrintsHelp(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.run()
	help := h.stderr.String()
	for _, want := range []string{"Usage: aaosbuild", "outdir", "watch", "paths", "manifest"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
	if h.exit != -1 {
		t.Errorf("help should not exit, got %d", h.exit)
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.run("frobnicate")
	if h.exit != 1 {
		t.Errorf("exit code = %d, want 1", h.exit)
	}
	if !strings.Contains(h.stderr.String(), `unknown command "frobnicate"`) {
		t.Errorf("stderr = %q", h.stderr.String())
	}
}

func TestExecute_CommandHelpFlag(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.run("outdir", "--help")
	if !strings.Contains(h.stderr.String(), "Usage: aaosbuild outdir <gradle-path>") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
	if h.stdout.Len() != 0 {
		t.Errorf("help should not run the command, stdout = %q", h.stdout.String())
	}
}

func TestExecute_GroupHelp(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.run("paths")
	for _, want := range []string{"cmake", "m2repo", "stubs"} {
		if !strings.Contains(h.stderr.String(), want) {
			t.Errorf("group help missing %q", want)
		}
	}
	h.run("paths", "bogus")
	if h.exit != 1 {
		t.Errorf("unknown group command exit = %d, want 1", h.exit)
	}
}

func TestOutdir_UnderCheckoutRoot(t *testing.T) {
	h, checkout := newHarness(t, true, nil)
	got := h.run("outdir", ":car-ui-lib")
	want := filepath.Join(checkout, "out", "aaos-apps-gradle-build", "car-ui-lib")
	if got != want {
		t.Errorf("outdir = %q, want %q", got, want)
	}
	if len(h.logs.Warnings()) != 0 {
		t.Errorf("no warnings expected, got %+v", h.logs.Warnings())
	}
}

func TestOutdir_OutDirOverride(t *testing.T) {
	h, _ := newHarness(t, false, map[string]string{"OUT_DIR": "/tmp/customout"})
	got := h.run("outdir", ":a:b")
	if got != filepath.FromSlash("/tmp/customout/aaos-apps-gradle-build/a/b") {
		t.Errorf("outdir = %q", got)
	}
	if len(h.logs.Warnings()) != 0 {
		t.Errorf("OUT_DIR should skip discovery and its warnings, got %+v", h.logs.Warnings())
	}
}

func TestOutdir_RootProjectUsesItsName(t *testing.T) {
	h, checkout := newHarness(t, true, nil)
	got := h.run("outdir", ":")
	want := filepath.Join(checkout, "out", "aaos-apps-gradle-build", "AAOS Apps")
	if got != want {
		t.Errorf("outdir = %q, want %q", got, want)
	}
}

func TestOutdir_BuildLogicManifest(t *testing.T) {
	h, checkout := newHarness(t, true, nil)
	h.env.ManifestRef = "buildLogic"
	got := h.run("outdir", ":projectPlugin")
	want := filepath.Join(checkout, "out", "aaos-apps-gradle-build", "buildLogic", "projectPlugin")
	if got != want {
		t.Errorf("outdir = %q, want %q", got, want)
	}
}

func TestOutdir_RequiresArgument(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.run("outdir")
	if h.exit != 1 || !strings.Contains(h.stderr.String(), "error: usage: aaosbuild outdir") {
		t.Errorf("exit = %d, stderr = %q", h.exit, h.stderr.String())
	}
}

func TestRoot_JSON(t *testing.T) {
	h, checkout := newHarness(t, true, map[string]string{"OUT_DIR": "/tmp/ignored"})
	out := h.run("root", "--json")

	var got struct {
		Root     string `json:"root"`
		FellBack bool   `json:"fell_back"`
		Entry    string `json:"entry"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Root != checkout || got.FellBack || got.Entry != "settings-plugin" {
		t.Errorf("root = %+v, want %s via settings-plugin", got, checkout)
	}
}

func TestRoot_FallbackWarns(t *testing.T) {
	h, checkout := newHarness(t, false, nil)
	h.env.EntryName = "build-logic"
	got := h.run("root")
	if h.exit != -1 {
		t.Fatalf("fallback must not fail, exit = %d, stderr = %q", h.exit, h.stderr.String())
	}

	projectDir := filepath.Join(checkout, "packages", "apps", "Car")
	want := filepath.Join(projectDir, "..", "..", "..", "..", "..", "..")
	if got != want {
		t.Errorf("root = %q, want %q", got, want)
	}
	if len(h.logs.Warnings()) < 2 {
		t.Errorf("expected root-not-found and missing-out warnings, got %+v", h.logs.Warnings())
	}
}

func TestRoot_UnknownEntry(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.env.EntryName = "init-script"
	h.run("root")
	if h.exit != 1 {
		t.Errorf("exit = %d, want 1", h.exit)
	}
}

func TestLayout_PrintsEveryProject(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	out := h.run("layout")

	var l layout.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("invalid layout JSON: %v", err)
	}
	if l.RootName != "AAOS Apps" {
		t.Errorf("RootName = %q", l.RootName)
	}
	if _, ok := l.Lookup(":car-ui-lib"); !ok {
		t.Error("layout is missing :car-ui-lib")
	}
}

func TestTree_RendersHierarchy(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	h.env.ManifestRef = "buildLogic"
	out := h.run("tree")
	if !strings.Contains(out, "projectPlugin  buildLogic/projectPlugin") {
		t.Errorf("tree output:\n%s", out)
	}
}

func TestEmit_WritesThenUpToDate(t *testing.T) {
	outDir := t.TempDir()
	h, _ := newHarness(t, false, map[string]string{"OUT_DIR": outDir})
	path := filepath.Join(outDir, "aaos-apps-gradle-build", layout.FileName)

	if got := h.run("emit"); got != "wrote "+path {
		t.Errorf("first emit = %q", got)
	}
	h.stdout.Reset()
	if got := h.run("emit"); got != path+" is up to date" {
		t.Errorf("second emit = %q", got)
	}
	if _, err := layout.Read(path); err != nil {
		t.Errorf("layout not readable: %v", err)
	}
}

func TestEmit_ExplicitOutput(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	path := filepath.Join(t.TempDir(), "custom.json")
	h.run("emit", "-o", path)
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected layout at %s: %v", path, err)
	}
}

func TestPaths(t *testing.T) {
	h, checkout := newHarness(t, true, nil)
	gradleRoot := filepath.Join(checkout, "out", "aaos-apps-gradle-build")

	if got := h.run("paths", "cmake", ":car-messenger-common:model"); got != filepath.Join(gradleRoot, "cmake-build-staging", "model") {
		t.Errorf("cmake = %q", got)
	}
	h.stdout.Reset()
	if got := h.run("paths", "m2repo"); got != filepath.Join(gradleRoot, "unbundled_m2repo") {
		t.Errorf("m2repo = %q", got)
	}
	h.stdout.Reset()
	if got := h.run("paths", "stubs", "34"); got != filepath.Join(checkout, "prebuilts", "sdk", "34", "system", "android.jar") {
		t.Errorf("stubs = %q", got)
	}
}

func TestPathsStubs_IgnoresOutDir(t *testing.T) {
	h, checkout := newHarness(t, true, map[string]string{"OUT_DIR": "/tmp/customout"})
	got := h.run("paths", "stubs", "34")
	want := filepath.Join(checkout, "prebuilts", "sdk", "34", "system", "android.jar")
	if h.exit != -1 {
		t.Fatalf("exit = %d, stderr = %q", h.exit, h.stderr.String())
	}
	if got != want {
		t.Errorf("stubs = %q, want %q", got, want)
	}

	h.stdout.Reset()
	if got := h.run("outdir", ":car-ui-lib"); got != filepath.FromSlash("/tmp/customout/aaos-apps-gradle-build/car-ui-lib") {
		t.Errorf("outdir should still honour OUT_DIR, got %q", got)
	}
}

func TestManifestCommands(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	dir := filepath.Join(h.env.ConfigDir, "manifests")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	good := "root_name: Dashcam\nprojects:\n  - path: \":recorder\"\n"
	if err := os.WriteFile(filepath.Join(dir, "dashcam.yaml"), []byte(good), 0644); err != nil {
		t.Fatal(err)
	}

	list := h.run("manifest", "list")
	for _, want := range []string{"aaos-apps (built-in)", "buildLogic (built-in)", "dashcam"} {
		if !strings.Contains(list, want) {
			t.Errorf("list missing %q:\n%s", want, list)
		}
	}

	h.stdout.Reset()
	if got := h.run("manifest", "check", "dashcam"); got != "Dashcam: 1 projects ok" {
		t.Errorf("check = %q", got)
	}

	h.stdout.Reset()
	shown := h.run("manifest", "show", "dashcam")
	if !strings.Contains(shown, "root_name: Dashcam") || !strings.Contains(shown, ":recorder") {
		t.Errorf("show output:\n%s", shown)
	}

	h.stdout.Reset()
	h.env.ManifestRef = "dashcam"
	out := h.run("layout")
	if !strings.Contains(out, `"root_name": "Dashcam"`) {
		t.Errorf("layout should use the user manifest:\n%s", out)
	}
}

func TestManifestCheck_Invalid(t *testing.T) {
	h, _ := newHarness(t, true, nil)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("projects:\n  - path: nocolon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	h.run("manifest", "check", bad)
	if h.exit != 1 || !strings.Contains(h.stderr.String(), "invalid manifest") {
		t.Errorf("exit = %d, stderr = %q", h.exit, h.stderr.String())
	}
}
