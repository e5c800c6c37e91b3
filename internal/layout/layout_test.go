package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"aaosbuild/internal/outdir"
	"aaosbuild/internal/project"
)

func sampleTree(t *testing.T) *project.Tree {
	t.Helper()
	tree := project.NewTree("AAOS Apps")
	for _, p := range []string{":car-ui-lib", ":car-messenger-common:model"} {
		if _, err := tree.Include(p, ""); err != nil {
			t.Fatal(err)
		}
	}
	return tree
}

func TestCompute(t *testing.T) {
	b := outdir.NewBuilder(outdir.Settings{RepoRoot: filepath.FromSlash("/co")})
	l := Compute(sampleTree(t), b)

	if l.RootName != "AAOS Apps" || l.Area != "app" {
		t.Errorf("header = %q/%q", l.RootName, l.Area)
	}
	if len(l.Projects) != 4 {
		t.Fatalf("expected 4 projects (root, 2 declared, 1 parent), got %d", len(l.Projects))
	}
	if l.Projects[0].Path != ":" {
		t.Errorf("first project = %q, want root", l.Projects[0].Path)
	}

	model, ok := l.Lookup(":car-messenger-common:model")
	if !ok {
		t.Fatal("model project missing")
	}
	if model.RelativePath != "car-messenger-common/model" {
		t.Errorf("RelativePath = %q", model.RelativePath)
	}
	want := filepath.FromSlash("/co/out/aaos-apps-gradle-build/car-messenger-common/model")
	if model.BuildDir != want {
		t.Errorf("BuildDir = %q, want %q", model.BuildDir, want)
	}
	if model.CMakeStagingDir != filepath.FromSlash("/co/out/aaos-apps-gradle-build/cmake-build-staging/model") {
		t.Errorf("CMakeStagingDir = %q", model.CMakeStagingDir)
	}

	if _, ok := l.Lookup(":missing"); ok {
		t.Error("Lookup should miss unknown paths")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	b := outdir.NewBuilder(outdir.Settings{OutDirOverride: "/tmp/customout"})
	var first, second bytes.Buffer
	if err := Encode(&first, Compute(sampleTree(t), b)); err != nil {
		t.Fatal(err)
	}
	if err := Encode(&second, Compute(sampleTree(t), b)); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Error("Compute should be deterministic")
	}

	var decoded Layout
	if err := json.Unmarshal(first.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Settings.OutDirOverride != "/tmp/customout" {
		t.Errorf("settings not encoded: %+v", decoded.Settings)
	}
}

func TestWrite_CreatesAndSkipsUnchanged(t *testing.T) {
	tmpDir := t.TempDir()
	b := outdir.NewBuilder(outdir.Settings{OutDirOverride: tmpDir})
	path := DefaultPath(b)
	l := Compute(sampleTree(t), b)

	changed, err := Write(context.Background(), path, l)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !changed {
		t.Error("first Write should report a change")
	}
	if path != filepath.Join(tmpDir, "aaos-apps-gradle-build", FileName) {
		t.Errorf("DefaultPath = %q", path)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got.Projects) != len(l.Projects) {
		t.Errorf("read back %d projects, want %d", len(got.Projects), len(l.Projects))
	}

	changed, err = Write(context.Background(), path, l)
	if err != nil {
		t.Fatalf("second Write() error = %v", err)
	}
	if changed {
		t.Error("identical Write should report no change")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Name() != FileName && e.Name() != FileName+".lock" {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestWrite_WaitsForLock(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, FileName)

	holder := flock.New(path + ".lock")
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("test could not take lock: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	if _, err := Write(ctx, path, Layout{RootName: "r"}); err == nil {
		t.Fatal("Write should fail while another holder has the lock")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("layout file should not be written without the lock")
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), FileName)); !os.IsNotExist(err) {
		t.Errorf("Read() error = %v, want not-exist", err)
	}
}
