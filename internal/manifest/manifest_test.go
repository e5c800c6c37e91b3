package manifest

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"aaosbuild/internal/project"
)

func TestLoad_DefaultBuiltin(t *testing.T) {
	m, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.RootName != "AAOS Apps" {
		t.Errorf("RootName = %q, want %q", m.RootName, "AAOS Apps")
	}
	if m.Entry != "settings-plugin" {
		t.Errorf("Entry = %q, want settings-plugin", m.Entry)
	}
	if len(m.Projects) != 45 {
		t.Errorf("expected 45 projects, got %d", len(m.Projects))
	}

	tree, err := m.Tree()
	if err != nil {
		t.Fatalf("Tree() error = %v", err)
	}
	model, ok := tree.Lookup(":car-messenger-common:model")
	if !ok {
		t.Fatal("nested project missing from tree")
	}
	if model.Dir != "../car-messenger-common/model" {
		t.Errorf("Dir = %q", model.Dir)
	}
	if got := project.RelativePath(model); !reflect.DeepEqual(got, []string{"car-messenger-common", "model"}) {
		t.Errorf("RelativePath = %v", got)
	}
}

func TestLoad_BuildLogicBuiltin(t *testing.T) {
	m, err := Load("buildLogic")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	tree, err := m.Tree()
	if err != nil {
		t.Fatal(err)
	}
	if tree.Area() != project.BuildLogic {
		t.Errorf("Area = %v, want buildLogic", tree.Area())
	}
	if m.Entry != "build-logic" {
		t.Errorf("Entry = %q", m.Entry)
	}
}

func TestBuiltins(t *testing.T) {
	if got := Builtins(); !reflect.DeepEqual(got, []string{"aaos-apps", "buildLogic"}) {
		t.Errorf("Builtins() = %v", got)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "build.yaml")
	content := `
root_name: sample
projects:
  - path: ":app"
    dir: app
  - path: ":lib:core"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if m.RootName != "sample" || len(m.Projects) != 2 {
		t.Errorf("unexpected manifest: %+v", m)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/build.yaml"); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}

func TestParse_RequiresRootName(t *testing.T) {
	_, err := Parse([]byte("projects:\n  - path: \":a\"\n"))
	if err == nil || !strings.Contains(err.Error(), "RootName") {
		t.Errorf("Parse() error = %v, want RootName validation failure", err)
	}
}

func TestParse_PathMustStartWithColon(t *testing.T) {
	_, err := Parse([]byte("root_name: r\nprojects:\n  - path: \"a\"\n"))
	if err == nil || !strings.Contains(err.Error(), "startswith") {
		t.Errorf("Parse() error = %v, want startswith failure", err)
	}
}

func TestParse_RejectsDuplicates(t *testing.T) {
	_, err := Parse([]byte("root_name: r\nprojects:\n  - path: \":a\"\n  - path: \":a\"\n"))
	if err == nil || !strings.Contains(err.Error(), "unique") {
		t.Errorf("Parse() error = %v, want unique failure", err)
	}
}

func TestParse_RejectsEmptySegment(t *testing.T) {
	if _, err := Parse([]byte("root_name: r\nprojects:\n  - path: \":a::b\"\n")); err == nil {
		t.Error("expected empty segment to be rejected")
	}
}

func TestParse_RejectsUnknownEntry(t *testing.T) {
	_, err := Parse([]byte("root_name: r\nentry: gradle-init\n"))
	if err == nil || !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Parse() error = %v, want oneof failure", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("root_name: [unterminated")); err == nil {
		t.Error("expected YAML error")
	}
}
