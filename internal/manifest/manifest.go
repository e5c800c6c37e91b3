// pattern: Imperative Shell

// Package manifest loads the description of a Gradle build: its root
// project name and the projects it includes.
package manifest

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"aaosbuild/internal/project"
)

//go:embed aaos-apps.yaml buildLogic.yaml
var builtins embed.FS

var builtinFiles = map[string]string{
	"aaos-apps":  "aaos-apps.yaml",
	"buildLogic": "buildLogic.yaml",
}

// DefaultName is the built-in manifest used when none is configured.
const DefaultName = "aaos-apps"

// Manifest mirrors the include list of a settings.gradle.kts.
type Manifest struct {
	RootName string  `yaml:"root_name" validate:"required"`
	Entry    string  `yaml:"entry,omitempty" validate:"omitempty,oneof=settings-plugin build-logic shared-settings"`
	Projects []Entry `yaml:"projects" validate:"unique=Path,dive"`
}

// Entry is one included project.
type Entry struct {
	Path string `yaml:"path" validate:"required,startswith=:"`
	Dir  string `yaml:"dir,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Builtins lists the names of the embedded manifests.
func Builtins() []string {
	names := make([]string, 0, len(builtinFiles))
	for name := range builtinFiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load reads a manifest. ref is either the name of a built-in manifest or a
// path to a YAML file.
func Load(ref string) (*Manifest, error) {
	if ref == "" {
		ref = DefaultName
	}
	if file, ok := builtinFiles[ref]; ok {
		data, err := builtins.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ref, err)
	}
	return m, nil
}

// Parse decodes and validates a manifest.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks required fields, path syntax and duplicates.
func (m *Manifest) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			var lists []string
			for _, e := range verrs {
				lists = append(lists, e.Namespace()+" ("+e.Tag()+")")
			}
			return fmt.Errorf("invalid manifest: validation failed on %s", strings.Join(lists, ", "))
		}
		return fmt.Errorf("invalid manifest: %w", err)
	}
	for _, p := range m.Projects {
		if _, err := project.SplitPath(p.Path); err != nil {
			return fmt.Errorf("invalid manifest: %w", err)
		}
	}
	return nil
}

// Tree builds the project hierarchy described by the manifest.
func (m *Manifest) Tree() (*project.Tree, error) {
	tree := project.NewTree(m.RootName)
	for _, p := range m.Projects {
		if _, err := tree.Include(p.Path, p.Dir); err != nil {
			return nil, err
		}
	}
	return tree, nil
}
