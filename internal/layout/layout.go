// pattern: Functional Core

// Package layout computes the full set of build directories for a build and
// persists it for other tools to read.
package layout

import (
	"encoding/json"
	"io"
	"strings"

	"aaosbuild/internal/outdir"
	"aaosbuild/internal/project"
)

// Project is the computed output location of a single project.
type Project struct {
	Path            string `json:"path"`
	Name            string `json:"name"`
	Dir             string `json:"dir,omitempty"`
	RelativePath    string `json:"relative_path"`
	BuildDir        string `json:"build_dir"`
	CMakeStagingDir string `json:"cmake_staging_dir"`
}

// Layout is the output location of every project in a build.
type Layout struct {
	RootName       string          `json:"root_name"`
	Area           string          `json:"area"`
	Settings       outdir.Settings `json:"settings"`
	OutRoot        string          `json:"out_root"`
	LocalMavenRepo string          `json:"local_maven_repo"`
	Projects       []Project       `json:"projects"`
}

// Compute resolves the build directory of every project in tree, root first
// and then by Gradle path.
func Compute(tree *project.Tree, b *outdir.Builder) Layout {
	l := Layout{
		RootName:       tree.Root().Name,
		Area:           tree.Area().String(),
		Settings:       b.Settings(),
		OutRoot:        b.OutRoot(),
		LocalMavenRepo: b.LocalMavenRepo(),
	}
	for _, n := range tree.Nodes() {
		l.Projects = append(l.Projects, ForNode(n, b))
	}
	return l
}

// ForNode computes a single project's entry.
func ForNode(n *project.Node, b *outdir.Builder) Project {
	rel := project.RelativePath(n)
	return Project{
		Path:            n.Path,
		Name:            n.Name,
		Dir:             n.Dir,
		RelativePath:    strings.Join(rel, "/"),
		BuildDir:        b.BuildDir(rel),
		CMakeStagingDir: b.CMakeStagingDir(n.Name),
	}
}

// Lookup finds a project by Gradle path.
func (l Layout) Lookup(path string) (Project, bool) {
	for _, p := range l.Projects {
		if p.Path == path {
			return p, true
		}
	}
	return Project{}, false
}

// Encode writes l as indented JSON.
func Encode(w io.Writer, l Layout) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}
