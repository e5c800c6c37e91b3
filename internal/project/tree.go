// pattern: Functional Core

// Package project models the Gradle project hierarchy and derives each
// project's path relative to the root project.
package project

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// BuildLogicName is the conventional root project name of the build-logic
// included build.
const BuildLogicName = "buildLogic"

// Area distinguishes the main application build from the build-logic sub-build.
type Area int

const (
	App Area = iota
	BuildLogic
)

func (a Area) String() string {
	if a == BuildLogic {
		return "buildLogic"
	}
	return "app"
}

// Node is one project in a build. The root node has no parent.
type Node struct {
	Name     string
	Path     string // Gradle path, ":" for the root
	Dir      string // Project directory relative to the root project directory
	Declared bool   // Explicitly included, as opposed to created as an intermediate parent
	Parent   *Node
	Children []*Node
}

// IsRoot reports whether n is the root project.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Root returns the root project of n's tree.
func (n *Node) Root() *Node {
	cur := n
	for cur.Parent != nil {
		cur = cur.Parent
	}
	return cur
}

// Segments returns the names from just below the root down to n, in
// root-to-leaf order. The root itself yields a single segment, its own name,
// so that the root never maps to an empty path.
func Segments(n *Node) []string {
	if n.IsRoot() {
		return []string{n.Name}
	}

	var names []string
	for cur := n; cur.Parent != nil; cur = cur.Parent {
		names = append(names, cur.Name)
	}
	slices.Reverse(names)
	return names
}

// AreaOf reports which build n belongs to, based on its root project's name.
func AreaOf(n *Node) Area {
	if n.Root().Name == BuildLogicName {
		return BuildLogic
	}
	return App
}

// RelativePath returns the output path segments for n. Non-root projects of
// the build-logic build are placed under a buildLogic segment.
func RelativePath(n *Node) []string {
	segs := Segments(n)
	if n.IsRoot() || AreaOf(n) != BuildLogic {
		return segs
	}
	return append([]string{BuildLogicName}, segs...)
}

// Tree is a build's project hierarchy, indexed by Gradle path.
type Tree struct {
	root   *Node
	byPath map[string]*Node
}

// NewTree creates a tree holding only the root project.
func NewTree(rootName string) *Tree {
	root := &Node{Name: rootName, Path: ":", Declared: true}
	return &Tree{
		root:   root,
		byPath: map[string]*Node{":": root},
	}
}

// Root returns the root project.
func (t *Tree) Root() *Node {
	return t.root
}

// Area reports which build the tree describes.
func (t *Tree) Area() Area {
	return AreaOf(t.root)
}

// Include adds the project at a Gradle path such as ":a:b", creating any
// missing parents on the way, like settings.include does. dir defaults to
// the path segments joined under the root project directory.
func (t *Tree) Include(path, dir string) (*Node, error) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, err
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("cannot include the root project %q", path)
	}

	parent := t.root
	for i, name := range segs {
		full := JoinPath(segs[:i+1])
		node, ok := t.byPath[full]
		if !ok {
			node = &Node{
				Name:   name,
				Path:   full,
				Dir:    filepath.Join(segs[:i+1]...),
				Parent: parent,
			}
			parent.Children = append(parent.Children, node)
			t.byPath[full] = node
		}
		parent = node
	}

	parent.Declared = true
	if dir != "" {
		parent.Dir = dir
	}
	return parent, nil
}

// Lookup returns the project at a Gradle path.
func (t *Tree) Lookup(path string) (*Node, bool) {
	segs, err := SplitPath(path)
	if err != nil {
		return nil, false
	}
	node, ok := t.byPath[JoinPath(segs)]
	return node, ok
}

// Nodes returns every project in the tree, root first, then sorted by Gradle path.
func (t *Tree) Nodes() []*Node {
	nodes := make([]*Node, 0, len(t.byPath))
	for _, n := range t.byPath {
		nodes = append(nodes, n)
	}
	slices.SortFunc(nodes, func(a, b *Node) int {
		return strings.Compare(a.Path, b.Path)
	})
	return nodes
}

// Walk visits n and its descendants depth first, children in insertion order.
func Walk(n *Node, fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// SplitPath splits a Gradle project path into its segments. The root path
// ":" yields no segments. A missing leading colon is accepted.
func SplitPath(path string) ([]string, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(path), ":")
	if trimmed == "" {
		return nil, nil
	}
	segs := strings.Split(trimmed, ":")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("invalid project path %q: empty segment", path)
		}
		if strings.ContainsAny(s, `/\`) {
			return nil, fmt.Errorf("invalid project path %q: segment %q contains a path separator", path, s)
		}
	}
	return segs, nil
}

// JoinPath is the inverse of SplitPath.
func JoinPath(segs []string) string {
	return ":" + strings.Join(segs, ":")
}
