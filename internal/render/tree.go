// pattern: Imperative Shell

// Package render prints a build's project hierarchy for humans.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ddddddO/gtree"

	"aaosbuild/internal/outdir"
	"aaosbuild/internal/project"
)

// Tree writes a heading followed by the project hierarchy, each project
// labelled with its build directory relative to the Gradle build root.
func Tree(w io.Writer, tree *project.Tree, b *outdir.Builder, p *Palette) error {
	fmt.Fprintln(w, p.Heading().Render(tree.Root().Name+" ("+tree.Area().String()+")"))
	fmt.Fprintln(w, p.OutRoot().Render(b.GradleRoot()))
	if b.Settings().FellBack {
		fmt.Fprintln(w, p.Warning().Render("checkout root located by fallback offset"))
	}

	root := gtree.NewRoot(label(tree.Root(), p))
	addChildren(root, tree.Root(), p)
	return gtree.OutputFromRoot(w, root)
}

func addChildren(parent *gtree.Node, n *project.Node, p *Palette) {
	for _, c := range n.Children {
		addChildren(parent.Add(label(c, p)), c, p)
	}
}

func label(n *project.Node, p *Palette) string {
	var sb strings.Builder
	sb.WriteString(n.Name)
	sb.WriteString("  ")
	sb.WriteString(p.Path().Render(strings.Join(project.RelativePath(n), "/")))
	if !n.Declared {
		sb.WriteString(" ")
		sb.WriteString(p.Implicit().Render("(implicit)"))
	}
	return sb.String()
}
