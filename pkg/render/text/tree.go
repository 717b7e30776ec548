// Package text renders a dependency graph as an indented tree.
package text

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/Dima09182/depviz/pkg/graph"
)

// Options configures the tree.
type Options struct {
	// Plain disables colors and text attributes, for files and pipes.
	Plain bool
}

type styles struct {
	name, detail, ref, enum, warn lipgloss.Style
}

func newStyles(plain bool) styles {
	if plain {
		s := lipgloss.NewStyle()
		return styles{s, s, s, s, s}
	}
	return styles{
		name:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		detail: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		ref:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true),
		enum:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

// Render returns the tree of g followed by a one-line summary.
//
// Each package is expanded once, under a parent one level above it; later
// occurrences are shown as references. Dependencies that are not in the
// graph (beyond the depth bound, or unresolved) are counted, not listed.
func Render(g *graph.Graph, opts Options) string {
	st := newStyles(opts.Plain)

	var b strings.Builder
	if _, ok := g.Node(g.Root); !ok {
		fmt.Fprintf(&b, "%s %s\n", st.name.Render(g.Root), st.warn.Render("(not found)"))
	} else {
		expanded := make(map[string]bool)
		t := build(g, g.Root, expanded, st)
		t.Enumerator(tree.RoundedEnumerator).EnumeratorStyle(st.enum)
		for _, line := range strings.Split(t.String(), "\n") {
			b.WriteString(strings.TrimRight(line, " "))
			b.WriteString("\n")
		}
	}

	summary := fmt.Sprintf("%d packages, depth %d of %d", g.Len(), g.MaxRecordedDepth(), g.MaxDepth)
	if n := len(g.Diagnostics()); n > 0 {
		summary += fmt.Sprintf(", %d warnings", n)
	}
	if g.Truncated {
		summary += ", truncated"
	}
	b.WriteString(st.detail.Render(summary))
	b.WriteString("\n")
	return b.String()
}

func build(g *graph.Graph, name string, expanded map[string]bool, st styles) *tree.Tree {
	n, _ := g.Node(name)
	expanded[name] = true

	children := g.Children(name)
	t := tree.Root(label(n, len(children), st))
	for _, c := range children {
		cn, _ := g.Node(c)
		if expanded[c] || cn.Depth != n.Depth+1 {
			t.Child(st.name.UnsetBold().Render(c) + " " + st.ref.Render("(shown elsewhere)"))
			continue
		}
		t.Child(build(g, c, expanded, st))
	}
	return t
}

func label(n graph.Node, recorded int, st styles) string {
	parts := []string{st.name.Render(n.Name)}
	if n.Qualified != "" && n.Qualified != n.Name {
		parts = append(parts, st.detail.Render(n.Qualified))
	}
	parts = append(parts, st.detail.Render(fmt.Sprintf("@%d", n.Depth)))
	if hidden := len(n.Dependencies) - recorded; hidden > 0 {
		parts = append(parts, st.detail.Render(fmt.Sprintf("+%d", hidden)))
	}
	return strings.Join(parts, " ")
}
