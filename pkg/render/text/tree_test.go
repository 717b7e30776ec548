package text

import (
	"errors"
	"strings"
	"testing"

	"github.com/Dima09182/depviz/pkg/graph"
)

func TestRender(t *testing.T) {
	g := graph.New("A")
	g.MaxDepth = 1
	g.Add(graph.Node{Name: "A", Qualified: "A", Depth: 0, Dependencies: []string{"B", "C"}})
	g.Add(graph.Node{Name: "B", Qualified: "B", Depth: 1})
	g.Add(graph.Node{Name: "C", Qualified: "C", Depth: 1, Dependencies: []string{"D"}})

	out := Render(g, Options{Plain: true})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 4 {
		t.Fatalf("Render() produced %d lines:\n%s", len(lines), out)
	}
	if lines[0] != "A @0" {
		t.Errorf("root line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "B @1") || !strings.Contains(lines[2], "C @1 +1") {
		t.Errorf("child lines = %q, %q", lines[1], lines[2])
	}
	if lines[3] != "3 packages, depth 1 of 1" {
		t.Errorf("summary = %q", lines[3])
	}
}

func TestRenderReferences(t *testing.T) {
	g := graph.New("A")
	g.MaxDepth = 5
	g.Add(graph.Node{Name: "A", Depth: 0, Dependencies: []string{"B", "C", "A"}})
	g.Add(graph.Node{Name: "B", Depth: 1, Dependencies: []string{"C"}})
	g.Add(graph.Node{Name: "C", Depth: 1})

	out := Render(g, Options{Plain: true})

	if strings.Count(out, "(shown elsewhere)") != 2 {
		t.Errorf("expected two references (B->C and the self edge):\n%s", out)
	}
	if strings.Count(out, "C @1") != 1 {
		t.Errorf("C should be expanded exactly once:\n%s", out)
	}
}

func TestRenderQualified(t *testing.T) {
	g := graph.New("busybox")
	g.Add(graph.Node{Name: "busybox", Qualified: "busybox-1.36.1-r29.apk", Depth: 0})

	out := Render(g, Options{Plain: true})
	if !strings.HasPrefix(out, "busybox busybox-1.36.1-r29.apk @0\n") {
		t.Errorf("Render() = %q", out)
	}
}

func TestRenderMissingRoot(t *testing.T) {
	g := graph.New("ghost")
	g.Diagnose(graph.Diagnostic{Package: "ghost", Kind: graph.KindUnknownPackage, Err: errors.New("unknown package")})
	g.Truncated = true

	out := Render(g, Options{Plain: true})
	if !strings.Contains(out, "ghost (not found)") {
		t.Errorf("Render() = %q", out)
	}
	if !strings.Contains(out, "0 packages, depth 0 of 0, 1 warnings, truncated") {
		t.Errorf("Render() summary = %q", out)
	}
}
