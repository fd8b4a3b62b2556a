package nodelink

import (
	"strings"
	"testing"

	"github.com/helloworldx64/craftpacker/pkg/dag"
)

func sample() *dag.DAG {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "AANobbMI", Label: "Sodium", Meta: dag.Metadata{"channel": "release", "version": "0.5.3"}})
	_ = g.AddNode(dag.Node{ID: "P7dR8mSH", Label: "Fabric API", Meta: dag.Metadata{"channel": "beta"}})
	_ = g.AddNode(dag.Node{ID: "raw"})
	_ = g.AddEdge(dag.Edge{From: "AANobbMI", To: "P7dR8mSH"})
	return g
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(sample(), Options{})

	for _, want := range []string{
		"digraph G {",
		`"AANobbMI" [label="Sodium"];`,
		`"P7dR8mSH" [label="Fabric API", fillcolor=lightyellow];`,
		`"raw" [label="raw"];`,
		`"AANobbMI" -> "P7dR8mSH";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(sample(), Options{Detailed: true})
	if !strings.Contains(dot, `label="Sodium\nchannel: release\nversion: 0.5.3"`) {
		t.Errorf("detailed label missing metadata:\n%s", dot)
	}
	if !strings.Contains(dot, `"raw" [label="raw"];`) {
		t.Errorf("node without metadata should keep a plain label:\n%s", dot)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %s, want %s", got, want)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(ToDOT(sample(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	s := string(svg)
	if !strings.Contains(s, "<svg") || !strings.Contains(s, "Sodium") {
		t.Errorf("RenderSVG() output missing svg root or label")
	}
}

func TestRenderSVGInvalid(t *testing.T) {
	if _, err := RenderSVG("digraph {"); err == nil {
		t.Error("RenderSVG() should fail on malformed DOT")
	}
}
