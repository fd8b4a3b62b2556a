package pipeline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	"github.com/helloworldx64/craftpacker/pkg/io"
)

func renderPlan() *deps.Plan {
	return &deps.Plan{
		Packages: []*deps.Package{
			{Name: "Fabric API", ProjectID: "P7dR8mSH", Channel: deps.ChannelRelease, URL: "https://cdn/fabric-api.jar", Filename: "fabric-api.jar"},
			{Name: "Sodium", ProjectID: "AANobbMI", Channel: deps.ChannelRelease, URL: "https://cdn/sodium.jar", Filename: "sodium.jar"},
		},
		Edges: []deps.Edge{{From: "AANobbMI", To: "P7dR8mSH"}},
	}
}

func TestRender(t *testing.T) {
	artifacts, err := Render(renderPlan(), []string{FormatDOT, FormatJSON}, false)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("Render() returned %d artifacts, want 2", len(artifacts))
	}

	dot := string(artifacts[FormatDOT])
	if !strings.Contains(dot, `"AANobbMI" -> "P7dR8mSH";`) {
		t.Errorf("dot missing edge:\n%s", dot)
	}

	plan, err := io.ReadPlan(bytes.NewReader(artifacts[FormatJSON]))
	if err != nil {
		t.Fatalf("ReadPlan() error: %v", err)
	}
	if plan.Len() != 2 || plan.Packages[1].Name != "Sodium" {
		t.Errorf("json plan = %+v", plan.Packages)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	if _, err := Render(renderPlan(), []string{"pdf"}, false); err == nil {
		t.Error("Render() should reject unknown formats")
	}
}
