package cli

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	pkgio "github.com/helloworldx64/craftpacker/pkg/io"
	"github.com/helloworldx64/craftpacker/pkg/pipeline"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read %s: %v", dir, err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names
}

func TestRootCommand(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("Use = %q, want %q", root.Use, appName)
	}
	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, want := range []string{"search", "resolve", "download", "import", "cache", "completion"} {
		if !slices.Contains(names, want) {
			t.Errorf("missing subcommand %q in %v", want, names)
		}
	}
	for _, flag := range []string{"config", "loader", "game-version", "dest", "workers", "no-cache"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestSearchCommand(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)

	out, c, err := execute(t, "--config", cfg, "search", "Sodium", "Lithium9", "ThisModDoesNotExist")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	for _, want := range []string{
		"Searching 3 mods for fabric 1.20.1",
		"Search complete. Found 2 of 3 mods.",
		"Available (API) (release)",
		"Lithium9",
		"1 mods were not found",
		"ThisModDoesNotExist",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if c.Config.APIBaseURL != srv.URL {
		t.Errorf("APIBaseURL = %q, want test server", c.Config.APIBaseURL)
	}
	if n := srv.Hits("/files/{version}/{name}"); n != 0 {
		t.Errorf("search downloaded %d files", n)
	}
}

func TestSearchCommandFromFile(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)
	list := filepath.Join(t.TempDir(), "mods.txt")
	if err := os.WriteFile(list, []byte("# performance\nSodium\n\nSodium\nLithium\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "--config", cfg, "search", "-f", list)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if !strings.Contains(out, "Found 2 of 2 mods.") {
		t.Errorf("output:\n%s", out)
	}
}

func TestSearchCommandRetry(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)

	out, _, err := execute(t, "--config", cfg, "search", "--retry", "2", "Sodium", "Nope")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if n := strings.Count(out, "Retrying 1 mods that were not found"); n != 2 {
		t.Errorf("retry passes = %d, want 2:\n%s", n, out)
	}
}

func TestSearchCommandInputErrors(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)
	empty := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(empty, []byte("\n# nothing\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, _, err := execute(t, "--config", cfg, "search", "-f", empty)
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("empty list: err = %v, want INVALID_INPUT", err)
	}

	_, _, err = execute(t, "--config", cfg, "search", "-f", filepath.Join(t.TempDir(), "missing.txt"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("missing list: err = %v, want FILE_NOT_FOUND", err)
	}

	_, _, err = execute(t, "--config", cfg, "-l", "rift", "search", "Sodium")
	if !perrors.Is(err, perrors.ErrCodeInvalidLoader) {
		t.Errorf("bad loader: err = %v, want INVALID_LOADER", err)
	}
}

func TestDownloadCommand(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)
	dest := filepath.Join(t.TempDir(), "mods")

	out, _, err := execute(t, "--config", cfg, "-d", dest, "download", "Sodium", "Lithium9", "ThisModDoesNotExist")
	if err != nil {
		t.Fatalf("download error: %v", err)
	}

	if got := listDir(t, dest); !slices.Equal(got, []string{"fabric-api.jar", "lithium.jar", "sodium.jar"}) {
		t.Errorf("downloaded %v", got)
	}
	if n := srv.Hits("/files/{version}/{name}"); n != 3 {
		t.Errorf("file requests = %d, want 3", n)
	}
	if !strings.Contains(out, "Downloaded 3 files") || !strings.Contains(out, dest) {
		t.Errorf("output:\n%s", out)
	}
}

func TestDownloadCommandNothingFound(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)

	_, _, err := execute(t, "--config", cfg, "-d", t.TempDir(), "download", "Nope")
	if !errors.Is(err, pipeline.ErrNothingSelected) {
		t.Errorf("err = %v, want ErrNothingSelected", err)
	}
}

func TestDownloadCommandFailure(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)
	srv.Fail("/files/{version}/{name}", 500)
	dest := filepath.Join(t.TempDir(), "mods")

	out, _, err := execute(t, "--config", cfg, "-d", dest, "download", "Sodium")
	var failed errDownloadsFailed
	if !errors.As(err, &failed) {
		t.Fatalf("err = %v, want errDownloadsFailed", err)
	}
	if failed.failed != 2 || failed.total != 2 {
		t.Errorf("failed = %+v, want 2 of 2", failed)
	}
	if !strings.Contains(out, "Sodium: Network Error") {
		t.Errorf("output:\n%s", out)
	}
	if got := listDir(t, dest); len(got) != 0 {
		t.Errorf("failed downloads left files: %v", got)
	}
}

func TestDownloadCommandPlanConflicts(t *testing.T) {
	_, _, err := execute(t, "--no-cache", "download", "--plan", "plan.json", "Sodium")
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestResolveThenDownloadPlan(t *testing.T) {
	srv := catalog(t)
	cfg := writeConfig(t, srv)
	dir := t.TempDir()
	planPath := filepath.Join(dir, "plan.json")
	dotPath := filepath.Join(dir, "plan.dot")

	out, _, err := execute(t, "--config", cfg, "resolve", "Sodium", "Lithium", "--json", planPath, "--graph", dotPath)
	if err != nil {
		t.Fatalf("resolve error: %v", err)
	}
	for _, want := range []string{"Resolved 3 files", "2 mods", "1 dependencies", planPath, dotPath} {
		if !strings.Contains(out, want) {
			t.Errorf("resolve output missing %q:\n%s", want, out)
		}
	}
	if n := srv.Hits("/files/{version}/{name}"); n != 0 {
		t.Errorf("resolve downloaded %d files", n)
	}

	plan, err := pkgio.ImportPlan(planPath)
	if err != nil {
		t.Fatalf("ImportPlan() error: %v", err)
	}
	if plan.Len() != 3 {
		t.Errorf("plan has %d packages, want 3", plan.Len())
	}
	dot, err := os.ReadFile(dotPath)
	if err != nil || !strings.Contains(string(dot), "digraph") {
		t.Errorf("graph file = %q, %v", dot, err)
	}

	dest := filepath.Join(dir, "mods")
	out, _, err = execute(t, "--config", cfg, "-d", dest, "download", "--plan", planPath)
	if err != nil {
		t.Fatalf("download --plan error: %v", err)
	}
	if !strings.Contains(out, "Loaded plan with 3 files") {
		t.Errorf("download output:\n%s", out)
	}
	if got := listDir(t, dest); !slices.Equal(got, []string{"fabric-api.jar", "lithium.jar", "sodium.jar"}) {
		t.Errorf("downloaded %v", got)
	}
}

func TestResolveCommandBadGraphFormat(t *testing.T) {
	_, _, err := execute(t, "--no-cache", "resolve", "Sodium", "--graph", "plan.pdf")
	if !perrors.Is(err, perrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestImportCommand(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"sodium-fabric-0.5.3.jar", "Xaeros_Minimap_23.6.2_Fabric_1.20.jar", "lithium-fabric-mc1.20.1-0.11.2.jar", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, f), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out, _, err := execute(t, "--no-cache", "import", dir)
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("import printed %d names, want 3:\n%s", len(lines), out)
	}
	if !slices.Contains(lines, "sodium") {
		t.Errorf("names = %v, want sodium", lines)
	}

	list := filepath.Join(t.TempDir(), "mods.txt")
	out, _, err = execute(t, "--no-cache", "import", dir, "-o", list)
	if err != nil {
		t.Fatalf("import -o error: %v", err)
	}
	if !strings.Contains(out, "Imported 3 mod names") {
		t.Errorf("output:\n%s", out)
	}
	data, err := os.ReadFile(list)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Split(strings.TrimSpace(string(data)), "\n"); !slices.Equal(got, lines) {
		t.Errorf("file list %v, stdout list %v", got, lines)
	}
}

func TestImportCommandMissingDir(t *testing.T) {
	_, _, err := execute(t, "--no-cache", "import", filepath.Join(t.TempDir(), "absent"))
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion error: %v", err)
	}
	if !strings.Contains(out, appName) {
		t.Errorf("bash completion does not mention %s", appName)
	}
}
