package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/helloworldx64/craftpacker/pkg/integrations/modrinth/modrinthtest"
)

// captureStdout redirects user-facing output to w until the returned
// function is called.
func captureStdout(w io.Writer) func() {
	old := stdout
	stdout = w
	return func() { stdout = old }
}

func mod(id, slug, title string, requires ...string) modrinthtest.Project {
	var ds []modrinthtest.Dependency
	for _, r := range requires {
		ds = append(ds, modrinthtest.Dependency{ProjectID: r, Type: "required"})
	}
	return modrinthtest.Project{
		ID: id, Slug: slug, Title: title,
		Versions: []modrinthtest.Version{{
			ID: id + "-v1", Number: "1.0.0", Type: "release",
			Loaders: []string{"fabric"}, GameVersions: []string{"1.20.1"},
			Files:        []modrinthtest.File{{Name: slug + ".jar", Content: []byte("jar:" + slug), Primary: true}},
			Dependencies: ds,
		}},
	}
}

// catalog serves Sodium and Lithium, both requiring Fabric API.
func catalog(t *testing.T) *modrinthtest.Server {
	t.Helper()
	srv := modrinthtest.NewServer()
	t.Cleanup(srv.Close)
	srv.AddProject(mod("P7dR8mSH", "fabric-api", "Fabric API"))
	srv.AddProject(mod("AANobbMI", "sodium", "Sodium", "P7dR8mSH"))
	srv.AddProject(mod("gvQqBUqZ", "lithium", "Lithium", "P7dR8mSH"))
	return srv
}

// writeConfig writes a config file pointing at srv with caching off and a
// rate limit fast enough for tests.
func writeConfig(t *testing.T, srv *modrinthtest.Server) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	data := fmt.Sprintf(`api_base_url = %q
calls_per_minute = 60000
retries = 1

[cache]
backend = "none"
`, srv.URL)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns what was printed.
// A config file in the user's real config directory is never read.
func execute(t *testing.T, args ...string) (string, *CLI, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	var out bytes.Buffer
	restore := captureStdout(&out)
	defer restore()

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), c, err
}
