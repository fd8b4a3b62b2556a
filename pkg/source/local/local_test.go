package local

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/helloworldx64/craftpacker/pkg/errors"
)

func TestReadList(t *testing.T) {
	in := `
Sodium
  Lithium9  
# comment
Sodium

ThisModDoesNotExist
`
	got, err := ReadList(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadList() error: %v", err)
	}
	want := []string{"Sodium", "Lithium9", "ThisModDoesNotExist"}
	if !slices.Equal(got, want) {
		t.Errorf("ReadList() = %v, want %v", got, want)
	}
}

func TestReadListEmpty(t *testing.T) {
	got, err := ReadList(strings.NewReader("\n\n# only comments\n"))
	if err != nil {
		t.Fatalf("ReadList() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ReadList() = %v, want empty", got)
	}
}

func TestReadListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mods.txt")
	if err := os.WriteFile(path, []byte("Sodium\r\nIris\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadListFile(path)
	if err != nil {
		t.Fatalf("ReadListFile() error: %v", err)
	}
	if !slices.Equal(got, []string{"Sodium", "Iris"}) {
		t.Errorf("ReadListFile() = %v", got)
	}

	_, err = ReadListFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestNameFromJar(t *testing.T) {
	tests := []struct {
		file, want string
	}{
		{"sodium-fabric-0.5.3+mc1.20.1.jar", "sodium"},
		{"fabric-api-0.92.0+1.20.1.jar", "fabric api"},
		{"lithium-fabric-mc1.20.1-0.11.2.jar", "lithium fabric mc1.20.1"},
		{"jei_forge_15.2.0.jar", "jei"},
		{"Xaeros_Minimap_23.9.7_Fabric_1.20.jar", "Xaeros Minimap"},
		{"modmenu-v7.2.2.jar", "modmenu"},
		{"create-NeoForge.jar", "create"},
		{"Iris.JAR", "Iris"},
		{"-1.0.jar", ""},
	}
	for _, tt := range tests {
		if got := NameFromJar(tt.file); got != tt.want {
			t.Errorf("NameFromJar(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}

func TestImportFolder(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"sodium-fabric-0.5.3+mc1.20.1.jar",
		"sodium-fabric-0.5.8+mc1.20.1.jar",
		"fabric-api-0.92.0+1.20.1.jar",
		"notes.txt",
		"-1.0.jar",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "nested.jar"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ImportFolder(dir)
	if err != nil {
		t.Fatalf("ImportFolder() error: %v", err)
	}
	want := []string{"fabric api", "sodium"}
	if !slices.Equal(got, want) {
		t.Errorf("ImportFolder() = %v, want %v", got, want)
	}
}

func TestImportFolderMissing(t *testing.T) {
	_, err := ImportFolder(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportFolder(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}
