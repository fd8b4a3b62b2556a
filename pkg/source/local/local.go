// Package local reads mod names from local sources: newline-delimited
// lists and folders of installed .jar files.
package local

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/helloworldx64/craftpacker/pkg/errors"
)

// ReadList reads one name per line. Lines are trimmed; blank lines and
// lines starting with '#' are skipped; duplicates keep their first
// position.
func ReadList(r io.Reader) ([]string, error) {
	var names []string
	seen := make(map[string]bool)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

// ReadListFile reads a name list from path. "-" reads standard input.
func ReadListFile(path string) ([]string, error) {
	if path == "-" {
		return ReadList(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "list %s not found", path)
		}
		return nil, err
	}
	defer f.Close()
	return ReadList(f)
}

var (
	versionSuffix  = regexp.MustCompile(`[-_](v)?(\d+\.)?(\d+\.)?(\*|\d+).*$`)
	separators     = regexp.MustCompile(`[-_]`)
	loaderSuffixes = []string{"-forge", "_forge", "-fabric", "_fabric", "-neoforge", "_neoforge", "-quilt", "_quilt"}
)

// NameFromJar guesses a mod name from a jar file name: the extension, the
// version tail and one loader suffix are dropped and separators become
// spaces. "sodium-fabric-0.5.3+mc1.20.1.jar" becomes "sodium".
func NameFromJar(filename string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if loc := versionSuffix.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	lower := strings.ToLower(name)
	for _, s := range loaderSuffixes {
		if strings.HasSuffix(lower, s) {
			name = name[:len(name)-len(s)]
			break
		}
	}
	return strings.TrimSpace(separators.ReplaceAllString(name, " "))
}

// ImportFolder returns the sorted, de-duplicated names guessed from every
// .jar file directly inside dir.
func ImportFolder(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "folder %s not found", dir)
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || !strings.EqualFold(filepath.Ext(e.Name()), ".jar") {
			continue
		}
		if n := NameFromJar(e.Name()); n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	return slices.Compact(names), nil
}
