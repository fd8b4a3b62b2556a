package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
)

func TestValidateForSearch(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		wantCode perrors.Code
		loader   deps.Loader
	}{
		{"defaults loader", Options{GameVersion: "1.20.1"}, "", deps.LoaderFabric},
		{"case-insensitive", Options{Loader: "NeoForge", GameVersion: "1.21"}, "", deps.LoaderNeoForge},
		{"unknown loader", Options{Loader: "rift", GameVersion: "1.20.1"}, perrors.ErrCodeInvalidLoader, ""},
		{"missing version", Options{Loader: "forge"}, perrors.ErrCodeInvalidVersion, ""},
		{"blank version", Options{Loader: "forge", GameVersion: " "}, perrors.ErrCodeInvalidVersion, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateForSearch()
			if tt.wantCode != "" {
				if !perrors.Is(err, tt.wantCode) {
					t.Fatalf("ValidateForSearch() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateForSearch() error: %v", err)
			}
			if opts.LoaderValue() != tt.loader {
				t.Errorf("LoaderValue() = %s, want %s", opts.LoaderValue(), tt.loader)
			}
		})
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	opts := Options{GameVersion: "1.20.1"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Destination == "" || filepath.Base(opts.Destination) != DefaultDestinationDir {
		t.Errorf("Destination = %q, want .../%s", opts.Destination, DefaultDestinationDir)
	}
	// idempotent
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second ValidateAndSetDefaults() error: %v", err)
	}

	root := Options{GameVersion: "1.20.1", Destination: "/"}
	if err := root.ValidateAndSetDefaults(); !perrors.Is(err, perrors.ErrCodeInvalidPath) {
		t.Errorf("root destination error = %v, want INVALID_PATH", err)
	}
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]string{
		"plan.json":     "json",
		"out/graph.SVG": "svg",
		"graph.dot":     "dot",
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Errorf("FormatFromPath(%q) = %q, %v, want %q", path, got, err, want)
		}
	}
	if _, err := FormatFromPath("graph.png"); err == nil {
		t.Error("FormatFromPath(png) should fail")
	}
}
