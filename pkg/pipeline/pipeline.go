// Package pipeline runs craftpacker's search → resolve → download flows.
//
// A [Runner] ties the stages together around one in-memory session:
//
//  1. Search: match every input name against the catalog concurrently.
//  2. Resolve: expand the selected matches into a deduplicated plan.
//  3. Download: fetch the plan into the destination directory.
//
// Every stage reports through the runner's [progress.Sink]. Stages can be
// run one at a time ([Runner.Search], [Runner.Resolve], [Runner.Download])
// and a plan can be exported with [Render].
//
// # Usage
//
//	runner := pipeline.NewRunner(client, pipeline.Config{Sink: sink, Logger: logger})
//	opts := pipeline.Options{Loader: "fabric", GameVersion: "1.20.1", Destination: dir}
//
//	res, err := runner.Search(ctx, []string{"Sodium", "Lithium9"}, opts)
//	if err != nil {
//	    return err
//	}
//	out, err := runner.Download(ctx, nil, opts) // nil = everything found
package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and tests
// =============================================================================

const (
	// DefaultLoader is the loader searched when none is given.
	DefaultLoader = deps.DefaultLoader

	// DefaultGameVersion is the game version searched when none is given.
	DefaultGameVersion = deps.DefaultGameVersion

	// DefaultDestinationDir is the folder under the home directory that
	// receives downloads when no destination is given.
	DefaultDestinationDir = "CraftPacker_Downloads"
)

// Sentinel errors returned by the runner.
var (
	// ErrBusy is returned when a flow is started while another is running.
	ErrBusy = errors.New("another operation is in progress")

	// ErrNothingSelected is returned when a flow has no names or results to
	// act on.
	ErrNothingSelected = errors.New("nothing selected")
)

// DefaultDestination returns ~/CraftPacker_Downloads, or a relative
// CraftPacker_Downloads when the home directory is unknown.
func DefaultDestination() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDestinationDir
	}
	return filepath.Join(home, DefaultDestinationDir)
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options selects what a flow searches for and where files go.
type Options struct {
	Loader      string `json:"loader" toml:"loader"`
	GameVersion string `json:"game_version" toml:"game_version"`
	Destination string `json:"destination,omitempty" toml:"destination"`

	loader    deps.Loader
	validated bool
}

// ValidateForSearch checks the loader and game version. An empty loader
// means [DefaultLoader]; the game version is required.
func (o *Options) ValidateForSearch() error {
	if strings.TrimSpace(o.Loader) == "" {
		o.Loader = string(DefaultLoader)
	}
	l, err := deps.ParseLoader(o.Loader)
	if err != nil {
		return err
	}
	o.Loader, o.loader = string(l), l

	return perrors.ValidateGameVersion(o.GameVersion)
}

// ValidateAndSetDefaults checks every field needed by a download. This
// method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForSearch(); err != nil {
		return err
	}
	if o.Destination == "" {
		o.Destination = DefaultDestination()
	}
	if err := perrors.ValidateDestination(o.Destination); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// LoaderValue returns the parsed loader. Valid after validation.
func (o *Options) LoaderValue() deps.Loader {
	if o.loader == "" {
		return DefaultLoader
	}
	return o.loader
}
