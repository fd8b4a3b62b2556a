package deps

import (
	"slices"
	"strings"

	"github.com/helloworldx64/craftpacker/pkg/errors"
)

// Loader is a mod platform identifier as the catalog spells it.
type Loader string

const (
	LoaderFabric   Loader = "fabric"
	LoaderForge    Loader = "forge"
	LoaderNeoForge Loader = "neoforge"
	LoaderQuilt    Loader = "quilt"
)

// DefaultLoader is used when none is configured.
const DefaultLoader = LoaderFabric

// DefaultGameVersion is used when none is configured.
const DefaultGameVersion = "1.20.1"

var loaders = []Loader{LoaderFabric, LoaderForge, LoaderNeoForge, LoaderQuilt}

// Loaders returns the supported loaders.
func Loaders() []Loader { return slices.Clone(loaders) }

// ParseLoader parses a loader name case-insensitively.
func ParseLoader(s string) (Loader, error) {
	l := Loader(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(loaders, l) {
		return l, nil
	}
	return "", errors.New(errors.ErrCodeInvalidLoader, "unknown loader %q (want one of fabric, forge, neoforge, quilt)", s)
}

func (l Loader) String() string { return string(l) }

// Channel is a release stability tier, using the catalog's wire values.
type Channel string

const (
	ChannelRelease Channel = "release"
	ChannelBeta    Channel = "beta"
	ChannelAlpha   Channel = "alpha"
)

// ChannelPriority lists channels from most to least preferred.
var ChannelPriority = []Channel{ChannelRelease, ChannelBeta, ChannelAlpha}

func (c Channel) String() string { return string(c) }

// Kind is a dependency relation tag.
type Kind string

const (
	Required     Kind = "required"
	Optional     Kind = "optional"
	Incompatible Kind = "incompatible"
	Embedded     Kind = "embedded"
)

// Dependency is one declared dependency reference of a version.
// ProjectID may be empty when the catalog only names a version.
type Dependency struct {
	ProjectID string `json:"project_id,omitempty"`
	VersionID string `json:"version_id,omitempty"`
	Kind      Kind   `json:"kind"`
}

// Package is one catalog project pinned to an acceptable version.
// Values are not modified after construction and may be shared freely.
type Package struct {
	Name          string       `json:"name"`
	ProjectID     string       `json:"project_id"`
	Slug          string       `json:"slug,omitempty"`
	VersionID     string       `json:"version_id"`
	VersionNumber string       `json:"version_number,omitempty"`
	Channel       Channel      `json:"channel"`
	Dependencies  []Dependency `json:"dependencies,omitempty"`
	URL           string       `json:"url"`
	Filename      string       `json:"filename"`
	Size          int64        `json:"size,omitempty"`
}

// Required returns the dependencies tagged required, in declared order.
func (p *Package) Required() []Dependency {
	var out []Dependency
	for _, d := range p.Dependencies {
		if d.Kind == Required {
			out = append(out, d)
		}
	}
	return out
}

// Metadata converts Package fields to a map for graph node metadata.
func (p *Package) Metadata() map[string]any {
	m := map[string]any{
		"channel":  string(p.Channel),
		"filename": p.Filename,
	}
	if p.VersionNumber != "" {
		m["version"] = p.VersionNumber
	}
	if p.Slug != "" {
		m["slug"] = p.Slug
	}
	if p.Size > 0 {
		m["size"] = p.Size
	}
	return m
}
