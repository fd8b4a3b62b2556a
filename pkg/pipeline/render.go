package pipeline

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/helloworldx64/craftpacker/pkg/deps"
	perrors "github.com/helloworldx64/craftpacker/pkg/errors"
	"github.com/helloworldx64/craftpacker/pkg/io"
	"github.com/helloworldx64/craftpacker/pkg/render/nodelink"
)

// Format constants for plan exports.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json" // the plan itself, re-readable with io.ReadPlan
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return perrors.New(perrors.ErrCodeInvalidInput, "invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// FormatFromPath picks an export format from a file extension.
func FormatFromPath(path string) (string, error) {
	f := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if err := ValidateFormat(f); err != nil {
		return "", err
	}
	return f, nil
}

// Render exports plan in each requested format.
func Render(plan *deps.Plan, formats []string, detailed bool) (map[string][]byte, error) {
	if err := ValidateFormats(formats); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(formats))
	var dot string
	for _, format := range formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT, FormatSVG:
			if dot == "" {
				dot = nodelink.ToDOT(plan.Graph(), nodelink.Options{Detailed: detailed})
			}
			if format == FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(dot)
			}
		case FormatJSON:
			var buf bytes.Buffer
			err = io.WritePlan(plan, &buf)
			data = buf.Bytes()
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
