package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the module embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the module version with surrounding whitespace trimmed.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the canonical command and module identifier. It appears in
	// help text and default config paths.
	Name = "cellform"

	// Description is a short summary of the project used in help output.
	Description = "Spreadsheet formula engine with dependency-tracked recalculation"
)
