package canvas

import (
	_ "embed"
)

// Version is the semantic version of the module.
//
//go:embed VERSION
var Version string
