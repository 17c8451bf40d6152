package app

import (
	cliflag "k8s.io/component-base/cli/flag"
)

// NamedFlagSetOptions is implemented by the top-level options of a binary.
type NamedFlagSetOptions interface {
	// Flags returns the option flags grouped by section.
	Flags() cliflag.NamedFlagSets

	// Complete fills in derived or defaulted fields after parsing.
	Complete() error

	// Validate checks the completed options.
	Validate() error
}
