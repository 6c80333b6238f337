// Package all registers every rule family with the rules registry.
package all

import (
	_ "casearch/internal/rules/hrot"
	_ "casearch/internal/rules/isotropic"
	_ "casearch/internal/rules/margolus"
	_ "casearch/internal/rules/oned"
	_ "casearch/internal/rules/ruletable"
)
