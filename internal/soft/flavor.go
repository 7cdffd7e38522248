package soft

import (
	"fmt"
	"strings"
)

// Flavor selects which raw encodings of dimensions and properties are accepted
type Flavor int

const (
	// Modern (SOFT7) entities key dimensions and properties by name
	Modern Flavor = iota
	// Legacy (SOFT5) entities list dimensions and properties with an explicit name
	Legacy
)

// Flavors is the order in which flavors are tried when the flavor is not known
var Flavors = []Flavor{Modern, Legacy}

func (f Flavor) String() string {
	switch f {
	case Modern:
		return "SOFT7"
	case Legacy:
		return "SOFT5"
	default:
		return fmt.Sprintf("Flavor(%d)", int(f))
	}
}

// ParseFlavor accepts "soft7"/"modern" and "soft5"/"legacy", case-insensitively
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soft7", "modern":
		return Modern, nil
	case "soft5", "legacy":
		return Legacy, nil
	default:
		return Modern, fmt.Errorf("unknown entity flavor %q", s)
	}
}
