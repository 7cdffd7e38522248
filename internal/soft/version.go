package soft

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/SINTEF/entities-service/internal/domain/entity"
)

var softVersion = regexp.MustCompile(`^\d+(?:\.\d+){0,2}$`)

// IsSOFTVersion reports whether v is one to three dot-separated integers
func IsSOFTVersion(v string) bool {
	return softVersion.MatchString(v)
}

// NextVersion proposes the version following v: "1" -> "1.1", "1.1" -> "1.1.1", "1.1.1" -> "1.1.2"
func NextVersion(v string) (string, error) {
	if !IsSOFTVersion(v) {
		return "", fmt.Errorf("cannot parse version %q to get updated version", v)
	}
	parts := strings.Split(v, ".")
	if len(parts) < 3 {
		return v + ".1", nil
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return "", fmt.Errorf("cannot parse version %q to get updated version: %w", v, err)
	}
	parts[2] = strconv.Itoa(patch + 1)
	return strings.Join(parts, "."), nil
}

// WithVersion returns a copy of e whose identity carries version
func WithVersion(e *entity.Entity, version string) *entity.Entity {
	out := e.Clone()
	out.Identity.Version = version
	return out
}
