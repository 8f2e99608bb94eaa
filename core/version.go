package core

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	Ver0_13_1 = semver.MustParse("0.13.1")
	Ver0_13_2 = semver.MustParse("0.13.2")
	Ver0_13_3 = semver.MustParse("0.13.3")
)

// ParseBlockVersion computes the block version, defaulting to "0.0.0" for empty strings.
// Protocol versions may carry a fourth component ("0.13.1.1"), which is dropped.
func ParseBlockVersion(protocolVersion string) (*semver.Version, error) {
	if protocolVersion == "" {
		return semver.NewVersion("0.0.0")
	}

	sep := "."
	digits := strings.Split(protocolVersion, sep)
	// pad with 3 zeros in case version has less than 3 digits
	digits = append(digits, "0", "0", "0")

	return semver.NewVersion(strings.Join(digits[:3], sep))
}
