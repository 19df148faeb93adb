package projectfile

import (
	"github.com/Masterminds/semver/v3"
)

// FormatVersion is the archive format this engine writes.
const FormatVersion = "1.0.0"

var supportedMajor = semver.MustParse(FormatVersion).Major()

// IsVersionCompatible reports whether an archive written with version v can
// be read. Only the major component is compared; unparsable versions are
// rejected.
func IsVersionCompatible(v string) bool {
	parsed, err := semver.StrictNewVersion(v)
	if err != nil {
		return false
	}
	return parsed.Major() == supportedMajor
}
