package resolve

import (
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// CurrentPlatform maps the running OS to the platform naming the lockfile
// records use (Python's sys.platform values).
func CurrentPlatform() string {
	switch runtime.GOOS {
	case "windows":
		return "win32"
	default:
		return runtime.GOOS
	}
}

// ParsePythonVersion parses an interpreter version string ("3.11.4") into
// the comparable form Facts carries.
func ParsePythonVersion(s string) (*semver.Version, error) {
	return semver.NewVersion(s)
}
