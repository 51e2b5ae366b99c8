package visgate

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is the current SDK version, following semantic versioning.
const Version = "0.1.0"

// APIVersion is the visgate API version this SDK targets. Use
// [Client.Health] to read the actual server version at runtime.
const APIVersion = "1.0.0"

// APIVersionRange is the semver constraint of server versions this SDK
// is known to work with.
const APIVersionRange = ">=1.0.0-0 <1.1.0"

var apiConstraint = mustConstraint(APIVersionRange)

func mustConstraint(rng string) *semver.Constraints {
	c, err := semver.NewConstraint(rng)
	if err != nil {
		panic(fmt.Sprintf("visgate: invalid APIVersionRange %q: %v", rng, err))
	}
	return c
}

// CompatibilityStatus classifies a server version against
// [APIVersionRange].
type CompatibilityStatus int

const (
	// Compatible means the server version is inside the supported range.
	Compatible CompatibilityStatus = iota

	// Incompatible means the server version parses but falls outside the
	// supported range.
	Incompatible

	// Unknown means the server version could not be parsed.
	Unknown
)

func (s CompatibilityStatus) String() string {
	switch s {
	case Compatible:
		return "compatible"
	case Incompatible:
		return "incompatible"
	default:
		return "unknown"
	}
}

// CompatibilityResult is the outcome of [CheckCompatibility].
type CompatibilityResult struct {
	Status           CompatibilityStatus
	ServerVersion    string
	SDKVersion       string
	TargetAPIVersion string
	SupportedRange   string
	Message          string
}

// IsCompatible returns true when Status is [Compatible].
func (r CompatibilityResult) IsCompatible() bool {
	return r.Status == Compatible
}

// CheckCompatibility classifies a server version (as reported by
// [Client.Health]) against the range this SDK supports.
func CheckCompatibility(serverVersion string) CompatibilityResult {
	result := CompatibilityResult{
		ServerVersion:    serverVersion,
		SDKVersion:       Version,
		TargetAPIVersion: APIVersion,
		SupportedRange:   APIVersionRange,
	}

	v, err := semver.NewVersion(serverVersion)
	if err != nil {
		result.Status = Unknown
		result.Message = fmt.Sprintf("could not parse server version %q", serverVersion)
		return result
	}

	if apiConstraint.Check(v) {
		result.Status = Compatible
		result.Message = fmt.Sprintf("server version %s is compatible with SDK %s", serverVersion, Version)
	} else {
		result.Status = Incompatible
		result.Message = fmt.Sprintf("server version %s is not compatible with SDK %s (supported: %s)",
			serverVersion, Version, APIVersionRange)
	}
	return result
}

// IsCompatible reports whether a server version is inside the supported
// range. Unparseable versions are not compatible.
func IsCompatible(serverVersion string) bool {
	return CheckCompatibility(serverVersion).IsCompatible()
}

// MustBeCompatible panics when the server version is outside the
// supported range. Intended for program startup.
func MustBeCompatible(serverVersion string) {
	result := CheckCompatibility(serverVersion)
	if !result.IsCompatible() {
		panic("visgate: " + result.Message)
	}
}
