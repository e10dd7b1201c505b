package checklist

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/agentstation/checkmate/pkg/errors"
)

// Scheme identifies how a benchmark numbers its releases.
type Scheme int

const (
	// SchemeUnknown is the zero Version.
	SchemeUnknown Scheme = iota
	// SchemeVersionRelease is the V<version>R<release> scheme.
	SchemeVersionRelease
	// SchemeYearMonth is the Y<yy>M<mm> scheme.
	SchemeYearMonth
)

// String returns the scheme name.
func (s Scheme) String() string {
	switch s {
	case SchemeVersionRelease:
		return "version_release"
	case SchemeYearMonth:
		return "year_month"
	default:
		return "unknown"
	}
}

var (
	versionReleasePattern = regexp.MustCompile(`(?i)^V(\d+)\s*R(\d+)$`)
	yearMonthPattern      = regexp.MustCompile(`(?i)^Y(\d{2}|\d{4})\s*M(\d{1,2})$`)
	releaseInfoPattern    = regexp.MustCompile(`Release:\s*(\d+)`)
)

// Version is a totally ordered benchmark version token. Both schemes are
// projected onto semantic versions: V2R3 is 2.3.0 and Y25M04 is 2025.4.0,
// so every year-month release orders after every version-release one.
type Version struct {
	scheme Scheme
	major  int
	minor  int
	sv     *semver.Version
}

// NewVersionRelease returns a V<version>R<release> token.
func NewVersionRelease(version, release int) Version {
	return newVersion(SchemeVersionRelease, version, release)
}

// NewYearMonth returns a Y<yy>M<mm> token. Two-digit years are in the 2000s.
func NewYearMonth(year, month int) Version {
	if year < 100 {
		year += 2000
	}
	return newVersion(SchemeYearMonth, year, month)
}

func newVersion(scheme Scheme, major, minor int) Version {
	sv := semver.New(uint64(max(major, 0)), uint64(max(minor, 0)), 0, "", "")
	return Version{scheme: scheme, major: major, minor: minor, sv: sv}
}

// ParseVersion parses a version token such as "V2R3" or "Y25M04".
func ParseVersion(token string) (Version, error) {
	token = strings.TrimSpace(token)
	if m := versionReleasePattern.FindStringSubmatch(token); m != nil {
		v, err := number("version", m[1])
		if err != nil {
			return Version{}, err
		}
		r, err := number("release", m[2])
		if err != nil {
			return Version{}, err
		}
		return NewVersionRelease(v, r), nil
	}
	if m := yearMonthPattern.FindStringSubmatch(token); m != nil {
		y, err := number("year", m[1])
		if err != nil {
			return Version{}, err
		}
		mo, err := number("month", m[2])
		if err != nil {
			return Version{}, err
		}
		if mo < 1 || mo > 12 {
			return Version{}, errors.NewValidationError("version", token, "month out of range")
		}
		return NewYearMonth(y, mo), nil
	}
	return Version{}, errors.NewValidationError("version", token, "expected V<version>R<release> or Y<yy>M<mm>")
}

// ParseVersionFields derives a token from the separate version and
// release_info fields a checklist carries, e.g. "2" and
// "Release: 3 Benchmark Date: 24 Jan 2024". A version field that is already
// a full token is accepted as is.
func ParseVersionFields(version, releaseInfo string) (Version, error) {
	if v, err := ParseVersion(version); err == nil {
		return v, nil
	}
	if v, err := ParseVersion(releaseInfo); err == nil {
		return v, nil
	}

	major, err := number("version", strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(version)), "V"))
	if err != nil {
		return Version{}, err
	}
	m := releaseInfoPattern.FindStringSubmatch(releaseInfo)
	if m == nil {
		return Version{}, errors.NewValidationError("release_info", releaseInfo, "no release number")
	}
	release, err := number("release_info", m[1])
	if err != nil {
		return Version{}, err
	}
	return NewVersionRelease(major, release), nil
}

// number parses an unsigned decimal version component. Signs and values
// that do not fit in 31 bits are rejected.
func number(field, s string) (int, error) {
	n, err := strconv.ParseUint(s, 10, 31)
	if err != nil {
		return 0, errors.NewValidationError(field, s, "not a version number")
	}
	return int(n), nil
}

// Scheme returns the numbering scheme of v.
func (v Version) Scheme() Scheme {
	return v.scheme
}

// IsZero reports whether v is the zero Version.
func (v Version) IsZero() bool {
	return v.sv == nil
}

// Semver returns the semantic-version projection of v, or nil for the zero Version.
func (v Version) Semver() *semver.Version {
	return v.sv
}

// Compare returns -1, 0 or +1. The zero Version orders first.
func (v Version) Compare(o Version) int {
	switch {
	case v.sv == nil && o.sv == nil:
		return 0
	case v.sv == nil:
		return -1
	case o.sv == nil:
		return 1
	}
	return v.sv.Compare(o.sv)
}

// Less reports whether v orders before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// String renders the token in its own scheme.
func (v Version) String() string {
	switch v.scheme {
	case SchemeVersionRelease:
		return fmt.Sprintf("V%dR%d", v.major, v.minor)
	case SchemeYearMonth:
		return fmt.Sprintf("Y%02dM%02d", v.major%100, v.minor)
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*v = Version{}
		return nil
	}
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
