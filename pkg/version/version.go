// Package version validates and compares strict MAJOR.MINOR.PATCH release versions.
package version

import (
	"fmt"
	"regexp"
	"strconv"
)

var pattern = regexp.MustCompile(`^(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)\.(0|[1-9][0-9]*)$`)

// Version is a parsed release version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a strict MAJOR.MINOR.PATCH string. Prefixes, pre-release and build metadata are rejected.
func Parse(s string) (Version, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q (expected MAJOR.MINOR.PATCH)", ErrInvalidFormat, s)
	}
	parts := [3]int{}
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %w", ErrInvalidFormat, s, err)
		}
		parts[i] = n
	}
	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// String returns the MAJOR.MINOR.PATCH form.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 comparing components in order.
func (v Version) Compare(other Version) int {
	a := [3]int{v.Major, v.Minor, v.Patch}
	b := [3]int{other.Major, other.Minor, other.Patch}
	for i := range a {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// ValidateNext checks that candidate is well-formed and strictly greater than current.
func ValidateNext(candidate, current string) (Version, error) {
	next, err := Parse(candidate)
	if err != nil {
		return Version{}, err
	}
	cur, err := Parse(current)
	if err != nil {
		return Version{}, fmt.Errorf("current version: %w", err)
	}
	if next.Compare(cur) <= 0 {
		return Version{}, fmt.Errorf("%w: %s is not greater than %s", ErrNotIncreasing, next, cur)
	}
	return next, nil
}

// Bump kinds accepted by Bump.
const (
	BumpMajor = "major"
	BumpMinor = "minor"
	BumpPatch = "patch"
)

// Bump returns the next version of the given kind.
func (v Version) Bump(kind string) (Version, error) {
	switch kind {
	case BumpMajor:
		return Version{Major: v.Major + 1}, nil
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}, nil
	case BumpPatch:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}, nil
	default:
		return Version{}, fmt.Errorf("%w: %q", ErrUnknownBump, kind)
	}
}
