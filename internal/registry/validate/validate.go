// Package validate holds the pure name predicates. Anything that needs state
// (reserved names, short-name governance) lives in the policy package.
package validate

import (
	"unicode"

	"registrar/internal/registry/models"
	dErrors "registrar/pkg/domain-errors"
)

// MaxNameLength is the longest registrable name.
const MaxNameLength = 63

// ShortNameThreshold is the length below which short-name governance applies.
// Names of this length or longer are always allowed.
const ShortNameThreshold = 5

// Name checks name syntax: non-empty, at most 63 bytes, Unicode letters and
// digits or hyphen, no leading or trailing hyphen. Length limits and the
// short-name threshold count bytes, so a multi-byte name spends its budget
// faster. Names are case-sensitive as stored.
func Name(name string) error {
	if name == "" {
		return dErrors.New(models.CodeInvalidName, "name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return dErrors.Newf(models.CodeInvalidName, "name %q exceeds %d characters", name, MaxNameLength)
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return dErrors.Newf(models.CodeInvalidName, "name %q cannot start or end with a hyphen", name)
	}
	for _, c := range name {
		if !isNameChar(c) {
			return dErrors.Newf(models.CodeInvalidName, "name %q contains invalid character %q", name, c)
		}
	}
	return nil
}

// IsShort reports whether a name falls under short-name governance.
func IsShort(name string) bool {
	return len(name) < ShortNameThreshold
}

func isNameChar(c rune) bool {
	return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '-'
}
