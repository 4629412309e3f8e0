package models

import (
	dErrors "registrar/pkg/domain-errors"
)

// ShortNameMode governs who may register names shorter than the short-name
// threshold. Admins bypass the mode entirely.
type ShortNameMode string

const (
	ShortNameModeOpen          ShortNameMode = "open"
	ShortNameModeWhitelistOnly ShortNameMode = "whitelist_only"
	ShortNameModeClosed        ShortNameMode = "closed"
)

// ParseShortNameMode validates an externally supplied mode string.
func ParseShortNameMode(s string) (ShortNameMode, error) {
	switch ShortNameMode(s) {
	case ShortNameModeOpen, ShortNameModeWhitelistOnly, ShortNameModeClosed:
		return ShortNameMode(s), nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unknown short name mode: %s", s)
	}
}

// ReservedNameSeed is the fixed reserved-name list installed at bootstrap.
// The set is append-only afterwards.
var ReservedNameSeed = []string{
	"icp", "api", "www", "admin", "root", "system", "registry", "canister", "dfinity", "ic",
}
