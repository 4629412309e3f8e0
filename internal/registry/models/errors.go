package models

import (
	dErrors "registrar/pkg/domain-errors"
)

// Registry-specific error codes. Together with the generic codes in
// pkg/domain-errors these form the closed result taxonomy of the allocation
// engine; callers match on codes, never on message text.
const (
	// validation
	CodeInvalidName     dErrors.Code = "invalid_name"
	CodeReservedName    dErrors.Code = "reserved_name"
	CodeInvalidEndpoint dErrors.Code = "invalid_endpoint"

	// policy
	CodeShortNameDenied      dErrors.Code = "short_name_denied"
	CodeAddressNotAuthorized dErrors.Code = "address_not_authorized"

	// conflict
	CodeNameUnavailable   dErrors.Code = "name_unavailable"
	CodeWalletAlreadyOwns dErrors.Code = "wallet_already_owns"

	// capacity
	CodeNoSeason   dErrors.Code = "no_season"
	CodeSeasonFull dErrors.Code = "season_full"

	// upstream
	CodeProvisioningFailed dErrors.Code = "provisioning_failed"
)
