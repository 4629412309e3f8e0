package models

import (
	id "registrar/pkg/domain"
)

// RegisterRequest is the self-service registration input. The caller becomes
// the owner; administrator and operator are delegated roles on the record.
type RegisterRequest struct {
	Name          string       `json:"name"`
	Administrator id.Principal `json:"administrator"`
	Operator      id.Principal `json:"operator"`
	PaymentRef    string       `json:"payment_ref"`
}

// GiftRequest is the admin-initiated, fee-free registration on behalf of a
// recipient. Gifts still consume a slot of the active season.
type GiftRequest struct {
	Name          string       `json:"name"`
	Recipient     id.Principal `json:"recipient"`
	Administrator id.Principal `json:"administrator"`
	Operator      id.Principal `json:"operator"`
}

// CreateWithAddressRequest is the admin creation path gated on a season
// allowlist entry for the recipient's externally verified address.
type CreateWithAddressRequest struct {
	Name             string       `json:"name"`
	Recipient        id.Principal `json:"recipient"`
	Administrator    id.Principal `json:"administrator"`
	Operator         id.Principal `json:"operator"`
	RecipientAddress string       `json:"recipient_address"`
}

// CreateSeasonRequest carries the parameters of a new season.
type CreateSeasonRequest struct {
	MinLetters   uint64 `json:"min_letters"`
	MaxLetters   uint64 `json:"max_letters,omitempty"`
	TotalAllowed uint64 `json:"total_allowed"`
	UnitPrice    uint64 `json:"unit_price"`
}

// RegisterResult reports a successful allocation: the provisioned resource
// and the fee that was charged, plus a human-readable confirmation.
type RegisterResult struct {
	Name      string        `json:"name"`
	Resource  id.ResourceID `json:"resource_id"`
	FeePaid   uint64        `json:"fee_paid"`
	WasGifted bool          `json:"was_gifted"`
	Message   string        `json:"message"`
}

// RenewResult reports a successful renewal.
type RenewResult struct {
	Name    string `json:"name"`
	FeePaid uint64 `json:"fee_paid"`
	Message string `json:"message"`
}

// TimestampedName pairs a name with its registration time for sync feeds.
type TimestampedName struct {
	Name         string   `json:"name"`
	RegisteredAt int64    `json:"registered_at_unix"`
	Info         NameInfo `json:"info"`
}
