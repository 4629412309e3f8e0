package audit

import (
	"time"

	id "registrar/pkg/domain"
)

// Action identifies what happened. The set is closed; consumers route and
// filter on it.
type Action string

const (
	ActionNameRegistered   Action = "name.registered"
	ActionNameGifted       Action = "name.gifted"
	ActionNameAdminCreated Action = "name.admin_created"
	ActionNameRenewed      Action = "name.renewed"
	ActionNameTransferred  Action = "name.transferred"
	ActionEndpointSet      Action = "name.endpoint_set"

	ActionSeasonCreated     Action = "season.created"
	ActionSeasonDeactivated Action = "season.deactivated"
	ActionAddressAllowed    Action = "season.address_allowed"

	ActionAdminAdded        Action = "policy.admin_added"
	ActionAdminRemoved      Action = "policy.admin_removed"
	ActionShortUserApproved Action = "policy.short_user_approved"
	ActionShortUserRevoked  Action = "policy.short_user_revoked"
	ActionShortModeChanged  Action = "policy.short_mode_changed"
	ActionReservedNameAdded Action = "policy.reserved_name_added"
	ActionBaseFeeChanged    Action = "policy.base_fee_changed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time    `json:"timestamp"`
	Action    Action       `json:"action"`
	Actor     id.Principal `json:"actor"`
	Name      string       `json:"name,omitempty"`
	Recipient id.Principal `json:"recipient,omitempty"`
	SeasonID  id.SeasonID  `json:"season_id,omitempty"`
	Fee       uint64       `json:"fee,omitempty"`
	Detail    string       `json:"detail,omitempty"`
}
