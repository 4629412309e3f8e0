package handler

import id "registrar/pkg/domain"

type registerRequest struct {
	Name          string `json:"name"`
	Administrator string `json:"administrator,omitempty"`
	Operator      string `json:"operator,omitempty"`
	PaymentRef    string `json:"payment_ref,omitempty"`
}

type giftRequest struct {
	Name          string `json:"name"`
	Recipient     string `json:"recipient"`
	Administrator string `json:"administrator,omitempty"`
	Operator      string `json:"operator,omitempty"`
}

type createWithAddressRequest struct {
	Name             string `json:"name"`
	Recipient        string `json:"recipient"`
	RecipientAddress string `json:"recipient_address"`
	Administrator    string `json:"administrator,omitempty"`
	Operator         string `json:"operator,omitempty"`
}

type createSeasonRequest struct {
	MinLetters   uint64 `json:"min_letters"`
	MaxLetters   uint64 `json:"max_letters"`
	TotalAllowed uint64 `json:"total_allowed"`
	UnitPrice    uint64 `json:"unit_price"`
}

type renewRequest struct {
	PaymentRef string `json:"payment_ref,omitempty"`
}

type transferRequest struct {
	NewOwner string `json:"new_owner"`
}

type endpointRequest struct {
	Endpoint string `json:"endpoint"`
}

type principalRequest struct {
	Principal string `json:"principal"`
}

type addressRequest struct {
	Address string `json:"address"`
}

type modeRequest struct {
	Mode string `json:"mode"`
}

type nameRequest struct {
	Name string `json:"name"`
}

type feeRequest struct {
	Fee uint64 `json:"fee"`
}

type seasonCreatedResponse struct {
	SeasonID id.SeasonID `json:"season_id"`
}

type endpointResponse struct {
	Endpoint string `json:"endpoint"`
}

type feeResponse struct {
	Fee uint64 `json:"fee"`
}

type availabilityResponse struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
}

type walletNameResponse struct {
	Wallet string `json:"wallet"`
	Name   string `json:"name"`
}

type principalsResponse struct {
	Principals []id.Principal `json:"principals"`
}

type addressesResponse struct {
	Addresses []string `json:"addresses"`
}

type modeResponse struct {
	Mode string `json:"mode"`
}
