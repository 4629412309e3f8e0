package models

import (
	"time"

	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

// SeasonStatus is the lifecycle state of a registration season.
//
// Transitions: Active→Completed (automatic, on reaching capacity) and
// Active→Deactivated (admin action). Both end states are terminal.
type SeasonStatus string

const (
	SeasonStatusActive      SeasonStatus = "active"
	SeasonStatusCompleted   SeasonStatus = "completed"
	SeasonStatusDeactivated SeasonStatus = "deactivated"
)

// Season is a pricing/capacity tier governing which name lengths may register
// at which price, with a fixed slot budget.
//
// Invariants:
//   - At most one season is Active at any time (enforced by the ledger).
//   - RegisteredCount <= TotalAllowed; equality flips status to Completed.
//   - IDs start at 1 and are never reused.
type Season struct {
	ID         id.SeasonID `json:"season_id"`
	MinLetters uint64      `json:"min_letters"`
	// MaxLetters of 0 means no upper bound.
	MaxLetters      uint64       `json:"max_letters,omitempty"`
	TotalAllowed    uint64       `json:"total_allowed"`
	RegisteredCount uint64       `json:"registered_count"`
	// UnitPrice is the registration price in whole tokens.
	UnitPrice uint64       `json:"unit_price"`
	CreatedBy id.Principal `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
	Status    SeasonStatus `json:"status"`
}

// Matches reports whether a name of the given length falls inside the
// season's length band.
func (s *Season) Matches(nameLength uint64) bool {
	if nameLength < s.MinLetters {
		return false
	}
	return s.MaxLetters == 0 || nameLength <= s.MaxLetters
}

// Full reports whether every slot has been consumed.
func (s *Season) Full() bool {
	return s.RegisteredCount >= s.TotalAllowed
}

// Fee is the registration fee in subunits for this season.
func (s *Season) Fee() uint64 {
	return s.UnitPrice * SubunitsPerToken
}

// CanDeactivate checks the Active→Deactivated transition. Completed and
// Deactivated are terminal.
func (s *Season) CanDeactivate() error {
	if s.Status != SeasonStatusActive {
		return dErrors.Newf(dErrors.CodeInvariantViolation, "season %d is %s and cannot be deactivated", s.ID, s.Status)
	}
	return nil
}

// ApplyDeactivation transitions the season to Deactivated.
// Call CanDeactivate first to validate the transition.
func (s *Season) ApplyDeactivation() {
	s.Status = SeasonStatusDeactivated
}

// NewSeason validates parameters and builds an Active season. The ledger
// assigns the ID and enforces the single-active invariant.
func NewSeason(minLetters, maxLetters, totalAllowed, unitPrice uint64, createdBy id.Principal, now time.Time) (*Season, error) {
	if minLetters == 0 || minLetters > 64 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "min letters must be between 1 and 64")
	}
	if maxLetters != 0 && (maxLetters < minLetters || maxLetters > 64) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "max letters must be >= min letters and <= 64")
	}
	if totalAllowed == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "total allowed must be greater than 0")
	}
	if unitPrice == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "price must be greater than 0")
	}
	return &Season{
		MinLetters:   minLetters,
		MaxLetters:   maxLetters,
		TotalAllowed: totalAllowed,
		UnitPrice:    unitPrice,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		Status:       SeasonStatusActive,
	}, nil
}

// SeasonStats is the per-season read model exposed to clients.
type SeasonStats struct {
	SeasonNumber   id.SeasonID  `json:"season_number"`
	NamesAvailable uint64       `json:"names_available"`
	NamesTaken     uint64       `json:"names_taken"`
	UnitPrice      uint64       `json:"unit_price"`
	Status         SeasonStatus `json:"status"`
}

// Stats builds the read model for a season.
func (s *Season) Stats() SeasonStats {
	return SeasonStats{
		SeasonNumber:   s.ID,
		NamesAvailable: s.TotalAllowed,
		NamesTaken:     s.RegisteredCount,
		UnitPrice:      s.UnitPrice,
		Status:         s.Status,
	}
}
