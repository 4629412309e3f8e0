package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registrar/internal/registry/models"
	"registrar/internal/registry/validate"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Info returns the read model for a name, expired or not.
func (s *Service) Info(ctx context.Context, name string) (*models.NameInfo, error) {
	rec, err := s.records.Get(ctx, name)
	if err != nil {
		return nil, wrapRecordErr(err, name)
	}
	info := rec.Info(name, s.serviceDomain, requestcontext.Now(ctx))
	return &info, nil
}

// Endpoint resolves the effective endpoint for a name: the custom override
// when set, otherwise the derived default.
func (s *Service) Endpoint(ctx context.Context, name string) (string, error) {
	rec, err := s.records.Get(ctx, name)
	if err != nil {
		return "", wrapRecordErr(err, name)
	}
	return rec.Endpoint(name, s.serviceDomain), nil
}

// List returns every record, optionally filtered by owner.
func (s *Service) List(ctx context.Context, owner id.Principal) []models.NameInfo {
	now := requestcontext.Now(ctx)
	entries := s.records.List(ctx, owner)
	out := make([]models.NameInfo, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Record.Info(entry.Name, s.serviceDomain, now))
	}
	return out
}

// Discover searches unexpired names by substring, case-insensitively. An
// empty query lists everything unexpired.
func (s *Service) Discover(ctx context.Context, query string) []models.SearchResult {
	now := requestcontext.Now(ctx)
	entries := s.records.Search(ctx, query, now)
	out := make([]models.SearchResult, 0, len(entries))
	for _, entry := range entries {
		kind := "registered"
		if entry.Record.WasGifted {
			kind = "admin gift"
		}
		out = append(out, models.SearchResult{
			Name:        entry.Name,
			Description: fmt.Sprintf("name %s (%s)", entry.Name, kind),
			Endpoint:    entry.Record.Endpoint(entry.Name, s.serviceDomain),
			WasGifted:   entry.Record.WasGifted,
		})
	}
	return out
}

// NamesSince returns records registered strictly after the given instant,
// for indexers that sync incrementally. A zero time returns everything.
func (s *Service) NamesSince(ctx context.Context, since time.Time) []models.TimestampedName {
	now := requestcontext.Now(ctx)
	entries := s.records.FindSince(ctx, since)
	out := make([]models.TimestampedName, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.TimestampedName{
			Name:         entry.Name,
			RegisteredAt: entry.Record.RegisteredAt.Unix(),
			Info:         entry.Record.Info(entry.Name, s.serviceDomain, now),
		})
	}
	return out
}

// QuoteFee quotes the registration fee for a hypothetical name: 0 when the
// name is malformed, reserved, or no season would take it.
func (s *Service) QuoteFee(ctx context.Context, name string) uint64 {
	if validate.Name(name) != nil || s.policy.IsReserved(name) {
		return 0
	}
	season, err := s.seasons.FindApplicable(ctx, uint64(len(name)))
	if err != nil {
		return 0
	}
	return season.Fee()
}

// RenewalFee returns the current flat renewal fee.
func (s *Service) RenewalFee(context.Context) uint64 {
	return s.baseFee.Load()
}

// CanRegister probes whether a user could register a name right now:
// well-formed, not reserved, available, and short-name policy permitting.
// Season capacity is deliberately not consulted, matching the fee quote's
// role as a pre-flight rather than a reservation.
func (s *Service) CanRegister(ctx context.Context, name string, user id.Principal) bool {
	if validate.Name(name) != nil || s.policy.IsReserved(name) {
		return false
	}
	if !s.records.IsAvailable(ctx, name, requestcontext.Now(ctx)) {
		return false
	}
	return s.policy.ShortNameAllowed(name, user)
}

// WalletName returns the name a wallet currently holds.
func (s *Service) WalletName(ctx context.Context, wallet id.Principal) (string, error) {
	name, err := s.records.WalletName(ctx, wallet)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.Newf(dErrors.CodeNotFound, "wallet %s holds no name", wallet)
		}
		return "", err
	}
	return name, nil
}
