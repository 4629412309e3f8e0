package service

import (
	"context"
	"errors"

	"registrar/internal/audit"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// CreateSeason opens a new registration season. Only admins may create one,
// and only while no other season is Active.
func (s *Service) CreateSeason(ctx context.Context, req models.CreateSeasonRequest) (id.SeasonID, error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateSeason")
	defer span.End()

	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return 0, err
	}
	now := requestcontext.Now(ctx)

	season, err := models.NewSeason(req.MinLetters, req.MaxLetters, req.TotalAllowed, req.UnitPrice, caller, now)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	seasonID, err := s.seasons.Create(ctx, *season)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return 0, dErrors.New(dErrors.CodeConflict, "another season is already active")
		}
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create season")
	}

	s.emit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionSeasonCreated,
		Actor:     caller,
		SeasonID:  seasonID,
	})
	s.count(func(m *registrymetrics.Metrics) { m.SeasonsCreated.Inc() })
	return seasonID, nil
}

// DeactivateSeason retires an Active season. Completed and Deactivated
// seasons are terminal and cannot be touched again.
func (s *Service) DeactivateSeason(ctx context.Context, seasonID id.SeasonID) error {
	ctx, span := s.tracer.Start(ctx, "registry.DeactivateSeason")
	defer span.End()

	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	_, err = s.seasons.Deactivate(ctx, seasonID)
	s.mu.Unlock()
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Newf(dErrors.CodeNotFound, "season %d not found", seasonID)
		}
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return dErrors.Wrap(err, dErrors.CodeConflict, "season is not active")
		}
		return err
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionSeasonDeactivated,
		Actor:     caller,
		SeasonID:  seasonID,
	})
	return nil
}

// Season returns a season by id.
func (s *Service) Season(ctx context.Context, seasonID id.SeasonID) (*models.Season, error) {
	season, err := s.seasons.Get(ctx, seasonID)
	if err != nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "season %d not found", seasonID)
	}
	return season, nil
}

// SeasonByNumber returns a season by id, with 0 meaning the latest season.
func (s *Service) SeasonByNumber(ctx context.Context, number id.SeasonID) (*models.Season, error) {
	if number == 0 {
		season, err := s.seasons.Latest(ctx)
		if err != nil {
			return nil, dErrors.New(dErrors.CodeNotFound, "no seasons exist")
		}
		return season, nil
	}
	return s.Season(ctx, number)
}

// CurrentSeason returns the Active season, if any.
func (s *Service) CurrentSeason(ctx context.Context) (*models.Season, error) {
	season, err := s.seasons.Active(ctx)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no active season")
	}
	return season, nil
}

// Seasons returns every season ordered by id.
func (s *Service) Seasons(ctx context.Context) []models.Season {
	return s.seasons.All(ctx)
}

// ActiveSeasons returns the Active seasons; by invariant at most one.
func (s *Service) ActiveSeasons(ctx context.Context) []models.Season {
	var out []models.Season
	for _, season := range s.seasons.All(ctx) {
		if season.Status == models.SeasonStatusActive {
			out = append(out, season)
		}
	}
	return out
}

// SeasonStats returns the stats read model for one season, with 0 meaning
// the latest season.
func (s *Service) SeasonStats(ctx context.Context, number id.SeasonID) (*models.SeasonStats, error) {
	season, err := s.SeasonByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	stats := season.Stats()
	return &stats, nil
}

// AllSeasonStats returns stats for every season ordered by id.
func (s *Service) AllSeasonStats(ctx context.Context) []models.SeasonStats {
	seasons := s.seasons.All(ctx)
	out := make([]models.SeasonStats, 0, len(seasons))
	for _, season := range seasons {
		out = append(out, season.Stats())
	}
	return out
}

// ApplicableSeason returns the season a registration of the given name would
// consume right now, if any.
func (s *Service) ApplicableSeason(ctx context.Context, name string) (*models.Season, error) {
	season, err := s.seasons.FindApplicable(ctx, uint64(len(name)))
	if err != nil {
		return nil, dErrors.Newf(models.CodeNoSeason, "no registration season available for a name of length %d", len(name))
	}
	return season, nil
}

// SeasonAddresses lists the allowlisted addresses of a season. Entries stay
// queryable after the season leaves Active.
func (s *Service) SeasonAddresses(ctx context.Context, seasonID id.SeasonID) []string {
	return s.allowlist.ForSeason(ctx, seasonID)
}

// AddressAuthorized reports whether an address is allowlisted for the
// current Active season.
func (s *Service) AddressAuthorized(ctx context.Context, address string) bool {
	season, err := s.seasons.Active(ctx)
	if err != nil {
		return false
	}
	return s.allowlist.Contains(ctx, season.ID, address)
}
