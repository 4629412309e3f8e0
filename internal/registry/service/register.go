package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"registrar/internal/audit"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/models"
	"registrar/internal/registry/validate"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Register allocates a name to the caller. Admins register for free outside
// any season and the record is flagged as gifted; everyone else consumes a
// slot of the cheapest applicable season and is quoted its fee.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Register")
	defer span.End()

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	now := requestcontext.Now(ctx)
	isAdmin := s.policy.IsAdmin(caller)

	s.mu.Lock()
	seasonID, fee, err := s.admitRegistration(ctx, req.Name, caller, isAdmin, now)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Control yields to the external factory here; mu is deliberately not
	// held. The slot reserved above is the only state this request owns.
	resource, provErr := s.provisioner.Provision(ctx, req.Name, caller, req.Administrator, req.Operator)
	if provErr != nil {
		s.rollbackReservation(ctx, seasonID)
		s.count(func(m *registrymetrics.Metrics) { m.ProvisionFailures.Inc() })
		return nil, dErrors.Wrap(provErr, models.CodeProvisioningFailed,
			fmt.Sprintf("provisioning failed for name %q", req.Name))
	}

	rec := models.NameRecord{
		Owner:         caller,
		Administrator: req.Administrator,
		Operator:      req.Operator,
		Resource:      resource,
		RegisteredAt:  now,
		ExpiresAt:     now.Add(models.Term),
		PaymentRef:    req.PaymentRef,
		WasGifted:     isAdmin,
		OriginSeason:  seasonID,
	}
	if err := s.commitRecord(ctx, req.Name, rec, seasonID, !isAdmin, now); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionNameRegistered,
		Actor:     caller,
		Name:      req.Name,
		SeasonID:  seasonID,
		Fee:       fee,
	})
	s.count(func(m *registrymetrics.Metrics) { m.Registrations.Inc() })

	feeInfo := fmt.Sprintf("fee: %d", fee)
	if isAdmin {
		feeInfo = "free (admin registration)"
	}
	return &models.RegisterResult{
		Name:      req.Name,
		Resource:  resource,
		FeePaid:   fee,
		WasGifted: isAdmin,
		Message:   fmt.Sprintf("name %s registered with resource %s (%s)", req.Name, resource, feeInfo),
	}, nil
}

// admitRegistration runs every admission check and, for non-admins, reserves
// a season slot. Called with mu held; on a nil error the caller owns one
// reserved slot of the returned season (zero for admins).
func (s *Service) admitRegistration(ctx context.Context, name string, caller id.Principal, isAdmin bool, now time.Time) (id.SeasonID, uint64, error) {
	if err := validate.Name(name); err != nil {
		return 0, 0, err
	}
	if s.policy.IsReserved(name) {
		return 0, 0, dErrors.Newf(models.CodeReservedName, "name %q is reserved", name)
	}
	if !s.policy.ShortNameAllowed(name, caller) {
		return 0, 0, dErrors.Newf(models.CodeShortNameDenied, "short name %q requires approval", name)
	}
	if !isAdmin {
		if existing, err := s.records.WalletName(ctx, caller); err == nil {
			return 0, 0, dErrors.Newf(models.CodeWalletAlreadyOwns, "wallet already owns name %q", existing)
		}
	}
	if !s.records.IsAvailable(ctx, name, now) {
		return 0, 0, dErrors.Newf(models.CodeNameUnavailable, "name %q is not available", name)
	}
	if isAdmin {
		return 0, 0, nil
	}

	season, err := s.seasons.FindApplicable(ctx, uint64(len(name)))
	if err != nil {
		return 0, 0, dErrors.Newf(models.CodeNoSeason, "no registration season available for a name of length %d", len(name))
	}
	if err := s.reserve(ctx, season.ID); err != nil {
		return 0, 0, err
	}
	return season.ID, season.Fee(), nil
}

// reserve consumes a season slot, translating ledger sentinels. The exhausted
// check is defensive: under the request model a just-found season cannot fill
// before the reservation, but the ledger enforces it regardless.
func (s *Service) reserve(ctx context.Context, seasonID id.SeasonID) error {
	switch err := s.seasons.Reserve(ctx, seasonID); {
	case err == nil:
		// The reservation of the last slot flips the season to Completed.
		if season, getErr := s.seasons.Get(ctx, seasonID); getErr == nil && season.Status == models.SeasonStatusCompleted {
			s.count(func(m *registrymetrics.Metrics) { m.SeasonsCompleted.Inc() })
		}
		return nil
	case errors.Is(err, sentinel.ErrExhausted):
		return dErrors.Newf(models.CodeSeasonFull, "season %d is full", seasonID)
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Newf(dErrors.CodeInternal, "season %d vanished during reservation", seasonID)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "season reservation failed")
	}
}

// rollbackReservation undoes a slot reservation after a provisioning failure.
func (s *Service) rollbackReservation(ctx context.Context, seasonID id.SeasonID) {
	if seasonID.IsNil() {
		return
	}
	s.mu.Lock()
	s.seasons.Release(ctx, seasonID)
	s.mu.Unlock()
}

// commitRecord installs the record and wallet index entry. The name may have
// been taken, or the owning wallet may have won another name, while control
// was yielded to the factory; either conflict releases the reservation and
// surfaces instead of silently overwriting the earlier winner. Admission's
// wallet exemption carries over: enforceWalletLimit is false only for admin
// self-registration.
func (s *Service) commitRecord(ctx context.Context, name string, rec models.NameRecord, seasonID id.SeasonID, enforceWalletLimit bool, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.records.IsAvailable(ctx, name, now) {
		if !seasonID.IsNil() {
			s.seasons.Release(ctx, seasonID)
		}
		return dErrors.Newf(models.CodeNameUnavailable, "name %q was taken during provisioning", name)
	}
	if enforceWalletLimit {
		if existing, err := s.records.WalletName(ctx, rec.Owner); err == nil {
			if !seasonID.IsNil() {
				s.seasons.Release(ctx, seasonID)
			}
			return dErrors.Newf(models.CodeWalletAlreadyOwns, "wallet acquired name %q during provisioning", existing)
		}
	}
	if err := s.records.Put(ctx, name, rec); err != nil {
		if !seasonID.IsNil() {
			s.seasons.Release(ctx, seasonID)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store record")
	}
	return nil
}
