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

// Gift registers a name on behalf of a recipient, fee-free. Gifts are length
// agnostic: any Active season with remaining capacity will do, and its slot
// is consumed even though no fee is charged.
func (s *Service) Gift(ctx context.Context, req models.GiftRequest) (*models.RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Gift")
	defer span.End()

	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	seasonID, err := s.admitAdminCreation(ctx, req.Name, req.Recipient, "", now)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	resource, provErr := s.provisioner.Provision(ctx, req.Name, req.Recipient, req.Administrator, req.Operator)
	if provErr != nil {
		s.rollbackReservation(ctx, seasonID)
		s.count(func(m *registrymetrics.Metrics) { m.ProvisionFailures.Inc() })
		return nil, dErrors.Wrap(provErr, models.CodeProvisioningFailed,
			fmt.Sprintf("provisioning failed for name %q", req.Name))
	}

	rec := models.NameRecord{
		Owner:         req.Recipient,
		Administrator: req.Administrator,
		Operator:      req.Operator,
		Resource:      resource,
		RegisteredAt:  now,
		ExpiresAt:     now.Add(models.Term),
		WasGifted:     true,
		OriginSeason:  seasonID,
	}
	if err := s.commitRecord(ctx, req.Name, rec, seasonID, true, now); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionNameGifted,
		Actor:     caller,
		Name:      req.Name,
		Recipient: req.Recipient,
		SeasonID:  seasonID,
	})
	s.count(func(m *registrymetrics.Metrics) { m.Gifts.Inc() })

	return &models.RegisterResult{
		Name:      req.Name,
		Resource:  resource,
		WasGifted: true,
		Message:   fmt.Sprintf("name %s gifted to %s with resource %s (free admin gift)", req.Name, req.Recipient, resource),
	}, nil
}

// CreateWithAddress is the allowlisted admin creation path: like Gift, but
// the recipient's externally verified address must be authorized for the
// active season, and the record is not flagged as a gift.
func (s *Service) CreateWithAddress(ctx context.Context, req models.CreateWithAddressRequest) (*models.RegisterResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.CreateWithAddress")
	defer span.End()

	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if req.RecipientAddress == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "recipient address is required")
	}
	now := requestcontext.Now(ctx)

	s.mu.Lock()
	seasonID, err := s.admitAdminCreation(ctx, req.Name, req.Recipient, req.RecipientAddress, now)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	resource, provErr := s.provisioner.Provision(ctx, req.Name, req.Recipient, req.Administrator, req.Operator)
	if provErr != nil {
		s.rollbackReservation(ctx, seasonID)
		s.count(func(m *registrymetrics.Metrics) { m.ProvisionFailures.Inc() })
		return nil, dErrors.Wrap(provErr, models.CodeProvisioningFailed,
			fmt.Sprintf("provisioning failed for name %q", req.Name))
	}

	rec := models.NameRecord{
		Owner:         req.Recipient,
		Administrator: req.Administrator,
		Operator:      req.Operator,
		Resource:      resource,
		RegisteredAt:  now,
		ExpiresAt:     now.Add(models.Term),
		WasGifted:     false,
		OriginSeason:  seasonID,
	}
	if err := s.commitRecord(ctx, req.Name, rec, seasonID, true, now); err != nil {
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Timestamp: now,
		Action:    audit.ActionNameAdminCreated,
		Actor:     caller,
		Name:      req.Name,
		Recipient: req.Recipient,
		SeasonID:  seasonID,
		Detail:    req.RecipientAddress,
	})
	s.count(func(m *registrymetrics.Metrics) { m.Gifts.Inc() })

	return &models.RegisterResult{
		Name:     req.Name,
		Resource: resource,
		Message: fmt.Sprintf("name %s created for address %q and assigned to %s with resource %s",
			req.Name, req.RecipientAddress, req.Recipient, resource),
	}, nil
}

// admitAdminCreation runs the shared gift/creation admission and reserves a
// slot of the active season. Called with mu held. A non-empty address must be
// on the season's allowlist.
func (s *Service) admitAdminCreation(ctx context.Context, name string, recipient id.Principal, address string, now time.Time) (id.SeasonID, error) {
	if err := validate.Name(name); err != nil {
		return 0, err
	}
	if s.policy.IsReserved(name) {
		return 0, dErrors.Newf(models.CodeReservedName, "name %q is reserved", name)
	}
	if !s.records.IsAvailable(ctx, name, now) {
		return 0, dErrors.Newf(models.CodeNameUnavailable, "name %q is not available", name)
	}
	// Recipient conflict holds regardless of admin privilege.
	if existing, err := s.records.WalletName(ctx, recipient); err == nil {
		return 0, dErrors.Newf(models.CodeWalletAlreadyOwns, "recipient already owns name %q", existing)
	}

	season, err := s.seasons.Active(ctx)
	if err != nil {
		return 0, dErrors.New(models.CodeNoSeason, "no active season available")
	}
	if season.Full() {
		return 0, dErrors.Newf(models.CodeSeasonFull, "season %d is full", season.ID)
	}
	if address != "" && !s.allowlist.Contains(ctx, season.ID, address) {
		return 0, dErrors.Newf(models.CodeAddressNotAuthorized, "address %q is not authorized for season %d", address, season.ID)
	}
	if err := s.reserve(ctx, season.ID); err != nil {
		return 0, err
	}
	return season.ID, nil
}

// AddAddressToSeason authorizes an address for admin-mediated creation within
// an Active season. Additions to Completed or Deactivated seasons are
// rejected; existing entries stay queryable.
func (s *Service) AddAddressToSeason(ctx context.Context, seasonID id.SeasonID, address string) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if address == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "address cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	season, err := s.seasons.Get(ctx, seasonID)
	if err != nil {
		return dErrors.Newf(dErrors.CodeNotFound, "season %d not found", seasonID)
	}
	if season.Status != models.SeasonStatusActive {
		return dErrors.Newf(dErrors.CodeConflict, "cannot add address to %s season %d", season.Status, seasonID)
	}
	s.allowlist.Add(ctx, seasonID, address)

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionAddressAllowed,
		Actor:     caller,
		SeasonID:  seasonID,
		Detail:    address,
	})
	return nil
}

// AddAdmin adds a principal to the admin set.
func (s *Service) AddAdmin(ctx context.Context, newAdmin id.Principal) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if newAdmin.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "admin principal is required")
	}
	s.policy.AddAdmin(newAdmin)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionAdminAdded,
		Actor:     caller,
		Recipient: newAdmin,
	})
	return nil
}

// RemoveAdmin removes a principal from the admin set. The last admin can
// never be removed.
func (s *Service) RemoveAdmin(ctx context.Context, target id.Principal) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := s.policy.RemoveAdmin(target); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeConflict, "cannot remove the last admin")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove admin")
	}
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionAdminRemoved,
		Actor:     caller,
		Recipient: target,
	})
	return nil
}

// ApproveShortUser whitelists a principal for short-name registration.
func (s *Service) ApproveShortUser(ctx context.Context, user id.Principal) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	s.policy.ApproveShortUser(user)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionShortUserApproved,
		Actor:     caller,
		Recipient: user,
	})
	return nil
}

// RevokeShortUser removes a principal from the short-name whitelist.
func (s *Service) RevokeShortUser(ctx context.Context, user id.Principal) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	s.policy.RevokeShortUser(user)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionShortUserRevoked,
		Actor:     caller,
		Recipient: user,
	})
	return nil
}

// SetShortNameMode switches short-name governance.
func (s *Service) SetShortNameMode(ctx context.Context, mode models.ShortNameMode) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	s.policy.SetShortNameMode(mode)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionShortModeChanged,
		Actor:     caller,
		Detail:    string(mode),
	})
	return nil
}

// AddReservedName appends to the reserved-name set.
func (s *Service) AddReservedName(ctx context.Context, name string) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	if name == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "reserved name cannot be empty")
	}
	s.policy.AddReservedName(name)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionReservedNameAdded,
		Actor:     caller,
		Name:      name,
	})
	return nil
}

// SetBaseFee changes the flat renewal fee.
func (s *Service) SetBaseFee(ctx context.Context, fee uint64) error {
	caller, err := s.requireAdmin(ctx)
	if err != nil {
		return err
	}
	s.baseFee.Store(fee)
	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionBaseFeeChanged,
		Actor:     caller,
		Fee:       fee,
	})
	return nil
}

// Admins lists the admin set.
func (s *Service) Admins(context.Context) []id.Principal {
	return s.policy.Admins()
}

// IsAdminUser reports whether a principal holds admin privileges.
func (s *Service) IsAdminUser(_ context.Context, user id.Principal) bool {
	return s.policy.IsAdmin(user)
}

// ApprovedShortUsers lists the short-name whitelist.
func (s *Service) ApprovedShortUsers(context.Context) []id.Principal {
	return s.policy.ApprovedShortUsers()
}

// CurrentShortNameMode returns the governance mode.
func (s *Service) CurrentShortNameMode(context.Context) models.ShortNameMode {
	return s.policy.ShortNameMode()
}

func (s *Service) requireAdmin(ctx context.Context) (id.Principal, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return caller, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	if !s.policy.IsAdmin(caller) {
		return caller, dErrors.New(dErrors.CodeForbidden, "admin privileges required")
	}
	return caller, nil
}
