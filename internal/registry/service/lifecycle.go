package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"registrar/internal/audit"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// endpointScheme and endpointMaxLength bound custom endpoint overrides.
const (
	endpointScheme    = "https://"
	endpointMaxLength = 200
)

// Renew extends a record's term by one year from its current expiry — not
// from now. Renewing an already expired name extends from the stale expiry
// and can leave it expired; see models.NameRecord.ExtendTerm. No season is
// consulted: renewals pay the flat base fee, waived for admins.
func (s *Service) Renew(ctx context.Context, name, paymentRef string) (*models.RenewResult, error) {
	ctx, span := s.tracer.Start(ctx, "registry.Renew")
	defer span.End()

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}

	fee := s.baseFee.Load()
	if s.policy.IsAdmin(caller) {
		fee = 0
	}

	s.mu.Lock()
	_, err := s.records.Execute(ctx, name,
		func(rec *models.NameRecord) error {
			return requireController(rec, caller)
		},
		func(rec *models.NameRecord) {
			rec.ExtendTerm(paymentRef)
		},
	)
	s.mu.Unlock()
	if err != nil {
		return nil, wrapRecordErr(err, name)
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionNameRenewed,
		Actor:     caller,
		Name:      name,
		Fee:       fee,
	})
	s.count(func(m *registrymetrics.Metrics) { m.Renewals.Inc() })

	feeInfo := fmt.Sprintf("fee: %d", fee)
	if fee == 0 {
		feeInfo = "free (admin renewal)"
	}
	return &models.RenewResult{
		Name:    name,
		FeePaid: fee,
		Message: fmt.Sprintf("name %s renewed (%s)", name, feeInfo),
	}, nil
}

// SetCustomEndpoint installs or clears an endpoint override. An empty
// endpoint clears the override back to the derived default.
func (s *Service) SetCustomEndpoint(ctx context.Context, name, endpoint string) error {
	ctx, span := s.tracer.Start(ctx, "registry.SetCustomEndpoint")
	defer span.End()

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, endpointScheme) {
			return dErrors.New(models.CodeInvalidEndpoint, "custom endpoint must use https")
		}
		if len(endpoint) > endpointMaxLength {
			return dErrors.Newf(models.CodeInvalidEndpoint, "custom endpoint exceeds %d characters", endpointMaxLength)
		}
	}

	s.mu.Lock()
	_, err := s.records.Execute(ctx, name,
		func(rec *models.NameRecord) error {
			return requireController(rec, caller)
		},
		func(rec *models.NameRecord) {
			rec.CustomEndpoint = endpoint
		},
	)
	s.mu.Unlock()
	if err != nil {
		return wrapRecordErr(err, name)
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionEndpointSet,
		Actor:     caller,
		Name:      name,
		Detail:    endpoint,
	})
	return nil
}

// Transfer moves ownership of a name. The wallet index entry keyed by the old
// owner is removed and the new owner's installed in the same critical
// section. A non-admin new owner must not already hold a name.
func (s *Service) Transfer(ctx context.Context, name string, newOwner id.Principal) error {
	ctx, span := s.tracer.Start(ctx, "registry.Transfer")
	defer span.End()

	caller := requestcontext.Caller(ctx)
	if caller.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller identity required")
	}
	if newOwner.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "new owner is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.records.Get(ctx, name)
	if err != nil {
		return wrapRecordErr(err, name)
	}
	if err := requireController(rec, caller); err != nil {
		return err
	}
	if !s.policy.IsAdmin(newOwner) {
		if existing, err := s.records.WalletName(ctx, newOwner); err == nil {
			return dErrors.Newf(models.CodeWalletAlreadyOwns, "new owner already owns name %q", existing)
		}
	}
	if _, err := s.records.TransferOwner(ctx, name, newOwner); err != nil {
		return wrapRecordErr(err, name)
	}

	s.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    audit.ActionNameTransferred,
		Actor:     caller,
		Name:      name,
		Recipient: newOwner,
	})
	s.count(func(m *registrymetrics.Metrics) { m.Transfers.Inc() })
	return nil
}

// requireController authorizes record-level mutation: only the owner or the
// record's administrator may act.
func requireController(rec *models.NameRecord, caller id.Principal) error {
	if caller != rec.Owner && caller != rec.Administrator {
		return dErrors.New(dErrors.CodeForbidden, "only the name owner or administrator may do this")
	}
	return nil
}

func wrapRecordErr(err error, name string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "name %q not found", name)
	}
	return err
}
