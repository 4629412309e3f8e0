// Package service implements the allocation engine: the only component that
// mutates more than one store per operation and that reasons about partial
// failure. All admission checks happen before any mutation; season-slot
// reservation happens before the provisioning call and is compensated after
// it fails.
package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"registrar/internal/audit"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/models"
	"registrar/internal/registry/provision"
	"registrar/internal/registry/store/record"
	id "registrar/pkg/domain"
)

// DefaultBaseFee is the initial flat renewal fee in subunits (one token).
const DefaultBaseFee uint64 = 100_000_000

// DefaultServiceDomain anchors derived endpoints when none is configured.
const DefaultServiceDomain = "ctx.xyz"

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Provisioner,AuditPublisher

// RecordStore is the name→record map plus the wallet index.
type RecordStore interface {
	IsAvailable(ctx context.Context, name string, now time.Time) bool
	Get(ctx context.Context, name string) (*models.NameRecord, error)
	Put(ctx context.Context, name string, rec models.NameRecord) error
	Execute(ctx context.Context, name string, validate func(*models.NameRecord) error, mutate func(*models.NameRecord)) (*models.NameRecord, error)
	TransferOwner(ctx context.Context, name string, newOwner id.Principal) (*models.NameRecord, error)
	WalletName(ctx context.Context, wallet id.Principal) (string, error)
	List(ctx context.Context, owner id.Principal) []record.Entry
	FindSince(ctx context.Context, since time.Time) []record.Entry
	Search(ctx context.Context, query string, now time.Time) []record.Entry
}

// SeasonLedger owns the pricing/capacity tiers and the allocation search.
type SeasonLedger interface {
	Create(ctx context.Context, season models.Season) (id.SeasonID, error)
	FindApplicable(ctx context.Context, nameLength uint64) (*models.Season, error)
	Active(ctx context.Context) (*models.Season, error)
	Reserve(ctx context.Context, seasonID id.SeasonID) error
	Release(ctx context.Context, seasonID id.SeasonID)
	Deactivate(ctx context.Context, seasonID id.SeasonID) (*models.Season, error)
	Get(ctx context.Context, seasonID id.SeasonID) (*models.Season, error)
	Latest(ctx context.Context) (*models.Season, error)
	All(ctx context.Context) []models.Season
}

// AddressAllowlist is the per-season set of externally verified addresses.
type AddressAllowlist interface {
	Add(ctx context.Context, seasonID id.SeasonID, address string)
	Contains(ctx context.Context, seasonID id.SeasonID, address string) bool
	ForSeason(ctx context.Context, seasonID id.SeasonID) []string
}

// AdminPolicy gates privileged operations and short-name registration.
type AdminPolicy interface {
	IsAdmin(principal id.Principal) bool
	AddAdmin(principal id.Principal)
	RemoveAdmin(principal id.Principal) error
	Admins() []id.Principal
	ShortNameAllowed(name string, caller id.Principal) bool
	SetShortNameMode(mode models.ShortNameMode)
	ShortNameMode() models.ShortNameMode
	ApproveShortUser(principal id.Principal)
	RevokeShortUser(principal id.Principal)
	ApprovedShortUsers() []id.Principal
	AddReservedName(name string)
	IsReserved(name string) bool
}

// Provisioner re-exports the provisioning port so mocks can be generated
// alongside the other service collaborators.
type Provisioner = provision.Provisioner

// AuditPublisher captures engine events; emission is best-effort.
type AuditPublisher = audit.Publisher

// Service orchestrates registration, gifting, renewal, and transfer by
// composing the stores and the policy.
//
// Mutating operations are serialized by mu, which is released only while
// control is yielded to the external provisioner. Capacity is reserved before
// that yield and rolled back after a failed return, so two concurrent
// registrations can never both observe the same unreserved slot.
type Service struct {
	mu sync.Mutex

	records   RecordStore
	seasons   SeasonLedger
	allowlist AddressAllowlist
	policy    AdminPolicy

	provisioner Provisioner
	audit       AuditPublisher
	metrics     *registrymetrics.Metrics
	logger      *slog.Logger
	tracer      trace.Tracer

	serviceDomain string
	baseFee       atomic.Uint64
}

type serviceConfig struct {
	audit         AuditPublisher
	metrics       *registrymetrics.Metrics
	logger        *slog.Logger
	serviceDomain string
	baseFee       uint64
}

// Option customizes optional service collaborators.
type Option func(*serviceConfig)

func WithAudit(publisher AuditPublisher) Option {
	return func(cfg *serviceConfig) { cfg.audit = publisher }
}

func WithMetrics(m *registrymetrics.Metrics) Option {
	return func(cfg *serviceConfig) { cfg.metrics = m }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *serviceConfig) { cfg.logger = logger }
}

func WithServiceDomain(domain string) Option {
	return func(cfg *serviceConfig) { cfg.serviceDomain = domain }
}

func WithBaseFee(fee uint64) Option {
	return func(cfg *serviceConfig) { cfg.baseFee = fee }
}

func New(records RecordStore, seasons SeasonLedger, allowlist AddressAllowlist, policy AdminPolicy, provisioner Provisioner, opts ...Option) *Service {
	cfg := &serviceConfig{
		serviceDomain: DefaultServiceDomain,
		baseFee:       DefaultBaseFee,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		records:       records,
		seasons:       seasons,
		allowlist:     allowlist,
		policy:        policy,
		provisioner:   provisioner,
		audit:         cfg.audit,
		metrics:       cfg.metrics,
		logger:        cfg.logger,
		tracer:        otel.Tracer("registrar/registry"),
		serviceDomain: cfg.serviceDomain,
	}
	s.baseFee.Store(cfg.baseFee)
	return s
}

// emit publishes an audit event. Audit failure never rolls back a committed
// allocation; it is logged and dropped.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", string(event.Action),
			"name", event.Name,
			"error", err,
		)
	}
}

func (s *Service) count(c func(*registrymetrics.Metrics)) {
	if s.metrics != nil {
		c(s.metrics)
	}
}
