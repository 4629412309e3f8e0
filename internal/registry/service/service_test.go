package service

import (
	"context"
	"time"

	"go.uber.org/mock/gomock"

	"registrar/internal/audit"
	auditmemory "registrar/internal/audit/store/memory"
	"registrar/internal/registry/models"
	"registrar/internal/registry/policy"
	"registrar/internal/registry/service/mocks"
	"registrar/internal/registry/store/allowlist"
	"registrar/internal/registry/store/record"
	"registrar/internal/registry/store/season"
	id "registrar/pkg/domain"
	"registrar/pkg/requestcontext"
)

// adminPrincipal is the bootstrap admin of every fixture.
const adminPrincipal id.Principal = "admin-1"

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fixture assembles a service over real in-memory stores with a mocked
// provisioner, so tests exercise the actual admission and compensation logic.
type fixture struct {
	svc       *Service
	records   *record.InMemory
	seasons   *season.InMemory
	allowlist *allowlist.InMemory
	policy    *policy.Policy
	prov      *mocks.MockProvisioner
	trail     *auditmemory.Store
}

func newFixture(ctrl *gomock.Controller, opts ...Option) *fixture {
	f := &fixture{
		records:   record.NewInMemory(),
		seasons:   season.NewInMemory(),
		allowlist: allowlist.NewInMemory(),
		policy:    policy.New(adminPrincipal),
		prov:      mocks.NewMockProvisioner(ctrl),
		trail:     auditmemory.New(),
	}
	opts = append([]Option{WithAudit(audit.NewStorePublisher(f.trail))}, opts...)
	f.svc = New(f.records, f.seasons, f.allowlist, f.policy, f.prov, opts...)
	return f
}

// as builds a request context for the given caller at the fixed test instant.
func as(caller id.Principal) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithTime(ctx, testNow)
}

func anonymous() context.Context {
	return requestcontext.WithTime(context.Background(), testNow)
}

// openSeason creates an Active season directly on the ledger.
func (f *fixture) openSeason(min, max, total, price uint64) id.SeasonID {
	s, err := models.NewSeason(min, max, total, price, adminPrincipal, testNow)
	if err != nil {
		panic(err)
	}
	sid, err := f.seasons.Create(context.Background(), *s)
	if err != nil {
		panic(err)
	}
	return sid
}

func (f *fixture) expectProvision(name string, resource id.ResourceID) *gomock.Call {
	return f.prov.EXPECT().
		Provision(gomock.Any(), name, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(resource, nil)
}

func (f *fixture) seasonCount(sid id.SeasonID) uint64 {
	s, err := f.seasons.Get(context.Background(), sid)
	if err != nil {
		panic(err)
	}
	return s.RegisteredCount
}
