package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"registrar/internal/audit"
	registrymetrics "registrar/internal/registry/metrics"
	"registrar/internal/registry/models"
	"registrar/internal/registry/store/season"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
)

type RegisterSuite struct {
	suite.Suite
	f *fixture
}

func TestRegisterSuite(t *testing.T) {
	suite.Run(t, new(RegisterSuite))
}

func (s *RegisterSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.f = newFixture(ctrl)
}

func (s *RegisterSuite) TestRegisterHappyPath() {
	sid := s.f.openSeason(1, 0, 10, 3)
	s.f.expectProvision("my-agent", "res-1")

	result, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{
		Name:       "my-agent",
		PaymentRef: "tx-1",
	})
	s.Require().NoError(err)
	s.Equal("my-agent", result.Name)
	s.Equal(id.ResourceID("res-1"), result.Resource)
	s.Equal(uint64(300_000_000), result.FeePaid)
	s.False(result.WasGifted)

	rec, err := s.f.records.Get(as("wallet-1"), "my-agent")
	s.Require().NoError(err)
	s.Equal(id.Principal("wallet-1"), rec.Owner)
	s.Equal(testNow.Add(models.Term), rec.ExpiresAt)
	s.Equal("tx-1", rec.PaymentRef)
	s.Equal(sid, rec.OriginSeason)

	s.Equal(uint64(1), s.f.seasonCount(sid))

	name, err := s.f.records.WalletName(as("wallet-1"), "wallet-1")
	s.Require().NoError(err)
	s.Equal("my-agent", name)

	events, err := s.f.trail.ListByName(as("wallet-1"), "my-agent")
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionNameRegistered, events[0].Action)
	s.Equal(uint64(300_000_000), events[0].Fee)
}

func (s *RegisterSuite) TestRegisterRequiresCaller() {
	_, err := s.f.svc.Register(anonymous(), models.RegisterRequest{Name: "my-agent"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *RegisterSuite) TestRegisterInvalidName() {
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "-bad"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeInvalidName))
}

func (s *RegisterSuite) TestRegisterReservedName() {
	// Reserved beats short-name governance: "icp" is both short and seeded.
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "icp"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeReservedName))
}

func (s *RegisterSuite) TestRegisterShortNameGovernance() {
	s.f.openSeason(1, 0, 10, 3)

	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "abcd"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeShortNameDenied))

	s.f.policy.ApproveShortUser("wallet-1")
	s.f.expectProvision("abcd", "res-1")
	_, err = s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "abcd"})
	s.Require().NoError(err)
}

func (s *RegisterSuite) TestRegisterOneNamePerWallet() {
	sid := s.f.openSeason(1, 0, 10, 3)
	s.f.expectProvision("first-name", "res-1")
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "first-name"})
	s.Require().NoError(err)

	_, err = s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "second-name"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeWalletAlreadyOwns))
	s.Equal(uint64(1), s.f.seasonCount(sid))
}

func (s *RegisterSuite) TestRegisterNameTaken() {
	s.f.openSeason(1, 0, 10, 3)
	s.f.expectProvision("my-agent", "res-1")
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().NoError(err)

	_, err = s.f.svc.Register(as("wallet-2"), models.RegisterRequest{Name: "my-agent"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeNameUnavailable))
}

func (s *RegisterSuite) TestRegisterNoSeason() {
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeNoSeason))
}

func (s *RegisterSuite) TestRegisterNoSeasonForLength() {
	s.f.openSeason(10, 0, 10, 3)
	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "short"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeNoSeason))
}

func (s *RegisterSuite) TestRegisterProvisionFailureRollsBack() {
	sid := s.f.openSeason(1, 0, 10, 3)
	s.f.prov.EXPECT().
		Provision(gomock.Any(), "my-agent", gomock.Any(), gomock.Any(), gomock.Any()).
		Return(id.ResourceID(""), assertableError("factory down"))

	_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, models.CodeProvisioningFailed))

	// The reserved slot was compensated; the name and the wallet are free.
	s.Equal(uint64(0), s.f.seasonCount(sid))
	s.True(s.f.records.IsAvailable(as("wallet-1"), "my-agent", testNow))
	_, err = s.f.records.WalletName(as("wallet-1"), "wallet-1")
	s.Require().Error(err)

	// The wallet can retry immediately.
	s.f.expectProvision("my-agent", "res-2")
	result, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().NoError(err)
	s.Equal(id.ResourceID("res-2"), result.Resource)
	s.Equal(uint64(1), s.f.seasonCount(sid))
}

func (s *RegisterSuite) TestAdminRegistersFreeOutsideSeasons() {
	// No season exists; an admin registration succeeds anyway, is free, and
	// is marked as gifted.
	s.f.expectProvision("admin-name", "res-1")
	result, err := s.f.svc.Register(as(adminPrincipal), models.RegisterRequest{Name: "admin-name"})
	s.Require().NoError(err)
	s.Equal(uint64(0), result.FeePaid)
	s.True(result.WasGifted)
	s.Contains(result.Message, "free (admin registration)")

	rec, err := s.f.records.Get(as(adminPrincipal), "admin-name")
	s.Require().NoError(err)
	s.True(rec.WasGifted)
	s.True(rec.OriginSeason.IsNil())
}

func (s *RegisterSuite) TestAdminBypassesOneNameLimit() {
	s.f.expectProvision("first-name", "res-1")
	_, err := s.f.svc.Register(as(adminPrincipal), models.RegisterRequest{Name: "first-name"})
	s.Require().NoError(err)

	s.f.expectProvision("second-name", "res-2")
	_, err = s.f.svc.Register(as(adminPrincipal), models.RegisterRequest{Name: "second-name"})
	s.Require().NoError(err)
}

func (s *RegisterSuite) TestReRegisterExpiredName() {
	s.f.openSeason(1, 0, 10, 3)
	s.Require().NoError(s.f.records.Put(as("old-owner"), "my-agent", models.NameRecord{
		Owner:        "old-owner",
		RegisteredAt: testNow.Add(-2 * models.Term),
		ExpiresAt:    testNow.Add(-models.Term),
	}))

	s.f.expectProvision("my-agent", "res-2")
	result, err := s.f.svc.Register(as("new-owner"), models.RegisterRequest{Name: "my-agent"})
	s.Require().NoError(err)
	s.Equal(id.ResourceID("res-2"), result.Resource)

	// The stale owner's wallet entry is gone; they may register again.
	_, err = s.f.records.WalletName(as("new-owner"), "old-owner")
	s.Require().Error(err)
}

func (s *RegisterSuite) TestCheapestSeasonWins() {
	// Shape two active-priced tiers through the snapshot import, then verify
	// the allocation picks the cheaper one.
	s.f.seasons.Import(season.Snapshot{
		Seasons: map[id.SeasonID]models.Season{
			1: {ID: 1, MinLetters: 1, TotalAllowed: 10, UnitPrice: 9, Status: models.SeasonStatusActive},
			2: {ID: 2, MinLetters: 1, TotalAllowed: 10, UnitPrice: 2, Status: models.SeasonStatusActive},
		},
		NextID: 3,
	})

	s.f.expectProvision("my-agent", "res-1")
	result, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().NoError(err)
	s.Equal(uint64(200_000_000), result.FeePaid)
	s.Equal(uint64(1), s.f.seasonCount(2))
	s.Equal(uint64(0), s.f.seasonCount(1))
}

func (s *RegisterSuite) TestLastSlotCompletesSeason() {
	m := registrymetrics.NewWith(prometheus.NewRegistry())
	f := newFixture(gomock.NewController(s.T()), WithMetrics(m))
	sid := f.openSeason(1, 0, 1, 3)

	f.expectProvision("my-agent", "res-1")
	_, err := f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: "my-agent"})
	s.Require().NoError(err)

	completed, err := f.seasons.Get(context.Background(), sid)
	s.Require().NoError(err)
	s.Equal(models.SeasonStatusCompleted, completed.Status)
	s.Equal(1.0, promtestutil.ToFloat64(m.SeasonsCompleted))
	s.Equal(1.0, promtestutil.ToFloat64(m.Registrations))
}

func (s *RegisterSuite) TestConcurrentRegistrationsSameWallet() {
	sid := s.f.openSeason(1, 0, 10, 3)

	// Park both calls inside the factory so each passes admission before
	// either commits. The commit re-check must keep the wallet at one name
	// and hand the slot back to the season.
	admitted := make(chan struct{}, 2)
	release := make(chan struct{})
	s.f.prov.EXPECT().
		Provision(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _, _, _ id.Principal) (id.ResourceID, error) {
			admitted <- struct{}{}
			<-release
			return "res-1", nil
		}).Times(2)

	errs := make(chan error, 2)
	for _, name := range []string{"first-name", "second-name"} {
		go func() {
			_, err := s.f.svc.Register(as("wallet-1"), models.RegisterRequest{Name: name})
			errs <- err
		}()
	}
	<-admitted
	<-admitted
	close(release)

	var failures []error
	for range 2 {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}
	s.Require().Len(failures, 1)
	s.True(dErrors.HasCode(failures[0], models.CodeWalletAlreadyOwns))

	s.Len(s.f.records.List(context.Background(), "wallet-1"), 1)
	s.Equal(uint64(1), s.f.seasonCount(sid))
}

// assertableError is a plain error for mock returns.
type assertableError string

func (e assertableError) Error() string { return string(e) }
