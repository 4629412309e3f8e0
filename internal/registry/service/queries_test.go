package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"registrar/internal/registry/models"
	dErrors "registrar/pkg/domain-errors"
)

type QueriesSuite struct {
	suite.Suite
	f *fixture
}

func TestQueriesSuite(t *testing.T) {
	suite.Run(t, new(QueriesSuite))
}

func (s *QueriesSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.f = newFixture(ctrl)
}

func (s *QueriesSuite) seed(name string, rec models.NameRecord) {
	s.Require().NoError(s.f.records.Put(as(rec.Owner), name, rec))
}

func (s *QueriesSuite) TestInfo() {
	s.seed("my-agent", models.NameRecord{
		Owner:        "wallet-1",
		Resource:     "res-1",
		RegisteredAt: testNow.Add(-time.Hour),
		ExpiresAt:    testNow.Add(models.Term),
	})

	info, err := s.f.svc.Info(as("wallet-1"), "my-agent")
	s.Require().NoError(err)
	s.Equal("my-agent", info.Name)
	s.Equal(models.NameStatusActive, info.Status)
	s.Equal("https://mcp.ctx.xyz/my-agent", info.Endpoint)

	_, err = s.f.svc.Info(as("wallet-1"), "missing")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *QueriesSuite) TestInfoReportsExpired() {
	s.seed("stale-agent", models.NameRecord{
		Owner:     "wallet-1",
		ExpiresAt: testNow.Add(-time.Hour),
	})

	info, err := s.f.svc.Info(as("wallet-1"), "stale-agent")
	s.Require().NoError(err)
	s.Equal(models.NameStatusExpired, info.Status)
}

func (s *QueriesSuite) TestListFiltersByOwner() {
	s.seed("alpha", models.NameRecord{Owner: "wallet-1", ExpiresAt: testNow.Add(models.Term)})
	s.seed("bravo", models.NameRecord{Owner: "wallet-2", ExpiresAt: testNow.Add(models.Term)})

	all := s.f.svc.List(as("wallet-1"), "")
	s.Require().Len(all, 2)
	s.Equal("alpha", all[0].Name)
	s.Equal("bravo", all[1].Name)

	mine := s.f.svc.List(as("wallet-1"), "wallet-2")
	s.Require().Len(mine, 1)
	s.Equal("bravo", mine[0].Name)
}

func (s *QueriesSuite) TestDiscover() {
	s.seed("my-agent", models.NameRecord{Owner: "wallet-1", ExpiresAt: testNow.Add(models.Term)})
	s.seed("gift-agent", models.NameRecord{Owner: "wallet-2", ExpiresAt: testNow.Add(models.Term), WasGifted: true})
	s.seed("stale-agent", models.NameRecord{Owner: "wallet-3", ExpiresAt: testNow.Add(-time.Hour)})

	results := s.f.svc.Discover(as("wallet-1"), "agent")
	s.Require().Len(results, 2)
	s.Equal("gift-agent", results[0].Name)
	s.Equal("name gift-agent (admin gift)", results[0].Description)
	s.True(results[0].WasGifted)
	s.Equal("my-agent", results[1].Name)
	s.Equal("name my-agent (registered)", results[1].Description)
}

func (s *QueriesSuite) TestNamesSince() {
	s.seed("old-agent", models.NameRecord{
		Owner:        "wallet-1",
		RegisteredAt: testNow.Add(-48 * time.Hour),
		ExpiresAt:    testNow.Add(models.Term),
	})
	s.seed("new-agent", models.NameRecord{
		Owner:        "wallet-2",
		RegisteredAt: testNow.Add(-time.Minute),
		ExpiresAt:    testNow.Add(models.Term),
	})

	since := s.f.svc.NamesSince(as("wallet-1"), testNow.Add(-time.Hour))
	s.Require().Len(since, 1)
	s.Equal("new-agent", since[0].Name)
	s.Equal(testNow.Add(-time.Minute).Unix(), since[0].RegisteredAt)

	everything := s.f.svc.NamesSince(as("wallet-1"), time.Time{})
	s.Require().Len(everything, 2)
}

func (s *QueriesSuite) TestQuoteFee() {
	s.Equal(uint64(0), s.f.svc.QuoteFee(as("wallet-1"), "my-agent"))

	s.f.openSeason(1, 0, 10, 3)
	s.Equal(uint64(300_000_000), s.f.svc.QuoteFee(as("wallet-1"), "my-agent"))
	s.Equal(uint64(0), s.f.svc.QuoteFee(as("wallet-1"), "-bad"))
	s.Equal(uint64(0), s.f.svc.QuoteFee(as("wallet-1"), "admin"))
}

func (s *QueriesSuite) TestCanRegister() {
	s.f.openSeason(1, 0, 10, 3)
	s.True(s.f.svc.CanRegister(as("wallet-1"), "my-agent", "wallet-1"))
	s.False(s.f.svc.CanRegister(as("wallet-1"), "-bad", "wallet-1"))
	s.False(s.f.svc.CanRegister(as("wallet-1"), "admin", "wallet-1"))
	s.False(s.f.svc.CanRegister(as("wallet-1"), "abcd", "wallet-1"))
	s.True(s.f.svc.CanRegister(as("wallet-1"), "abcd", adminPrincipal))

	s.seed("my-agent", models.NameRecord{Owner: "wallet-2", ExpiresAt: testNow.Add(models.Term)})
	s.False(s.f.svc.CanRegister(as("wallet-1"), "my-agent", "wallet-1"))
}

func (s *QueriesSuite) TestWalletName() {
	_, err := s.f.svc.WalletName(as("wallet-1"), "wallet-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.seed("my-agent", models.NameRecord{Owner: "wallet-1", ExpiresAt: testNow.Add(models.Term)})
	name, err := s.f.svc.WalletName(as("wallet-1"), "wallet-1")
	s.Require().NoError(err)
	s.Equal("my-agent", name)
}
