package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"registrar/internal/audit"
	auditmemory "registrar/internal/audit/store/memory"
	"registrar/internal/jwtauth"
	"registrar/internal/registry/models"
	"registrar/internal/registry/policy"
	"registrar/internal/registry/provision"
	"registrar/internal/registry/service"
	"registrar/internal/registry/store/allowlist"
	"registrar/internal/registry/store/record"
	"registrar/internal/registry/store/season"
	id "registrar/pkg/domain"
)

const testSigningKey = "test-signing-key"

// HandlerSuite drives the full HTTP surface against the real in-memory stack,
// authenticating through the same JWT path production uses.
type HandlerSuite struct {
	suite.Suite
	router chi.Router
	tokens *jwtauth.Service
	trail  *auditmemory.Store
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.trail = auditmemory.New()
	s.tokens = jwtauth.New(testSigningKey, "registrar", "registrar-api")

	registry := service.New(
		record.NewInMemory(),
		season.NewInMemory(),
		allowlist.NewInMemory(),
		policy.New("admin-1"),
		provision.NewLocal(),
		service.WithAudit(audit.NewStorePublisher(s.trail)),
		service.WithLogger(logger),
	)

	h := New(registry, s.trail, logger, nil, s.tokens)
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, path string, body any, caller id.Principal) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if !caller.IsNil() {
		token, err := s.tokens.GenerateToken(caller, time.Hour)
		s.Require().NoError(err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) decode(w *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), dst))
}

// openSeason provisions an active season through the admin API.
func (s *HandlerSuite) openSeason() {
	w := s.do(http.MethodPost, "/admin/seasons", createSeasonRequest{
		MinLetters: 1, TotalAllowed: 100, UnitPrice: 2,
	}, "admin-1")
	s.Require().Equal(http.StatusCreated, w.Code)
}

func (s *HandlerSuite) TestRegisterFlow() {
	s.openSeason()

	w := s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent", PaymentRef: "tx-1"}, "wallet-1")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var result models.RegisterResult
	s.decode(w, &result)
	s.Equal("my-agent", result.Name)
	s.Equal(uint64(200_000_000), result.FeePaid)
	s.NotEmpty(result.Resource)

	w = s.do(http.MethodGet, "/names/my-agent", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var info models.NameInfo
	s.decode(w, &info)
	s.Equal(id.Principal("wallet-1"), info.Owner)
	s.Equal("https://mcp.ctx.xyz/my-agent", info.Endpoint)

	w = s.do(http.MethodGet, "/wallets/wallet-1/name", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var wallet walletNameResponse
	s.decode(w, &wallet)
	s.Equal("my-agent", wallet.Name)

	w = s.do(http.MethodGet, "/names/my-agent/history", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var events []audit.Event
	s.decode(w, &events)
	s.Require().Len(events, 1)
	s.Equal(audit.ActionNameRegistered, events[0].Action)
}

func (s *HandlerSuite) TestRegisterRequiresToken() {
	w := s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "")
	s.Equal(http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/names", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *HandlerSuite) TestRegisterErrorMapping() {
	s.openSeason()

	w := s.do(http.MethodPost, "/names", registerRequest{Name: "-bad"}, "wallet-1")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/names", registerRequest{Name: "admin"}, "wallet-1")
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "wallet-1")
	s.Require().Equal(http.StatusCreated, w.Code)
	w = s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "wallet-2")
	s.Equal(http.StatusConflict, w.Code)

	var envelope errorEnvelope
	s.decode(w, &envelope)
	s.Equal(string(models.CodeNameUnavailable), envelope.Error)
}

func (s *HandlerSuite) TestRenewAndEndpoint() {
	s.openSeason()
	w := s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "wallet-1")
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/names/my-agent/renew", renewRequest{PaymentRef: "tx-2"}, "wallet-1")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var renewed models.RenewResult
	s.decode(w, &renewed)
	s.Equal(service.DefaultBaseFee, renewed.FeePaid)

	w = s.do(http.MethodPut, "/names/my-agent/endpoint", endpointRequest{Endpoint: "https://example.com/x"}, "wallet-1")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/names/my-agent/endpoint", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var ep endpointResponse
	s.decode(w, &ep)
	s.Equal("https://example.com/x", ep.Endpoint)

	w = s.do(http.MethodPut, "/names/my-agent/endpoint", endpointRequest{Endpoint: "ftp://nope"}, "wallet-1")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/names/my-agent/renew", renewRequest{}, "wallet-2")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestTransfer() {
	s.openSeason()
	w := s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "wallet-1")
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/names/my-agent/transfer", transferRequest{NewOwner: "wallet-2"}, "wallet-1")
	s.Require().Equal(http.StatusNoContent, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/wallets/wallet-2/name", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/wallets/wallet-1/name", nil, "")
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *HandlerSuite) TestGiftAndAdminGating() {
	s.openSeason()

	w := s.do(http.MethodPost, "/admin/names/gift", giftRequest{Name: "gifted-name", Recipient: "lucky-wallet"}, "admin-1")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var result models.RegisterResult
	s.decode(w, &result)
	s.True(result.WasGifted)

	w = s.do(http.MethodPost, "/admin/names/gift", giftRequest{Name: "other-name", Recipient: "other-wallet"}, "wallet-1")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlerSuite) TestSeasonQueries() {
	s.openSeason()

	w := s.do(http.MethodGet, "/seasons/current", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var current models.Season
	s.decode(w, &current)
	s.Equal(id.SeasonID(1), current.ID)

	// Season number 0 resolves to the latest season.
	w = s.do(http.MethodGet, "/seasons/0", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/seasons/1/stats", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var stats models.SeasonStats
	s.decode(w, &stats)
	s.Equal(uint64(100), stats.NamesAvailable)

	w = s.do(http.MethodGet, "/seasons/notanumber", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/admin/seasons/1/deactivate", nil, "admin-1")
	s.Require().Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodPost, "/admin/seasons/1/deactivate", nil, "admin-1")
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlerSuite) TestDiscoveryAndQuotes() {
	s.openSeason()
	w := s.do(http.MethodPost, "/names", registerRequest{Name: "my-agent"}, "wallet-1")
	s.Require().Equal(http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/names/search?q=agent", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var results []models.SearchResult
	s.decode(w, &results)
	s.Require().Len(results, 1)

	w = s.do(http.MethodGet, "/names/other-name/fee", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var fee feeResponse
	s.decode(w, &fee)
	s.Equal(uint64(200_000_000), fee.Fee)

	w = s.do(http.MethodGet, "/names/my-agent/availability?user=wallet-2", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var avail availabilityResponse
	s.decode(w, &avail)
	s.False(avail.Available)

	w = s.do(http.MethodGet, "/names/since?t="+time.Now().Add(-time.Hour).UTC().Format(time.RFC3339), nil, "")
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/names/since?t=garbage", nil, "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestPolicyAdministration() {
	w := s.do(http.MethodPost, "/admin/admins", principalRequest{Principal: "admin-2"}, "admin-1")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/admin/admins", nil, "admin-1")
	s.Require().Equal(http.StatusOK, w.Code)
	var admins principalsResponse
	s.decode(w, &admins)
	s.Equal([]id.Principal{"admin-1", "admin-2"}, admins.Principals)

	w = s.do(http.MethodDelete, "/admin/admins/admin-2", nil, "admin-1")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/admin/admins/admin-1", nil, "admin-1")
	s.Equal(http.StatusConflict, w.Code)

	w = s.do(http.MethodPut, "/admin/short-names/mode", modeRequest{Mode: "open"}, "admin-1")
	s.Require().Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/policy/short-names/mode", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var mode modeResponse
	s.decode(w, &mode)
	s.Equal("open", mode.Mode)

	w = s.do(http.MethodPut, "/admin/short-names/mode", modeRequest{Mode: "bogus"}, "admin-1")
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/admin/fees/base", feeRequest{Fee: 42}, "admin-1")
	s.Require().Equal(http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, "/fees/renewal", nil, "")
	var renewal feeResponse
	s.decode(w, &renewal)
	s.Equal(uint64(42), renewal.Fee)
}

func (s *HandlerSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/names", bytes.NewReader([]byte(`{not json`)))
	token, err := s.tokens.GenerateToken("wallet-1", time.Hour)
	s.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusBadRequest, w.Code)
}
