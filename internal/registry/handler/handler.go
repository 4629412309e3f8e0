// Package handler exposes the name registry over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"registrar/internal/audit"
	"registrar/internal/platform/metrics"
	"registrar/internal/platform/middleware"
	"registrar/internal/registry/models"
	id "registrar/pkg/domain"
	dErrors "registrar/pkg/domain-errors"
	"registrar/pkg/requestcontext"
)

// Service defines the registry operations the HTTP layer depends on.
type Service interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.RegisterResult, error)
	Renew(ctx context.Context, name, paymentRef string) (*models.RenewResult, error)
	Transfer(ctx context.Context, name string, newOwner id.Principal) error
	SetCustomEndpoint(ctx context.Context, name, endpoint string) error

	Info(ctx context.Context, name string) (*models.NameInfo, error)
	Endpoint(ctx context.Context, name string) (string, error)
	List(ctx context.Context, owner id.Principal) []models.NameInfo
	Discover(ctx context.Context, query string) []models.SearchResult
	NamesSince(ctx context.Context, since time.Time) []models.TimestampedName
	QuoteFee(ctx context.Context, name string) uint64
	RenewalFee(ctx context.Context) uint64
	CanRegister(ctx context.Context, name string, user id.Principal) bool
	WalletName(ctx context.Context, wallet id.Principal) (string, error)

	Gift(ctx context.Context, req models.GiftRequest) (*models.RegisterResult, error)
	CreateWithAddress(ctx context.Context, req models.CreateWithAddressRequest) (*models.RegisterResult, error)

	CreateSeason(ctx context.Context, req models.CreateSeasonRequest) (id.SeasonID, error)
	DeactivateSeason(ctx context.Context, seasonID id.SeasonID) error
	AddAddressToSeason(ctx context.Context, seasonID id.SeasonID, address string) error
	SeasonByNumber(ctx context.Context, number id.SeasonID) (*models.Season, error)
	CurrentSeason(ctx context.Context) (*models.Season, error)
	Seasons(ctx context.Context) []models.Season
	SeasonStats(ctx context.Context, number id.SeasonID) (*models.SeasonStats, error)
	AllSeasonStats(ctx context.Context) []models.SeasonStats
	SeasonAddresses(ctx context.Context, seasonID id.SeasonID) []string

	AddAdmin(ctx context.Context, newAdmin id.Principal) error
	RemoveAdmin(ctx context.Context, target id.Principal) error
	Admins(ctx context.Context) []id.Principal
	ApproveShortUser(ctx context.Context, user id.Principal) error
	RevokeShortUser(ctx context.Context, user id.Principal) error
	ApprovedShortUsers(ctx context.Context) []id.Principal
	SetShortNameMode(ctx context.Context, mode models.ShortNameMode) error
	CurrentShortNameMode(ctx context.Context) models.ShortNameMode
	AddReservedName(ctx context.Context, name string) error
	SetBaseFee(ctx context.Context, fee uint64) error
}

// Handler handles registry endpoints.
type Handler struct {
	logger    *slog.Logger
	registry  Service
	history   audit.Store
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a registry Handler. history may be nil when audit retrieval is
// not configured.
func New(
	registry Service,
	history audit.Store,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		registry:  registry,
		history:   history,
		metrics:   metrics,
		validator: validator,
	}
}

// Register registers the registry routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Use(middleware.ContentTypeJSON)
	router.Use(middleware.Latency(h.metrics))

	// Read-only surface, no authentication required.
	router.Group(func(pub chi.Router) {
		pub.Get("/names", h.handleListNames)
		pub.Get("/names/search", h.handleSearch)
		pub.Get("/names/since", h.handleNamesSince)
		pub.Get("/names/{name}", h.handleInfo)
		pub.Get("/names/{name}/endpoint", h.handleEndpoint)
		pub.Get("/names/{name}/fee", h.handleQuoteFee)
		pub.Get("/names/{name}/availability", h.handleAvailability)
		pub.Get("/names/{name}/history", h.handleHistory)
		pub.Get("/wallets/{wallet}/name", h.handleWalletName)
		pub.Get("/fees/renewal", h.handleRenewalFee)
		pub.Get("/seasons", h.handleSeasons)
		pub.Get("/seasons/stats", h.handleAllSeasonStats)
		pub.Get("/seasons/current", h.handleCurrentSeason)
		pub.Get("/seasons/{number}", h.handleSeason)
		pub.Get("/seasons/{number}/stats", h.handleSeasonStats)
		pub.Get("/seasons/{number}/addresses", h.handleSeasonAddresses)
		pub.Get("/policy/short-names/mode", h.handleShortNameMode)
	})

	// Mutations require an authenticated caller.
	router.Group(func(priv chi.Router) {
		priv.Use(middleware.RequireAuth(h.validator, h.logger))
		priv.Post("/names", h.handleRegister)
		priv.Post("/names/{name}/renew", h.handleRenew)
		priv.Post("/names/{name}/transfer", h.handleTransfer)
		priv.Put("/names/{name}/endpoint", h.handleSetEndpoint)
		h.registerAdminRoutes(priv)
	})

	r.Mount("/", router)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.registry.Register(r.Context(), models.RegisterRequest{
		Name:          req.Name,
		Administrator: id.Principal(req.Administrator),
		Operator:      id.Principal(req.Operator),
		PaymentRef:    req.PaymentRef,
	})
	if err != nil {
		h.fail(w, r, "register name", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) handleRenew(w http.ResponseWriter, r *http.Request) {
	var req renewRequest
	if !h.decode(w, r, &req) {
		return
	}
	result, err := h.registry.Renew(r.Context(), chi.URLParam(r, "name"), req.PaymentRef)
	if err != nil {
		h.fail(w, r, "renew name", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !h.decode(w, r, &req) {
		return
	}
	newOwner, err := id.ParsePrincipal(req.NewOwner)
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid new owner"))
		return
	}
	if err := h.registry.Transfer(r.Context(), chi.URLParam(r, "name"), newOwner); err != nil {
		h.fail(w, r, "transfer name", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSetEndpoint(w http.ResponseWriter, r *http.Request) {
	var req endpointRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.registry.SetCustomEndpoint(r.Context(), chi.URLParam(r, "name"), req.Endpoint); err != nil {
		h.fail(w, r, "set custom endpoint", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.registry.Info(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, "fetch name info", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	endpoint, err := h.registry.Endpoint(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, "fetch endpoint", err)
		return
	}
	writeJSON(w, http.StatusOK, endpointResponse{Endpoint: endpoint})
}

func (h *Handler) handleListNames(w http.ResponseWriter, r *http.Request) {
	owner := id.Principal(r.URL.Query().Get("owner"))
	writeJSON(w, http.StatusOK, h.registry.List(r.Context(), owner))
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.Discover(r.Context(), r.URL.Query().Get("q")))
}

func (h *Handler) handleNamesSince(w http.ResponseWriter, r *http.Request) {
	since, err := time.Parse(time.RFC3339, r.URL.Query().Get("t"))
	if err != nil {
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid timestamp, want RFC 3339"))
		return
	}
	writeJSON(w, http.StatusOK, h.registry.NamesSince(r.Context(), since))
}

func (h *Handler) handleQuoteFee(w http.ResponseWriter, r *http.Request) {
	fee := h.registry.QuoteFee(r.Context(), chi.URLParam(r, "name"))
	writeJSON(w, http.StatusOK, feeResponse{Fee: fee})
}

func (h *Handler) handleRenewalFee(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, feeResponse{Fee: h.registry.RenewalFee(r.Context())})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	user := id.Principal(r.URL.Query().Get("user"))
	writeJSON(w, http.StatusOK, availabilityResponse{
		Name:      name,
		Available: h.registry.CanRegister(r.Context(), name, user),
	})
}

func (h *Handler) handleWalletName(w http.ResponseWriter, r *http.Request) {
	wallet := id.Principal(chi.URLParam(r, "wallet"))
	name, err := h.registry.WalletName(r.Context(), wallet)
	if err != nil {
		h.fail(w, r, "fetch wallet name", err)
		return
	}
	writeJSON(w, http.StatusOK, walletNameResponse{Wallet: string(wallet), Name: name})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, dErrors.New(dErrors.CodeUnavailable, "audit history not configured"))
		return
	}
	events, err := h.history.ListByName(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		h.fail(w, r, "fetch name history", err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// decode reads a JSON body into dst, replying 400 on malformed input.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.logger.WarnContext(r.Context(), "invalid request body",
			"request_id", requestcontext.RequestID(r.Context()),
			"error", err.Error(),
		)
		writeError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return false
	}
	return true
}

// fail logs server side failures and writes the error envelope. Client errors
// pass through without noise.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	ctx := r.Context()
	if statusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, "failed to "+action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	} else {
		h.logger.WarnContext(ctx, "rejected request to "+action,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	writeError(w, err)
}
