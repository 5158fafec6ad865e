package checkout

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/common"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/lock"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/loyalty"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/snapshot"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

type lineRequest struct {
	ProductID  string          `json:"productId" validate:"required"`
	Quantity   int             `json:"quantity" validate:"gt=0,lte=1000000"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Category   string          `json:"category"`
	FlatTaxIDs []int64         `json:"flatTaxIds" validate:"max=16,dive,gt=0"`
}

type customerRequest struct {
	HasFlatTax bool   `json:"hasFlatTax"`
	Tier       string `json:"tier"`
}

type optionsRequest struct {
	OrderType    string          `json:"orderType" validate:"required,oneof=pickup delivery"`
	DeliveryFee  decimal.Decimal `json:"deliveryFee"`
	RedeemPoints int64           `json:"redeemPoints" validate:"gte=0"`
}

type checkoutRequest struct {
	Lines    []lineRequest   `json:"lines" validate:"max=500,dive"`
	Customer customerRequest `json:"customer"`
	Options  optionsRequest  `json:"options"`
}

func (p checkoutRequest) toRequest() Request {
	lines := make([]CartLine, 0, len(p.Lines))
	for _, l := range p.Lines {
		lines = append(lines, CartLine{
			ProductID:  l.ProductID,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			Category:   l.Category,
			FlatTaxIDs: l.FlatTaxIDs,
		})
	}
	return Request{
		Lines:    lines,
		Customer: Customer{HasFlatTax: p.Customer.HasFlatTax, Tier: p.Customer.Tier},
		Options: OrderOptions{
			OrderType:    p.Options.OrderType,
			DeliveryFee:  p.Options.DeliveryFee,
			RedeemPoints: p.Options.RedeemPoints,
		},
	}
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Service   *Service
	Validator *validator.Validate
	Logger    zerolog.Logger
}

// Handler serves checkout endpoints.
type Handler struct {
	svc      *Service
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewHandler constructs a Handler. A nil validator gets a fresh instance.
func NewHandler(cfg HandlerConfig) *Handler {
	v := cfg.Validator
	if v == nil {
		v = validator.New(validator.WithRequiredStructEnabled())
	}
	return &Handler{svc: cfg.Service, validate: v, logger: cfg.Logger}
}

// Quote handles POST /checkout/quote.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		common.JSONError(w, r, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	var payload checkoutRequest
	if appErr := common.DecodeAndValidate(r, &payload, h.validate); appErr != nil {
		appErr.Write(w, r)
		return
	}
	b, err := h.svc.Quote(r.Context(), payload.toRequest())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b})
}

// Finalize handles POST /orders/{orderId}/finalize.
func (h *Handler) Finalize(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		common.JSONError(w, r, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	var payload checkoutRequest
	if appErr := common.DecodeAndValidate(r, &payload, h.validate); appErr != nil {
		appErr.Write(w, r)
		return
	}
	b, frozen, err := h.svc.Finalize(r.Context(), orderID, payload.toRequest())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if frozen {
		status = http.StatusOK
	}
	common.JSON(w, status, map[string]any{"data": b, "frozen": frozen})
}

// Breakdown handles GET /orders/{orderId}/breakdown.
func (h *Handler) Breakdown(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		common.JSONError(w, r, http.StatusInternalServerError, "INTERNAL", "checkout service not configured", nil)
		return
	}
	orderID, ok := parseOrderID(w, r)
	if !ok {
		return
	}
	b, err := h.svc.Breakdown(r.Context(), orderID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": b, "frozen": true})
}

func parseOrderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	evt := h.logger.Info()
	if appErr.Status >= http.StatusInternalServerError {
		evt = h.logger.Error().Str("kind", string(KindOf(err)))
	}
	if tenantID, ok := tenant.FromContext(r.Context()); ok {
		evt = evt.Str("tenant_id", tenantID)
	}
	evt.Err(err).Str("code", appErr.Code).Msg("checkout_failed")
	appErr.Write(w, r)
}

func toAppError(err error) *common.AppError {
	if appErr, ok := common.AsAppError(err); ok {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return common.NewAppError("TIMEOUT", "checkout timed out", http.StatusGatewayTimeout, err)
	}
	if errors.Is(err, loyalty.ErrRedemptionCapExceeded) {
		return common.NewAppError("REDEMPTION_CAP_EXCEEDED", err.Error(), http.StatusUnprocessableEntity, err)
	}
	switch KindOf(err) {
	case KindEmptyCart:
		return common.NewAppError("EMPTY_CART", "cart has no lines", http.StatusUnprocessableEntity, err)
	case KindInvalidRedemption:
		return common.NewAppError("INVALID_REDEMPTION", err.Error(), http.StatusUnprocessableEntity, err)
	case KindInvalidLine:
		return common.NewAppError("INVALID_LINE", err.Error(), http.StatusBadRequest, err)
	case KindTaxRuleNotFound:
		return common.NewAppError("TAX_RULE_NOT_FOUND", "tax configuration error, contact support", http.StatusInternalServerError, err)
	case KindTaxRuleInvalid:
		return common.NewAppError("TAX_RULE_INVALID", "tax configuration error, contact support", http.StatusInternalServerError, err)
	case KindInvariantViolation:
		return common.NewAppError("INVARIANT_VIOLATION", "checkout totals failed verification", http.StatusInternalServerError, err)
	case KindTaxStoreUnavailable:
		return common.NewAppError("TAX_STORE_UNAVAILABLE", "tax rules temporarily unavailable", http.StatusServiceUnavailable, err)
	}
	switch {
	case errors.Is(err, snapshot.ErrNotFound):
		return common.NewAppError("NOT_FOUND", "no finalized breakdown for order", http.StatusNotFound, err)
	case errors.Is(err, lock.ErrUnavailable):
		return common.NewAppError("LOCK_UNAVAILABLE", "order is being finalized, retry shortly", http.StatusServiceUnavailable, err)
	case errors.Is(err, snapshot.ErrUnavailable):
		return common.NewAppError("SNAPSHOT_STORE_UNAVAILABLE", "order snapshots temporarily unavailable", http.StatusServiceUnavailable, err)
	}
	return common.NewAppError("INTERNAL", "internal error", http.StatusInternalServerError, err)
}
