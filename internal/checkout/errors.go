package checkout

import (
	"errors"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/flattax"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/loyalty"
)

var (
	// ErrEmptyCart is returned when a calculation is requested with no lines.
	ErrEmptyCart = errors.New("cart has no lines")
	// ErrInvalidLine indicates malformed line or order option input.
	ErrInvalidLine = errors.New("invalid checkout input")
	// ErrInvariantViolation is returned when a computed breakdown fails verification.
	ErrInvariantViolation = errors.New("checkout invariant violated")
	// ErrTaxRuleNotFound aliases flattax.ErrRuleNotFound so callers need not import flattax.
	ErrTaxRuleNotFound = flattax.ErrRuleNotFound
	// ErrInvalidRedemption aliases loyalty.ErrInvalidRedemption.
	ErrInvalidRedemption = loyalty.ErrInvalidRedemption
)

// Kind classifies a calculation failure.
type Kind string

const (
	KindTaxRuleNotFound     Kind = "tax_rule_not_found"
	KindTaxRuleInvalid      Kind = "tax_rule_invalid"
	KindTaxStoreUnavailable Kind = "tax_store_unavailable"
	KindInvalidRedemption   Kind = "invalid_redemption"
	KindEmptyCart           Kind = "empty_cart"
	KindInvalidLine         Kind = "invalid_line"
	KindInvariantViolation  Kind = "invariant_violation"
)

// CalculationError is the only error type returned by Calculate.
type CalculationError struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *CalculationError) Error() string {
	if e == nil {
		return ""
	}
	msg := "checkout"
	if e.Op != "" {
		msg += " " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying sentinel.
func (e *CalculationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func fail(kind Kind, op string, err error) *CalculationError {
	return &CalculationError{Kind: kind, Op: op, Err: err}
}

// KindOf returns the failure kind of err, or "" when err is not a CalculationError.
func KindOf(err error) Kind {
	var ce *CalculationError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

func lookupKind(err error) Kind {
	switch {
	case errors.Is(err, flattax.ErrRuleNotFound):
		return KindTaxRuleNotFound
	case errors.Is(err, flattax.ErrInvalidRule):
		return KindTaxRuleInvalid
	default:
		return KindTaxStoreUnavailable
	}
}
