package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/cache"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/loyalty"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/pricing"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/snapshot"
)

// Request is one checkout calculation input.
type Request struct {
	Lines    []CartLine
	Customer Customer
	Options  OrderOptions
}

// Locker serializes finalization of a single order across replicas.
type Locker interface {
	Hold(ctx context.Context, key string, fn func(context.Context) error) error
}

// ServiceConfig wires a Service. Locker is optional.
type ServiceConfig struct {
	Calculator   *Calculator
	Snapshots    snapshot.Repository
	Locker       Locker
	MaxRedeemBps int
	Timeout      time.Duration
	Logger       zerolog.Logger
}

// Service applies order-level policy around the calculator and freezes finalized breakdowns.
type Service struct {
	calc         *Calculator
	snapshots    snapshot.Repository
	locker       Locker
	maxRedeemBps int
	timeout      time.Duration
	logger       zerolog.Logger
}

// NewService validates cfg and returns a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Calculator == nil {
		return nil, errors.New("checkout calculator is required")
	}
	if cfg.Snapshots == nil {
		return nil, errors.New("snapshot repository is required")
	}
	bps := cfg.MaxRedeemBps
	if bps <= 0 {
		bps = loyalty.DefaultMaxRedeemBps
	}
	return &Service{
		calc:         cfg.Calculator,
		snapshots:    cfg.Snapshots,
		locker:       cfg.Locker,
		maxRedeemBps: bps,
		timeout:      cfg.Timeout,
		logger:       cfg.Logger,
	}, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Quote calculates a fresh breakdown and enforces the redemption cap.
func (s *Service) Quote(ctx context.Context, req Request) (Breakdown, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.quote(ctx, req)
}

func (s *Service) quote(ctx context.Context, req Request) (Breakdown, error) {
	b, err := s.calc.Calculate(ctx, req.Lines, req.Customer, req.Options)
	if err != nil {
		return Breakdown{}, err
	}
	if err := loyalty.CheckCap(b.PointsRedeemed, b.SubtotalBeforeRedemption, s.maxRedeemBps); err != nil {
		return Breakdown{}, fmt.Errorf("%w: %d points requested, at most %d allowed on %s", err,
			b.PointsRedeemed, loyalty.MaxRedeemable(b.SubtotalBeforeRedemption, s.maxRedeemBps),
			pricing.Format(b.SubtotalBeforeRedemption))
	}
	return b, nil
}

// Finalize freezes the breakdown for orderID. When a snapshot already exists it is
// returned unchanged with frozen set, and nothing is recomputed.
func (s *Service) Finalize(ctx context.Context, orderID uuid.UUID, req Request) (b Breakdown, frozen bool, err error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if existing, err := s.load(ctx, orderID); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, snapshot.ErrNotFound) {
		return Breakdown{}, false, err
	}
	if s.locker == nil {
		return s.freeze(ctx, orderID, req)
	}
	err = s.locker.Hold(ctx, cache.FinalizeLockKey(ctx, orderID.String()), func(ctx context.Context) error {
		var ferr error
		b, frozen, ferr = s.freeze(ctx, orderID, req)
		return ferr
	})
	if err != nil {
		return Breakdown{}, false, err
	}
	return b, frozen, nil
}

func (s *Service) freeze(ctx context.Context, orderID uuid.UUID, req Request) (Breakdown, bool, error) {
	if s.locker != nil {
		// the previous holder may have frozen it while we waited
		if existing, err := s.load(ctx, orderID); err == nil {
			return existing, true, nil
		} else if !errors.Is(err, snapshot.ErrNotFound) {
			return Breakdown{}, false, err
		}
	}
	b, err := s.quote(ctx, req)
	if err != nil {
		return Breakdown{}, false, err
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return Breakdown{}, false, fmt.Errorf("encode breakdown: %w", err)
	}
	created, err := s.snapshots.Create(ctx, snapshot.Record{OrderID: orderID, Payload: payload, FinalTotal: b.FinalTotal})
	if err != nil {
		return Breakdown{}, false, err
	}
	if !created {
		// another request froze the order first
		existing, err := s.load(ctx, orderID)
		if err != nil {
			return Breakdown{}, false, err
		}
		return existing, true, nil
	}
	s.logger.Info().Str("order_id", orderID.String()).Str("final_total", pricing.Format(b.FinalTotal)).
		Int64("points_earned", b.PointsEarned).Int64("points_redeemed", b.PointsRedeemed).
		Msg("order_breakdown_frozen")
	return b, false, nil
}

// Breakdown returns the frozen breakdown for orderID or snapshot.ErrNotFound.
func (s *Service) Breakdown(ctx context.Context, orderID uuid.UUID) (Breakdown, error) {
	return s.load(ctx, orderID)
}

func (s *Service) load(ctx context.Context, orderID uuid.UUID) (Breakdown, error) {
	rec, err := s.snapshots.Get(ctx, orderID)
	if err != nil {
		return Breakdown{}, err
	}
	var b Breakdown
	if err := json.Unmarshal(rec.Payload, &b); err != nil {
		return Breakdown{}, fmt.Errorf("%w: decode snapshot %s: %v", snapshot.ErrUnavailable, orderID, err)
	}
	return b, nil
}
