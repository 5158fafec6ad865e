// Package snapshot persists finalized order breakdowns. Records are write-once.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

var (
	// ErrNotFound is returned when no snapshot exists for the order.
	ErrNotFound = errors.New("breakdown snapshot not found")
	// ErrUnavailable wraps storage failures.
	ErrUnavailable = errors.New("snapshot store unavailable")
)

// Record is a frozen breakdown for one order.
type Record struct {
	OrderID    uuid.UUID
	TenantID   string
	Payload    json.RawMessage
	FinalTotal int64
	CreatedAt  time.Time
}

// Repository is implemented by Store and MemoryStore.
type Repository interface {
	Create(ctx context.Context, rec Record) (bool, error)
	Get(ctx context.Context, orderID uuid.UUID) (Record, error)
}

// DB is the subset of pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	insertSQL = `INSERT INTO order_breakdowns (tenant_id, order_id, payload, final_total_cents)
VALUES ($1, $2, $3, $4)
ON CONFLICT (tenant_id, order_id) DO NOTHING`

	selectSQL = `SELECT tenant_id, order_id::text, payload, final_total_cents, created_at
FROM order_breakdowns WHERE tenant_id = $1 AND order_id = $2`
)

// Store keeps snapshots in Postgres.
type Store struct {
	DB DB
}

// NewStore constructs a Postgres snapshot store.
func NewStore(db DB) *Store {
	return &Store{DB: db}
}

// Create inserts rec unless a snapshot for the order already exists. It reports whether
// a row was written; an existing snapshot is never modified.
func (s *Store) Create(ctx context.Context, rec Record) (bool, error) {
	if s == nil || s.DB == nil {
		return false, fmt.Errorf("%w: store not configured", ErrUnavailable)
	}
	tenantID := tenantOf(ctx, rec)
	tag, err := s.DB.Exec(ctx, insertSQL, tenantID, rec.OrderID.String(), []byte(rec.Payload), rec.FinalTotal)
	if err != nil {
		obs.ObserveSnapshotWrite("error")
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		obs.ObserveSnapshotWrite("exists")
		return false, nil
	}
	obs.ObserveSnapshotWrite("created")
	return true, nil
}

// Get loads the snapshot for orderID within the tenant in ctx.
func (s *Store) Get(ctx context.Context, orderID uuid.UUID) (Record, error) {
	if s == nil || s.DB == nil {
		return Record{}, fmt.Errorf("%w: store not configured", ErrUnavailable)
	}
	tenantID, _ := tenant.FromContext(ctx)
	var (
		rec     Record
		id      string
		payload []byte
	)
	err := s.DB.QueryRow(ctx, selectSQL, tenantID, orderID.String()).
		Scan(&rec.TenantID, &id, &payload, &rec.FinalTotal, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if rec.OrderID, err = uuid.Parse(id); err != nil {
		return Record{}, fmt.Errorf("%w: order id %q: %v", ErrUnavailable, id, err)
	}
	rec.Payload = json.RawMessage(payload)
	return rec, nil
}

func tenantOf(ctx context.Context, rec Record) string {
	if rec.TenantID != "" {
		return rec.TenantID
	}
	id, _ := tenant.FromContext(ctx)
	return id
}
