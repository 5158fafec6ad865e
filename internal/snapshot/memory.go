package snapshot

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/obs"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

type memKey struct {
	tenant string
	order  uuid.UUID
}

// MemoryStore is an in-process Repository.
type MemoryStore struct {
	mu      sync.Mutex
	records map[memKey]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: map[memKey]Record{}, now: time.Now}
}

// Create implements Repository.
func (m *MemoryStore) Create(ctx context.Context, rec Record) (bool, error) {
	rec.TenantID = tenantOf(ctx, rec)
	key := memKey{tenant: rec.TenantID, order: rec.OrderID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[key]; ok {
		obs.ObserveSnapshotWrite("exists")
		return false, nil
	}
	rec.CreatedAt = m.now().UTC()
	rec.Payload = append([]byte(nil), rec.Payload...)
	m.records[key] = rec
	obs.ObserveSnapshotWrite("created")
	return true, nil
}

// Get implements Repository.
func (m *MemoryStore) Get(ctx context.Context, orderID uuid.UUID) (Record, error) {
	tenantID, _ := tenant.FromContext(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[memKey{tenant: tenantID, order: orderID}]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}
