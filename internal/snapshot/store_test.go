package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

type fakeRow struct {
	rec Record
	err error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.rec.TenantID
	*(dest[1].(*string)) = r.rec.OrderID.String()
	*(dest[2].(*[]byte)) = []byte(r.rec.Payload)
	*(dest[3].(*int64)) = r.rec.FinalTotal
	*(dest[4].(*time.Time)) = r.rec.CreatedAt
	return nil
}

type fakeDB struct {
	tag     string
	execErr error
	row     fakeRow
	args    []any
}

func (f *fakeDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	f.args = args
	return pgconn.NewCommandTag(f.tag), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.args = args
	return f.row
}

func TestStoreCreateReportsConflicts(t *testing.T) {
	orderID := uuid.New()
	ctx := tenant.WithTenant(context.Background(), "gokul")
	rec := Record{OrderID: orderID, Payload: json.RawMessage(`{"finalTotal":103.00}`), FinalTotal: 10300}

	db := &fakeDB{tag: "INSERT 0 1"}
	created, err := NewStore(db).Create(ctx, rec)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "gokul", db.args[0])
	require.Equal(t, orderID.String(), db.args[1])

	db.tag = "INSERT 0 0"
	created, err = NewStore(db).Create(ctx, rec)
	require.NoError(t, err)
	require.False(t, created)

	db.execErr = errors.New("boom")
	_, err = NewStore(db).Create(ctx, rec)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestStoreGet(t *testing.T) {
	orderID := uuid.New()
	stored := Record{TenantID: "gokul", OrderID: orderID, Payload: json.RawMessage(`{}`), FinalTotal: 500, CreatedAt: time.Unix(10, 0)}
	db := &fakeDB{row: fakeRow{rec: stored}}
	ctx := tenant.WithTenant(context.Background(), "gokul")

	got, err := NewStore(db).Get(ctx, orderID)
	require.NoError(t, err)
	require.Equal(t, stored, got)
	require.Equal(t, []any{"gokul", orderID.String()}, db.args)

	_, err = NewStore(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}}).Get(ctx, orderID)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = NewStore(&fakeDB{row: fakeRow{err: errors.New("down")}}).Get(ctx, orderID)
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestMemoryStoreIsWriteOnceAndTenantScoped(t *testing.T) {
	store := NewMemoryStore()
	orderID := uuid.New()
	ctxA := tenant.WithTenant(context.Background(), "a")
	ctxB := tenant.WithTenant(context.Background(), "b")

	created, err := store.Create(ctxA, Record{OrderID: orderID, Payload: json.RawMessage(`{"v":1}`), FinalTotal: 1})
	require.NoError(t, err)
	require.True(t, created)

	created, err = store.Create(ctxA, Record{OrderID: orderID, Payload: json.RawMessage(`{"v":2}`), FinalTotal: 2})
	require.NoError(t, err)
	require.False(t, created)

	got, err := store.Get(ctxA, orderID)
	require.NoError(t, err)
	require.JSONEq(t, `{"v":1}`, string(got.Payload))
	require.Equal(t, int64(1), got.FinalTotal)

	_, err = store.Get(ctxB, orderID)
	require.ErrorIs(t, err, ErrNotFound)
}
