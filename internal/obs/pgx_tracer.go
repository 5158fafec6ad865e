package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub011/internal/tenant"
)

const maxStatementAttr = 300

// PGXTracer is a pgx.QueryTracer emitting one client span per statement.
type PGXTracer struct{}

var _ pgx.QueryTracer = PGXTracer{}

func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	op := sqlOperation(data.SQL)
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", op),
		attribute.String("db.statement", truncateSQL(data.SQL)),
	}
	if tenantID, ok := tenant.FromContext(ctx); ok {
		attrs = append(attrs, attribute.String("tenant.id", tenantID))
	}
	ctx, _ = otel.Tracer("wholesale-checkout/pgx").Start(ctx, "pgx "+op,
		trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
	return ctx
}

func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	defer span.End()
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
		return
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
}

func sqlOperation(sql string) string {
	if fields := strings.Fields(sql); len(fields) > 0 {
		return strings.ToUpper(fields[0])
	}
	return "QUERY"
}

func truncateSQL(sql string) string {
	sql = strings.TrimSpace(sql)
	if len(sql) > maxStatementAttr {
		return sql[:maxStatementAttr] + "..."
	}
	return sql
}
