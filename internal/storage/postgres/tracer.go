package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"fx-forward-desk/internal/observability"
)

type traceKey struct{}

type queryTrace struct {
	start time.Time
	op    string
}

// queryTracer times every statement into the database metrics, labelled by
// its leading SQL verb.
type queryTracer struct {
	metrics *observability.Metrics
}

var _ pgx.QueryTracer = (*queryTracer)(nil)

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, traceKey{}, queryTrace{start: time.Now(), op: sqlVerb(data.SQL)})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qt, ok := ctx.Value(traceKey{}).(queryTrace)
	if !ok {
		return
	}
	t.metrics.RecordDBQuery("postgres", qt.op, time.Since(qt.start).Seconds(), data.Err)
}

// sqlVerb returns the lower-cased first keyword of a statement.
func sqlVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
