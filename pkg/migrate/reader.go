package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	rowsRead = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rows_read",
			Help: "How many rows read from the source, partitioned by table.",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(rowsRead)
}

// ReadTable streams the rows of one source table in catalog column order and
// groups them into batches of batchSize rows, the final batch may be
// shorter. Batches are sent as they fill so the table is never buffered in
// memory; a full queue blocks the read, which is the backpressure bound.
// A mid-stream read failure fails with SourceUnavailable, batches already
// sent remain valid.
func ReadTable(ctx context.Context, source DBReader, table *Table, batchSize int, batches chan<- Batch) error {
	stmt := fmt.Sprintf("select %s from %s", table.ColumnList, quote(table.Name))
	if table.SourceWhere != "" {
		stmt += " where " + table.SourceWhere
	}
	rows, err := source.QueryContext(ctx, stmt)
	if err != nil {
		return fail(SourceUnavailable, err, "could not execute: %s", stmt)
	}
	defer rows.Close()

	raw := make([]sql.RawBytes, len(table.Columns))
	scan := make([]interface{}, len(raw))
	for i := range raw {
		scan[i] = &raw[i]
	}

	batch := make([][]interface{}, 0, batchSize)
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return fail(SourceUnavailable, err, "could not scan row of %v", table.Name)
		}
		rowsRead.WithLabelValues(table.Name).Inc()
		batch = append(batch, coerceRow(table, raw))
		if len(batch) >= batchSize {
			select {
			case batches <- Batch{Table: table, Rows: batch}:
			case <-ctx.Done():
				return ctx.Err()
			}
			batch = make([][]interface{}, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return fail(SourceUnavailable, err, "read of %v failed mid-stream", table.Name)
	}
	if len(batch) > 0 {
		select {
		case batches <- Batch{Table: table, Rows: batch}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
