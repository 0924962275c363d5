package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

var (
	rowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rows_written",
			Help: "How many rows written to the target, partitioned by table.",
		},
		[]string{"table"},
	)
	batchesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "batches_written",
			Help: "How many batches written to the target, partitioned by table.",
		},
		[]string{"table"},
	)
)

func init() {
	prometheus.MustRegister(rowsWritten)
	prometheus.MustRegister(batchesWritten)
}

// InsertBatch loads one batch with a single multi-row insert, binding values
// positionally in schema order. It returns the number of rows inserted.
// There is no retry here: a batch that failed halfway is not idempotent and
// reinserting it could duplicate rows.
func InsertBatch(ctx context.Context, target DBWriter, batch Batch) (int, error) {
	table := batch.Table
	log.Debugf("inserting %d rows into %v", len(batch.Rows), table.Name)

	questionMarks := make([]string, 0, len(table.Columns))
	for range table.Columns {
		questionMarks = append(questionMarks, "?")
	}
	values := fmt.Sprintf("(%s)", strings.Join(questionMarks, ","))

	valueStrings := make([]string, 0, len(batch.Rows))
	valueArgs := make([]interface{}, 0, len(batch.Rows)*len(table.Columns))
	for _, row := range batch.Rows {
		valueStrings = append(valueStrings, values)
		valueArgs = append(valueArgs, row...)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quote(table.Name), table.ColumnList, strings.Join(valueStrings, ","))
	if _, err := target.ExecContext(ctx, stmt, valueArgs...); err != nil {
		return 0, fail(InsertFailed, err, "could not insert batch of %d rows into %v", len(batch.Rows), table.Name)
	}
	rowsWritten.WithLabelValues(table.Name).Add(float64(len(batch.Rows)))
	batchesWritten.WithLabelValues(table.Name).Inc()
	return len(batch.Rows), nil
}
