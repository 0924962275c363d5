package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dlmiddlecote/sqlstats"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"
)

var (
	tablesFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tables_failed",
			Help: "How many tables ended in a failed state.",
		},
	)
)

func init() {
	prometheus.MustRegister(tablesFailed)
}

type Migrate struct {
	LoaderConfig

	OptimizeAfterLoad bool `help:"Run OPTIMIZE TABLE on the target after a table finishes loading" default:"false"`

	DialTimeout time.Duration `help:"Timeout for the initial connection check on either side" default:"30s"`
	DialRetries uint64        `help:"How many times to retry the initial connection check (with backoff)" default:"5"`
}

// Run migrates every requested table and logs a per-table summary. A table
// failure is recorded and reported, it never fails the run: only being
// unable to reach one of the two sides at startup does.
func (cmd *Migrate) Run() error {
	start := time.Now()

	if err := cmd.LoadConfig(); err != nil {
		return errors.WithStack(err)
	}

	ctx := context.Background()

	source, err := cmd.Source.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	defer source.Close()
	target, err := cmd.Target.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	defer target.Close()

	if err := Retry(ctx, cmd.DialRetries, cmd.DialTimeout, source.PingContext); err != nil {
		return fail(SourceUnavailable, err, "could not ping source %v", cmd.Source)
	}
	if err := Retry(ctx, cmd.DialRetries, cmd.DialTimeout, target.PingContext); err != nil {
		return fail(DestinationUnavailable, err, "could not ping target %v", cmd.Target)
	}

	registerPoolStats(source, target)

	summary, err := cmd.MigrateTables(ctx, source, target)
	if err != nil {
		return errors.WithStack(err)
	}

	logSummary(summary, time.Since(start))
	return nil
}

// MigrateTables runs the full migration and returns a summary with a
// terminal result for every requested table. Tables are processed one at a
// time, batches within a table are written in parallel. Explicitly requested
// tables are not checked against the catalog here: a name that does not
// exist in the source still gets a summary entry, recorded as a failure by
// InspectTable.
func (cmd *Migrate) MigrateTables(ctx context.Context, source *sql.DB, target *sql.DB) (*RunSummary, error) {
	tableNames := cmd.Tables
	if len(tableNames) == 0 {
		var err error
		tableNames, err = ListTables(ctx, source)
		if err != nil {
			return nil, errors.WithStack(err)
		}
	}

	summary := NewRunSummary()
	for _, tableName := range tableNames {
		result := cmd.migrateTable(ctx, source, target, tableName)
		summary.record(result)
		if result.Err != nil {
			tablesFailed.Inc()
		}
	}
	return summary, nil
}

func (cmd *Migrate) migrateTable(ctx context.Context, source *sql.DB, target *sql.DB, tableName string) TableResult {
	logger := log.WithField("task", "migrate").WithField("table", tableName)
	start := time.Now()
	logger.WithTime(start).Infof("start")

	result := TableResult{Table: tableName}

	table, err := InspectTable(ctx, source, tableName, cmd.Config.Tables[tableName])
	if err != nil {
		result.Err = err
		logger.WithError(err).Errorf("failed inspecting %v", tableName)
		return result
	}

	if err := EnsureTable(ctx, target, cmd.Target.Database, table); err != nil {
		result.Err = err
		logger.WithError(err).Errorf("failed provisioning %v", tableName)
		return result
	}

	result.RowsInserted, result.Err = cmd.loadTable(ctx, source, target, table)
	if result.Err != nil {
		logger.WithError(result.Err).Errorf("failed loading %v", tableName)
		return result
	}

	if cmd.OptimizeAfterLoad {
		stmt := fmt.Sprintf("OPTIMIZE TABLE %s.%s", quote(cmd.Target.Database), quote(table.Name))
		if _, err := target.ExecContext(ctx, stmt); err != nil {
			// the data is already loaded, a failed merge is not a table
			// failure
			logger.WithError(err).Warnf("could not optimize %v after load", table.Name)
		}
	}

	logger.
		WithField("duration", time.Since(start)).
		WithField("rows", result.RowsInserted).
		Infof("done")
	return result
}

// loadTable fans one table's batch stream out over the writer pool. On the
// first failed batch no new batches are dispatched, batches already handed
// to a writer run to completion, and the first error is returned after the
// drain.
func (cmd *Migrate) loadTable(ctx context.Context, source *sql.DB, target *sql.DB, table *Table) (int64, error) {
	rowsInserted := atomic.NewInt64(0)
	batches := make(chan Batch, cmd.QueueSize)

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// groupCtx is cancelled on the first writer failure which stops
		// dispatch here
		err := ReadTable(groupCtx, source, table, cmd.BatchSize, batches)
		close(batches)
		return errors.WithStack(err)
	})
	for i := 0; i < cmd.WriterCount; i++ {
		g.Go(func() error {
			for batch := range batches {
				if groupCtx.Err() != nil {
					// a sibling writer failed, drain without writing
					continue
				}
				// in-flight inserts run on the parent context so
				// cancellation of the group does not preempt them
				n, err := InsertBatch(ctx, target, batch)
				if err != nil {
					return errors.WithStack(err)
				}
				rowsInserted.Add(int64(n))
			}
			return nil
		})
	}
	err := g.Wait()
	return rowsInserted.Load(), err
}

func registerPoolStats(source *sql.DB, target *sql.DB) {
	for name, db := range map[string]*sql.DB{"source": source, "target": target} {
		if err := prometheus.Register(sqlstats.NewStatsCollector(name, db)); err != nil {
			log.WithError(err).Debugf("could not register %v pool stats", name)
		}
	}
}

func logSummary(summary *RunSummary, elapsed time.Duration) {
	var total int64
	failed := 0
	tables := summary.Tables()
	for _, tableName := range tables {
		result, _ := summary.Get(tableName)
		logger := log.WithField("table", tableName).WithField("rows", result.RowsInserted)
		if result.Err != nil {
			failed++
			logger.WithError(result.Err).Errorf("table %v failed after %s rows", tableName, humanize.Comma(result.RowsInserted))
		} else {
			total += result.RowsInserted
			logger.Infof("table %v done, %s rows", tableName, humanize.Comma(result.RowsInserted))
		}
	}
	if err := summary.Err(); err != nil {
		log.WithError(err).Errorf("failed migrating %d of %d tables", failed, len(tables))
	} else {
		log.WithField("duration", elapsed).Infof("done migrating %d tables, %s rows", len(tables), humanize.Comma(total))
	}
}
