package migrate

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DestType is the closed set of ClickHouse column types the mapper can
// produce. The string value is the exact type name used in DDL.
type DestType string

const (
	Int64    DestType = "Int64"
	Float64  DestType = "Float64"
	DateTime DestType = "DateTime"
	Date     DestType = "Date"
	UInt8    DestType = "UInt8"
	String   DestType = "String"
)

type Column struct {
	Name string

	// SourceType is the type declared in the source catalog, verbatim
	SourceType string

	DestType DestType
}

type Table struct {
	Name string

	// Columns are in source catalog order, which is also the order used in
	// the destination DDL and in each row tuple
	Columns       []Column
	ColumnsQuoted []string
	ColumnList    string

	// OrderBy is the source primary key column, empty when the table has none
	OrderBy string

	// SourceWhere is an extra where clause added when reading the source
	SourceWhere string
}

func newTable(name string, orderBy string, sourceWhere string, columns []Column) *Table {
	columnsQuoted := make([]string, 0, len(columns))
	for _, column := range columns {
		columnsQuoted = append(columnsQuoted, quote(column.Name))
	}
	return &Table{
		Name:          name,
		Columns:       columns,
		ColumnsQuoted: columnsQuoted,
		ColumnList:    strings.Join(columnsQuoted, ","),
		OrderBy:       orderBy,
		SourceWhere:   sourceWhere,
	}
}

// quote works for both sides: SQLite accepts backtick quoting for
// compatibility and ClickHouse uses it natively.
func quote(identifier string) string {
	return "`" + identifier + "`"
}

// Batch is a bounded group of rows transferred in one insert call. Each row
// has one value per table column, already coerced for the destination.
type Batch struct {
	Table *Table
	Rows  [][]interface{}
}

// TableResult is the terminal outcome for one table.
type TableResult struct {
	Table        string
	RowsInserted int64
	Err          error
}

// RunSummary accumulates per-table results during a run. It is safe for
// concurrent use and read-only after the run completes.
type RunSummary struct {
	mu      sync.Mutex
	order   []string
	results map[string]TableResult
}

func NewRunSummary() *RunSummary {
	return &RunSummary{results: make(map[string]TableResult)}
}

func (s *RunSummary) record(result TableResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.results[result.Table]; !ok {
		s.order = append(s.order, result.Table)
	}
	s.results[result.Table] = result
}

// Tables returns the table names in the order they were processed.
func (s *RunSummary) Tables() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tables := make([]string, len(s.order))
	copy(tables, s.order)
	return tables
}

func (s *RunSummary) Get(table string) (TableResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[table]
	return result, ok
}

// Err aggregates the errors of all failed tables, nil when every table
// succeeded.
func (s *RunSummary) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result error
	for _, table := range s.order {
		r := s.results[table]
		if r.Err != nil {
			result = multierror.Append(result, errors.Wrapf(r.Err, "table %v", table))
		}
	}
	return result
}

func (s *RunSummary) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	parts := make([]string, 0, len(s.order))
	for _, table := range s.order {
		r := s.results[table]
		if r.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: failed (%v)", table, r.Err))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %d rows", table, r.RowsInserted))
		}
	}
	return strings.Join(parts, ", ")
}
