package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// ListTables enumerates the source tables in a stable catalog order,
// skipping SQLite's internal bookkeeping tables.
func ListTables(ctx context.Context, source DBReader) ([]string, error) {
	rows, err := source.QueryContext(ctx,
		"select name from sqlite_master where type = 'table' order by name")
	if err != nil {
		return nil, fail(SourceUnavailable, err, "could not list tables")
	}
	defer rows.Close()

	var tableNames []string
	for rows.Next() {
		var tableName string
		if err := rows.Scan(&tableName); err != nil {
			return nil, fail(SourceUnavailable, err, "could not list tables")
		}
		if strings.HasPrefix(tableName, "sqlite_") {
			continue
		}
		tableNames = append(tableNames, tableName)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(SourceUnavailable, err, "could not list tables")
	}
	return tableNames, nil
}

// InspectTable reads the column catalog of one source table and infers the
// destination schema, preserving catalog column order. It does not mutate
// source state.
func InspectTable(ctx context.Context, source DBReader, tableName string, config TableConfig) (*Table, error) {
	ignored := mapset.NewSet(config.IgnoreColumns...)
	rows, err := source.QueryContext(ctx, fmt.Sprintf("pragma table_info(%s)", quote(tableName)))
	if err != nil {
		return nil, fail(SourceUnavailable, err, "could not read columns of %v", tableName)
	}
	defer rows.Close()

	var columns []Column
	var orderBy string
	for rows.Next() {
		var (
			cid        int
			name       string
			sourceType string
			notNull    int
			dflt       sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &sourceType, &notNull, &dflt, &pk); err != nil {
			return nil, fail(SourceUnavailable, err, "could not read columns of %v", tableName)
		}
		if ignored.Contains(name) {
			continue
		}
		// first primary key column becomes the sorting key of the target
		if pk == 1 {
			orderBy = name
		}
		columns = append(columns, Column{
			Name:       name,
			SourceType: sourceType,
			DestType:   MapType(sourceType),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fail(SourceUnavailable, err, "could not read columns of %v", tableName)
	}
	// pragma table_info returns an empty result set for missing tables
	// instead of an error
	if len(columns) == 0 {
		return nil, failf(TableNotFound, "table %v does not exist in the source catalog", tableName)
	}
	return newTable(tableName, orderBy, config.SourceWhere, columns), nil
}
