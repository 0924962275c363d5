package migrate

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

// EnsureTable creates the destination table for the inferred schema when it
// is missing and verifies the column layout when it is not. Existing tables
// are never altered: an incompatible layout fails with SchemaConflict.
// Calling it twice with the same schema is a no-op the second time.
func EnsureTable(ctx context.Context, target DBWriter, database string, table *Table) error {
	existing, err := destinationColumns(ctx, target, database, table.Name)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.WithField("table", table.Name).Debugf("table %v already exists in target", table.Name)
		return checkCompatible(table, existing)
	}

	ddl := createDDL(database, table)
	if _, err := target.ExecContext(ctx, ddl); err != nil {
		return fail(DestinationUnavailable, err, "could not execute: %s", ddl)
	}
	return nil
}

func destinationColumns(ctx context.Context, target DBReader, database string, tableName string) ([]string, error) {
	rows, err := target.QueryContext(ctx,
		"select name from system.columns where database = ? and table = ? order by position",
		database, tableName)
	if err != nil {
		return nil, fail(DestinationUnavailable, err, "could not read target columns of %v", tableName)
	}
	defer rows.Close()

	var columnNames []string
	for rows.Next() {
		var columnName string
		if err := rows.Scan(&columnName); err != nil {
			return nil, fail(DestinationUnavailable, err, "could not read target columns of %v", tableName)
		}
		columnNames = append(columnNames, columnName)
	}
	if err := rows.Err(); err != nil {
		return nil, fail(DestinationUnavailable, err, "could not read target columns of %v", tableName)
	}
	return columnNames, nil
}

func checkCompatible(table *Table, existing []string) error {
	if len(existing) != len(table.Columns) {
		return failf(SchemaConflict,
			"target table %v has %d columns, inferred schema has %d",
			table.Name, len(existing), len(table.Columns))
	}
	for i, column := range table.Columns {
		if existing[i] != column.Name {
			return failf(SchemaConflict,
				"target table %v column %d is %v, inferred schema has %v",
				table.Name, i, existing[i], column.Name)
		}
	}
	return nil
}

func createDDL(database string, table *Table) string {
	columns := make([]string, 0, len(table.Columns))
	for _, column := range table.Columns {
		columns = append(columns, fmt.Sprintf("%s %s", quote(column.Name), column.DestType))
	}
	orderBy := "tuple()"
	if table.OrderBy != "" {
		orderBy = quote(table.OrderBy)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.%s (%s) ENGINE = ReplacingMergeTree ORDER BY %s",
		quote(database), quote(table.Name), strings.Join(columns, ", "), orderBy)
}
