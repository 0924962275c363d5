package migrate

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const destinationColumnsQuery = "select name from system.columns where database = ? and table = ? order by position"

func inferredTable() *Table {
	return newTable("t", "id", "", []Column{
		{Name: "id", SourceType: "INTEGER", DestType: Int64},
		{Name: "name", SourceType: "TEXT", DestType: String},
		{Name: "created", SourceType: "DATETIME", DestType: DateTime},
	})
}

func TestEnsureTableCreates(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(destinationColumnsQuery).
		WithArgs("analytics", "t").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `analytics`.`t` " +
		"(`id` Int64, `name` String, `created` DateTime) " +
		"ENGINE = ReplacingMergeTree ORDER BY `id`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := EnsureTable(context.Background(), db, "analytics", inferredTable())
	assert.NoError(t, err)
}

func TestEnsureTableWithoutPrimaryKey(t *testing.T) {
	mock, db := newMock(t)
	table := newTable("logs", "", "", []Column{
		{Name: "line", SourceType: "TEXT", DestType: String},
	})
	mock.ExpectQuery(destinationColumnsQuery).
		WithArgs("analytics", "logs").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS `analytics`.`logs` " +
		"(`line` String) " +
		"ENGINE = ReplacingMergeTree ORDER BY tuple()").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := EnsureTable(context.Background(), db, "analytics", table)
	assert.NoError(t, err)
}

func TestEnsureTableIdempotent(t *testing.T) {
	mock, db := newMock(t)
	// second call sees the existing compatible table and issues no DDL
	mock.ExpectQuery(destinationColumnsQuery).
		WithArgs("analytics", "t").
		WillReturnRows(sqlmock.NewRows([]string{"name"}).
			AddRow("id").AddRow("name").AddRow("created"))

	err := EnsureTable(context.Background(), db, "analytics", inferredTable())
	assert.NoError(t, err)
}

func TestEnsureTableSchemaConflict(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
	}{
		{"missing column", []string{"id", "name"}},
		{"renamed column", []string{"id", "name", "updated"}},
		{"reordered columns", []string{"name", "id", "created"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mock, db := newMock(t)
			rows := sqlmock.NewRows([]string{"name"})
			for _, name := range test.existing {
				rows.AddRow(name)
			}
			mock.ExpectQuery(destinationColumnsQuery).
				WithArgs("analytics", "t").
				WillReturnRows(rows)

			err := EnsureTable(context.Background(), db, "analytics", inferredTable())
			assert.Equal(t, SchemaConflict, KindOf(err))
		})
	}
}

func TestEnsureTableDestinationUnavailable(t *testing.T) {
	mock, db := newMock(t)
	mock.ExpectQuery(destinationColumnsQuery).
		WithArgs("analytics", "t").
		WillReturnError(errors.New("connection refused"))

	err := EnsureTable(context.Background(), db, "analytics", inferredTable())
	assert.Equal(t, DestinationUnavailable, KindOf(err))
}

func TestCreateDDLDeterministic(t *testing.T) {
	table := inferredTable()
	first := createDDL("analytics", table)
	second := createDDL("analytics", table)
	require.Equal(t, first, second)
}
