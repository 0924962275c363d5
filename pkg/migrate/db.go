package migrate

import (
	"context"
	"database/sql"
)

// DBReader is implemented by sql.Conn, sql.Tx and sql.DB so that components
// do not care how their connection is managed.
type DBReader interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

type DBWriter interface {
	DBReader
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}
