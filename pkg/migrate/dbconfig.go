package migrate

import (
	"database/sql"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SourceConfig points at the SQLite database to migrate from.
type SourceConfig struct {
	Path string `help:"Path to the SQLite database file" type:"path" optional:""`
}

// DB opens the source read-only. The migration never mutates the source.
func (c SourceConfig) DB() (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", c.Path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return db, nil
}

func (c SourceConfig) String() string {
	return c.Path
}

// TargetConfig points at the ClickHouse database to migrate into.
type TargetConfig struct {
	Host     string `help:"ClickHouse host" optional:""`
	Port     int    `help:"ClickHouse native protocol port" default:"9000"`
	Username string `help:"ClickHouse user" default:"default"`
	Password string `help:"ClickHouse password" optional:""`
	Database string `help:"ClickHouse database" default:"default"`
}

func (c TargetConfig) DB() (*sql.DB, error) {
	db := clickhouse.OpenDB(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", c.Host, c.Port)},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		Settings: clickhouse.Settings{
			// NULLs land as column defaults, the schemas we generate are
			// not nullable
			"input_format_null_as_default": 1,
		},
	})
	return db, nil
}

func (c TargetConfig) String() string {
	return fmt.Sprintf("%s:%d/%s", c.Host, c.Port, c.Database)
}
