package migrate

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Ping struct {
	SourceTargetConfig
}

func (cmd *Ping) Run() error {
	ctx, cancelFunc := context.WithTimeout(context.Background(), time.Second*5)
	defer cancelFunc()

	if cmd.Source.Path != "" {
		log.Infof("pinging source")
		db, err := cmd.Source.DB()
		if err != nil {
			return errors.WithStack(err)
		}
		defer db.Close()
		if err := pingDatabase(ctx, db); err != nil {
			return fail(SourceUnavailable, err, "could not ping source %v", cmd.Source)
		}
		log.Infof("success")
	}

	if cmd.Target.Host != "" {
		log.Infof("pinging target")
		db, err := cmd.Target.DB()
		if err != nil {
			return errors.WithStack(err)
		}
		defer db.Close()
		if err := pingDatabase(ctx, db); err != nil {
			return fail(DestinationUnavailable, err, "could not ping target %v", cmd.Target)
		}
		log.Infof("success")
	}

	return nil
}

func pingDatabase(ctx context.Context, db *sql.DB) error {
	if err := db.PingContext(ctx); err != nil {
		return errors.WithStack(err)
	}
	var one int
	row := db.QueryRowContext(ctx, "SELECT 1")
	if err := row.Scan(&one); err != nil {
		return errors.WithStack(err)
	}
	if one != 1 {
		return errors.Errorf("unexpected ping result: %d", one)
	}
	return nil
}
