package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	log "github.com/sirupsen/logrus"

	"litehouse/pkg/migrate"
)

const logTimestampFormat = `2006-01-02T15:04:05.000`

var cli struct {
	Migrate migrate.Migrate `cmd:"" help:"Migrate every table of a SQLite database into ClickHouse"`
	Ping    migrate.Ping    `cmd:"" help:"Ping the databases to check the config is right"`

	MetricsPort int `help:"Which port to publish metrics and debugging info to" default:"9102"`
}

// metricsBindAddr binds all interfaces inside a pod, loopback only when
// running locally.
func metricsBindAddr() string {
	if os.Getenv("KUBERNETES_PORT") != "" {
		return fmt.Sprintf(":%d", cli.MetricsPort)
	}
	return fmt.Sprintf("localhost:%d", cli.MetricsPort)
}

func startMetricsServer() {
	go func() {
		addr := metricsBindAddr()
		log.Infof("metrics on http://%s/metrics, pprof on http://%s/debug/pprof", addr, addr)
		http.Handle("/metrics", promhttp.Handler())
		log.Fatalf("%v", http.ListenAndServe(addr, nil))
	}()
}

// utcFormatter normalizes entry timestamps to UTC before handing them to the
// wrapped formatter.
type utcFormatter struct {
	log.Formatter
}

func (u utcFormatter) Format(e *log.Entry) ([]byte, error) {
	e.Time = e.Time.UTC()
	return u.Formatter.Format(e)
}

func setupLogging() {
	log.SetFormatter(&utcFormatter{&log.JSONFormatter{
		TimestampFormat: logTimestampFormat,
		FieldMap: log.FieldMap{
			log.FieldKeyMsg:  "message",
			log.FieldKeyTime: "timestamp",
		},
	}})
}

func main() {
	ctx := kong.Parse(&cli)

	setupLogging()
	startMetricsServer()

	// Call the Run() method of the selected parsed command. A failure here
	// means we could not even reach one of the two databases, individual
	// table failures are reported in the logged summary and exit zero.
	err := ctx.Run()
	if err != nil {
		log.Errorf("%+v", err)
	}
	ctx.FatalIfErrorf(err)
}
