package migrate

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

type SourceTargetConfig struct {
	Source SourceConfig `help:"Database config of the source to be migrated from" prefix:"source-" embed:""`
	Target TargetConfig `help:"Database config of the target to be migrated into" prefix:"target-" embed:""`
}

type TableConfig struct {
	IgnoreColumns []string `toml:"ignore_columns" help:"Ignore columns in table"`
	SourceWhere   string   `toml:"source_where" help:"Extra where clause that is added on the source"`
}

type Config struct {
	Tables map[string]TableConfig `toml:"table"`
}

// LoaderConfig controls the read/batch/write pipeline, shared between
// commands.
type LoaderConfig struct {
	SourceTargetConfig

	Tables []string `help:"Tables to migrate (if unset will migrate all of them)" optional:""`

	BatchSize   int `help:"Number of rows per insert batch" default:"1000"`
	QueueSize   int `help:"Queue size of the batch queue" default:"100"`
	WriterCount int `help:"Number of concurrent batch writers" default:"10"`

	ConfigFile string `help:"TOML formatted config file" short:"f" optional:"" type:"path"`

	Config Config `kong:"-"`
}

// LoadConfig loads the ConfigFile if specified
func (c *LoaderConfig) LoadConfig() error {
	if c.ConfigFile == "" {
		return nil
	}
	_, err := toml.DecodeFile(c.ConfigFile, &c.Config)
	if err != nil {
		return errors.WithStack(err)
	}
	return nil
}
