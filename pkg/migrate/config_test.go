package migrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "litehouse.toml")
	err := os.WriteFile(file, []byte(`
[table.customers]
ignore_columns = ["password_hash"]
source_where = "deleted = 0"
`), 0644)
	require.NoError(t, err)

	config := LoaderConfig{ConfigFile: file}
	require.NoError(t, config.LoadConfig())
	assert.Equal(t, []string{"password_hash"}, config.Config.Tables["customers"].IgnoreColumns)
	assert.Equal(t, "deleted = 0", config.Config.Tables["customers"].SourceWhere)
	// tables without an entry get the zero config
	assert.Equal(t, TableConfig{}, config.Config.Tables["orders"])
}

func TestLoadConfigNoFile(t *testing.T) {
	config := LoaderConfig{}
	assert.NoError(t, config.LoadConfig())
}
