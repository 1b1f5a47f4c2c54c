package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x String) ENGINE = Memory;

-- second
CREATE TABLE b (y String) ENGINE = Memory;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Equal(t, "CREATE TABLE a (x String) ENGINE = Memory", stmts[0])
	assert.Equal(t, "CREATE TABLE b (y String) ENGINE = Memory", stmts[1])
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b'`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/fxdesk")
	require.NoError(t, err)
	assert.Equal(t, "fxdesk", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	pg, err := sqlFiles(PostgresFS, "postgres")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"001_reference.sql",
		"002_market_rates.sql",
		"003_spread_settings.sql",
		"004_swap_points.sql",
	}, pg)

	ch, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	assert.Equal(t, []string{"001_market_rate_history.sql"}, ch)

	for _, f := range ch {
		data, err := ClickhouseFS.ReadFile("clickhouse/" + f)
		require.NoError(t, err)
		assert.NoError(t, validateNoSemicolonInStrings(string(data)), f)
	}
}
