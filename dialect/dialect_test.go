package dialect_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlexpr/sqlexpr/dialect"
	"github.com/sqlexpr/sqlexpr/types"
)

func TestGet(t *testing.T) {
	for _, name := range dialect.Names() {
		d, err := dialect.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, d.Name())
	}

	// Aliases map to the same backends.
	d, err := dialect.Get("postgresql")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
	d, err = dialect.Get("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())
	d, err = dialect.Get("sqlserver")
	require.NoError(t, err)
	assert.Equal(t, "mssql", d.Name())

	_, err = dialect.Get("oracle")
	assert.Error(t, err)
}

func TestQuoteName(t *testing.T) {
	tests := []struct {
		dialectName string
		want        string
	}{
		{"postgres", `"name"`},
		{"mysql", "`name`"},
		{"sqlite", `"name"`},
		{"mssql", "[name]"},
	}
	for _, tt := range tests {
		t.Run(tt.dialectName, func(t *testing.T) {
			d, err := dialect.Get(tt.dialectName)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.QuoteName("name"))
			// Already-quoted names pass through.
			assert.Equal(t, tt.want, d.QuoteName(tt.want))
		})
	}
}

func TestFeatures(t *testing.T) {
	pg, _ := dialect.Get("postgres")
	assert.True(t, pg.Features().HasNativeDuration)
	assert.True(t, pg.Features().SupportsNullsOrdering)

	my, _ := dialect.Get("mysql")
	assert.False(t, my.Features().HasNativeDuration)
	assert.False(t, my.Features().SupportsNullsOrdering)

	sq, _ := dialect.Get("sqlite")
	assert.False(t, sq.Features().SupportsDecimalExpressions)

	ms, _ := dialect.Get("mssql")
	assert.False(t, ms.Features().SupportsExistsInSelect)
}

func TestDurationIntervalSQL(t *testing.T) {
	my, _ := dialect.Get("mysql")
	sql, params := my.DurationIntervalSQL(time.Second)
	assert.Equal(t, "INTERVAL %s MICROSECOND", sql)
	assert.Equal(t, []any{int64(1000000)}, params)

	pg, _ := dialect.Get("postgres")
	sql, params = pg.DurationIntervalSQL(time.Second)
	assert.Equal(t, "%s", sql)
	assert.Equal(t, []any{int64(1000000)}, params)
}

func TestUnificationCastSQL(t *testing.T) {
	sq, _ := dialect.Get("sqlite")
	assert.Equal(t, "CAST(%s AS NUMERIC)", sq.UnificationCastSQL(types.Decimal))
	assert.Equal(t, "%s", sq.UnificationCastSQL(types.Integer))

	ms, _ := dialect.Get("mssql")
	assert.Equal(t, "CAST(%s AS BIGINT)", ms.UnificationCastSQL(types.BigInteger))
	assert.Equal(t, "%s", ms.UnificationCastSQL(types.Duration))
}
