package client

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sqlexpr/sqlexpr/dialect"
)

func TestRebind(t *testing.T) {
	tests := []struct {
		name string
		d    dialect.Dialect
		in   string
		want string
	}{
		{
			name: "postgres numbered",
			d:    dialect.Postgres(),
			in:   `SELECT "T1"."id" FROM "users" "T1" WHERE ("T1"."age" >= %s AND "T1"."age" < %s)`,
			want: `SELECT "T1"."id" FROM "users" "T1" WHERE ("T1"."age" >= $1 AND "T1"."age" < $2)`,
		},
		{
			name: "mysql question marks",
			d:    dialect.MySQL(),
			in:   "SELECT `T1`.`id` FROM `users` `T1` WHERE `T1`.`name` = %s",
			want: "SELECT `T1`.`id` FROM `users` `T1` WHERE `T1`.`name` = ?",
		},
		{
			name: "modulo unescaped",
			d:    dialect.SQLite(),
			in:   "(%s %% %s)",
			want: "(? % ?)",
		},
		{
			name: "trailing percent preserved",
			d:    dialect.MySQL(),
			in:   "100%",
			want: "100%",
		},
		{
			name: "no placeholders",
			d:    dialect.Postgres(),
			in:   "SELECT 1",
			want: "SELECT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.d, tt.in))
		})
	}
}

func TestDriverFor(t *testing.T) {
	assert.Equal(t, "postgres", driverFor("postgresql"))
	assert.Equal(t, "mysql", driverFor("mysql"))
	assert.Equal(t, "sqlite3", driverFor("sqlite"))
	assert.Equal(t, "", driverFor("mssql"))
}
