package client

import (
	"strconv"
	"strings"

	"github.com/sqlexpr/sqlexpr/dialect"
)

// Rebind converts rendered SQL to the dialect's bind style: %s becomes $1,
// $2, ... for postgres and ? elsewhere, and the %% escape collapses back
// to a literal percent.
func Rebind(d dialect.Dialect, sql string) string {
	numbered := d.Name() == "postgres"
	var b strings.Builder
	b.Grow(len(sql))
	n := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] != '%' || i+1 >= len(sql) {
			b.WriteByte(sql[i])
			continue
		}
		switch sql[i+1] {
		case 's':
			n++
			if numbered {
				b.WriteByte('$')
				b.WriteString(strconv.Itoa(n))
			} else {
				b.WriteByte('?')
			}
			i++
		case '%':
			b.WriteByte('%')
			i++
		default:
			b.WriteByte(sql[i])
		}
	}
	return b.String()
}
