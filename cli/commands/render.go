package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqlexpr/sqlexpr/cli/internal/ui"
	"github.com/sqlexpr/sqlexpr/client"
	"github.com/sqlexpr/sqlexpr/compiler"
	"github.com/sqlexpr/sqlexpr/expr"
	"github.com/sqlexpr/sqlexpr/query"
	"github.com/sqlexpr/sqlexpr/types"
)

// demo is a named query built over the sample schema.
type demo struct {
	name  string
	about string
	build func() *query.Select
}

func sampleTable() *query.Select {
	return query.NewSelect("events").
		Field("id", types.BigInteger).
		Field("name", types.Text).
		Field("duration", types.Duration).
		Field("started_at", types.DateTime).
		Field("finished_at", types.DateTime).
		Field("score", types.Float)
}

func demos() []demo {
	return []demo{
		{
			name:  "arithmetic",
			about: "combined arithmetic over columns and literals",
			build: func() *query.Select {
				return sampleTable().
					Columns("id").
					Annotate("boosted", expr.NewF("score").Add(10).Mul(expr.NewF("score")))
			},
		},
		{
			name:  "duration",
			about: "datetime plus duration, rewritten per dialect",
			build: func() *query.Select {
				return sampleTable().
					Columns("id").
					Annotate("deadline", expr.NewF("started_at").Add(48*time.Hour))
			},
		},
		{
			name:  "temporal-diff",
			about: "datetime subtraction producing a duration",
			build: func() *query.Select {
				return sampleTable().
					Columns("id").
					Annotate("elapsed", expr.NewF("finished_at").Sub(expr.NewF("started_at")))
			},
		},
		{
			name:  "case",
			about: "searched CASE with a filtered branch",
			build: func() *query.Select {
				won, _ := expr.NewWhen(query.GTE("score", 90.0), expr.NewValue("gold"))
				placed, _ := expr.NewWhen(query.GTE("score", 75.0), expr.NewValue("silver"))
				return sampleTable().
					Columns("id").
					Annotate("medal", expr.NewCase([]*expr.When{won, placed}, expr.NewValue("none")))
			},
		},
		{
			name:  "ordering",
			about: "descending order with NULLS LAST, emulated where needed",
			build: func() *query.Select {
				o, _ := expr.NewOrderBy(expr.NewF("score"), expr.OrderByOptions{Descending: true, NullsLast: true})
				return sampleTable().Columns("id", "name").OrderBy(o)
			},
		},
		{
			name:  "subquery",
			about: "correlated EXISTS against a second table",
			build: func() *query.Select {
				attempts := query.NewSelect("attempts").
					Field("id", types.BigInteger).
					Field("event_id", types.BigInteger).
					Filter(query.Exact("event_id", expr.NewOuterRef("id")))
				return sampleTable().
					Columns("id", "name").
					Annotate("attempted", expr.NewExists(attempts))
			},
		},
	}
}

// NewRenderCommand renders the built-in demo queries against a dialect.
func NewRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render [demo]",
		Short: "Render built-in demo queries for a dialect",
		Long:  "Renders one of the built-in demo queries (or all of them) to parametrized SQL for the chosen dialect.",
		RunE: func(cmd *cobra.Command, args []string) error {
			dialectName, _ := cmd.Flags().GetString("dialect")
			comp, err := compiler.ForDialect(dialectName)
			if err != nil {
				return err
			}

			selected := demos()
			if len(args) > 0 {
				selected = nil
				for _, d := range demos() {
					if d.name == args[0] {
						selected = []demo{d}
					}
				}
				if selected == nil {
					return fmt.Errorf("unknown demo %q", args[0])
				}
			}

			ui.PrintHeader("sqlexpr", comp.Dialect().Name())
			for _, d := range selected {
				q := d.build()
				sql, params, err := q.SQL(comp)
				if err != nil {
					ui.PrintError("%s: %v", d.name, err)
					continue
				}
				ui.PrintSection(d.name, d.about)
				ui.PrintSQL(client.Rebind(comp.Dialect(), sql), params)
			}
			return nil
		},
	}
}
