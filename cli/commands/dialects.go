package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/sqlexpr/sqlexpr/dialect"
)

// NewDialectsCommand lists the registered dialects and their feature flags.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List registered dialects and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := pterm.TableData{
				{"Dialect", "Native duration", "NULLS FIRST/LAST", "EXISTS in SELECT", "Decimal expressions"},
			}
			for _, name := range dialect.Names() {
				d, err := dialect.Get(name)
				if err != nil {
					return err
				}
				f := d.Features()
				rows = append(rows, []string{
					d.Name(),
					yesNo(f.HasNativeDuration),
					yesNo(f.SupportsNullsOrdering),
					yesNo(f.SupportsExistsInSelect),
					yesNo(f.SupportsDecimalExpressions),
				})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
