package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/sqlgen"
	"github.com/satishbabariya/dwq/runtime/client"
)

func newSQLCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Run the query built from the clause flags as written",
		Long: `Run the query built from the clause flags as written.

Clauses render in SQL order whatever order the flags are given in. With
--print the statement is shown instead of run.`,
		Example: `  dwq sql -t "test a" -j "other b on a.id = b.id" -s a.cat -s "count(1) n" -g a.cat --print`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf, sqlgen.Compile,
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					t, err := c.Run(ctx, q)
					if err != nil {
						return err
					}
					return ui.PrintResult(t)
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newTablesCommand(o *RootOptions) *cobra.Command {
	var constraints, sizes bool
	cmd := &cobra.Command{
		Use:   "tables [schema.table]",
		Short: "List tables, or the columns of one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := o.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			switch {
			case constraints:
				t, err := c.ListConstraints(ctx)
				if err != nil {
					return err
				}
				return ui.PrintResult(t)
			case sizes:
				t, err := c.TableSizes(ctx)
				if err != nil {
					return err
				}
				return ui.PrintResult(t)
			}

			if len(args) == 0 {
				t, err := c.ListTables(ctx)
				if err != nil {
					return err
				}
				return ui.PrintResult(t)
			}

			cols, err := c.TableCols(ctx, args[0])
			if err != nil {
				return err
			}
			rows := make([][]string, len(cols))
			for i, col := range cols {
				rows[i] = []string{col.Name, col.Type}
			}
			return ui.PrintTable([]string{"column_name", "data_type"}, rows)
		},
	}
	cmd.Flags().BoolVar(&constraints, "constraints", false, "list key constraints instead of tables")
	cmd.Flags().BoolVar(&sizes, "sizes", false, "list table sizes in megabytes")
	cmd.MarkFlagsMutuallyExclusive("constraints", "sizes")
	return cmd
}

func newExistsCommand(o *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exists <schema.table>",
		Short: "Report whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := o.connect(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			ok, err := c.Exists(ctx, args[0])
			if err != nil {
				return err
			}
			ui.PrintValue("exists", ok)
			return nil
		},
	}
}
