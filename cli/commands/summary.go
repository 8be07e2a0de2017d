package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/sqlgen"
	"github.com/satishbabariya/dwq/query/summary"
	"github.com/satishbabariya/dwq/runtime/client"
)

func newLenCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "len",
		Short: "Count the rows of the query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf, summary.LenQuery,
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					n, err := c.Summary().Len(ctx, q)
					if err != nil {
						return err
					}
					ui.PrintValue("len", n)
					return nil
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newColsCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "cols",
		Short: "List the column names of the query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf, summary.ColsQuery,
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					cols, err := c.Summary().Cols(ctx, q)
					if err != nil {
						return err
					}
					rows := make([][]string, len(cols))
					for i, col := range cols {
						rows[i] = []string{strconv.Itoa(i + 1), col}
					}
					return ui.PrintTable([]string{"#", "column"}, rows)
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newTopCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the first row of the query, one column per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf, summary.TopQuery,
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					row, err := c.Summary().Top(ctx, q)
					if err != nil {
						return err
					}
					rows := make([][]string, len(row.Columns))
					for i, col := range row.Columns {
						rows[i] = []string{col, ui.Format(row.Values[i])}
					}
					return ui.PrintTable([]string{"column", "value"}, rows)
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newHeadCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "head [n]",
		Short: "Show the first n rows of the query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := o.Config.HeadRows
			if len(args) == 1 {
				var err error
				if n, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid row count %q", args[0])
				}
			}
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.HeadQuery(q, n) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					t, err := c.Summary().Head(ctx, q, n)
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

func newDistCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "dist [columns...]",
		Short: "Count distinct rows, or distinct combinations of the columns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.DistQuery(q, args...) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					n, err := c.Summary().Dist(ctx, q, args...)
					if err != nil {
						return err
					}
					ui.PrintValue("dist", n)
					return nil
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newMimxCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "mimx <column>",
		Short: "Show the minimum and maximum of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.MimxQuery(q, args[0]) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					mm, err := c.Summary().Mimx(ctx, q, args[0])
					if err != nil {
						return err
					}
					return ui.PrintTable([]string{"mn", "mx"}, [][]string{{ui.Format(mm.Min), ui.Format(mm.Max)}})
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newValcCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	spec := summary.ValcSpec{}
	cmd := &cobra.Command{
		Use:   "valc <columns...>",
		Short: "Count rows per combination of the columns",
		Long: `Count rows per combination of the columns.

Rows are sorted by the count descending, then by the columns. Extra aggregates
are computed per group with --agg; --order replaces the ordering.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec.GroupBy = args
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.ValcQuery(q, spec) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					t, err := c.Summary().Valc(ctx, q, spec)
					if err != nil {
						return err
					}
					return ui.PrintResult(t)
				})
		},
	}
	qf.register(cmd)
	cmd.Flags().StringArrayVar(&spec.Agg, "agg", nil, "extra aggregate, e.g. \"avg(score) AS mean\" (repeatable)")
	cmd.Flags().StringArrayVar(&spec.OrderBy, "order", nil, "order of the result (repeatable)")
	cmd.Flags().BoolVar(&spec.NoCount, "no-count", false, "omit the n column")
	return cmd
}

func newPivCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	spec := summary.PivSpec{}
	cmd := &cobra.Command{
		Use:   "piv",
		Short: "Count rows per pair of columns and show them as a matrix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) {
					return summary.ValcQuery(q, summary.ValcSpec{GroupBy: []string{spec.Index, spec.Columns}, Agg: spec.Agg})
				},
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					p, err := c.Summary().Piv(ctx, q, spec)
					if err != nil {
						return err
					}
					return printPivot(p)
				})
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&spec.Index, "index", "", "column whose values become rows")
	cmd.Flags().StringVar(&spec.Columns, "columns", "", "column whose values become columns")
	cmd.Flags().StringArrayVar(&spec.Agg, "agg", nil, "extra aggregate per cell, e.g. \"avg(score) AS mean\" (repeatable)")
	cmd.Flags().StringArrayVar(&spec.Values, "values", nil, "result columns that fill the cells (default n)")
	_ = cmd.MarkFlagRequired("index")
	_ = cmd.MarkFlagRequired("columns")
	return cmd
}

func printPivot(p *summary.Pivot) error {
	for _, val := range p.Values {
		if len(p.Values) > 1 {
			ui.PrintSection(val)
		}
		headers := []string{p.Index}
		for _, k := range p.ColKeys {
			headers = append(headers, ui.Format(k))
		}
		rows := make([][]string, len(p.RowKeys))
		for i, rk := range p.RowKeys {
			row := []string{ui.Format(rk)}
			for j := range p.ColKeys {
				cell := ""
				if c := p.At(val, i, j); c.Present {
					cell = ui.Format(c.Value)
				}
				row = append(row, cell)
			}
			rows[i] = row
		}
		if err := ui.PrintTable(headers, rows); err != nil {
			return err
		}
	}
	return nil
}

func newFiveCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "five <column>",
		Short: "Show the five-number summary of a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.FiveQuery(q, args[0]) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					f, err := c.Summary().Five(ctx, q, args[0])
					if err != nil {
						return err
					}
					return ui.PrintTable(
						[]string{"min", "q1", "median", "q3", "max"},
						[][]string{{ui.Format(f.Min), ui.Format(f.Q1), ui.Format(f.Median), ui.Format(f.Q3), ui.Format(f.Max)}},
					)
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newPctCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "pct <column> <p...>",
		Short: "Show continuous percentiles of a column, p in [0, 1]",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			col := args[0]
			points, err := parseFloats(args[1:])
			if err != nil {
				return err
			}
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.PctQuery(q, col, points...) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					qs, err := c.Summary().Pct(ctx, q, col, points...)
					if err != nil {
						return err
					}
					rows := make([][]string, len(qs))
					for i, qt := range qs {
						rows[i] = []string{ui.Format(qt.P), ui.Format(qt.Value)}
					}
					return ui.PrintTable([]string{"p", col}, rows)
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func newBinCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	var lo, hi float64
	cmd := &cobra.Command{
		Use:   "bin <column> [n]",
		Short: "Show a histogram of a column in n equal-width buckets (default 10)",
		Long: `Show a histogram of a column in n equal-width buckets (default 10).

The range is the column's minimum and maximum, read by a first query. With
--print there is no first query, so --lo and --hi must be given.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			col, n := args[0], 10
			if len(args) == 2 {
				var err error
				if n, err = strconv.Atoi(args[1]); err != nil {
					return fmt.Errorf("invalid bucket count %q", args[1])
				}
			}
			compile := func(q builder.Query) (sqlgen.Query, error) {
				if !cmd.Flags().Changed("lo") || !cmd.Flags().Changed("hi") {
					return sqlgen.Query{}, fmt.Errorf("bin --print needs --lo and --hi")
				}
				return summary.BinQuery(q, col, lo, hi, n)
			}
			return o.template(cmd, qf, compile,
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					bins, err := c.Summary().Bin(ctx, q, col, n)
					if err != nil {
						return err
					}
					rows := make([][]string, len(bins))
					for i, b := range bins {
						rows[i] = []string{strconv.Itoa(b.Index), ui.Format(b.Lo), ui.Format(b.Hi), strconv.FormatInt(b.Count, 10)}
					}
					return ui.PrintTable([]string{"bucket", "lo", "hi", "n"}, rows)
				})
		},
	}
	qf.register(cmd)
	cmd.Flags().Float64Var(&lo, "lo", 0, "lower bound of the range, with --print")
	cmd.Flags().Float64Var(&hi, "hi", 0, "upper bound of the range, with --print")
	return cmd
}

func newHashCommand(o *RootOptions) *cobra.Command {
	qf := &queryFlags{}
	cmd := &cobra.Command{
		Use:   "hash [columns...]",
		Short: "Compute an order-independent checksum of the rows",
		Long: `Compute an order-independent checksum of the rows.

Without columns every column is hashed, which takes an extra query to list
them; --print then needs the columns named.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.template(cmd, qf,
				func(q builder.Query) (sqlgen.Query, error) { return summary.HashQuery(q, args...) },
				func(ctx context.Context, c *client.Client, q builder.Query) error {
					h, err := c.Summary().Hash(ctx, q, args...)
					if err != nil {
						return err
					}
					ui.PrintValue("hash", h)
					return nil
				})
		},
	}
	qf.register(cmd)
	return cmd
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = f
	}
	return out, nil
}
