package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/config"
	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/cli/internal/watch"
	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/result"
	"github.com/satishbabariya/dwq/query/script"
	"github.com/satishbabariya/dwq/runtime/client"
)

// RunOptions holds flags for the run command
type RunOptions struct {
	*RootOptions
	Params []string
	Watch  bool
}

func newRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <file.sql>",
		Short: "Run a SQL script with :name parameters",
		Long: `Run a SQL script with :name parameters.

Parameters are replaced textually before the script is sent, in code and in
string literals; comments and :: casts are left alone. Statements are split on
semicolons and run in order; the rows of the last statement are shown.

Example:
  dwq run extract.sql --param label=20220303 --param threshold=5
  dwq run report.sql --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(cmd.Context(), opts, args[0])
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Params, "param", "p", nil, "parameter as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "run again whenever the file changes")
	return cmd
}

func runScript(ctx context.Context, opts *RunOptions, path string) error {
	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	if opts.Print {
		stmts, err := loadStatements(path, params)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			fmt.Fprintln(ui.Out, s+";")
		}
		return nil
	}

	c, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	once := func() error {
		t, err := execScript(ctx, c, path, params)
		if err != nil {
			return err
		}
		return ui.PrintResult(t)
	}
	if !opts.Watch {
		return once()
	}

	w, err := watch.NewWatcher(path, once, watch.WithErrorHandler(func(err error) {
		ui.PrintError("%v", err)
	}))
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	ui.PrintSection(fmt.Sprintf("watching %s, ctrl-c to stop", path))
	<-ctx.Done()
	return w.Stop()
}

func loadStatements(path string, params map[string]string) ([]string, error) {
	s, err := script.Load(config.AppFs, path)
	if err != nil {
		return nil, err
	}
	return s.Statements(params)
}

// execScript runs every statement of the script and returns the result of
// the last one
func execScript(ctx context.Context, c *client.Client, path string, params map[string]string) (*result.Table, error) {
	stmts, err := loadStatements(path, params)
	if err != nil {
		return nil, err
	}
	var last *result.Table
	for i, s := range stmts {
		debug.Debug("running statement", "n", i+1, "of", len(stmts))
		if last, err = c.Exec(ctx, s); err != nil {
			return nil, fmt.Errorf("statement %d: %w", i+1, err)
		}
	}
	return last, nil
}

func parseParams(raw []string) (map[string]string, error) {
	params := make(map[string]string, len(raw))
	for _, p := range raw {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), ":")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", p)
		}
		params[name] = value
	}
	return params, nil
}
