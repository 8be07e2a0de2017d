package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/config"
	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/internal/debug"
	"github.com/satishbabariya/dwq/query/builder"
	"github.com/satishbabariya/dwq/query/dialect"
	"github.com/satishbabariya/dwq/query/executor"
	"github.com/satishbabariya/dwq/query/sqlgen"
	"github.com/satishbabariya/dwq/runtime/client"
)

var errNoDialect = errors.New("--print needs --dialect or a database url")

// compileFunc renders a template over q without running it
type compileFunc func(q builder.Query) (sqlgen.Query, error)

// runFunc runs a template over q and prints the result
type runFunc func(ctx context.Context, c *client.Client, q builder.Query) error

// renderDialect is the dialect used to print SQL without connecting
func (o *RootOptions) renderDialect() (dialect.Dialect, error) {
	if o.Config.Dialect != "" {
		return dialect.Resolve(o.Config.Dialect)
	}
	if o.Config.URL != "" {
		t, err := client.ResolveDialect(o.Config.URL)
		return t.Dialect, err
	}
	return dialect.Dialect{}, errNoDialect
}

// connect opens the configured database, asking for a url when none is set
// and stdin is a terminal
func (o *RootOptions) connect(ctx context.Context) (*client.Client, error) {
	url := o.Config.URL
	if url == "" {
		u, save, err := config.PromptURL()
		if err != nil {
			return nil, err
		}
		url = u
		o.Config.URL = u
		if save {
			if file, err := config.Save(o.Config); err != nil {
				ui.PrintWarning("failed to save config: %v", err)
			} else {
				ui.PrintSuccess("saved %s", file)
			}
		}
	}

	var opts []client.Option
	if debug.Enabled() {
		opts = append(opts, client.WithMiddleware(executor.LoggingMiddleware()))
	}
	if o.Timing {
		opts = append(opts, client.WithMiddleware(executor.ReportMiddleware(func(e executor.QueryEvent) {
			ui.PrintTiming(e.Rows, e.Duration, e.Error)
		})))
	}
	c, err := client.Open(ctx, url, opts...)
	if err != nil {
		return nil, err
	}

	if o.Config.Dialect != "" {
		if d, err := dialect.Resolve(o.Config.Dialect); err == nil && d.Name != c.Dialect().Name {
			ui.PrintWarning("dialect %s ignored, the url connects to %s", d.Name, c.Dialect().Name)
		}
	}
	return c, nil
}

// template prints the compiled SQL under --print and runs it otherwise
func (o *RootOptions) template(cmd *cobra.Command, qf *queryFlags, compile compileFunc, run runFunc) error {
	ctx := cmd.Context()

	if o.Print {
		d, err := o.renderDialect()
		if err != nil {
			return err
		}
		q, err := qf.build(d)
		if err != nil {
			return err
		}
		compiled, err := compile(q)
		if err != nil {
			return err
		}
		ui.PrintSQL(compiled)
		return nil
	}

	c, err := o.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	q, err := qf.build(c.Dialect())
	if err != nil {
		return err
	}
	return run(ctx, c, q)
}
