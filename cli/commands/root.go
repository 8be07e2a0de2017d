// Package commands implements the dwq command line.
package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/dwq/cli/internal/config"
	"github.com/satishbabariya/dwq/cli/internal/ui"
	"github.com/satishbabariya/dwq/cli/internal/version"
	"github.com/satishbabariya/dwq/internal/debug"
)

// RootOptions holds global flags and the configuration they resolve to
type RootOptions struct {
	URL     string
	Dialect string
	Debug   bool
	Print   bool
	Timing  bool
	NoColor bool

	Config *config.Config
}

// Execute is the main entry point for the CLI
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dwq",
		Short: "Summarise database tables with dialect-aware SQL templates",
		Long: `dwq builds a query from clause flags and runs summary templates over it.

The query becomes the common table expression x; each template is an outer
query over x. The same flags work on sqlite, postgres, mysql and oracle.

Examples:
  dwq len --table sales --where "region = 'north'"
  dwq valc cat --table test --agg "avg(score) AS mean"
  dwq five score --table test --print --dialect postgres
  dwq run extract.sql --param label=20220303 --watch`,
		Version:       version.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load(cmd)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.URL, "url", "", "database url, e.g. sqlite://data.db (env DWQ_URL or DATABASE_URL)")
	pf.StringVar(&opts.Dialect, "dialect", "", "dialect used by --print when there is no url (sqlite|postgres|mysql|oracle)")
	pf.BoolVar(&opts.Debug, "debug", false, "log generated SQL and timings to stderr")
	pf.BoolVar(&opts.Print, "print", false, "print the generated SQL instead of running it")
	pf.BoolVar(&opts.Timing, "timing", false, "report rows and elapsed time of every statement")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colors")

	cmd.AddCommand(
		newLenCommand(opts),
		newColsCommand(opts),
		newTopCommand(opts),
		newHeadCommand(opts),
		newDistCommand(opts),
		newMimxCommand(opts),
		newValcCommand(opts),
		newPivCommand(opts),
		newFiveCommand(opts),
		newPctCommand(opts),
		newBinCommand(opts),
		newHashCommand(opts),
		newSQLCommand(opts),
		newRunCommand(opts),
		newTablesCommand(opts),
		newExistsCommand(opts),
		newTemplatesCommand(),
		newVersionCommand(),
	)

	return cmd
}

// load resolves flags, environment and config files into o.Config
func (o *RootOptions) load(cmd *cobra.Command) error {
	if o.NoColor {
		ui.DisableStyling()
	}

	v, err := config.New()
	if err != nil {
		return err
	}
	flags := cmd.Root().PersistentFlags()
	for _, name := range []string{"url", "dialect", "debug"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return err
		}
	}

	cfg, err := config.Load(v)
	if err != nil {
		return err
	}
	o.Config = cfg
	debug.Init(cfg.Debug)
	return nil
}
