package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/overproofed/internal/config"
	"github.com/roach88/overproofed/internal/store"
)

// RootOptions holds global state shared by all commands. Config and Logger
// are filled in by the root command before any subcommand runs.
type RootOptions struct {
	Config *config.Config
	Logger *slog.Logger
	Locale string

	printer *message.Printer
}

// NewRootCommand creates the root command for the overproofed CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "overproofed",
		Short: "overproofed - bread recipe calculator",
		Long: `A bread recipe calculator.

Rows of a recipe are tied together by baker's percentages, weights and
sub-mix shares. Give any consistent subset of them and overproofed derives
the rest, one equation at a time.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid configuration", err)
			}
			tag, err := language.Parse(opts.Locale)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid locale %q", opts.Locale), err)
			}
			opts.Config = cfg
			opts.Logger = newLogger(cmd, cfg)
			opts.printer = message.NewPrinter(tag)
			return nil
		},
	}

	config.RegisterFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&opts.Locale, "locale", "en", "locale for number formatting in text output")

	cmd.AddCommand(NewSolveCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewEquationsCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts))
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts))
}

// settings returns the resolved configuration, or the defaults when the root
// command has not run.
func (o *RootOptions) settings() *config.Config {
	if o.Config != nil {
		return o.Config
	}
	return &config.Config{Capacity: config.DefaultCapacity, Format: "text"}
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	cfg := o.settings()
	return &OutputFormatter{
		Format:    cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   cfg.Verbose,
		Printer:   o.printer,
	}
}

// openStore opens the run log. It returns nil without error when no
// database is configured.
func (o *RootOptions) openStore() (*store.Store, error) {
	path := o.settings().DB
	if path == "" {
		return nil, nil
	}
	return store.Open(path)
}
