package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/blimu-dev/stripegen/internal/cli"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("stripe-gen: ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var (
		verbose bool
		started bool
		logger  *slog.Logger
	)
	root := &cobra.Command{
		Use:           "stripe-gen",
		Short:         "Generate a typed Go client from the Stripe OpenAPI document",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			started = true
			logger = cli.NewLogger(os.Stderr, verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every stage at debug level")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &cli.UsageError{Err: err}
	})

	logFn := func() *slog.Logger { return logger }
	root.AddCommand(newGenerateCmd(logFn))
	root.AddCommand(newValidateCmd(logFn))
	root.AddCommand(newWatchCmd(logFn))

	err := root.ExecuteContext(ctx)
	if err != nil && !started {
		// Cobra rejected the command line before any command ran.
		err = &cli.UsageError{Err: err}
	}
	if err != nil {
		log.Println(err)
	}
	stop()
	os.Exit(cli.ExitCode(err))
}

func specArg(cmd *cobra.Command, args []string) error {
	if err := cobra.MaximumNArgs(1)(cmd, args); err != nil {
		return &cli.UsageError{Err: err}
	}
	return nil
}

func bindFlags(cmd *cobra.Command, p *cli.Params) {
	f := cmd.Flags()
	f.StringVarP(&p.ConfigPath, "config", "c", "", "Path to stripe-gen.yaml config")
	f.StringVarP(&p.OutDir, "out", "o", "", "Output directory (default: current directory)")
	f.StringVar(&p.IDPrefixes, "id-prefixes", "", "id_prefixes.json table")
	f.StringArrayVar(&p.Overrides, "overrides", nil, "Additional override file, later files win (repeatable)")
	f.StringVar(&p.Include, "include", "", "Regex over component paths to generate")
	f.StringVar(&p.Module, "module", "", "Import path of the output directory")
	f.StringVar(&p.Runtime, "runtime", "", "Import path of the runtime package")
	f.StringArrayVar(&p.Targets, "target", nil, "Generator to run: go or plan (repeatable)")
	f.IntVarP(&p.Jobs, "jobs", "j", 0, "Worker count (default: GOMAXPROCS)")
	f.BoolVar(&p.MinSer, "min-ser", false, "Emit min-ser decoders behind the stripe_miniser build tag")
	f.BoolVar(&p.GoMod, "go-mod", false, "Emit go.mod at the output root")
	f.BoolVar(&p.SelfCheck, "self-check", false, "Render twice and fail on any difference")
	f.BoolVar(&p.ValidateSpec, "validate", false, "Run OpenAPI validation on the document")
}

func newGenerateCmd(logger func() *slog.Logger) *cobra.Command {
	var p cli.Params
	cmd := &cobra.Command{
		Use:   "generate [spec]",
		Short: "Generate the client packages",
		Args:  specArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Spec = args[0]
			}
			return cli.RunGenerate(cmd.Context(), p, cmd.OutOrStdout(), logger())
		},
	}
	bindFlags(cmd, &p)
	cmd.Flags().BoolVar(&p.Check, "check", false, "Print a diff against the output directory instead of writing; exit 2 on drift")
	return cmd
}

func newValidateCmd(logger func() *slog.Logger) *cobra.Command {
	var p cli.Params
	cmd := &cobra.Command{
		Use:   "validate [spec]",
		Short: "Load, infer and plan without writing any output",
		Args:  specArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Spec = args[0]
			}
			return cli.RunValidate(cmd.Context(), p, logger())
		},
	}
	bindFlags(cmd, &p)
	return cmd
}

func newWatchCmd(logger func() *slog.Logger) *cobra.Command {
	var p cli.Params
	cmd := &cobra.Command{
		Use:   "watch [spec]",
		Short: "Regenerate whenever the document or an override file changes",
		Args:  specArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				p.Spec = args[0]
			}
			return cli.RunWatch(cmd.Context(), p, cmd.OutOrStdout(), logger())
		},
	}
	bindFlags(cmd, &p)
	return cmd
}
