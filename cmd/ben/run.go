package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/benlang/ben/builtins"
	"github.com/benlang/ben/bytecode"
	"github.com/benlang/ben/errz"
	"github.com/benlang/ben/trace"
	"github.com/benlang/ben/vm"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var runCmd = &cobra.Command{
	Use:     "run FILE",
	Short:   "Run a bytecode program to completion",
	Args:    cobra.ExactArgs(1),
	PreRunE: bindFlags,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		prog, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		return runProgram(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], prog, runConfig{
			noOutput: viper.GetBool("no-output"),
			maxSteps: viper.GetInt("max-steps"),
			traceDB:  viper.GetString("trace-db"),
			output:   viper.GetString("output"),
		})
	},
}

func init() {
	flags := runCmd.Flags()
	flags.Bool("no-output", false, "Suppress the effects of outputting builtins")
	flags.Int("max-steps", 0, "Stop after this many instructions (0 for no limit)")
	flags.String("trace-db", "", "Record execution events to this SQLite database")
	flags.StringP("output", "o", "", "Output format for the result: json or text")
	runCmd.RegisterFlagCompletionFunc("output", cobra.FixedCompletions(outputFormatsCompletion, cobra.ShellCompDirectiveNoFileComp))
}

type runConfig struct {
	noOutput bool
	maxSteps int
	traceDB  string
	output   string
}

func runProgram(ctx context.Context, stdout, stderr io.Writer, name string, prog *bytecode.Program, cfg runConfig) error {
	logger := newLogger()
	opts := []vm.Option{vm.WithLogger(logger), vm.WithMaxSteps(cfg.maxSteps)}
	if cfg.noOutput {
		opts = append(opts, vm.WithNoOutputting())
	}
	var rec *trace.Recorder
	if cfg.traceDB != "" {
		var err error
		rec, err = trace.NewRecorder(name)
		if err != nil {
			return err
		}
		opts = append(opts, vm.WithObserver(rec))
	}

	m := vm.New(opts...)
	final, runErr := m.Complete(ctx, vm.NewState(prog.Source, prog.Main, builtins.Builtins()))
	for _, line := range final.Output() {
		fmt.Fprintln(stdout, line)
	}

	if rec != nil {
		if err := saveTrace(ctx, cfg.traceDB, rec, final); err != nil {
			return err
		}
		logger.Info().Str("session", rec.ID()).Str("db", cfg.traceDB).Msg("trace saved")
	}
	if runErr != nil {
		return fmt.Errorf("stopped after %d steps: %w", final.Steps(), runErr)
	}
	if exc := final.Exception(); exc != nil {
		fmt.Fprint(stderr, errz.NewFormatter(!color.NoColor).Format(exc, prog.Source))
		return errCrashed
	}
	result, ok := final.Result()
	if !ok {
		return nil
	}
	out, err := getOutput(result, cfg.output)
	if err != nil {
		return err
	}
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	return nil
}

func saveTrace(ctx context.Context, path string, rec *trace.Recorder, final *vm.State) error {
	// Save even when the run was interrupted.
	ctx = context.WithoutCancel(ctx)
	store, err := trace.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveRecorder(ctx, rec, final)
}
