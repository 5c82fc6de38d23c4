package cli

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/oplozada/estadistica/internal/adapters/render"
	"github.com/oplozada/estadistica/internal/domain/concordance"
	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/internal/domain/sample"
	"github.com/oplozada/estadistica/internal/domain/types"
	"github.com/oplozada/estadistica/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type evaluateOptions struct {
	input  inputOptions
	alpha  float64
	format string
}

func newEvaluateCommand() *cobra.Command {
	var opts evaluateOptions

	cmd := &cobra.Command{
		Use:   "evaluate [FILE|-]",
		Short: "Evaluate concordance of a CSV score matrix (one rater per line)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, source, err := opts.input.readMatrix(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return runEvaluate(cmd, rows, render.Report{Source: source}, opts.alpha, opts.input.order(), opts.format)
		},
	}

	flags := cmd.Flags()
	opts.input.addFlags(flags)
	addReportFlags(flags, &opts.alpha, &opts.format, concordance.DefaultAlpha)
	return cmd
}

type demoOptions struct {
	alpha  float64
	format string
}

func newDemoCommand() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Evaluate the built-in panel of 15 judges scoring 9 candidates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report := render.Report{Title: "Judges panel (15 raters, 9 objects)"}
			return runEvaluate(cmd, sample.Judges(), report, opts.alpha, ranking.Descending, opts.format)
		},
	}

	addReportFlags(cmd.Flags(), &opts.alpha, &opts.format, sample.DemoAlpha)
	return cmd
}

type simulateOptions struct {
	raters  int
	objects int
	seed    int64
	alpha   float64
	format  string
}

func newSimulateCommand() *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Evaluate raters that rank objects independently at random",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.raters < 1 || opts.objects < 2 {
				return errors.New("simulate needs at least 1 rater and 2 objects")
			}
			seed := opts.seed
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			rows := sample.Random(rand.New(rand.NewSource(seed)), opts.raters, opts.objects)
			report := render.Report{Title: fmt.Sprintf("Random raters (seed %d)", seed)}
			return runEvaluate(cmd, rows, report, opts.alpha, ranking.Descending, opts.format)
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.raters, "raters", 20, "Number of raters")
	flags.IntVar(&opts.objects, "objects", 10, "Number of objects")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed (0 picks one from the clock)")
	addReportFlags(flags, &opts.alpha, &opts.format, concordance.DefaultAlpha)
	return cmd
}

func addReportFlags(flags *pflag.FlagSet, alpha *float64, format *string, defaultAlpha float64) {
	flags.Float64Var(alpha, "alpha", defaultAlpha, "Significance level in (0, 1)")
	flags.StringVarP(format, "format", "o", render.FormatText, "Output format (text, json, yaml)")
}

func runEvaluate(cmd *cobra.Command, rows []types.ScoreRow, report render.Report, alpha float64, order ranking.Order, format string) error { //nolint:gocritic // hugeParam: report is filled in here
	ctx := cmd.Context()
	res, err := concordance.EvaluateScores(rows, alpha, ranking.WithOrder(order))
	if err != nil {
		return err
	}
	logger.Get().Named("cli").Debug(ctx, "evaluated",
		logger.Int("raters", res.Raters), logger.Int("objects", res.N), logger.Float64("w", res.W))

	report.Result = res
	report.Order = order.String()
	return render.Write(cmd.OutOrStdout(), format, report)
}

// writeLine is used by commands that print a trailing summary.
func writeLine(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format+"\n", args...)
	return err
}
