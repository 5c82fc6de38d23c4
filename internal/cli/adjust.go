package cli

import (
	"github.com/oplozada/estadistica/internal/adapters/render"
	"github.com/oplozada/estadistica/internal/domain/ranking"

	"github.com/spf13/cobra"
)

type adjustOptions struct {
	input inputOptions
}

func newAdjustCommand() *cobra.Command {
	var opts adjustOptions

	cmd := &cobra.Command{
		Use:   "adjust [FILE|-]",
		Short: "Print the midrank matrix and tie-correction term of every rater",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, _, err := opts.input.readMatrix(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			matrix, err := ranking.AdjustAll(rows, ranking.WithOrder(opts.input.order()))
			if err != nil {
				return err
			}
			if err := render.WriteMatrix(cmd.OutOrStdout(), matrix); err != nil {
				return err
			}
			var total float64
			for _, row := range matrix {
				total += row.TieCorrection()
			}
			return writeLine(cmd.OutOrStdout(), "rank order: %s, total tie correction: %g", opts.input.order(), total)
		},
	}

	opts.input.addFlags(cmd.Flags())
	return cmd
}
