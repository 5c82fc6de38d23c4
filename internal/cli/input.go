package cli

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/oplozada/estadistica/internal/adapters/loader"
	"github.com/oplozada/estadistica/internal/domain/ranking"
	"github.com/oplozada/estadistica/internal/domain/types"

	"github.com/spf13/pflag"
)

// inputOptions are shared by the commands that read a score matrix.
type inputOptions struct {
	delimiter string
	header    bool
	comment   string
	ascending bool
}

func (o *inputOptions) addFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&o.delimiter, "delimiter", "d", ",", "Field delimiter")
	flags.BoolVar(&o.header, "header", false, "Skip the first line")
	flags.StringVar(&o.comment, "comment", "#", "Lines starting with this character are ignored; empty disables")
	flags.BoolVar(&o.ascending, "ascending", false, "Give rank 1 to the smallest score")
}

func (o *inputOptions) order() ranking.Order {
	if o.ascending {
		return ranking.Ascending
	}
	return ranking.Descending
}

func singleRune(name, s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) {
		return 0, fmt.Errorf("--%s must be a single character, got %q", name, s)
	}
	return r, nil
}

// readMatrix reads the CSV named by args ("-" or nothing for stdin).
func (o *inputOptions) readMatrix(stdin io.Reader, args []string) ([]types.ScoreRow, string, error) {
	comma, err := singleRune("delimiter", o.delimiter)
	if err != nil {
		return nil, "", err
	}
	comment, err := singleRune("comment", o.comment)
	if err != nil {
		return nil, "", err
	}

	source := "-"
	r := stdin
	if len(args) > 0 && args[0] != "-" {
		source = args[0]
		f, err := os.Open(source)
		if err != nil {
			return nil, "", fmt.Errorf("open scores: %w", err)
		}
		defer f.Close()
		r = f
	}

	rows, err := loader.ParseCSV(r,
		loader.WithComma(comma),
		loader.WithComment(comment),
		loader.WithHeader(o.header),
	)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", source, err)
	}
	return rows, source, nil
}
