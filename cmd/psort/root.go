package main

import (
	"bufio"

	"github.com/king54346/TimSort/TimSort"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/xerrors"
)

var errUnsorted = xerrors.New("psort: input is not sorted")

type options struct {
	numeric     bool
	key         int
	reverse     bool
	check       bool
	parallelism int
	granularity int
	verbose     bool
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:          "psort [flags] [file...]",
		Short:        "Sort lines of text with a parallel stable merge sort",
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd, args)
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&o.numeric, "numeric", "n", false, "compare by the leading numeric value of the key")
	f.IntVarP(&o.key, "key", "k", 0, "1-based whitespace separated field to sort by, 0 for the whole line")
	f.BoolVarP(&o.reverse, "reverse", "r", false, "sort in descending order")
	f.BoolVarP(&o.check, "check", "c", false, "only check that the input is sorted")
	f.IntVarP(&o.parallelism, "parallelism", "p", 0, "parallelism used to size leaf tasks, 0 for GOMAXPROCS")
	f.IntVarP(&o.granularity, "granularity", "g", 0, "force the leaf size and the parallel path, 0 for automatic")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log the sort strategy to stderr")
	return cmd
}

func (o *options) run(cmd *cobra.Command, args []string) error {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if o.key < 0 {
		return xerrors.Errorf("psort: invalid key %d", o.key)
	}
	texts, err := readInputs(cmd.Context(), cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	lines := lo.Map(texts, o.parse)
	cmp := o.comparator()
	logger.Debug("psort: input read", "files", len(args), "lines", len(lines))

	if o.check {
		for i := 1; i < len(lines); i++ {
			if cmp(lines[i-1], lines[i]) > 0 {
				return xerrors.Errorf("line %d %q: %w", i+1, lines[i].text, errUnsorted)
			}
		}
		return nil
	}

	opts := []TimSort.Option{TimSort.WithLogger(logger)}
	if o.parallelism > 0 {
		opts = append(opts, TimSort.WithParallelism(o.parallelism))
	}
	if o.granularity > 0 {
		opts = append(opts, TimSort.WithGranularity(o.granularity))
	}
	if err := TimSort.ParallelSortFunc(lines, cmp, opts...); err != nil {
		return err
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	for _, l := range lines {
		w.WriteString(l.text)
		w.WriteByte('\n')
	}
	return w.Flush()
}
