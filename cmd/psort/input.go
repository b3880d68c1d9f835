package main

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

const maxLineSize = 1 << 20

// readInputs returns the lines of the named files in argument order, or of
// stdin when no file is named. Files are read concurrently.
func readInputs(ctx context.Context, stdin io.Reader, names []string) ([]string, error) {
	if len(names) == 0 {
		lines, err := readLines(stdin)
		if err != nil {
			return nil, xerrors.Errorf("psort: read stdin: %w", err)
		}
		return lines, nil
	}

	chunks := make([][]string, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(name)
			if err != nil {
				return xerrors.Errorf("psort: %w", err)
			}
			defer f.Close()
			lines, err := readLines(f)
			if err != nil {
				return xerrors.Errorf("psort: read %s: %w", name, err)
			}
			chunks[i] = lines
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lo.Flatten(chunks), nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
