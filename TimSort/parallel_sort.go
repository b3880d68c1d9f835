package TimSort

import (
	"github.com/king54346/TimSort/TimSort/fork_join"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

// ParallelSort sorts a in ascending order using a fork/join merge sort.
// Integer slices are sorted with an unstable leaf sort, every other type
// stably. Inputs of at most MIN_ARRAY_SORT_GRAN elements, or a parallelism of
// 1, are sorted sequentially.
func ParallelSort[T constraints.Ordered](a []T, opts ...Option) error {
	return parallelSort(a, 0, len(a), cmpOrdered[T], orderedLeaf[T](), opts)
}

// ParallelSortRange sorts a[from:to] in ascending order.
func ParallelSortRange[T constraints.Ordered](a []T, from, to int, opts ...Option) error {
	return parallelSort(a, from, to, cmpOrdered[T], orderedLeaf[T](), opts)
}

// ParallelSortFunc stably sorts a with cmp. It returns an error wrapping
// ErrComparatorContract when cmp turns out to be inconsistent; a is then in
// an unspecified order.
func ParallelSortFunc[T any](a []T, cmp func(x, y T) int, opts ...Option) error {
	return ParallelSortRangeFunc(a, 0, len(a), cmp, opts...)
}

// ParallelSortRangeFunc stably sorts a[from:to] with cmp.
func ParallelSortRangeFunc[T any](a []T, from, to int, cmp func(x, y T) int, opts ...Option) error {
	if cmp == nil {
		return ErrNilComparator
	}
	return parallelSort(a, from, to, cmp, stableLeaf(cmp), opts)
}

// ParallelSortComparable stably sorts a by the elements' CompareTo.
func ParallelSortComparable[T Comparable[T]](a []T, opts ...Option) error {
	return parallelSort(a, 0, len(a), compareTo[T], stableLeaf(compareTo[T]), opts)
}

// leafSorter sorts a[lo:hi], optionally using w[wbase:wbase+wlen] as scratch.
type leafSorter[T any] func(a []T, lo, hi int, w []T, wbase, wlen int)

func stableLeaf[T any](cmp func(x, y T) int) leafSorter[T] {
	return func(a []T, lo, hi int, w []T, wbase, wlen int) {
		sortRange(a, lo, hi, cmp, w, wbase, wlen)
	}
}

// orderedLeaf uses pdqsort for integers, where equal elements are
// indistinguishable, and TimSort for floats and strings.
func orderedLeaf[T constraints.Ordered]() leafSorter[T] {
	var zero T
	switch any(zero).(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return func(a []T, lo, hi int, _ []T, _, _ int) {
			slices.Sort(a[lo:hi])
		}
	}
	return stableLeaf(cmpOrdered[T])
}

func parallelSort[T any](a []T, from, to int, cmp func(x, y T) int, leaf leafSorter[T], opts []Option) error {
	if err := rangeCheck(len(a), from, to); err != nil {
		return err
	}
	cfg := newConfig(opts)
	n := to - from
	g, p := cfg.gran(n)
	if g == 0 || n < 2 {
		cfg.logger.Debug("TimSort: sequential sort", "n", n)
		return cfg.failure(sequential(func() {
			leaf(a, from, to, nil, 0, 0)
		}))
	}

	job := fork_join.NewForkJoinTask(cfg.pool())
	x := &sortContext[T]{job: job, cmp: cmp, leaf: leaf, gran: g}
	root := x.newSorter(nil, a, make([]T, n), from, n, 0)
	cfg.logger.Debug("TimSort: parallel sort", "n", n, "granularity", g, "parallelism", p)
	if err := job.Invoke(root); err != nil {
		return cfg.failure(err)
	}
	if !root.IsDone() {
		panic(assertionFailed("assert root task completed"))
	}
	return nil
}

// sequential runs sort, turning a comparator contract panic into an error.
func sequential(sort func()) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok && xerrors.Is(e, ErrComparatorContract) {
				err = e
				return
			}
			panic(p)
		}
	}()
	sort()
	return nil
}

// failure returns comparator contract violations to the caller. Anything
// else is a bug in the sort or in a caller-supplied function and is re-panicked
// on the calling goroutine.
func (c *config) failure(err error) error {
	if err == nil {
		return nil
	}
	if xerrors.Is(err, ErrComparatorContract) {
		c.logger.Warn("TimSort: sort aborted", "err", err)
		return xerrors.Errorf("TimSort: parallel sort: %w", err)
	}
	c.logger.Error("TimSort: sort failed", "err", err)
	panic(err)
}
