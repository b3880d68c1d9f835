package TimSort

import "golang.org/x/xerrors"

var (
	// ErrInvalidRange is returned (or, from the sequential API, panicked) when
	// from > to or either index lies outside [0, len(a)].
	ErrInvalidRange = xerrors.New("TimSort: invalid range")

	ErrNilComparator = xerrors.New("TimSort: nil comparator")

	// ErrComparatorContract reports a comparator that is not a consistent
	// total preorder. The slice is left in an unspecified order.
	ErrComparatorContract = xerrors.New("TimSort: comparison method violates its general contract")

	// ErrInvariant marks a broken internal assertion. It is a programming
	// error and is never returned: the parallel sort re-panics with it.
	ErrInvariant = xerrors.New("TimSort: internal invariant violated")
)

func assertionFailed(msg string) error {
	return xerrors.Errorf("%s: %w", msg, ErrInvariant)
}

func rangeCheck(length, from, to int) error {
	if from > to {
		return xerrors.Errorf("from(%d) > to(%d): %w", from, to, ErrInvalidRange)
	}
	if from < 0 || to > length {
		return xerrors.Errorf("[%d, %d) out of bounds for length %d: %w", from, to, length, ErrInvalidRange)
	}
	return nil
}
