package TimSort

// Comparable is implemented by element types with a natural order of their
// own. CompareTo returns a negative number, zero or a positive number when the
// receiver is less than, equal to or greater than o.
type Comparable[T any] interface {
	CompareTo(o T) int
}

// SortFunc sorts a with cmp, which must be a consistent total preorder. The
// sort is stable. It panics with ErrComparatorContract if cmp is detected to
// be inconsistent.
func SortFunc[T any](a []T, cmp func(x, y T) int) {
	if cmp == nil {
		panic(ErrNilComparator)
	}
	sortRange(a, 0, len(a), cmp, nil, 0, 0)
}

// SortRangeFunc sorts a[from:to] with cmp.
func SortRangeFunc[T any](a []T, from, to int, cmp func(x, y T) int) {
	if err := rangeCheck(len(a), from, to); err != nil {
		panic(err)
	}
	if cmp == nil {
		panic(ErrNilComparator)
	}
	sortRange(a, from, to, cmp, nil, 0, 0)
}

// SortComparable sorts a by the elements' own CompareTo.
func SortComparable[T Comparable[T]](a []T) {
	sortRange(a, 0, len(a), compareTo[T], nil, 0, 0)
}

// IsSortedFunc reports whether a is sorted according to cmp.
func IsSortedFunc[T any](a []T, cmp func(x, y T) int) bool {
	for i := len(a) - 1; i > 0; i-- {
		if cmp(a[i], a[i-1]) < 0 {
			return false
		}
	}
	return true
}

func compareTo[T Comparable[T]](x, y T) int {
	return x.CompareTo(y)
}
