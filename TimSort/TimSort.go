package TimSort

import (
	"golang.org/x/exp/constraints"
)

const (
	// runs shorter than MIN_MERGE are extended with binarySort
	MIN_MERGE = 32
	// initial threshold for entering galloping mode
	MIN_GALLOP                 = 7
	INITIAL_TMP_STORAGE_LENGTH = 256
	// below this length ParallelSort does not split the work
	MIN_ARRAY_SORT_GRAN = 1 << 14
)

// Sort sorts a in ascending order. The sort is stable. NaNs order before
// every other float value.
func Sort[T constraints.Ordered](a []T) {
	sortRange(a, 0, len(a), cmpOrdered[T], nil, 0, 0)
}

// SortRange sorts a[index1:index2]. It panics with ErrInvalidRange if the
// range is not within a.
func SortRange[T constraints.Ordered](a []T, index1, index2 int) {
	if err := rangeCheck(len(a), index1, index2); err != nil {
		panic(err)
	}
	sortRange(a, index1, index2, cmpOrdered[T], nil, 0, 0)
}

// IsSorted reports whether a is in ascending order.
func IsSorted[T constraints.Ordered](a []T) bool {
	return IsSortedFunc(a, cmpOrdered[T])
}

// Compare is the order used by Sort and ParallelSort: -1, 0 or +1 as x is
// less than, equal to or greater than y.
func Compare[T constraints.Ordered](x, y T) int {
	return cmpOrdered(x, y)
}

// cmpOrdered is the natural order with NaN first, consistent for floats.
func cmpOrdered[T constraints.Ordered](x, y T) int {
	xNaN, yNaN := x != x, y != y
	switch {
	case xNaN && yNaN:
		return 0
	case xNaN:
		return -1
	case yNaN:
		return 1
	case x < y:
		return -1
	case x > y:
		return 1
	}
	return 0
}

type timSort[T any] struct {
	a         []T
	cmp       func(x, y T) int
	minGallop int // per sort, mergeLo/mergeHi adapt it
	tmp       []T
	maxTmp    int
	runBase   []int // runBase[i] + runLen[i] == runBase[i+1]
	runLen    []int
	stackSize int
}

/*
newTimSort prepares the state for sorting n elements of a. When the
workspace window work[workBase:workBase+workLen] is large enough it becomes the
merge buffer; its capacity is capped so growing the buffer never writes past
the window.
*/
func newTimSort[T any](a []T, n int, cmp func(x, y T) int, work []T, workBase, workLen int) *timSort[T] {
	ts := &timSort[T]{a: a, cmp: cmp, minGallop: MIN_GALLOP, maxTmp: n >> 1}

	tlen := INITIAL_TMP_STORAGE_LENGTH
	if n < 2*INITIAL_TMP_STORAGE_LENGTH {
		tlen = n >> 1
	}
	if work == nil || workLen < tlen || workBase < 0 || workBase+workLen > len(work) {
		ts.tmp = make([]T, tlen)
	} else {
		ts.tmp = work[workBase : workBase+workLen : workBase+workLen]
	}

	var stackLen int
	switch {
	case n < 120:
		stackLen = 5
	case n < 1542:
		stackLen = 10
	case n < 119151:
		stackLen = 24
	default:
		stackLen = 49
	}
	ts.runBase = make([]int, stackLen)
	ts.runLen = make([]int, stackLen)
	return ts
}

/*
sortRange sorts a[lo:hi] with cmp, using the workspace window as merge buffer
when possible.
 1. Split the range into runs (maximal ascending or strictly descending
    sequences, the latter reversed). Runs shorter than minRun are extended
    with binarySort.
 2. Push each run on the stack and merge while the top runs violate
    runLen[n-2] > runLen[n-1] + runLen[n] or runLen[n-1] > runLen[n].
 3. Merge whatever is left on the stack.
*/
func sortRange[T any](a []T, lo, hi int, cmp func(x, y T) int, work []T, workBase, workLen int) {
	if a == nil || lo < 0 || lo > hi || hi > len(a) {
		panic(assertionFailed("assert a != null && lo >= 0 && lo <= hi && hi <= a.length"))
	}

	nRemaining := hi - lo
	if nRemaining < 2 {
		return
	}
	if nRemaining < MIN_MERGE {
		initRunLen := countRunAndMakeAscending(a, lo, hi, cmp)
		binarySort(a, lo, hi, lo+initRunLen, cmp)
		return
	}

	ts := newTimSort(a, nRemaining, cmp, work, workBase, workLen)
	minRun := minRunLength(nRemaining)
	for {
		runLen := countRunAndMakeAscending(a, lo, hi, cmp)
		if runLen < minRun {
			force := minRun
			if nRemaining <= minRun {
				force = nRemaining
			}
			binarySort(a, lo, lo+force, lo+runLen, cmp)
			runLen = force
		}
		ts.pushRun(lo, runLen)
		ts.mergeCollapse()

		lo += runLen
		nRemaining -= runLen
		if nRemaining == 0 {
			break
		}
	}
	if lo != hi {
		panic(assertionFailed("assert lo == hi"))
	}
	ts.mergeForceCollapse()
	if ts.stackSize != 1 {
		panic(assertionFailed("assert stackSize == 1"))
	}
}

func (ts *timSort[T]) pushRun(runBase, runLen int) {
	ts.runBase[ts.stackSize] = runBase
	ts.runLen[ts.stackSize] = runLen
	ts.stackSize++
}

// mergeCollapse restores the stack invariants after a push. The second
// clause looks one run deeper so the invariant also holds for the runs below
// the top three.
func (ts *timSort[T]) mergeCollapse() {
	for ts.stackSize > 1 {
		n := ts.stackSize - 2
		if n > 0 && ts.runLen[n-1] <= ts.runLen[n]+ts.runLen[n+1] ||
			n > 1 && ts.runLen[n-2] <= ts.runLen[n]+ts.runLen[n-1] {
			if ts.runLen[n-1] < ts.runLen[n+1] {
				n--
			}
		} else if ts.runLen[n] > ts.runLen[n+1] {
			break
		}
		ts.mergeAt(n)
	}
}

// mergeForceCollapse merges all runs on the stack until only one remains.
func (ts *timSort[T]) mergeForceCollapse() {
	for ts.stackSize > 1 {
		n := ts.stackSize - 2
		if n > 0 && ts.runLen[n-1] < ts.runLen[n+1] {
			n--
		}
		ts.mergeAt(n)
	}
}

// mergeAt merges the runs at stack indices i and i+1. i must be the second or
// third run from the top.
func (ts *timSort[T]) mergeAt(i int) {
	if ts.stackSize < 2 || i < 0 || i != ts.stackSize-2 && i != ts.stackSize-3 {
		panic(assertionFailed("assert i >= 0 && (i == stackSize - 2 || i == stackSize - 3)"))
	}
	a, cmp := ts.a, ts.cmp

	base1, len1 := ts.runBase[i], ts.runLen[i]
	base2, len2 := ts.runBase[i+1], ts.runLen[i+1]

	ts.runLen[i] = len1 + len2
	if i == ts.stackSize-3 {
		ts.runBase[i+1] = ts.runBase[i+2]
		ts.runLen[i+1] = ts.runLen[i+2]
	}
	ts.stackSize--

	// Elements of run1 before the insertion point of run2's head are already in place.
	k := gallopRight(a[base2], a, base1, len1, 0, cmp)
	base1 += k
	len1 -= k
	if len1 == 0 {
		return
	}
	// Likewise the tail of run2 after the insertion point of run1's last element.
	len2 = gallopLeft(a[base1+len1-1], a, base2, len2, len2-1, cmp)
	if len2 == 0 {
		return
	}

	if len1 <= len2 {
		ts.mergeLo(base1, len1, base2, len2)
	} else {
		ts.mergeHi(base1, len1, base2, len2)
	}
}

// ensureCapacity returns a buffer of at least minCapacity elements, growing
// to the next power of two bounded by half the sorted length.
func (ts *timSort[T]) ensureCapacity(minCapacity int) []T {
	if len(ts.tmp) < minCapacity {
		newSize := 1
		for newSize < minCapacity {
			newSize <<= 1
		}
		if newSize > ts.maxTmp {
			newSize = ts.maxTmp
		}
		if newSize < minCapacity {
			newSize = minCapacity
		}
		ts.tmp = make([]T, newSize)
	}
	return ts.tmp
}

// mergeLo merges two adjacent runs in place, copying run1 out first. Called
// when len1 <= len2.
func (ts *timSort[T]) mergeLo(base1, len1, base2, len2 int) {
	a, cmp := ts.a, ts.cmp
	tmp := ts.ensureCapacity(len1)
	cursor1 := 0     // into tmp
	cursor2 := base2 // into a
	dest := base1    // into a
	copy(tmp, a[base1:base1+len1])

	a[dest] = a[cursor2]
	dest++
	cursor2++
	len2--
	if len2 == 0 {
		copy(a[dest:], tmp[cursor1:cursor1+len1])
		return
	}
	if len1 == 1 {
		copy(a[dest:dest+len2], a[cursor2:cursor2+len2])
		a[dest+len2] = tmp[cursor1] // last of run1 goes after all of run2
		return
	}

	minGallop := ts.minGallop
outer:
	for {
		count1 := 0 // times in a row run1 won
		count2 := 0 // times in a row run2 won

		// One at a time until one run starts winning consistently.
		for {
			if cmp(a[cursor2], tmp[cursor1]) < 0 {
				a[dest] = a[cursor2]
				dest++
				cursor2++
				count2++
				count1 = 0
				len2--
				if len2 == 0 {
					break outer
				}
			} else {
				a[dest] = tmp[cursor1]
				dest++
				cursor1++
				count1++
				count2 = 0
				len1--
				if len1 == 1 {
					break outer
				}
			}
			if (count1 | count2) >= minGallop {
				break
			}
		}

		// Gallop until neither run wins by a wide margin.
		for {
			count1 = gallopRight(a[cursor2], tmp, cursor1, len1, 0, cmp)
			if count1 != 0 {
				copy(a[dest:], tmp[cursor1:cursor1+count1])
				dest += count1
				cursor1 += count1
				len1 -= count1
				if len1 <= 1 {
					break outer
				}
			}
			a[dest] = a[cursor2]
			dest++
			cursor2++
			len2--
			if len2 == 0 {
				break outer
			}

			count2 = gallopLeft(tmp[cursor1], a, cursor2, len2, 0, cmp)
			if count2 != 0 {
				copy(a[dest:dest+count2], a[cursor2:cursor2+count2])
				dest += count2
				cursor2 += count2
				len2 -= count2
				if len2 == 0 {
					break outer
				}
			}
			a[dest] = tmp[cursor1]
			dest++
			cursor1++
			len1--
			if len1 == 1 {
				break outer
			}
			minGallop--
			if count1 < MIN_GALLOP && count2 < MIN_GALLOP {
				break
			}
		}
		if minGallop < 0 {
			minGallop = 0
		}
		minGallop += 2 // penalize leaving gallop mode
	}
	if minGallop < 1 {
		minGallop = 1
	}
	ts.minGallop = minGallop

	switch {
	case len1 == 1:
		copy(a[dest:dest+len2], a[cursor2:cursor2+len2])
		a[dest+len2] = tmp[cursor1]
	case len1 == 0:
		panic(ErrComparatorContract)
	default:
		copy(a[dest:], tmp[cursor1:cursor1+len1])
	}
}

// mergeHi is mergeLo from the right end, copying run2 out first. Called
// when len1 >= len2.
func (ts *timSort[T]) mergeHi(base1, len1, base2, len2 int) {
	a, cmp := ts.a, ts.cmp
	tmp := ts.ensureCapacity(len2)
	copy(tmp, a[base2:base2+len2])

	cursor1 := base1 + len1 - 1 // into a
	cursor2 := len2 - 1         // into tmp
	dest := base2 + len2 - 1    // into a

	a[dest] = a[cursor1]
	dest--
	cursor1--
	len1--
	if len1 == 0 {
		copy(a[dest-(len2-1):], tmp[:len2])
		return
	}
	if len2 == 1 {
		dest -= len1
		cursor1 -= len1
		copy(a[dest+1:dest+1+len1], a[cursor1+1:cursor1+1+len1])
		a[dest] = tmp[cursor2]
		return
	}

	minGallop := ts.minGallop
outer:
	for {
		count1 := 0
		count2 := 0

		for {
			if cmp(tmp[cursor2], a[cursor1]) < 0 {
				a[dest] = a[cursor1]
				dest--
				cursor1--
				count1++
				count2 = 0
				len1--
				if len1 == 0 {
					break outer
				}
			} else {
				a[dest] = tmp[cursor2]
				dest--
				cursor2--
				count2++
				count1 = 0
				len2--
				if len2 == 1 {
					break outer
				}
			}
			if (count1 | count2) >= minGallop {
				break
			}
		}

		for {
			count1 = len1 - gallopRight(tmp[cursor2], a, base1, len1, len1-1, cmp)
			if count1 != 0 {
				dest -= count1
				cursor1 -= count1
				len1 -= count1
				copy(a[dest+1:dest+1+count1], a[cursor1+1:cursor1+1+count1])
				if len1 == 0 {
					break outer
				}
			}
			a[dest] = tmp[cursor2]
			dest--
			cursor2--
			len2--
			if len2 == 1 {
				break outer
			}

			count2 = len2 - gallopLeft(a[cursor1], tmp, 0, len2, len2-1, cmp)
			if count2 != 0 {
				dest -= count2
				cursor2 -= count2
				len2 -= count2
				copy(a[dest+1:dest+1+count2], tmp[cursor2+1:cursor2+1+count2])
				if len2 <= 1 {
					break outer
				}
			}
			a[dest] = a[cursor1]
			dest--
			cursor1--
			len1--
			if len1 == 0 {
				break outer
			}
			minGallop--
			if count1 < MIN_GALLOP && count2 < MIN_GALLOP {
				break
			}
		}
		if minGallop < 0 {
			minGallop = 0
		}
		minGallop += 2
	}
	if minGallop < 1 {
		minGallop = 1
	}
	ts.minGallop = minGallop

	switch {
	case len2 == 1:
		dest -= len1
		cursor1 -= len1
		copy(a[dest+1:dest+1+len1], a[cursor1+1:cursor1+1+len1])
		a[dest] = tmp[cursor2] // first of run2 goes before all of run1
	case len2 == 0:
		panic(ErrComparatorContract)
	default:
		copy(a[dest-(len2-1):], tmp[:len2])
	}
}

/*
gallopLeft locates the position at which to insert key into the sorted range
a[base:base+length]; if the range contains elements equal to key it returns
the index of the leftmost one. The search starts at hint and gallops outward,
so it is fast when hint is close to the answer.
Returns k, 0 <= k <= length, such that a[base+k-1] < key <= a[base+k].
*/
func gallopLeft[T any](key T, a []T, base, length, hint int, cmp func(x, y T) int) int {
	lastOfs, ofs := 0, 1
	if cmp(key, a[base+hint]) > 0 {
		// gallop right until a[base+hint+lastOfs] < key <= a[base+hint+ofs]
		maxOfs := length - hint
		for ofs < maxOfs && cmp(key, a[base+hint+ofs]) > 0 {
			lastOfs = ofs
			ofs = (ofs << 1) + 1
			if ofs <= 0 { // overflow
				ofs = maxOfs
			}
		}
		if ofs > maxOfs {
			ofs = maxOfs
		}
		lastOfs += hint
		ofs += hint
	} else {
		// gallop left until a[base+hint-ofs] < key <= a[base+hint-lastOfs]
		maxOfs := hint + 1
		for ofs < maxOfs && cmp(key, a[base+hint-ofs]) <= 0 {
			lastOfs = ofs
			ofs = (ofs << 1) + 1
			if ofs <= 0 {
				ofs = maxOfs
			}
		}
		if ofs > maxOfs {
			ofs = maxOfs
		}
		lastOfs, ofs = hint-ofs, hint-lastOfs
	}

	// binary search with a[base+lastOfs-1] < key <= a[base+ofs]
	lastOfs++
	for lastOfs < ofs {
		m := lastOfs + ((ofs - lastOfs) >> 1)
		if cmp(key, a[base+m]) > 0 {
			lastOfs = m + 1
		} else {
			ofs = m
		}
	}
	return ofs
}

// gallopRight is gallopLeft returning the index after the rightmost element
// equal to key: a[base+k-1] <= key < a[base+k].
func gallopRight[T any](key T, a []T, base, length, hint int, cmp func(x, y T) int) int {
	lastOfs, ofs := 0, 1
	if cmp(key, a[base+hint]) < 0 {
		// gallop left until a[base+hint-ofs] <= key < a[base+hint-lastOfs]
		maxOfs := hint + 1
		for ofs < maxOfs && cmp(key, a[base+hint-ofs]) < 0 {
			lastOfs = ofs
			ofs = (ofs << 1) + 1
			if ofs <= 0 {
				ofs = maxOfs
			}
		}
		if ofs > maxOfs {
			ofs = maxOfs
		}
		lastOfs, ofs = hint-ofs, hint-lastOfs
	} else {
		// gallop right until a[base+hint+lastOfs] <= key < a[base+hint+ofs]
		maxOfs := length - hint
		for ofs < maxOfs && cmp(key, a[base+hint+ofs]) >= 0 {
			lastOfs = ofs
			ofs = (ofs << 1) + 1
			if ofs <= 0 {
				ofs = maxOfs
			}
		}
		if ofs > maxOfs {
			ofs = maxOfs
		}
		lastOfs += hint
		ofs += hint
	}

	lastOfs++
	for lastOfs < ofs {
		m := lastOfs + ((ofs - lastOfs) >> 1)
		if cmp(key, a[base+m]) < 0 {
			ofs = m
		} else {
			lastOfs = m + 1
		}
	}
	return ofs
}

/*
binarySort sorts a[low:high] by binary insertion, assuming a[low:start] is
already sorted. O(n log n) comparisons but O(n^2) moves, which is the best
choice for short ranges.
*/
func binarySort[T any](a []T, low, high, start int, cmp func(x, y T) int) {
	if start == low {
		start++
	}
	for ; start < high; start++ {
		pivot := a[start]
		left, right := low, start
		// a[low:left] <= pivot < a[right:start]
		for left < right {
			mid := int(uint(left+right) >> 1)
			if cmp(pivot, a[mid]) < 0 {
				right = mid
			} else {
				left = mid + 1
			}
		}
		n := start - left // elements to shift
		switch n {
		case 2:
			a[left+2] = a[left+1]
			a[left+1] = a[left]
		case 1:
			a[left+1] = a[left]
		default:
			copy(a[left+1:start+1], a[left:start])
		}
		a[left] = pivot
	}
}

// countRunAndMakeAscending returns the length of the run starting at low,
// reversing it in place if it is strictly descending. Strictness keeps the
// reversal stable.
func countRunAndMakeAscending[T any](a []T, low, high int, cmp func(x, y T) int) int {
	runHi := low + 1
	if runHi == high {
		return 1
	}

	if cmp(a[runHi], a[low]) < 0 {
		runHi++
		for runHi < high && cmp(a[runHi], a[runHi-1]) < 0 {
			runHi++
		}
		reverseRange(a, low, runHi)
	} else {
		runHi++
		for runHi < high && cmp(a[runHi], a[runHi-1]) >= 0 {
			runHi++
		}
	}
	return runHi - low
}

func reverseRange[T any](a []T, low, high int) {
	high--
	for low < high {
		a[low], a[high] = a[high], a[low]
		low++
		high--
	}
}

/*
minRunLength returns the minimum acceptable run length for n elements:
n itself when n < MIN_MERGE, MIN_MERGE/2 when n is a power of two, otherwise
k in [MIN_MERGE/2, MIN_MERGE] such that n/k is close to, but strictly less
than, a power of two.
*/
func minRunLength(n int) int {
	r := 0 // becomes 1 if any 1 bits are shifted off
	for n >= MIN_MERGE {
		r |= n & 1
		n >>= 1
	}
	return n + r
}
