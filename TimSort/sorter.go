package TimSort

import "github.com/king54346/TimSort/TimSort/fork_join"

// sortContext is shared by every task of one parallel sort.
type sortContext[T any] struct {
	job  *fork_join.ForkJoinTask
	cmp  func(x, y T) int
	leaf leafSorter[T]
	gran int // leaves are at most gran long, merges split while a run exceeds it
}

/*
sorter sorts a[base:base+size] using w[wbase:wbase+size] as workspace.

While the region is larger than gran it is cut into quarters. The back
quarters [b+h, b+u) and [b+u, b+n) and the second quarter [b+q, b+h) are
forked; the first quarter [b, b+q) is sorted by this task on the next pass of
the loop. Quarter pairs are merged from a into w, then the two halves from w
back into a, so the result always lands in a:

	rc: sort(b+u) + sort(b+h)      -> merge a[b+h:b+n] into w[wb+h:]
	bc: sort(b+q) + sort(b) (loop) -> merge a[b:b+h]   into w[wb:]
	fc: rc merge  + bc merge       -> merge w[wb:wb+n] into a[b:]

Each relay starts with one pending count, so its merge runs on whichever
goroutine finishes the second of its two producers.
*/
type sorter[T any] struct {
	fork_join.CountedCompleter
	x                 *sortContext[T]
	a, w              []T
	base, size, wbase int
}

func (x *sortContext[T]) newSorter(par *fork_join.CountedCompleter, a, w []T, base, size, wbase int) *sorter[T] {
	s := &sorter[T]{x: x, a: a, w: w, base: base, size: size, wbase: wbase}
	s.Init(par)
	return s
}

func (s *sorter[T]) Compute() {
	c := &s.CountedCompleter
	x, a, w := s.x, s.a, s.w
	b, n, wb, g := s.base, s.size, s.wbase, x.gran
	for n > g {
		h := n >> 1
		q := h >> 1
		u := h + q // quartiles
		fc := fork_join.NewRelay(x.newMerger(c, w, a, wb, h, wb+h, n-h, b))
		rc := fork_join.NewRelay(x.newMerger(fc, a, w, b+h, q, b+u, n-u, wb+h))
		x.job.Fork(x.newSorter(rc, a, w, b+u, n-u, wb+u))
		x.job.Fork(x.newSorter(rc, a, w, b+h, q, wb+h))
		bc := fork_join.NewRelay(x.newMerger(fc, a, w, b, q, b+q, h-q, wb))
		x.job.Fork(x.newSorter(bc, a, w, b+q, h-q, wb+q))
		c = fork_join.NewEmptyCompleter(bc)
		n = q
	}
	x.leaf(a, b, b+n, w, wb, n)
	c.TryComplete()
}

// merger merges the sorted runs a[lbase:lbase+lsize] and a[rbase:rbase+rsize]
// into w starting at wbase. While a run is longer than gran it splits the
// work with splitPoints and forks the upper halves, keeping the lower halves
// for itself.
type merger[T any] struct {
	fork_join.CountedCompleter
	x                                 *sortContext[T]
	a, w                              []T
	lbase, lsize, rbase, rsize, wbase int
}

func (x *sortContext[T]) newMerger(par *fork_join.CountedCompleter, a, w []T, lbase, lsize, rbase, rsize, wbase int) *merger[T] {
	m := &merger[T]{x: x, a: a, w: w, lbase: lbase, lsize: lsize, rbase: rbase, rsize: rsize, wbase: wbase}
	m.Init(par)
	return m
}

func (m *merger[T]) Compute() {
	x, a, w := m.x, m.a, m.w
	lb, ln, rb, rn, k, g := m.lbase, m.lsize, m.rbase, m.rsize, m.wbase, x.gran
	if a == nil || w == nil || lb < 0 || rb < 0 || k < 0 || x.cmp == nil {
		panic(assertionFailed("assert a != null && w != null && lbase >= 0 && rbase >= 0 && wbase >= 0 && cmp != null"))
	}
	cmp := x.cmp
	for {
		lh, rh, ok := splitPoints(a, lb, ln, rb, rn, g, cmp)
		if !ok {
			break
		}
		upper := x.newMerger(&m.CountedCompleter, a, w, lb+lh, ln-lh, rb+rh, rn-rh, k+lh+rh)
		ln, rn = lh, rh
		m.AddToPendingCount(1)
		x.job.Fork(upper)
	}
	mergeRuns(a, lb, ln, rb, rn, w, k, cmp)
	m.TryComplete()
}

/*
splitPoints cuts the larger of the runs L = a[lb:lb+ln] and R = a[rb:rb+rn]
at its midpoint and finds the matching cut in the other run, so that
L[:lh]+R[:rh] precedes L[lh:]+R[rh:] in a stable merge. ok is false once
both runs are at most g long.

Elements equal to the split value stay on the side that keeps left-run
elements ahead of right-run ones: cutting L at split = L[lh], R is cut before
its first element >= split; cutting R at split = R[rh], L is cut before its
first element > split.
*/
func splitPoints[T any](a []T, lb, ln, rb, rn, g int, cmp func(x, y T) int) (lh, rh int, ok bool) {
	if ln >= rn {
		if ln <= g {
			return 0, 0, false
		}
		lh = ln >> 1
		split := a[lb+lh]
		rh = rn
		for lo := 0; lo < rh; {
			rm := int(uint(lo+rh) >> 1)
			if cmp(split, a[rb+rm]) <= 0 {
				rh = rm
			} else {
				lo = rm + 1
			}
		}
	} else {
		if rn <= g {
			return 0, 0, false
		}
		rh = rn >> 1
		split := a[rb+rh]
		lh = ln
		for lo := 0; lo < lh; {
			lm := int(uint(lo+lh) >> 1)
			if cmp(split, a[lb+lm]) < 0 {
				lh = lm
			} else {
				lo = lm + 1
			}
		}
	}
	return lh, rh, true
}

// mergeRuns is the two-pointer merge of a[lb:lb+ln] and a[rb:rb+rn] into
// w[k:]. Ties go to the left run.
func mergeRuns[T any](a []T, lb, ln, rb, rn int, w []T, k int, cmp func(x, y T) int) {
	lf, rf := lb+ln, rb+rn
	for lb < lf && rb < rf {
		if al, ar := a[lb], a[rb]; cmp(al, ar) <= 0 {
			w[k] = al
			lb++
		} else {
			w[k] = ar
			rb++
		}
		k++
	}
	if rb < rf {
		copy(w[k:], a[rb:rf])
	} else if lb < lf {
		copy(w[k:], a[lb:lf])
	}
}
