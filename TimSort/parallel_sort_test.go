package TimSort

import (
	"bytes"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/king54346/TimSort/TimSort/fork_join"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
	"golang.org/x/xerrors"
)

var testPool = fork_join.NewForkJoinPool(4)

// executors the parallel tests run against.
func executors() map[string]fork_join.Executor {
	return map[string]fork_join.Executor{
		"pool":   testPool,
		"serial": fork_join.NewSerialPool(),
	}
}

func TestParallelSortFiveInts(t *testing.T) {
	for name, e := range executors() {
		t.Run(name, func(t *testing.T) {
			data := []int{5, 3, 1, 4, 2}
			require.NoError(t, ParallelSort(data, WithExecutor(e), WithGranularity(1)))
			require.Equal(t, []int{1, 2, 3, 4, 5}, data)
		})
	}
}

func TestParallelSortMatchesSequential(t *testing.T) {
	r := rand.New(rand.NewSource(10))
	data := make([]int64, 10000)
	for i := range data {
		data[i] = r.Int63()
	}
	want := slices.Clone(data)
	slices.Sort(want)

	for _, g := range []int{0, 1, 7, 100, 2500} {
		got := slices.Clone(data)
		opts := []Option{WithExecutor(testPool)}
		if g > 0 {
			opts = append(opts, WithGranularity(g))
		}
		require.NoError(t, ParallelSort(got, opts...))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("granularity %d mismatch (-want +got):\n%s", g, diff)
		}
	}
}

type tuple struct {
	k int
	s string
}

func TestParallelSortFuncTupleStability(t *testing.T) {
	for name, e := range executors() {
		t.Run(name, func(t *testing.T) {
			data := []tuple{{1, "a"}, {1, "b"}, {0, "c"}}
			err := ParallelSortFunc(data, func(x, y tuple) int { return x.k - y.k },
				WithExecutor(e), WithGranularity(1))
			require.NoError(t, err)
			require.Equal(t, []tuple{{0, "c"}, {1, "a"}, {1, "b"}}, data)
		})
	}
}

func TestParallelSortEmptyAndSingle(t *testing.T) {
	for _, g := range []int{0, 1} {
		opts := []Option{WithExecutor(testPool)}
		if g > 0 {
			opts = append(opts, WithGranularity(g))
		}
		var empty []int
		require.NoError(t, ParallelSort(empty, opts...))
		require.Empty(t, empty)

		single := []string{"x"}
		require.NoError(t, ParallelSort(single, opts...))
		require.Equal(t, []string{"x"}, single)

		data := []int{3, 2, 1}
		require.NoError(t, ParallelSortRange(data, 1, 1, opts...))
		require.Equal(t, []int{3, 2, 1}, data)
	}
}

func TestParallelSortDescending(t *testing.T) {
	const n = 50000
	data := make([]int, n)
	for i := range data {
		data[i] = n - 1 - i
	}
	require.NoError(t, ParallelSort(data, WithExecutor(testPool), WithParallelism(4)))
	for i, v := range data {
		if v != i {
			t.Fatalf("data[%d] = %d, want %d", i, v, i)
		}
	}
}

func TestParallelSortGranularityOneStable(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for name, e := range executors() {
		t.Run(name, func(t *testing.T) {
			for _, n := range []int{2, 3, 4, 5, 17, 100, 1000, 3001} {
				rs := makeRecords(r, n, 7)
				require.NoError(t, ParallelSortFunc(rs, byKey, WithExecutor(e), WithGranularity(1)))
				checkStable(t, rs)
			}
		})
	}
}

func TestParallelSortDefaultGranularity(t *testing.T) {
	// large enough to take the parallel path with the default leaf size
	r := rand.New(rand.NewSource(12))
	n := 200000
	if testing.Short() {
		n = MIN_ARRAY_SORT_GRAN * 2
	}
	rs := makeRecords(r, n, 1000)
	require.NoError(t, ParallelSortFunc(rs, byKey, WithExecutor(testPool)))
	checkStable(t, rs)

	ints := makeRandomInts(n)
	want := slices.Clone(ints)
	slices.Sort(want)
	require.NoError(t, ParallelSort(ints, WithExecutor(testPool)))
	require.True(t, slices.Equal(want, ints))
}

func TestParallelSortPermutation(t *testing.T) {
	r := rand.New(rand.NewSource(13))
	data := make([]string, 5000)
	for i := range data {
		data[i] = strconv.Itoa(r.Intn(300))
	}
	counts := map[string]int{}
	for _, s := range data {
		counts[s]++
	}
	require.NoError(t, ParallelSort(data, WithExecutor(testPool), WithGranularity(33)))
	require.True(t, IsSorted(data))
	for _, s := range data {
		counts[s]--
	}
	for s, c := range counts {
		require.Zerof(t, c, "count of %q changed by %d", s, -c)
	}
}

func TestParallelSortIdempotent(t *testing.T) {
	data := makeRandomInts(20000)
	require.NoError(t, ParallelSort(data, WithExecutor(testPool), WithGranularity(500)))
	again := slices.Clone(data)
	require.NoError(t, ParallelSort(again, WithExecutor(testPool), WithGranularity(500)))
	require.Equal(t, data, again)
}

func TestParallelSortFloatsWithNaN(t *testing.T) {
	r := rand.New(rand.NewSource(14))
	data := make([]float64, 3000)
	nans := 0
	for i := range data {
		if r.Intn(10) == 0 {
			data[i] = math.NaN()
			nans++
			continue
		}
		data[i] = r.NormFloat64()
	}
	require.NoError(t, ParallelSort(data, WithExecutor(testPool), WithGranularity(16)))
	require.True(t, IsSorted(data))
	for i := 0; i < nans; i++ {
		require.True(t, math.IsNaN(data[i]))
	}
	require.False(t, math.IsNaN(data[nans]))
}

func TestParallelSortRangeLeavesOutsideAlone(t *testing.T) {
	data := makeRandomInts(10000)
	orig := slices.Clone(data)
	require.NoError(t, ParallelSortRange(data, 1000, 9000, WithExecutor(testPool), WithGranularity(64)))
	require.Equal(t, orig[:1000], data[:1000])
	require.Equal(t, orig[9000:], data[9000:])
	require.True(t, IsSorted(data[1000:9000]))

	want := slices.Clone(orig[1000:9000])
	slices.Sort(want)
	require.Equal(t, want, data[1000:9000])
}

func TestParallelSortComparable(t *testing.T) {
	r := rand.New(rand.NewSource(15))
	vs := make([]version, 4000)
	for i := range vs {
		vs[i] = version{major: r.Intn(5), minor: r.Intn(50)}
	}
	require.NoError(t, ParallelSortComparable(vs, WithExecutor(testPool), WithGranularity(10)))
	require.True(t, IsSortedFunc(vs, compareTo[version]))
}

func TestParallelSortInvalidRange(t *testing.T) {
	data := []int{3, 1, 2}
	for _, r := range [][2]int{{2, 1}, {-1, 2}, {0, 4}} {
		err := ParallelSortRange(data, r[0], r[1])
		require.ErrorIs(t, err, ErrInvalidRange)
	}
	require.Equal(t, []int{3, 1, 2}, data)

	err := ParallelSortFunc[int](data, nil)
	require.ErrorIs(t, err, ErrNilComparator)
}

func TestParallelSortComparatorContract(t *testing.T) {
	broken := func(x, y int) int {
		if x == 7 || y == 7 {
			panic(xerrors.Errorf("saw 7: %w", ErrComparatorContract))
		}
		return x - y
	}
	data := make([]int, 1000)
	for i := range data {
		data[i] = len(data) - i
	}

	// parallel path
	err := ParallelSortFunc(slices.Clone(data), broken, WithExecutor(testPool), WithGranularity(50))
	require.ErrorIs(t, err, ErrComparatorContract)

	// sequential path
	err = ParallelSortFunc(slices.Clone(data), broken, WithExecutor(testPool))
	require.ErrorIs(t, err, ErrComparatorContract)
}

func TestParallelSortOtherPanicsAreFatal(t *testing.T) {
	boom := func(x, y int) int { panic("boom") }
	data := makeRandomInts(100)
	require.Panics(t, func() {
		_ = ParallelSortFunc(data, boom, WithExecutor(fork_join.NewSerialPool()), WithGranularity(10))
	})
	require.Panics(t, func() {
		_ = ParallelSortFunc(data, boom)
	})
}

func TestParallelSortConcurrentCallers(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			r := rand.New(rand.NewSource(seed))
			rs := makeRecords(r, 5000, 40)
			if err := ParallelSortFunc(rs, byKey, WithExecutor(testPool), WithGranularity(100)); err != nil {
				t.Error(err)
				return
			}
			checkStable(t, rs)
		}(int64(i))
	}
	wg.Wait()
}

func TestParallelSortLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	require.NoError(t, ParallelSort([]int{2, 1}, WithLogger(logger)))
	require.Contains(t, buf.String(), "sequential sort")

	buf.Reset()
	require.NoError(t, ParallelSort(makeRandomInts(100), WithLogger(logger), WithExecutor(testPool), WithGranularity(10)))
	require.Contains(t, buf.String(), "parallel sort")
	require.Contains(t, buf.String(), "granularity=10")
}

func TestGranularity(t *testing.T) {
	for _, tc := range []struct{ n, p, want int }{
		{MIN_ARRAY_SORT_GRAN, 8, 0},
		{MIN_ARRAY_SORT_GRAN + 1, 1, 0},
		{MIN_ARRAY_SORT_GRAN + 1, 8, MIN_ARRAY_SORT_GRAN},
		{100000, 8, MIN_ARRAY_SORT_GRAN},
		{1 << 20, 4, 1 << 16},
		{1 << 24, 16, 1 << 18},
	} {
		require.Equalf(t, tc.want, granularity(tc.n, tc.p), "granularity(%d, %d)", tc.n, tc.p)
	}

	g, _ := newConfig([]Option{WithGranularity(-3)}).gran(10)
	require.Equal(t, 1, g)
	g, _ = newConfig([]Option{WithParallelism(1)}).gran(1 << 20)
	require.Zero(t, g)
	g, p := newConfig([]Option{WithExecutor(fork_join.NewSerialPool())}).gran(1 << 20)
	require.Zero(t, g)
	require.Equal(t, 1, p)
}
