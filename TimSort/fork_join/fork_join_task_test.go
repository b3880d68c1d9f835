package fork_join

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// sumTask sums values[lo:hi] by halving, forking the upper half and
// completing through the counted completer chain.
type sumTask struct {
	CountedCompleter
	job    *ForkJoinTask
	values []int64
	lo, hi int
	total  *atomic.Int64
}

func (s *sumTask) Compute() {
	lo, hi := s.lo, s.hi
	for hi-lo > 8 {
		mid := int(uint(lo+hi) >> 1)
		upper := &sumTask{job: s.job, values: s.values, lo: mid, hi: hi, total: s.total}
		upper.Init(&s.CountedCompleter)
		s.AddToPendingCount(1)
		s.job.Fork(upper)
		hi = mid
	}
	var sum int64
	for _, v := range s.values[lo:hi] {
		sum += v
	}
	s.total.Add(sum)
	s.TryComplete()
}

func runSum(t *testing.T, pool Executor, n int) {
	values := make([]int64, n)
	var want int64
	for i := range values {
		values[i] = int64(i)
		want += int64(i)
	}
	var total atomic.Int64
	job := NewForkJoinTask(pool)
	root := &sumTask{job: job, values: values, hi: n, total: &total}
	root.Init(nil)

	require.NoError(t, job.Invoke(root))
	require.True(t, root.IsDone())
	require.Equal(t, want, total.Load())
}

func TestInvokeForkJoinPool(t *testing.T) {
	fp := NewForkJoinPool(4)
	defer fp.Shutdown()
	for _, n := range []int{0, 1, 9, 100, 12345} {
		runSum(t, fp, n)
	}
}

func TestInvokeSerialPool(t *testing.T) {
	for _, n := range []int{0, 1, 9, 100, 12345} {
		runSum(t, NewSerialPool(), n)
	}
}

func TestInvokeClosedPool(t *testing.T) {
	fp := NewForkJoinPool(2)
	fp.Shutdown()
	runSum(t, fp, 1000)
}

type funcTask func()

func (f funcTask) Compute() { f() }

func TestSerialPoolIsLIFO(t *testing.T) {
	var order []int
	job := NewForkJoinTask(NewSerialPool())
	err := job.Invoke(funcTask(func() {
		for i := 0; i < 3; i++ {
			i := i
			job.Fork(funcTask(func() { order = append(order, i) }))
		}
	}))
	require.NoError(t, err)
	require.Equal(t, []int{2, 1, 0}, order)
}

var errBoom = errors.New("boom")

func TestPanicBecomesError(t *testing.T) {
	fp := NewForkJoinPool(2)
	defer fp.Shutdown()

	job := NewForkJoinTask(fp)
	err := job.Invoke(funcTask(func() {
		job.Fork(funcTask(func() { panic(errBoom) }))
	}))
	require.Error(t, err)
	require.ErrorIs(t, err, errBoom)

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	require.NotEmpty(t, pe.Stack)
	require.Same(t, job.Err(), err)
}

func TestPanicWithNonErrorValue(t *testing.T) {
	job := NewForkJoinTask(NewSerialPool())
	err := job.Invoke(funcTask(func() { panic("assert lo == hi") }))
	require.EqualError(t, err, "fork_join: task panicked: assert lo == hi")
	require.Nil(t, errors.Unwrap(err))
}

func TestTasksSkippedAfterFailure(t *testing.T) {
	var ran atomic.Int32
	job := NewForkJoinTask(NewSerialPool())
	err := job.Invoke(funcTask(func() {
		// the serial pool runs the last fork first
		job.Fork(funcTask(func() { ran.Add(1) }))
		job.Fork(funcTask(func() { panic(errBoom) }))
	}))
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, int32(0), ran.Load())
}
