package fork_join

import (
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// PanicError is a panic recovered from a task, with the stack of the
// goroutine that panicked.
type PanicError struct {
	Value interface{}
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("fork_join: task panicked: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

// ForkJoinTask groups the tasks of one invocation. It counts every forked
// task so Join returns only after all of them have finished, and it keeps the
// first panic as the invocation's error. Once a task has failed, tasks that
// have not started yet are skipped.
type ForkJoinTask struct {
	pool   Executor
	active sync.WaitGroup
	failed atomic.Bool
	lock   sync.Mutex
	err    error
}

func NewForkJoinTask(pool Executor) *ForkJoinTask {
	return &ForkJoinTask{pool: pool}
}

func (f *ForkJoinTask) Pool() Executor {
	return f.pool
}

// Fork submits t to the pool.
func (f *ForkJoinTask) Fork(t Task) {
	f.active.Add(1)
	f.pool.Submit(func() {
		defer f.active.Done()
		f.exec(t)
	})
}

// Invoke computes t on the calling goroutine and then joins.
func (f *ForkJoinTask) Invoke(t Task) error {
	f.active.Add(1)
	f.exec(t)
	f.active.Done()
	return f.Join()
}

// Join helps the pool, waits for every forked task and returns the first
// failure, if any.
func (f *ForkJoinTask) Join() error {
	f.pool.Help()
	f.active.Wait()
	return f.Err()
}

func (f *ForkJoinTask) Err() error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.err
}

func (f *ForkJoinTask) exec(t Task) {
	if f.failed.Load() {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			f.fail(&PanicError{Value: p, Stack: debug.Stack()})
		}
	}()
	t.Compute()
}

func (f *ForkJoinTask) fail(err error) {
	f.lock.Lock()
	if f.err == nil {
		f.err = err
	}
	f.lock.Unlock()
	f.failed.Store(true)
}
