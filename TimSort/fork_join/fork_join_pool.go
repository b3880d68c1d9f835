package fork_join

import (
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/slog"
)

// Executor runs the tasks forked by a ForkJoinTask.
type Executor interface {
	// Submit schedules fn, possibly on another goroutine.
	Submit(fn func())
	// Help runs queued work on the calling goroutine until none is left.
	Help()
	// Parallelism is the number of goroutines that execute submitted work.
	Parallelism() int
}

// ForkJoinPool is a work-stealing pool with a fixed set of workers. Each
// worker owns a deque; submissions are spread round robin, a worker drains
// its own deque newest first and steals the oldest task of the others when
// it runs dry.
type ForkJoinPool struct {
	cap          int32
	taskQueue    *TaskQueue
	lock         sync.Mutex
	signal       *sync.Cond // wakes idle workers when a task is queued or the pool shuts down
	next         atomic.Uint32
	closed       bool
	workers      sync.WaitGroup
	panicHandler func(interface{})
	logger       *slog.Logger
}

var _ Executor = (*ForkJoinPool)(nil)

// NewForkJoinPool starts workerCap workers. workerCap <= 0 means GOMAXPROCS.
func NewForkJoinPool(workerCap int32) *ForkJoinPool {
	if workerCap <= 0 {
		workerCap = int32(runtime.GOMAXPROCS(0))
	}
	fp := &ForkJoinPool{
		cap:       workerCap,
		taskQueue: NewTaskQueue(workerCap),
		logger:    slog.Default(),
	}
	fp.signal = sync.NewCond(&fp.lock)
	fp.run()
	return fp
}

var (
	commonOnce sync.Once
	commonPool *ForkJoinPool
)

// CommonPool returns the process-wide pool sized to GOMAXPROCS. It is created
// on first use and never shut down.
func CommonPool() *ForkJoinPool {
	commonOnce.Do(func() {
		commonPool = NewForkJoinPool(0)
	})
	return commonPool
}

// SetPanicHandler installs a handler for panics escaping submitted functions.
// Without one, such a panic crashes the process.
func (fp *ForkJoinPool) SetPanicHandler(panicHandler func(interface{})) {
	fp.lock.Lock()
	fp.panicHandler = panicHandler
	fp.lock.Unlock()
}

func (fp *ForkJoinPool) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	fp.lock.Lock()
	fp.logger = logger
	fp.lock.Unlock()
}

func (fp *ForkJoinPool) Parallelism() int {
	return int(fp.cap)
}

// Submit queues fn. Once the pool is shut down fn runs on the caller.
func (fp *ForkJoinPool) Submit(fn func()) {
	fp.lock.Lock()
	if fp.closed {
		fp.lock.Unlock()
		fp.exec(fn)
		return
	}
	wID := int32(fp.next.Add(1) % uint32(fp.cap))
	fp.taskQueue.enqueue(wID, fn)
	fp.signal.Signal()
	fp.lock.Unlock()
}

// Help steals queued tasks onto the calling goroutine until the queues are empty.
func (fp *ForkJoinPool) Help() {
	start := int32(fp.next.Load() % uint32(fp.cap))
	for {
		fn, ok := fp.taskQueue.steal(start)
		if !ok {
			return
		}
		fp.exec(fn)
	}
}

// Shutdown stops the workers after the queued tasks have run. It must not be
// called from a submitted function.
func (fp *ForkJoinPool) Shutdown() {
	fp.lock.Lock()
	if fp.closed {
		fp.lock.Unlock()
		return
	}
	fp.closed = true
	fp.signal.Broadcast()
	logger := fp.logger
	fp.lock.Unlock()
	fp.workers.Wait()
	logger.Debug("fork_join: pool shut down", "workers", fp.cap)
}

func (fp *ForkJoinPool) run() {
	fp.workers.Add(int(fp.cap))
	for wID := int32(0); wID < fp.cap; wID++ {
		go fp.worker(wID)
	}
	fp.logger.Debug("fork_join: pool started", "workers", fp.cap)
}

// Each worker polls its own queue, then steals, then sleeps until signalled.
func (fp *ForkJoinPool) worker(wID int32) {
	defer fp.workers.Done()
	for {
		if fn, ok := fp.taskQueue.poll(wID); ok {
			fp.exec(fn)
			continue
		}
		fp.lock.Lock()
		for fp.taskQueue.Len() == 0 && !fp.closed {
			fp.signal.Wait()
		}
		exit := fp.closed && fp.taskQueue.Len() == 0
		fp.lock.Unlock()
		if exit {
			return
		}
	}
}

func (fp *ForkJoinPool) exec(fn func()) {
	defer func() {
		if p := recover(); p != nil {
			fp.lock.Lock()
			handler, logger := fp.panicHandler, fp.logger
			fp.lock.Unlock()
			logger.Error("fork_join: submitted function panicked", "panic", p)
			if handler == nil {
				panic(p)
			}
			handler(p)
		}
	}()
	fn()
}
