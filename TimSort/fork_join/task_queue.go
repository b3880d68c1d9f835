package fork_join

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// deque is one worker's queue. The owner pushes and pops at the tail, thieves
// take from the head.
type deque struct {
	_     cpu.CacheLinePad
	lock  sync.Mutex
	items []func()
	head  int
	_     cpu.CacheLinePad
}

func (d *deque) pushTail(fn func()) {
	d.lock.Lock()
	d.items = append(d.items, fn)
	d.lock.Unlock()
}

func (d *deque) popTail() (func(), bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	n := len(d.items)
	if n == d.head {
		return nil, false
	}
	fn := d.items[n-1]
	d.items[n-1] = nil
	d.items = d.items[:n-1]
	d.reset()
	return fn, true
}

func (d *deque) popHead() (func(), bool) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.items) == d.head {
		return nil, false
	}
	fn := d.items[d.head]
	d.items[d.head] = nil
	d.head++
	d.reset()
	return fn, true
}

// reset rewinds an emptied deque so the backing array is reused.
func (d *deque) reset() {
	if d.head == len(d.items) {
		d.items = d.items[:0]
		d.head = 0
	}
}

// TaskQueue holds one deque per worker.
type TaskQueue struct {
	queues []*deque
	size   atomic.Int64
}

func NewTaskQueue(workerCap int32) *TaskQueue {
	q := &TaskQueue{queues: make([]*deque, workerCap)}
	for i := range q.queues {
		q.queues[i] = &deque{}
	}
	return q
}

// Len is the number of queued tasks across all workers.
func (q *TaskQueue) Len() int {
	return int(q.size.Load())
}

func (q *TaskQueue) enqueue(wID int32, fn func()) {
	q.queues[wID].pushTail(fn)
	q.size.Add(1)
}

// dequeueByTail pops the newest task of worker wID.
func (q *TaskQueue) dequeueByTail(wID int32) (func(), bool) {
	fn, ok := q.queues[wID].popTail()
	if ok {
		q.size.Add(-1)
	}
	return fn, ok
}

// steal takes the oldest task of the first non-empty deque, scanning from start.
func (q *TaskQueue) steal(start int32) (func(), bool) {
	n := int32(len(q.queues))
	for i := int32(0); i < n; i++ {
		if fn, ok := q.queues[(start+i)%n].popHead(); ok {
			q.size.Add(-1)
			return fn, true
		}
	}
	return nil, false
}

// poll is the worker's view: own tail first, then the other workers' heads.
func (q *TaskQueue) poll(wID int32) (func(), bool) {
	if fn, ok := q.dequeueByTail(wID); ok {
		return fn, true
	}
	return q.steal(wID + 1)
}
