package fork_join

import "sync"

// SerialPool runs every submitted function on the goroutine that calls Help,
// newest first. Execution order is deterministic, which makes it the executor
// of choice for reproducing a task schedule in tests.
type SerialPool struct {
	lock  sync.Mutex
	stack []func()
}

var _ Executor = (*SerialPool)(nil)

func NewSerialPool() *SerialPool {
	return &SerialPool{}
}

func (s *SerialPool) Submit(fn func()) {
	s.lock.Lock()
	s.stack = append(s.stack, fn)
	s.lock.Unlock()
}

func (s *SerialPool) Help() {
	for {
		fn := s.pop()
		if fn == nil {
			return
		}
		fn()
	}
}

func (s *SerialPool) Parallelism() int {
	return 1
}

func (s *SerialPool) pop() func() {
	s.lock.Lock()
	defer s.lock.Unlock()
	n := len(s.stack)
	if n == 0 {
		return nil
	}
	fn := s.stack[n-1]
	s.stack[n-1] = nil
	s.stack = s.stack[:n-1]
	return fn
}
