package fork_join

import "sync/atomic"

// Task is a unit of work that can be forked onto an Executor.
type Task interface {
	Compute()
}

type completerKind uint8

const (
	workKind  completerKind = iota // embedded in a Task, no completion hook
	relayKind                      // computes its target when it completes
	emptyKind                      // only forwards completion to its completer
)

// CountedCompleter tracks completion through a tree of tasks. A completer
// finishes once its own body has called TryComplete and its pending count has
// dropped to zero; it then triggers its own completer in turn.
//
// Tasks embed a CountedCompleter and call Init. Relays and empty completers
// carry no array state and are not Tasks, so they cannot be forked: they are
// driven purely by the TryComplete calls of their children.
type CountedCompleter struct {
	pending   atomic.Int32
	completer *CountedCompleter
	kind      completerKind
	target    Task
	done      atomic.Bool
}

// Init sets the completer notified when c finishes. A nil completer marks c as
// a root.
func (c *CountedCompleter) Init(completer *CountedCompleter) {
	c.completer = completer
	c.kind = workKind
}

// NewRelay returns a completer that computes target on the goroutine that
// completes it. It starts with one pending child, so target runs when the
// second of two children calls TryComplete.
func NewRelay(target Task) *CountedCompleter {
	r := &CountedCompleter{kind: relayKind, target: target}
	r.pending.Store(1)
	return r
}

// NewEmptyCompleter returns a placeholder whose completion is simply passed on
// to completer.
func NewEmptyCompleter(completer *CountedCompleter) *CountedCompleter {
	return &CountedCompleter{kind: emptyKind, completer: completer}
}

func (c *CountedCompleter) Completer() *CountedCompleter {
	return c.completer
}

func (c *CountedCompleter) PendingCount() int32 {
	return c.pending.Load()
}

func (c *CountedCompleter) SetPendingCount(n int32) {
	c.pending.Store(n)
}

func (c *CountedCompleter) AddToPendingCount(delta int32) {
	c.pending.Add(delta)
}

// IsDone reports whether completion reached c as the root of its chain.
func (c *CountedCompleter) IsDone() bool {
	return c.done.Load()
}

// TryComplete decrements the pending count of c if it is positive. Otherwise
// c is complete: its hook runs and the same step repeats on its completer.
// When the walk falls off the root, the root is marked done.
func (c *CountedCompleter) TryComplete() {
	a, s := c, c
	for {
		p := a.pending.Load()
		if p == 0 {
			a.onCompletion()
			s, a = a, a.completer
			if a == nil {
				s.done.Store(true)
				return
			}
		} else if a.pending.CompareAndSwap(p, p-1) {
			return
		}
	}
}

func (c *CountedCompleter) onCompletion() {
	if c.kind == relayKind {
		c.target.Compute()
	}
}
