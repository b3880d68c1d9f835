package TimSort

import (
	"github.com/king54346/TimSort/TimSort/fork_join"
	"golang.org/x/exp/slog"
)

// Option configures a parallel sort.
type Option func(*config)

type config struct {
	executor    fork_join.Executor
	parallelism int
	granularity int
	logger      *slog.Logger
}

// WithExecutor runs the sort on e instead of fork_join.CommonPool().
func WithExecutor(e fork_join.Executor) Option {
	return func(c *config) {
		c.executor = e
	}
}

// WithParallelism overrides the parallelism used to size leaf tasks. It does
// not change the number of goroutines of the executor.
func WithParallelism(p int) Option {
	return func(c *config) {
		c.parallelism = p
	}
}

// WithGranularity fixes the leaf size and always takes the parallel path.
// Values below 1 are treated as 1.
func WithGranularity(g int) Option {
	return func(c *config) {
		if g < 1 {
			g = 1
		}
		c.granularity = g
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *config) pool() fork_join.Executor {
	if c.executor == nil {
		c.executor = fork_join.CommonPool()
	}
	return c.executor
}

// gran picks the leaf size for n elements, 0 meaning the sort stays
// sequential. The result depends only on n, the configured options and the
// executor's parallelism.
func (c *config) gran(n int) (g, p int) {
	if c.granularity > 0 {
		return c.granularity, c.parallelism
	}
	if n <= MIN_ARRAY_SORT_GRAN {
		return 0, c.parallelism
	}
	p = c.parallelism
	if p <= 0 {
		p = c.pool().Parallelism()
	}
	return granularity(n, p), p
}

// granularity is n / (4p) clamped below at MIN_ARRAY_SORT_GRAN, or 0 for a
// sequential sort.
func granularity(n, p int) int {
	if n <= MIN_ARRAY_SORT_GRAN || p <= 1 {
		return 0
	}
	if g := n / (p << 2); g > MIN_ARRAY_SORT_GRAN {
		return g
	}
	return MIN_ARRAY_SORT_GRAN
}
