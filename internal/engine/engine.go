// Package engine holds the explicit, per-run context that replaces the
// static random and logging state of the reference implementation: a
// seeded source of randomness for deterministic counter-example ordering,
// a cooperative cancellation flag, the run's configuration, and its
// logger.
package engine

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/synoptic-go/synoptic/internal/config"
)

// Context is threaded through every call in the refinement and coarsening
// loops instead of being reached for as global state. Nothing in this
// package is safe for concurrent use from multiple goroutines: the core is
// single-threaded by design (see the concurrency model), and Context
// exists to make that single thread explicit and reentrant rather than to
// support parallel callers.
type Context struct {
	Config *config.Config
	Log    *zap.Logger
	Rand   *rand.Rand

	cancelled bool
}

// New builds a Context from cfg, seeding Rand from cfg.RandomSeed.
func New(cfg *config.Config, log *zap.Logger) *Context {
	return &Context{
		Config: cfg,
		Log:    log,
		Rand:   rand.New(rand.NewSource(cfg.RandomSeed)),
	}
}

// Cancel raises the cooperative cancellation flag; the refinement and
// coarsening loops check it between iterations and, once it is set, return
// errs.ErrCancelled, leaving the graph in its current partial state.
func (c *Context) Cancel() { c.cancelled = true }

// Cancelled reports whether Cancel has been called.
func (c *Context) Cancelled() bool { return c.cancelled }

// Shuffle permutes s in place using Rand, for deterministic-given-seed
// counter-example processing order.
func Shuffle[T any](c *Context, s []T) {
	c.Rand.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] })
}
