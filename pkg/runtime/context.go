package runtime

import (
	"context"
	"io"
	"os"
	"regexp"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"
)

const (
	defaultMaxDepth         = 512
	defaultPatternCacheSize = 64
)

// Options configures a Context.
type Options struct {
	Stdout           io.Writer
	MaxDepth         int
	PatternCacheSize int
}

// Context carries per-invocation state: cancellation, call depth, the
// compiled-pattern cache and allocation counters. Operators and other
// singletons never hold this state themselves.
type Context struct {
	ctx         context.Context
	interrupted atomic.Bool
	owner       uint64
	depth       int
	maxDepth    int
	stdout      io.Writer

	patternsMu sync.Mutex
	patterns   *lru.Cache

	frames atomic.Int64
	cells  atomic.Int64
}

var nextOwner atomic.Uint64

// NewContext creates an invocation context. A nil parent means
// context.Background.
func NewContext(parent context.Context, opts Options) *Context {
	if parent == nil {
		parent = context.Background()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = defaultMaxDepth
	}
	if opts.PatternCacheSize <= 0 {
		opts.PatternCacheSize = defaultPatternCacheSize
	}
	return &Context{
		ctx:      parent,
		owner:    nextOwner.Add(1),
		maxDepth: opts.MaxDepth,
		stdout:   opts.Stdout,
		patterns: lru.New(opts.PatternCacheSize),
	}
}

// Background is a context with default options, used when the host does not
// supply one.
func Background() *Context {
	return NewContext(context.Background(), Options{})
}

func (c *Context) Stdout() io.Writer { return c.stdout }

// Owner identifies this invocation for monitor reentrancy.
func (c *Context) Owner() uint64 { return c.owner }

// Interrupt sets the cooperative cancellation flag.
func (c *Context) Interrupt() { c.interrupted.Store(true) }

func (c *Context) Interrupted() bool { return c.interrupted.Load() }

// Poll returns a cancellation fault once the flag is set or the host
// context is done.
func (c *Context) Poll(subject string) error {
	if c.interrupted.Load() {
		return Cancelled(subject, nil)
	}
	if err := c.ctx.Err(); err != nil {
		return Cancelled(subject, err)
	}
	return nil
}

// Enter records a call; it fails once the configured depth is exceeded.
func (c *Context) Enter(name string) error {
	if c.depth >= c.maxDepth {
		return NewFault(FaultDepth, name, "call depth exceeds %d", c.maxDepth)
	}
	c.depth++
	return nil
}

func (c *Context) Leave() {
	if c.depth > 0 {
		c.depth--
	}
}

// Pattern compiles src through the context's LRU cache.
func (c *Context) Pattern(src string) (*regexp.Regexp, error) {
	c.patternsMu.Lock()
	defer c.patternsMu.Unlock()
	if cached, ok := c.patterns.Get(src); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := CompilePattern(src)
	if err != nil {
		return nil, err
	}
	c.patterns.Add(src, re)
	return re, nil
}

// CompilePattern compiles src without caching.
func CompilePattern(src string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(src)
	if err != nil {
		return nil, &Fault{Code: FaultTypeMismatch, Subject: "pattern", Message: "invalid pattern " + strconv.Quote(src), Cause: err}
	}
	return re, nil
}

// CountFrame records a frame allocation.
func (c *Context) CountFrame() { c.frames.Add(1) }

// CountCell records a variable cell materialization.
func (c *Context) CountCell() { c.cells.Add(1) }

// Stats is a snapshot of allocation counters.
type Stats struct {
	Frames int64
	Cells  int64
}

func (c *Context) Stats() Stats {
	return Stats{Frames: c.frames.Load(), Cells: c.cells.Load()}
}
