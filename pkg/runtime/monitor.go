package runtime

import "sync"

// monitor is a reentrant lock owned by one Context at a time.
type monitor struct {
	mu    sync.Mutex
	cond  *sync.Cond
	owner uint64
	count int
	refs  int
}

var monitors = struct {
	sync.Mutex
	table map[any]*monitor
}{table: make(map[any]*monitor)}

// monitorKey keys reference values by identity and scalars by value.
func monitorKey(v Value) any {
	switch v.(type) {
	case *ListValue, *ArrayValue, *SetValue, *MapValue, *StringBufferValue,
		*InstanceValue, *ClassValue, *IteratorValue, Callable:
		return v
	default:
		return HashKey(v)
	}
}

// Lock acquires the monitor of v for this context and returns the release
// function. Reacquiring a monitor the context already holds does not block.
func (c *Context) Lock(v Value) (func(), error) {
	if IsNull(v) {
		return nil, TypeMismatch("synchronized", "object", "null")
	}
	key := monitorKey(v)

	monitors.Lock()
	m := monitors.table[key]
	if m == nil {
		m = &monitor{}
		m.cond = sync.NewCond(&m.mu)
		monitors.table[key] = m
	}
	m.refs++
	monitors.Unlock()

	m.mu.Lock()
	for m.count > 0 && m.owner != c.owner {
		m.cond.Wait()
	}
	m.owner = c.owner
	m.count++
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.count--
			if m.count == 0 {
				m.owner = 0
				m.cond.Broadcast()
			}
			m.mu.Unlock()

			monitors.Lock()
			m.refs--
			if m.refs == 0 {
				delete(monitors.table, key)
			}
			monitors.Unlock()
		})
	}, nil
}
