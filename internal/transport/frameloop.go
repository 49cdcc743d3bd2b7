package transport

import "sync"

// FrameHandle identifies a requested frame callback
type FrameHandle uint64

// FrameScheduler runs callbacks on the next display refresh
type FrameScheduler interface {
	RequestFrame(fn func()) FrameHandle
	CancelFrame(h FrameHandle)
}

// FrameLoop is a FrameScheduler driven by explicit Flush calls, one per
// displayed frame. The shell calls Flush from its frame tick; tests call it
// directly.
type FrameLoop struct {
	mu      sync.Mutex
	next    FrameHandle
	pending map[FrameHandle]func()
	order   []FrameHandle
}

// NewFrameLoop creates an empty frame loop
func NewFrameLoop() *FrameLoop {
	return &FrameLoop{pending: make(map[FrameHandle]func())}
}

// RequestFrame queues fn for the next Flush
func (l *FrameLoop) RequestFrame(fn func()) FrameHandle {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.next++
	h := l.next
	l.pending[h] = fn
	l.order = append(l.order, h)
	return h
}

// CancelFrame drops a queued callback. Unknown or already-run handles are ignored.
func (l *FrameLoop) CancelFrame(h FrameHandle) {
	l.mu.Lock()
	delete(l.pending, h)
	l.mu.Unlock()
}

// Flush runs the callbacks queued before the call, in request order, and
// returns how many ran. Callbacks requested while flushing wait for the next
// Flush; callbacks cancelled while flushing do not run.
func (l *FrameLoop) Flush() int {
	l.mu.Lock()
	batch := l.order
	l.order = nil
	l.mu.Unlock()

	ran := 0
	for _, h := range batch {
		l.mu.Lock()
		fn, ok := l.pending[h]
		delete(l.pending, h)
		l.mu.Unlock()

		if ok {
			fn()
			ran++
		}
	}
	return ran
}

// Pending returns the number of queued callbacks
func (l *FrameLoop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}
