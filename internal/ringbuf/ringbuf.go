// Package ringbuf provides a fixed-capacity rolling window of float64
// samples. Once full, each push evicts the oldest sample (FIFO), so the
// window always holds the most recent values in chronological order.
//
// Designed for single-goroutine usage under the caller's lock — no
// internal synchronization.
package ringbuf

// Window is a capacity-bounded rolling window.
type Window struct {
	buf   []float64
	idx   int // next write position
	count int // total samples pushed

	evicted uint64
}

// New creates a window with the given capacity. Minimum capacity is 1.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest one if the window is full.
func (w *Window) Push(v float64) {
	if w.count >= len(w.buf) {
		w.evicted++
	}
	w.buf[w.idx] = v
	w.idx = (w.idx + 1) % len(w.buf)
	w.count++
}

// Len returns the number of samples currently held (≤ capacity).
func (w *Window) Len() int {
	if w.count < len(w.buf) {
		return w.count
	}
	return len(w.buf)
}

// Cap returns the window capacity.
func (w *Window) Cap() int { return len(w.buf) }

// Last returns the most recent sample. Returns 0 if the window is empty.
func (w *Window) Last() float64 {
	if w.count == 0 {
		return 0
	}
	return w.buf[(w.idx-1+len(w.buf))%len(w.buf)]
}

// Values returns a copy of the samples in chronological order
// (oldest first).
func (w *Window) Values() []float64 {
	n := w.Len()
	out := make([]float64, n)
	if w.count <= len(w.buf) {
		copy(out, w.buf[:n])
		return out
	}
	// Wrapped: oldest sample sits at the write position.
	m := copy(out, w.buf[w.idx:])
	copy(out[m:], w.buf[:w.idx])
	return out
}

// Tail returns a copy of the most recent n samples in chronological
// order. If fewer than n are held, all of them are returned.
func (w *Window) Tail(n int) []float64 {
	vals := w.Values()
	if n >= len(vals) {
		return vals
	}
	return vals[len(vals)-n:]
}

// Evicted returns the total number of samples dropped due to overflow.
func (w *Window) Evicted() uint64 { return w.evicted }

// Reset clears the window.
func (w *Window) Reset() {
	w.idx = 0
	w.count = 0
	w.evicted = 0
}
