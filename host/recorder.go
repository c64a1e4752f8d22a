package host

import (
	"fmt"
	"strings"
	"sync"
)

// DrawCall is one recorded canvas call.
type DrawCall struct {
	Op    string
	Args  []float32
	Color Color
}

func (c DrawCall) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = fmt.Sprintf("%g", a)
	}
	return fmt.Sprintf("%s(%s) rgb(%g, %g, %g)", c.Op, strings.Join(args, ", "), c.Color.R, c.Color.G, c.Color.B)
}

// Recorder is a Canvas that keeps every call it receives.
type Recorder struct {
	calls []DrawCall
	mu    sync.Mutex
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Rectangle(x, y, w, h float32, c Color) {
	r.record(DrawRectangle, c, x, y, w, h)
}

func (r *Recorder) Circle(x, y, radius float32, c Color) {
	r.record(DrawCircle, c, x, y, radius)
}

func (r *Recorder) CircleLines(x, y, radius, thickness float32, c Color) {
	r.record(DrawCircleLines, c, x, y, radius, thickness)
}

func (r *Recorder) Line(x1, y1, x2, y2, thickness float32, c Color) {
	r.record(DrawLine, c, x1, y1, x2, y2, thickness)
}

func (r *Recorder) record(op string, c Color, args ...float32) {
	r.mu.Lock()
	r.calls = append(r.calls, DrawCall{Op: op, Args: args, Color: c})
	r.mu.Unlock()
}

// Calls returns a copy of the recorded calls in order.
func (r *Recorder) Calls() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DrawCall(nil), r.calls...)
}

// Reset discards recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}
