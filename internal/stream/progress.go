package stream

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// DefaultInterval is the repaint interval of the progress indicator.
const DefaultInterval = 80 * time.Millisecond

// DefaultFrames is the animation cycled through while a stream is open.
var DefaultFrames = spinner.Points.Frames

// Indicator repaints a single status line ("<label>.. <frame>") on a fixed
// interval until stopped. An Indicator belongs to one stream session; Start
// on a running indicator is ignored and Stop blocks until the repaint
// goroutine has exited, so nothing is painted after Stop returns.
type Indicator struct {
	out      io.Writer
	interval time.Duration
	frames   []string

	mu      sync.Mutex
	frame   int
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewIndicator creates a stopped indicator painting frames to out.
func NewIndicator(out io.Writer, interval time.Duration, frames []string) *Indicator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if len(frames) == 0 {
		frames = DefaultFrames
	}

	return &Indicator{
		out:      out,
		interval: interval,
		frames:   frames,
	}
}

// Start begins repainting the status line for label.
func (i *Indicator) Start(label string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.running {
		return
	}

	i.running = true
	i.stop = make(chan struct{})
	i.done = make(chan struct{})

	go i.run(label, i.stop, i.done)
}

// Stop cancels the repaint. Calling Stop on an indicator that is not running
// is a no-op.
func (i *Indicator) Stop() {
	i.mu.Lock()
	if !i.running {
		i.mu.Unlock()
		return
	}
	i.running = false
	close(i.stop)
	done := i.done
	i.mu.Unlock()

	<-done
}

// Running reports whether the repaint goroutine is active.
func (i *Indicator) Running() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.running
}

func (i *Indicator) run(label string, stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			select {
			case <-stop:
				return
			default:
			}
			i.paint(label)
		}
	}
}

// paint writes the current frame and advances to the next one, wrapping to
// the first frame after the last.
func (i *Indicator) paint(label string) {
	i.mu.Lock()
	frame := i.frames[i.frame]
	i.frame = (i.frame + 1) % len(i.frames)
	i.mu.Unlock()

	fmt.Fprintf(i.out, "\r%s.. %s", label, frame)
}
