package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/netalign/pkg/monitor"
)

// Spinner provides a progress indicator with context cancellation support.
// It is a [monitor.Reporter]: loops that report progress show their phase
// and percentage next to the message.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string

	mu       sync.Mutex
	phase    string
	pct      int
	width    int // of the last drawn line
	started  bool
	stopOnce sync.Once
}

var _ monitor.Reporter = (*Spinner)(nil)

// newSpinner creates a spinner writing to w that stops when ctx is done.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Report records the progress of the running phase.
func (s *Spinner) Report(phase string, fraction float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phase = phase
	s.pct = int(fraction * 100)
}

// text returns the message and the current phase.
func (s *Spinner) text() string {
	if s.phase == "" {
		return s.message
	}
	return fmt.Sprintf("%s · %s %d%%", s.message, s.phase, s.pct)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	s.started = true
	s.mu.Unlock()

	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				line := StyleHighlight.Render(frame) + " " + StyleDim.Render(s.text())
				pad := max(s.width-lipgloss.Width(line), 0)
				fmt.Fprintf(s.w, "\r%s%s", line, strings.Repeat(" ", pad))
				s.width = lipgloss.Width(line)
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// Stop stops the spinner and clears the line. It may be called more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.stopped
		}
		s.cancel()
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// Cancelled returns true if the spinner's context was canceled before Stop.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
	}
	return s.ctx.Err() != nil
}
