package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a status line until it is stopped or its context is done.
type spinner struct {
	out     io.Writer
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}

	mu    sync.Mutex
	label string
	width int // widest line drawn so far
}

// startSpinner draws the first frame immediately and keeps animating in
// the background.
func startSpinner(ctx context.Context, out io.Writer, label string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		out:     out,
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		label:   label,
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		s.draw(spinnerFrames[frame%len(spinnerFrames)])
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleSpinner.Render(frame) + " " + StyleDim.Render(s.label)
	s.width = max(s.width, lipgloss.Width(line))
	fmt.Fprint(s.out, "\r"+line)
}

func (s *spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
}

func (s *spinner) relabel(label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
}

// stop ends the animation and returns once the line is cleared. It may be
// called more than once.
func (s *spinner) stop() {
	s.cancel()
	<-s.stopped
}

// succeed stops the spinner and leaves a success line in its place.
func (s *spinner) succeed(format string, args ...any) {
	s.stop()
	status{s.out}.ok(format, args...)
}

func (s *spinner) cancelled() bool { return s.ctx.Err() != nil }
