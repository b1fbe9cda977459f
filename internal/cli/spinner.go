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

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a one-line status on w until stopped or until its
// context is cancelled.
type Spinner struct {
	w       io.Writer
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	mu      sync.Mutex
}

// newSpinner creates a stopped spinner; call Start to animate it.
func newSpinner(ctx context.Context, w io.Writer, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		w:       w,
		message: message,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start begins the animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := spinnerFrames[i%len(spinnerFrames)]
				s.mu.Lock()
				fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
				s.mu.Unlock()
			}
		}
	}()
}

// Stop ends the animation and clears the line. It is safe to call more
// than once, but only after Start.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", lipgloss.Width(s.message)+2))
}

// spinnerIndicator shows a spinner while an export runs. Each Show starts a
// fresh spinner since a stopped one cannot be restarted.
type spinnerIndicator struct {
	ctx     context.Context
	w       io.Writer
	mu      sync.Mutex
	current *Spinner
}

func newSpinnerIndicator(ctx context.Context, w io.Writer) *spinnerIndicator {
	return &spinnerIndicator{ctx: ctx, w: w}
}

// Show implements export.Indicator.
func (si *spinnerIndicator) Show(message string) {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.current != nil {
		si.current.Stop()
	}
	si.current = newSpinner(si.ctx, si.w, message)
	si.current.Start()
}

// Hide implements export.Indicator.
func (si *spinnerIndicator) Hide() {
	si.mu.Lock()
	defer si.mu.Unlock()
	if si.current != nil {
		si.current.Stop()
		si.current = nil
	}
}
