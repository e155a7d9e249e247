package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner is a terminal progress indicator for operations with no
// incremental output, like rendering. It writes to stderr so piped
// stdout stays clean.
type Spinner struct {
	message string
	cancel  context.CancelFunc
	stopped chan struct{}
}

// newSpinner creates and starts a spinner tied to ctx; cancelling ctx
// stops it.
func newSpinner(ctx context.Context, message string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &Spinner{
		message: message,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.animate(ctx)
	return s
}

func (s *Spinner) animate(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-ticker.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.message))
		}
	}
}

// Stop halts the animation and clears the line.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.stopped
}

// StopWithError halts the animation and prints an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}
