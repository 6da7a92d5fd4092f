package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerTick = 80 * time.Millisecond

// spinner animates a message with the elapsed time while a remote store
// connects. Only its own goroutine writes to w.
type spinner struct {
	w       io.Writer
	message string
	parent  context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once
}

// startSpinner draws message on w until Stop is called or ctx is done.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	spinCtx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		message: message,
		parent:  ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
	}
	go s.run(spinCtx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerTick)
	defer ticker.Stop()

	start := time.Now()
	width := 0
	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", width))
			return
		case <-ticker.C:
			line := fmt.Sprintf("%s %s %s",
				styleIconSpinner.Render(spinnerFrames[i%len(spinnerFrames)]),
				StyleDim.Render(s.message),
				StyleNumber.Render(time.Since(start).Round(100*time.Millisecond).String()))
			width = max(width, len(line))
			fmt.Fprintf(s.w, "\r%s", line)
		}
	}
}

// Stop clears the line and waits for the animation to finish. It is safe
// to call more than once.
func (s *spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.stopped
}

// Cancelled reports whether the caller's context ended the spinner.
func (s *spinner) Cancelled() bool {
	return s.parent.Err() != nil
}
