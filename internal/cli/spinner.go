package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner animates a one-line status on w while a slow step runs. It stops
// on Stop or when the parent context ends.
type spinner struct {
	w      io.Writer
	label  string
	parent context.Context

	ctx     context.Context
	cancel  context.CancelFunc
	exited  chan struct{}
	started bool
	once    sync.Once
}

func newSpinner(ctx context.Context, label string) *spinner {
	inner, cancel := context.WithCancel(ctx)
	return &spinner{
		w:      os.Stderr,
		label:  label,
		parent: ctx,
		ctx:    inner,
		cancel: cancel,
		exited: make(chan struct{}),
	}
}

func (s *spinner) Start() {
	s.started = true
	go s.loop()
}

func (s *spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(80 * time.Millisecond)
	defer tick.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
			frame := spinnerFrames[i%len(spinnerFrames)]
			fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.label))
		}
	}
}

// Stop ends the animation and waits for the line to be cleared. Extra calls
// return immediately.
func (s *spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		if s.started {
			<-s.exited
		}
	})
}

// Interrupted reports whether the parent context ended.
func (s *spinner) Interrupted() bool {
	return s.parent.Err() != nil
}

func (s *spinner) clear() {
	fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", len(s.label)+4))
}
