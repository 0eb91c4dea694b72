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

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerTick = 80 * time.Millisecond

// Spinner animates a status line on stderr until it is stopped or its
// context ends.
type Spinner struct {
	out    io.Writer
	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once

	mu    sync.Mutex
	msg   string
	width int // widest line drawn so far
}

func newSpinnerWithContext(ctx context.Context, msg string) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:    os.Stderr,
		ctx:    ctx,
		cancel: cancel,
		exited: make(chan struct{}),
		msg:    msg,
	}
}

// Start draws frames in the background.
func (s *Spinner) Start() {
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.exited)
	tick := time.NewTicker(spinnerTick)
	defer tick.Stop()
	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.clear()
			return
		case <-tick.C:
			s.draw(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *Spinner) draw(frame rune) {
	s.mu.Lock()
	defer s.mu.Unlock()
	line := styleIconSpinner.Render(string(frame)) + " " + StyleDim.Render(s.msg)
	fmt.Fprint(s.out, "\r"+line+s.padding(len(s.msg)+2))
	s.width = max(s.width, len(s.msg)+2)
}

// padding blanks whatever a longer earlier message left behind.
func (s *Spinner) padding(n int) string {
	if s.width <= n {
		return ""
	}
	return strings.Repeat(" ", s.width-n)
}

func (s *Spinner) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width > 0 {
		fmt.Fprint(s.out, "\r"+strings.Repeat(" ", s.width)+"\r")
	}
}

// Update changes the message from the next frame on.
func (s *Spinner) Update(msg string) {
	s.mu.Lock()
	s.msg = msg
	s.mu.Unlock()
}

// Stop ends the animation and clears the line. It may be called more than
// once, but only after Start.
func (s *Spinner) Stop() {
	s.once.Do(s.cancel)
	<-s.exited
}

func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	printSuccess("%s", msg)
}

func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	printError("%s", msg)
}

// Cancelled reports whether the spinner's context has ended, either through
// Stop or through the parent context.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
