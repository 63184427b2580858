// Package term wraps a terminal file descriptor's raw-mode lifecycle,
// resize notifications, and the alternate-screen/cursor-visibility
// control sequences a stream.Renderer's patches assume are in effect.
package term

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/term"

	"streamterm/ansi"
)

// ErrNotATerminal is returned by NewSession when stdin is not a TTY, so
// raw mode cannot be enabled.
var ErrNotATerminal = errors.New("term: stdin is not a terminal")

// Session owns a terminal's raw-mode state and write buffer for the
// lifetime of a streaming render. Callers write patches produced by a
// stream.Renderer through Write; Session does not interpret them.
type Session struct {
	in  *os.File
	out *bufio.Writer

	mu       sync.Mutex
	oldState *term.State
	altScreen bool

	resizeCh chan os.Signal
	doneCh   chan struct{}
	onResize func(width, height int)
}

// NewSession enables raw mode on in and buffers writes to out. It
// returns ErrNotATerminal if in is not a TTY.
func NewSession(in, out *os.File) (*Session, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return nil, ErrNotATerminal
	}
	oldState, err := term.MakeRaw(int(in.Fd()))
	if err != nil {
		return nil, fmt.Errorf("term: enable raw mode: %w", err)
	}
	s := &Session{
		in:       in,
		out:      bufio.NewWriterSize(out, 64*1024),
		oldState: oldState,
		doneCh:   make(chan struct{}),
	}
	s.resizeCh = make(chan os.Signal, 1)
	signal.Notify(s.resizeCh, syscall.SIGWINCH)
	go s.watchResize()
	return s, nil
}

// Size reports the current terminal size, falling back to 80x24 if it
// can't be queried.
func (s *Session) Size() (width, height int) {
	w, h, err := term.GetSize(int(s.in.Fd()))
	if err != nil {
		return 80, 24
	}
	return w, h
}

// OnResize registers a callback invoked (from its own goroutine) whenever
// SIGWINCH fires. A later call replaces an earlier one.
func (s *Session) OnResize(fn func(width, height int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResize = fn
}

func (s *Session) watchResize() {
	for {
		select {
		case <-s.doneCh:
			return
		case <-s.resizeCh:
			w, h := s.Size()
			s.mu.Lock()
			fn := s.onResize
			s.mu.Unlock()
			if fn != nil {
				fn(w, h)
			}
		}
	}
}

// Write sends a pre-built ANSI patch straight to the buffered writer.
func (s *Session) Write(patch string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.out.WriteString(patch)
	return err
}

// Flush forces buffered writes out to the terminal.
func (s *Session) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Flush()
}

// HideCursor and ShowCursor toggle cursor visibility for the duration of
// a streaming render; callers typically hide on start and show on Close.
func (s *Session) HideCursor() error { return s.Write(ansi.HideCursor) }
func (s *Session) ShowCursor() error { return s.Write(ansi.ShowCursor) }

// EnterAltScreen switches to the alternate screen buffer.
func (s *Session) EnterAltScreen() error {
	s.mu.Lock()
	s.altScreen = true
	s.mu.Unlock()
	return s.Write(ansi.AltScreenEnter)
}

// ExitAltScreen returns to the primary screen buffer.
func (s *Session) ExitAltScreen() error {
	s.mu.Lock()
	s.altScreen = false
	s.mu.Unlock()
	return s.Write(ansi.AltScreenExit)
}

// Synchronized wraps fn's writes in a synchronized-update region so a
// terminal that supports it never paints a partial patch.
func (s *Session) Synchronized(fn func() error) error {
	if err := s.Write(ansi.SyncUpdateBegin); err != nil {
		return err
	}
	err := fn()
	if werr := s.Write(ansi.SyncUpdateEnd); werr != nil && err == nil {
		err = werr
	}
	return err
}

// Close shows the cursor, leaves the alternate screen if entered, flushes
// pending output, stops the resize watcher, and restores the terminal's
// original mode.
func (s *Session) Close() error {
	signal.Stop(s.resizeCh)
	close(s.doneCh)

	s.mu.Lock()
	s.out.WriteString(ansi.ShowCursor)
	if s.altScreen {
		s.out.WriteString(ansi.AltScreenExit)
		s.altScreen = false
	}
	s.out.Flush()
	s.mu.Unlock()

	if s.oldState != nil {
		return term.Restore(int(s.in.Fd()), s.oldState)
	}
	return nil
}
