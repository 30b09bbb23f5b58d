package audio

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	// stopGrace is how long a capture process gets to exit after SIGINT.
	stopGrace = 2 * time.Second
	// startGrace is how long Open watches a fresh process for an immediate
	// exit, which is how recorders report a missing or declined device.
	startGrace = 150 * time.Millisecond
	// stderrLimit caps the diagnostic output kept from the recorder.
	stderrLimit = 4096
)

// CommandDevice captures audio by running an external recorder that writes
// raw audio to stdout until interrupted, such as arecord or ffmpeg.
type CommandDevice struct {
	Command string
	Args    []string
}

// Open starts the capture process. A missing binary, a failed start, or a
// process that dies during startup without producing audio is reported as
// ErrPermissionDenied, the same as a declined microphone.
func (d CommandDevice) Open(_ context.Context) (Stream, error) {
	if d.Command == "" {
		return nil, fmt.Errorf("%w: no capture command configured", ErrPermissionDenied)
	}
	path, err := exec.LookPath(d.Command)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	// The read end stays ours so Wait cannot close it before we drain it.
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("audio: creating pipe: %w", err)
	}

	stderr := &cappedBuffer{limit: stderrLimit}
	cmd := exec.Command(path, d.Args...)
	cmd.Stdout = pw
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		_ = pr.Close()
		_ = pw.Close()
		return nil, fmt.Errorf("%w: starting %s: %v", ErrPermissionDenied, d.Command, err)
	}
	_ = pw.Close()

	s := &commandStream{cmd: cmd, pipe: pr, reader: bufio.NewReader(pr), done: make(chan struct{})}
	go func() {
		s.waitErr = cmd.Wait()
		close(s.done)
	}()

	select {
	case <-s.done:
	case <-time.After(startGrace):
		return s, nil
	}

	// The process is gone, so Peek sees buffered audio or EOF without blocking.
	_, peekErr := s.reader.Peek(1)
	if s.waitErr == nil && peekErr == nil {
		return s, nil
	}
	_ = pr.Close()
	reason := strings.TrimSpace(stderr.String())
	if reason == "" && s.waitErr != nil {
		reason = s.waitErr.Error()
	}
	if reason == "" {
		reason = "no audio produced"
	}
	return nil, fmt.Errorf("%w: %s exited: %s", ErrPermissionDenied, d.Command, reason)
}

type commandStream struct {
	cmd      *exec.Cmd
	pipe     *os.File
	reader   *bufio.Reader
	done     chan struct{}
	waitErr  error
	stopOnce sync.Once
	stopErr  error
}

func (s *commandStream) Read(p []byte) (int, error) {
	return s.reader.Read(p)
}

// Stop interrupts the recorder so it flushes and exits, killing it if it
// ignores the signal.
func (s *commandStream) Stop() error {
	s.stopOnce.Do(func() {
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.done:
			s.stopErr = exitError(s.waitErr)
		case <-time.After(stopGrace):
			_ = s.cmd.Process.Kill()
			<-s.done
			s.stopErr = fmt.Errorf("audio: %s ignored interrupt, killed", s.cmd.Path)
		}
	})
	return s.stopErr
}

func (s *commandStream) Close() error {
	_ = s.Stop()
	return s.pipe.Close()
}

// exitError drops the expected outcome of being interrupted.
func exitError(err error) error {
	var ee *exec.ExitError
	if err == nil || errors.As(err, &ee) {
		return nil
	}
	return err
}

// cappedBuffer keeps the first limit bytes written to it.
type cappedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
