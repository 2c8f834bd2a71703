package oracle

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"
)

// SubprocessConfig configures the oracle worker backend of §6.6: a long-
// lived sibling process, spoken to over its stdin/stdout pipes.
type SubprocessConfig struct {
	Command        []string
	RequestTimeout time.Duration
	MaxRestarts    int
	Logger         *slog.Logger
}

// Subprocess is the default Oracle backend. It frames each request as a
// 4-byte big-endian length prefix followed by the candidate bytes, and
// reads back a single verdict byte: 0x00 accepted, 0xFF rejected, anything
// else is treated as accepted with a warning. A request that exceeds
// RequestTimeout, or a pipe error, restarts the child process up to
// MaxRestarts times before the call fails outright.
type Subprocess struct {
	cfg SubprocessConfig

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	restarts int
}

// NewSubprocess starts the configured worker.
func NewSubprocess(cfg SubprocessConfig) (*Subprocess, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Subprocess{cfg: cfg}
	if err := s.start(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subprocess) start() error {
	if len(s.cfg.Command) == 0 {
		return fmt.Errorf("oracle: subprocess backend configured with no command")
	}
	cmd := exec.Command(s.cfg.Command[0], s.cfg.Command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("oracle: open stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("oracle: open stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("oracle: start worker %v: %w", s.cfg.Command, err)
	}
	s.cmd = cmd
	s.stdin = stdin
	s.stdout = bufio.NewReader(stdout)
	return nil
}

func (s *Subprocess) restart() error {
	_ = s.stdin.Close()
	_ = s.cmd.Process.Kill()
	_ = s.cmd.Wait()
	s.restarts++
	return s.start()
}

// Accepts sends one candidate input and waits for its verdict byte, bounded
// by ctx and by RequestTimeout.
func (s *Subprocess) Accepts(ctx context.Context, input []byte) (bool, error) {
	timeout := s.cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	try := func() (bool, error) {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return s.attempt(reqCtx, input)
	}

	s.restarts = 0
	ok, err := try()
	for err != nil && s.restarts < s.cfg.MaxRestarts {
		if rerr := s.restart(); rerr != nil {
			return false, fmt.Errorf("oracle: restart after %w: %w", err, rerr)
		}
		ok, err = try()
	}
	return ok, err
}

func (s *Subprocess) attempt(ctx context.Context, input []byte) (bool, error) {
	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)

	go func() {
		var header [4]byte
		binary.BigEndian.PutUint32(header[:], uint32(len(input)))
		if _, err := s.stdin.Write(header[:]); err != nil {
			done <- result{false, fmt.Errorf("oracle: write length prefix: %w", err)}
			return
		}
		if _, err := s.stdin.Write(input); err != nil {
			done <- result{false, fmt.Errorf("oracle: write candidate bytes: %w", err)}
			return
		}
		verdict, err := s.stdout.ReadByte()
		if err != nil {
			done <- result{false, fmt.Errorf("oracle: read verdict: %w", err)}
			return
		}
		switch verdict {
		case 0x00:
			done <- result{true, nil}
		case 0xFF:
			done <- result{false, nil}
		default:
			s.cfg.Logger.Warn("oracle: unexpected verdict byte, treating as accepted", "byte", verdict)
			done <- result{true, nil}
		}
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("oracle: request timed out: %w", ctx.Err())
	case r := <-done:
		return r.ok, r.err
	}
}

// Close terminates the worker process.
func (s *Subprocess) Close() error {
	_ = s.stdin.Close()
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	_ = s.cmd.Process.Kill()
	return s.cmd.Wait()
}
