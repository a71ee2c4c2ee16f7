// Package media plays the sound cues referenced by cards.
package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
)

// ErrNoPlayer is returned when no player command is configured.
var ErrNoPlayer = errors.New("no media player configured")

// Error describes a cue that could not be played.
type Error struct {
	File string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("play %s: %v", e.File, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Player plays media files.
type Player interface {
	// Play stops anything playing and starts files in order. It returns an
	// *Error when playback can't start.
	Play(ctx context.Context, files []string) error
	Stop()
	Close() error
}

// CommandPlayer runs an external command once per file, one at a time.
type CommandPlayer struct {
	command []string
	dir     string
	log     *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	closed bool
}

// NewCommandPlayer creates a player that runs command with the file path
// appended. Relative file names are resolved against dir.
func NewCommandPlayer(command []string, dir string, log *slog.Logger) *CommandPlayer {
	if log == nil {
		log = slog.Default()
	}
	return &CommandPlayer{
		command: command,
		dir:     dir,
		log:     log.With("component", "media"),
	}
}

func (p *CommandPlayer) resolve(file string) string {
	if filepath.IsAbs(file) || p.dir == "" {
		return file
	}
	return filepath.Join(p.dir, filepath.Base(file))
}

func (p *CommandPlayer) Play(ctx context.Context, files []string) error {
	if len(files) == 0 {
		return nil
	}
	if len(p.command) == 0 {
		return &Error{File: files[0], Err: ErrNoPlayer}
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = p.resolve(f)
		if _, err := os.Stat(paths[i]); err != nil {
			return &Error{File: f, Err: err}
		}
	}

	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return &Error{File: files[0], Err: errors.New("player closed")}
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	first, err := p.start(runCtx, paths[0])
	if err != nil {
		cancel()
		return &Error{File: files[0], Err: err}
	}
	done := make(chan struct{})
	p.cancel, p.done = cancel, done

	go func() {
		defer close(done)
		defer cancel()
		if err := first.Wait(); err != nil && runCtx.Err() == nil {
			p.log.Warn("media player exited with error", "file", paths[0], "error", err)
		}
		for _, path := range paths[1:] {
			if runCtx.Err() != nil {
				return
			}
			cmd, err := p.start(runCtx, path)
			if err != nil {
				p.log.Warn("media player failed to start", "file", path, "error", err)
				return
			}
			if err := cmd.Wait(); err != nil && runCtx.Err() == nil {
				p.log.Warn("media player exited with error", "file", path, "error", err)
			}
		}
	}()
	return nil
}

func (p *CommandPlayer) start(ctx context.Context, path string) (*exec.Cmd, error) {
	args := append(append([]string{}, p.command[1:]...), path)
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	p.log.Debug("playing media", "file", path)
	return cmd, nil
}

// Stop kills the current playback and waits for it to end.
func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Close stops playback. Later calls to Play fail.
func (p *CommandPlayer) Close() error {
	p.Stop()
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// Nop is a Player that plays nothing.
type Nop struct{}

func (Nop) Play(context.Context, []string) error { return nil }
func (Nop) Stop()                                {}
func (Nop) Close() error                         { return nil }
