package audio

import (
	"context"
	"log/slog"
	"os/exec"
	"sync"
)

// Player drives alarm sound output. Start is asynchronous and loops until
// Stop; starting while already playing replaces the current sound. There is
// at most one active playback per Player.
type Player interface {
	Start(path string) error
	Stop()
}

// ExecPlayer shells out to an external player binary (aplay, paplay, afplay)
// and restarts it as each pass finishes, which is how looping works across
// players that have no native loop flag.
type ExecPlayer struct {
	cmd  string
	args []string
	log  *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewExecPlayer(cmd string, args []string, log *slog.Logger) *ExecPlayer {
	return &ExecPlayer{cmd: cmd, args: args, log: log}
}

func (p *ExecPlayer) Start(path string) error {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	go p.loop(ctx, path, done)
	return nil
}

func (p *ExecPlayer) loop(ctx context.Context, path string, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		args := append(append([]string{}, p.args...), path)
		cmd := exec.CommandContext(ctx, p.cmd, args...)
		if err := cmd.Run(); err != nil && ctx.Err() == nil {
			p.log.Error("player process failed", "cmd", p.cmd, "path", path, "error", err)
			return
		}
	}
}

// Stop kills the player process and waits for the loop to exit. Calling it
// while idle is a no-op.
func (p *ExecPlayer) Stop() {
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
