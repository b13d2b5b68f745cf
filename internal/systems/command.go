package systems

import (
	"bufio"
	"context"
	"os"
	"strings"
)

// CommandSystem reads operator commands from stdin: "stop" cancels the
// runtime's context (triggering a clean shutdown) and "list" logs the
// currently connected player count. This is a minimal console, not a
// scripting surface.
type CommandSystem struct {
	Cancel context.CancelFunc
}

func NewCommandSystem(cancel context.CancelFunc) *CommandSystem {
	return &CommandSystem{Cancel: cancel}
}

func (s *CommandSystem) Name() string { return "command" }

func (s *CommandSystem) Run(ctx context.Context, deps *Deps) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			s.handle(deps, strings.TrimSpace(line))
		}
	}
}

func (s *CommandSystem) handle(deps *Deps, line string) {
	switch line {
	case "stop":
		deps.Logger.Info("stop command received, shutting down")
		if s.Cancel != nil {
			s.Cancel()
		}
	case "list":
		deps.Logger.Info("connected players", "count", deps.Conns.Len())
	case "":
	default:
		deps.Logger.Warn("unknown command", "command", line)
	}
}
