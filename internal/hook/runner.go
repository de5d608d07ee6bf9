package hook

import (
	"context"
	"errors"
	"time"
)

// Outcome is the result of running one hook for an event.
type Outcome struct {
	Hook     string
	Success  bool
	Err      error
	Duration time.Duration
}

// Runner delivers events to every subscribed hook.
type Runner struct {
	manager  *Manager
	executor *Executor
}

// NewRunner pairs a manager with an executor.
func NewRunner(manager *Manager, executor *Executor) *Runner {
	return &Runner{manager: manager, executor: executor}
}

// Hooks returns the hooks that would receive event.
func (r *Runner) Hooks(event string) []*Hook {
	return r.manager.For(event)
}

// Run executes each subscribed hook in name order and reports one outcome
// per hook. A hook that answers success=false is reported with its error
// message.
func (r *Runner) Run(ctx context.Context, event *Event) []Outcome {
	hooks := r.manager.For(event.Event)
	outcomes := make([]Outcome, 0, len(hooks))

	for _, h := range hooks {
		start := time.Now()
		resp, err := r.executor.Execute(ctx, h, event)
		out := Outcome{Hook: h.Manifest.Name, Duration: time.Since(start)}

		switch {
		case err != nil:
			out.Err = err
		case !resp.Success:
			msg := resp.Error
			if msg == "" {
				msg = "hook reported failure"
			}
			out.Err = errors.New(msg)
		default:
			out.Success = true
		}

		outcomes = append(outcomes, out)
		if ctx.Err() != nil {
			break
		}
	}

	return outcomes
}
