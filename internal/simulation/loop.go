package simulation

import (
	"context"
	"errors"
	"time"
)

// ErrQuit is returned by a Frontend when the user asks to leave.
var ErrQuit = errors.New("quit requested")

// Frontend is the presentation and input side of the control loop.
type Frontend interface {
	// Render draws the board and reports the last outcome.
	Render(snap Snapshot, last Outcome) error
	// Poll waits up to timeout for a command; a zero timeout waits indefinitely.
	// ok is false when the timeout elapsed without input.
	Poll(ctx context.Context, timeout time.Duration) (cmd Command, ok bool, err error)
}

// Pacing sets the artificial delays of the loop.
type Pacing struct {
	// Tick is the delay between two autopilot actions.
	Tick time.Duration
	// GoalPause is held after a goal is reached.
	GoalPause time.Duration
	// ExhaustedPause is held after the autopilot runs out of moves.
	ExhaustedPause time.Duration
}

// DefaultPacing suits the terminal frontend.
var DefaultPacing = Pacing{
	Tick:           300 * time.Millisecond,
	GoalPause:      2 * time.Second,
	ExhaustedPause: time.Second,
}

// Loop runs render → input or autopilot tick → step until the frontend quits or ctx ends.
// Commands arriving during autopilot replay are handled before the next tick, so the
// user can switch the autopilot off or reset at any time.
func (s *Simulation) Loop(ctx context.Context, fe Frontend, pacing Pacing) error {
	var (
		last Outcome
		// nextTick is kept across polls so ignored input cannot postpone the replay.
		nextTick time.Time
	)
	for {
		if err := fe.Render(s.Snapshot(), last); err != nil {
			return err
		}

		switch last.Event {
		case EventGoalReached:
			if err := sleep(ctx, pacing.GoalPause); err != nil {
				return err
			}
		case EventPathExhausted:
			if err := sleep(ctx, pacing.ExhaustedPause); err != nil {
				return err
			}
		}

		var timeout time.Duration
		if s.mode == Autopilot {
			if nextTick.IsZero() {
				nextTick = time.Now().Add(pacing.Tick)
			}
			timeout = time.Until(nextTick)
			if timeout <= 0 {
				timeout = time.Nanosecond
			}
		} else {
			nextTick = time.Time{}
		}

		cmd, ok, err := fe.Poll(ctx, timeout)
		switch {
		case errors.Is(err, ErrQuit):
			s.log.Info("quit requested")
			return nil
		case err != nil:
			return err
		case ok:
			if out := s.Handle(cmd); out.Event != EventIgnored {
				last = out
			}
		default:
			last = s.Tick()
			nextTick = time.Time{}
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
