package simulation

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gridpilot/internal/common"
	"gridpilot/internal/gridworld"
	"gridpilot/internal/pilot"
)

// Options configures a new Simulation.
type Options struct {
	Width   int
	Height  int
	Density float64
	// Seed makes obstacle layouts reproducible. Zero means time-seeded.
	Seed int64
}

// Episode describes one run from reset to goal.
type Episode struct {
	Number    int
	ID        string
	Steps     int
	Rejected  int
	Reward    float64
	Autopilot bool
}

// Simulation owns the grid and the pilot and drives the Manual/Autopilot state machine.
// It is not safe for concurrent use; a single control loop owns it.
type Simulation struct {
	grid    *gridworld.Grid
	pilot   *pilot.Pilot
	mode    Mode
	density float64

	episode Episode
	stats   *Stats

	log logrus.FieldLogger
}

// New creates a simulation with a fresh episode.
func New(opts Options, logger logrus.FieldLogger) (*Simulation, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	grid, err := gridworld.NewGrid(opts.Width, opts.Height, opts.Density, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("failed to create grid: %w", err)
	}

	return newWithGrid(grid, opts.Density, logger), nil
}

// NewWithGrid wraps an existing grid, typically one built with gridworld.FromLayout.
// Resets regenerate obstacles with the given density.
func NewWithGrid(grid *gridworld.Grid, density float64, logger logrus.FieldLogger) *Simulation {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return newWithGrid(grid, density, logger)
}

func newWithGrid(grid *gridworld.Grid, density float64, logger logrus.FieldLogger) *Simulation {
	s := &Simulation{
		grid:    grid,
		pilot:   pilot.New(),
		mode:    Manual,
		density: density,
		stats:   NewStats(),
		log:     logger,
	}
	s.beginEpisode(1)
	s.log.WithFields(logrus.Fields{
		"width":     grid.Width(),
		"height":    grid.Height(),
		"density":   density,
		"obstacles": grid.ObstacleCount(),
	}).Info("simulation created")
	return s
}

func (s *Simulation) beginEpisode(number int) {
	s.episode = Episode{Number: number, ID: uuid.NewString()[:8]}
}

func (s *Simulation) episodeLog() logrus.FieldLogger {
	return s.log.WithFields(logrus.Fields{
		"episode":    s.episode.Number,
		"episode_id": s.episode.ID,
	})
}

// Handle applies a user command.
func (s *Simulation) Handle(cmd Command) Outcome {
	switch cmd.Kind {
	case CommandMove:
		if s.mode == Autopilot {
			return Outcome{Event: EventIgnored}
		}
		return s.step(cmd.Direction)
	case CommandToggleAutopilot:
		if s.mode == Autopilot {
			s.stopAutopilot()
			s.episodeLog().Info("autopilot off")
			return Outcome{Event: EventAutopilotOff}
		}
		return s.startAutopilot()
	case CommandReset:
		if err := s.resetEpisode(); err != nil {
			return Outcome{Event: EventReset, Err: err}
		}
		return Outcome{Event: EventReset}
	default:
		return Outcome{Event: EventIgnored, Err: fmt.Errorf("unknown command %v", cmd)}
	}
}

// Tick replays the next autopilot action. It does nothing in Manual mode.
func (s *Simulation) Tick() Outcome {
	if s.mode != Autopilot {
		return Outcome{Event: EventIgnored}
	}

	d, err := s.pilot.Next()
	if err != nil {
		s.stopAutopilot()
		s.episodeLog().WithField("agent", s.grid.Agent()).Warn("autopilot ran out of moves")
		return Outcome{Event: EventPathExhausted, Err: err}
	}
	return s.step(d)
}

func (s *Simulation) startAutopilot() Outcome {
	if err := s.pilot.Start(s.grid); err != nil {
		s.episodeLog().WithError(err).Warn("path not found")
		return Outcome{Event: EventNoPath, Err: err}
	}
	s.mode = Autopilot
	s.episode.Autopilot = true
	s.episodeLog().WithFields(logrus.Fields{
		"path_len": s.pilot.Remaining(),
		"visited":  len(s.pilot.Visited()),
	}).Info("autopilot activated")
	return Outcome{Event: EventAutopilotOn}
}

func (s *Simulation) stopAutopilot() {
	s.pilot.Stop()
	s.mode = Manual
}

func (s *Simulation) step(d common.Direction) Outcome {
	res, err := s.grid.Step(d)
	s.episode.Steps++
	s.episode.Reward += res.Reward
	if res.Rejected() {
		s.episode.Rejected++
	}

	agent := s.grid.Agent()
	entry := s.episodeLog().WithFields(logrus.Fields{
		"direction": d.String(),
		"row":       agent.Row,
		"col":       agent.Col,
		"reward":    res.Reward,
	})

	switch {
	case err != nil:
		entry.WithError(err).Debug("step rejected")
		return Outcome{Event: EventInvalid, Step: res, Err: err}
	case res.GoalReached:
		finished := s.episode
		s.stats.Record(finished)
		entry.WithFields(logrus.Fields{
			"steps":        finished.Steps,
			"total_reward": finished.Reward,
			"autopilot":    finished.Autopilot,
		}).Info("goal reached")
		out := Outcome{Event: EventGoalReached, Step: res, Finished: &finished}
		if err := s.resetEpisode(); err != nil {
			out.Err = err
		}
		return out
	case res.Blocked:
		entry.Debug("step blocked")
		return Outcome{Event: EventBlocked, Step: res}
	default:
		entry.Debug("step")
		return Outcome{Event: EventMoved, Step: res}
	}
}

// resetEpisode replaces the whole episode and returns to Manual.
func (s *Simulation) resetEpisode() error {
	s.stopAutopilot()
	if err := s.grid.Reset(s.density); err != nil {
		s.episodeLog().WithError(err).Error("reset failed")
		return fmt.Errorf("reset: %w", err)
	}
	s.beginEpisode(s.episode.Number + 1)
	s.episodeLog().WithField("obstacles", s.grid.ObstacleCount()).Info("episode started")
	return nil
}

// Mode returns the current control mode.
func (s *Simulation) Mode() Mode {
	return s.mode
}

// RemainingPathLength returns how many autopilot actions are left.
func (s *Simulation) RemainingPathLength() int {
	return s.pilot.Remaining()
}

// Episode returns the bookkeeping of the running episode.
func (s *Simulation) Episode() Episode {
	return s.episode
}

// Stats returns the statistics of finished episodes.
func (s *Simulation) Stats() *Stats {
	return s.stats
}

// Grid exposes the grid for read-only inspection.
func (s *Simulation) Grid() *gridworld.Grid {
	return s.grid
}
