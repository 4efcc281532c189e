package simulation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"gridpilot/internal/pathfinding"
)

// Report is the result of a headless batch.
type Report struct {
	Summary Summary
	// Requested is the number of episodes asked for.
	Requested int
	// Finished counts episodes that reached the goal in this batch.
	Finished int
	// Attempts counts every episode started, finished or not.
	Attempts int
	// Unsolvable counts episodes skipped because the goal was unreachable.
	Unsolvable int
	// Exhausted counts episodes whose autopilot ran out of moves before the goal.
	Exhausted int
	// Truncated counts episodes abandoned before the goal, either exhausted or
	// cut off by the step limit.
	Truncated int
	// Mismatches counts routes whose length disagreed with the gonum distance oracle.
	Mismatches int
}

// Shortfall is how many requested episodes did not reach the goal.
func (r Report) Shortfall() int {
	if n := r.Requested - r.Finished; n > 0 {
		return n
	}
	return 0
}

// Err reports a batch that found non-shortest routes or finished fewer episodes than requested.
func (r Report) Err() error {
	if r.Mismatches > 0 {
		return fmt.Errorf("%d routes were not shortest", r.Mismatches)
	}
	if n := r.Shortfall(); n > 0 {
		return fmt.Errorf("only %d of %d episodes reached the goal (%d truncated, %d unsolvable)",
			r.Finished, r.Requested, r.Truncated, r.Unsolvable)
	}
	return nil
}

// RunHeadless plays episodes on autopilot only, without any frontend or pacing.
// Only episodes that reach the goal count towards episodes; unsolvable and truncated
// ones are reset and counted in the report. maxSteps bounds the replay of a single
// episode and the total number of attempts is bounded as well, so a batch can end short.
func (s *Simulation) RunHeadless(episodes, maxSteps int) Report {
	report := Report{Requested: episodes}
	s.log.WithFields(logrus.Fields{"episodes": episodes, "max_steps": maxSteps}).Info("headless run starting")

	// Guards against layouts that are unsolvable forever (e.g. a density that always walls off the goal).
	attempts := 0
	maxAttempts := episodes * 100

	for report.Finished < episodes && attempts < maxAttempts {
		attempts++
		if s.mode != Manual {
			s.stopAutopilot()
		}

		want := pathfinding.ShortestDistance(s.grid)
		out := s.Handle(ToggleAutopilot())
		if out.Event == EventNoPath {
			report.Unsolvable++
			s.Handle(ResetEpisode())
			continue
		}
		if got := s.RemainingPathLength(); got != want {
			report.Mismatches++
			s.episodeLog().WithFields(logrus.Fields{"bfs": got, "oracle": want}).Error("route length disagrees with oracle")
		}

		finished := false
		for i := 0; i < maxSteps; i++ {
			out = s.Tick()
			if out.Event == EventGoalReached {
				finished = true
				break
			}
			if out.Event == EventPathExhausted {
				report.Exhausted++
				break
			}
		}
		if !finished {
			report.Truncated++
			s.episodeLog().WithField("steps", s.episode.Steps).Warn("episode truncated")
			s.Handle(ResetEpisode())
			continue
		}
		report.Finished++
	}
	report.Attempts = attempts

	report.Summary = s.stats.Summary()
	s.log.WithFields(logrus.Fields{
		"summary":    report.Summary.String(),
		"unsolvable": report.Unsolvable,
		"exhausted":  report.Exhausted,
		"truncated":  report.Truncated,
		"mismatches": report.Mismatches,
		"shortfall":  report.Shortfall(),
	}).Info("headless run finished")
	return report
}
