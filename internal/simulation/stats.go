package simulation

import (
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Stats accumulates finished episodes.
type Stats struct {
	steps     []float64
	rewards   []float64
	autopilot int
}

// Summary aggregates finished episodes.
type Summary struct {
	Episodes     int
	Autopilot    int
	MeanSteps    float64
	StdDevSteps  float64
	MeanReward   float64
	StdDevReward float64
}

// NewStats creates an empty accumulator.
func NewStats() *Stats {
	return &Stats{}
}

// Record adds a finished episode.
func (s *Stats) Record(e Episode) {
	s.steps = append(s.steps, float64(e.Steps))
	s.rewards = append(s.rewards, e.Reward)
	if e.Autopilot {
		s.autopilot++
	}
}

// Summary computes mean and sample standard deviation of steps and reward.
// The deviation is zero with fewer than two episodes.
func (s *Stats) Summary() Summary {
	sum := Summary{Episodes: len(s.steps), Autopilot: s.autopilot}
	switch len(s.steps) {
	case 0:
	case 1:
		sum.MeanSteps = s.steps[0]
		sum.MeanReward = s.rewards[0]
	default:
		sum.MeanSteps, sum.StdDevSteps = stat.MeanStdDev(s.steps, nil)
		sum.MeanReward, sum.StdDevReward = stat.MeanStdDev(s.rewards, nil)
	}
	return sum
}

func (s Summary) String() string {
	return fmt.Sprintf("episodes=%d autopilot=%d steps=%.1f±%.1f reward=%.2f±%.2f",
		s.Episodes, s.Autopilot, s.MeanSteps, s.StdDevSteps, s.MeanReward, s.StdDevReward)
}
