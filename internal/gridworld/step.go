package gridworld

import "fmt"

// StepResult is the outcome of a single Step call.
type StepResult struct {
	// Moved is true when the agent position changed.
	Moved bool
	// GoalReached is true when the agent stands on the goal after the step.
	GoalReached bool
	// Blocked is true when an obstacle rejected the move.
	Blocked bool
	// Reward is RewardGoal, RewardStep or RewardRejected.
	Reward float64
}

// Rejected reports whether the step had no effect because it was refused
// (obstacle collision or invalid direction).
func (r StepResult) Rejected() bool {
	return r.Reward == RewardRejected
}

func (r StepResult) String() string {
	return fmt.Sprintf("moved=%t goal=%t blocked=%t reward=%.1f", r.Moved, r.GoalReached, r.Blocked, r.Reward)
}
