package walk

import "fmt"

// Phase is the lifecycle state of a Walker.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePlacingStart
	PhasePlacingGoal
	PhaseSearching
	PhaseAnimating
	PhaseCompleted
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseIdle:         "idle",
	PhasePlacingStart: "placing_start",
	PhasePlacingGoal:  "placing_goal",
	PhaseSearching:    "searching",
	PhaseAnimating:    "animating",
	PhaseCompleted:    "completed",
	PhaseFailed:       "failed",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}
