package simulation

import (
	"fmt"

	"gridpilot/internal/common"
	"gridpilot/internal/gridworld"
)

// Mode is the control mode of the simulation.
type Mode int

const (
	Manual Mode = iota
	Autopilot
)

func (m Mode) String() string {
	switch m {
	case Manual:
		return "MANUAL"
	case Autopilot:
		return "AUTOPILOT"
	default:
		return fmt.Sprintf("N/A(%d)", int(m))
	}
}

// CommandKind identifies a user request.
type CommandKind int

const (
	CommandMove CommandKind = iota + 1
	CommandToggleAutopilot
	CommandReset
)

// Command is one request read by a frontend. Quit never reaches the simulation.
type Command struct {
	Kind      CommandKind
	Direction common.Direction
}

// Move requests a manual step.
func Move(d common.Direction) Command {
	return Command{Kind: CommandMove, Direction: d}
}

// ToggleAutopilot switches between Manual and Autopilot.
func ToggleAutopilot() Command {
	return Command{Kind: CommandToggleAutopilot}
}

// ResetEpisode regenerates the episode.
func ResetEpisode() Command {
	return Command{Kind: CommandReset}
}

func (c Command) String() string {
	switch c.Kind {
	case CommandMove:
		return "move " + c.Direction.String()
	case CommandToggleAutopilot:
		return "toggle-autopilot"
	case CommandReset:
		return "reset"
	default:
		return fmt.Sprintf("command(%d)", int(c.Kind))
	}
}

// Event classifies what a Handle or Tick call did.
type Event int

const (
	EventNone Event = iota
	EventMoved
	EventBlocked
	EventInvalid
	EventGoalReached
	EventAutopilotOn
	EventAutopilotOff
	EventNoPath
	EventPathExhausted
	EventReset
	EventIgnored
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventMoved:
		return "moved"
	case EventBlocked:
		return "blocked"
	case EventInvalid:
		return "invalid"
	case EventGoalReached:
		return "goal reached"
	case EventAutopilotOn:
		return "autopilot on"
	case EventAutopilotOff:
		return "autopilot off"
	case EventNoPath:
		return "no path"
	case EventPathExhausted:
		return "path exhausted"
	case EventReset:
		return "reset"
	case EventIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// Message is a short human readable line for frontends.
func (e Event) Message() string {
	switch e {
	case EventGoalReached:
		return "GOAL ACHIEVED"
	case EventAutopilotOn:
		return "Autopilot activated!"
	case EventAutopilotOff:
		return "Autopilot off!"
	case EventNoPath:
		return "Path not found!"
	case EventPathExhausted:
		return "The path is over!"
	case EventBlocked:
		return "Blocked by an obstacle"
	case EventReset:
		return "World reset"
	default:
		return ""
	}
}

// Outcome is returned by every Handle and Tick call.
type Outcome struct {
	Event Event
	// Step is set for EventMoved, EventBlocked, EventInvalid and EventGoalReached.
	Step gridworld.StepResult
	// Finished holds the closed episode for EventGoalReached.
	Finished *Episode
	// Err carries the recoverable error behind EventNoPath, EventPathExhausted and EventInvalid.
	Err error
}
