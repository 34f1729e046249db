package host

// Event names delivered by the server dispatch loop.
const (
	EventBombPlanted = "bomb_planted"
	EventRoundEnd    = "round_end"
	EventTick        = "tick"
)

// HookResult tells the server what to do with an event after a listener ran.
type HookResult int

const (
	// Continue lets the remaining listeners observe the event.
	Continue HookResult = iota
	// Handled lets the remaining listeners run but marks the event as handled.
	Handled
	// Stop halts propagation to the remaining listeners.
	Stop
)

func (r HookResult) String() string {
	switch r {
	case Continue:
		return "continue"
	case Handled:
		return "handled"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// BombPlantedEvent fires when the bomb is armed by a player.
type BombPlantedEvent struct {
	UserID int
	Site   int
	// DontBroadcast suppresses the default on-screen announcement when set by a listener.
	DontBroadcast bool
}

// RoundEndEvent fires when a round concludes, whatever the outcome.
type RoundEndEvent struct {
	Winner  int
	Reason  int
	Message string
}
