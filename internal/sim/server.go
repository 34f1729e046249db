package sim

import (
	"log/slog"
	"time"

	"github.com/c4timer/extension/internal/dispatcher"
	"github.com/c4timer/extension/internal/queue"
	"github.com/c4timer/extension/internal/round"
	"github.com/c4timer/extension/pkg/host"
)

// Teams as reported in round_end.
const (
	TeamTerrorist        = 2
	TeamCounterTerrorist = 3
)

// Round end reasons.
const (
	ReasonTargetBombed = 1
	ReasonTargetSaved  = 12
)

// Action is work the server runs once the clock reaches its scheduled time.
type Action func(s *Server)

// Server is a single-threaded game server. All host callbacks and event
// dispatches happen on the goroutine driving Step.
type Server struct {
	World  *EntityWorld
	Clock  *Clock
	Menus  *MenuRegistry
	Sounds *SoundLog
	Rounds *round.Context

	events  *dispatcher.Dispatcher
	actions *queue.Queue[Action]
	logger  *slog.Logger
	ticks   int
}

// NewServer creates a server that delivers events through events.
func NewServer(events *dispatcher.Dispatcher, tickRate int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		World:   NewEntityWorld(),
		Clock:   NewClock(tickRate),
		Menus:   NewMenuRegistry(),
		Sounds:  NewSoundLog(logger),
		Rounds:  round.NewContext(),
		events:  events,
		actions: queue.New[Action](),
		logger:  logger,
	}
}

// Schedule runs action at simulation time at.
func (s *Server) Schedule(at float64, action Action) {
	s.actions.Schedule(at, action)
}

// Pending returns the number of actions not yet run.
func (s *Server) Pending() int {
	return s.actions.Len()
}

// Ticks returns how many ticks were simulated.
func (s *Server) Ticks() int {
	return s.ticks
}

// Step advances the clock one tick, runs the actions that became due and
// then fires the tick event.
func (s *Server) Step() {
	now := s.Clock.Advance()
	s.ticks++
	for _, action := range s.actions.Due(now) {
		action(s)
	}
	s.fire(host.EventTick, nil)
}

// BeginRound starts a new round.
func (s *Server) BeginRound() int {
	s.actions.Clear()
	n := s.Rounds.Begin(time.Now())
	s.logger.Info("round started", "round", n, "time", s.Clock.CurrentTime())
	return n
}

// PlantBomb spawns a planted_c4 entity and fires bomb_planted.
func (s *Server) PlantBomb(fuse float64) host.EntityRef {
	bomb := s.World.SpawnPlantedC4(fuse)
	ev := &host.BombPlantedEvent{UserID: 1}
	s.fire(host.EventBombPlanted, ev)
	if !ev.DontBroadcast {
		s.logger.Info("The bomb has been planted", "fuse", fuse)
	}
	return bomb
}

// EndRound fires round_end and then removes the round's bombs.
func (s *Server) EndRound(winner, reason int, message string) {
	s.fire(host.EventRoundEnd, &host.RoundEndEvent{Winner: winner, Reason: reason, Message: message})
	removed := s.World.RemoveByDesignerName("planted_c4")
	s.Rounds.End(message)
	s.logger.Info("round ended",
		"winner", winner,
		"message", s.Rounds.LastEndMessage(),
		"bombsRemoved", removed,
		"duration", time.Since(s.Rounds.StartedAt()),
	)
}

func (s *Server) fire(name string, payload any) host.HookResult {
	return s.events.Dispatch(dispatcher.Event{
		Name:      name,
		Payload:   payload,
		Timestamp: time.Now(),
	})
}
