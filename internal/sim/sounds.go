package sim

import (
	"log/slog"

	"github.com/c4timer/extension/pkg/host"
)

// SoundLog records the sound events the server played.
type SoundLog struct {
	logger  *slog.Logger
	emitted []host.SoundEvent
}

// NewSoundLog creates an empty log. logger may be nil.
func NewSoundLog(logger *slog.Logger) *SoundLog {
	return &SoundLog{logger: logger}
}

// Emit implements host.SoundEmitter.
func (s *SoundLog) Emit(ev host.SoundEvent) {
	s.emitted = append(s.emitted, ev)
	if s.logger != nil {
		s.logger.Info("sound played", "name", ev.Name, "recipients", ev.Recipients)
	}
}

// Emitted returns every sound played so far.
func (s *SoundLog) Emitted() []host.SoundEvent {
	return s.emitted
}
