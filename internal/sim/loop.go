package sim

import (
	"context"
	"time"
)

// RoundScript describes one scripted round. Times are seconds from round start.
type RoundScript struct {
	PlantAt     float64
	FuseLength  float64
	RoundLength float64

	// Realtime paces ticks with a wall-clock ticker instead of running flat out.
	Realtime bool
}

// RoundResult summarizes a finished round.
type RoundResult struct {
	Number    int
	Winner    int
	Message   string
	Ticks     int
	Detonated bool
}

// Loop drives a Server tick by tick.
type Loop struct {
	server   *Server
	tickRate int
}

// NewLoop creates a loop running at tickRate ticks per second.
func NewLoop(server *Server, tickRate int) *Loop {
	if tickRate <= 0 {
		tickRate = 64
	}
	return &Loop{server: server, tickRate: tickRate}
}

// RunRound plays script to completion or until ctx is cancelled.
func (l *Loop) RunRound(ctx context.Context, script RoundScript) (RoundResult, error) {
	s := l.server
	res := RoundResult{Number: s.BeginRound()}
	start := s.Clock.CurrentTime()
	startTicks := s.Ticks()
	done := false

	if script.PlantAt >= 0 && script.PlantAt < script.RoundLength {
		s.Schedule(start+script.PlantAt, func(s *Server) {
			s.PlantBomb(script.FuseLength)
			s.logger.Debug("bomb fuse started", "detonatesAt", start+script.PlantAt+script.FuseLength)
		})
		detonateAt := start + script.PlantAt + script.FuseLength
		if script.PlantAt+script.FuseLength < script.RoundLength {
			s.Schedule(detonateAt, func(s *Server) {
				res.Detonated = true
				s.logger.Info("bomb detonated")
			})
		}
	}

	s.Schedule(start+script.RoundLength, func(s *Server) {
		if res.Detonated {
			res.Winner, res.Message = TeamTerrorist, "Terrorists Win!"
			s.EndRound(res.Winner, ReasonTargetBombed, res.Message)
		} else {
			res.Winner, res.Message = TeamCounterTerrorist, "Counter-Terrorists Win!"
			s.EndRound(res.Winner, ReasonTargetSaved, res.Message)
		}
		done = true
	})

	var tick <-chan time.Time
	if script.Realtime {
		ticker := time.NewTicker(time.Second / time.Duration(l.tickRate))
		defer ticker.Stop()
		tick = ticker.C
	}

	for !done {
		if tick != nil {
			select {
			case <-ctx.Done():
				return res, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return res, err
		}
		s.Step()
	}

	res.Ticks = s.Ticks() - startTicks
	return res, nil
}
