package plugin

import (
	"fmt"

	"github.com/c4timer/extension/internal/dispatcher"
	"github.com/c4timer/extension/pkg/host"
)

func (p *Plugin) handleBombPlanted(e dispatcher.Event) (host.HookResult, error) {
	ev, ok := e.Payload.(*host.BombPlantedEvent)
	if !ok {
		return host.Continue, fmt.Errorf("unexpected %s payload %T", e.Name, e.Payload)
	}
	return p.timer.OnBombPlanted(ev), nil
}

func (p *Plugin) handleRoundEnd(e dispatcher.Event) (host.HookResult, error) {
	ev, _ := e.Payload.(*host.RoundEndEvent)
	return p.timer.OnRoundEnd(ev), nil
}

func (p *Plugin) handleTick(dispatcher.Event) (host.HookResult, error) {
	p.timer.OnTick()
	return host.Continue, nil
}
