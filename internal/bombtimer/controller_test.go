package bombtimer

import (
	"sync"
	"testing"

	"github.com/c4timer/extension/pkg/host"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnBombPlanted_ArmsAndOpensMenu(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 4, fuse: 40, valid: true}}

	ev := &host.BombPlantedEvent{UserID: 2}
	result := h.ctrl.OnBombPlanted(ev)

	assert.Equal(t, host.Continue, result)
	assert.True(t, ev.DontBroadcast, "default announcement should be suppressed")
	assert.True(t, h.ctrl.IsArmed())
	assert.True(t, h.ctrl.DisplayOpen())

	require.Len(t, h.menus.built, 1)
	menu := h.menus.built[0]
	assert.Equal(t, MenuTitle, menu.title)
	assert.True(t, menu.exitDisabled)
	assert.True(t, menu.soundOff)
	assert.True(t, menu.cfg.HideFooter)
	assert.Equal(t, "", menu.cfg.DefaultComment)
	require.Len(t, menu.options, 1)
	assert.Equal(t, "C4 Time: 40.00s", menu.options[0].text)
	assert.Equal(t, 1, h.menus.openCount())

	require.Len(t, h.sounds.emitted, 1)
	assert.Equal(t, host.SoundEvent{Name: PlantedSound, Recipients: host.AllPlayers}, h.sounds.emitted[0])
}

func TestOnBombPlanted_PicksFirstValid(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{
		{index: 1, fuse: 40, valid: false},
		{index: 2, fuse: 35, valid: true},
		{index: 3, fuse: 30, valid: true},
	}

	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	bomb, _, ok := h.ctrl.state.Bomb()
	require.True(t, ok)
	assert.Equal(t, uint32(2), bomb.Index())
	assert.Equal(t, "C4 Time: 35.00s", h.text())
}

func TestOnBombPlanted_NoBombFound(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, valid: false}}

	ev := &host.BombPlantedEvent{}
	result := h.ctrl.OnBombPlanted(ev)

	assert.Equal(t, host.Continue, result)
	assert.False(t, ev.DontBroadcast)
	assert.False(t, h.ctrl.IsArmed())
	assert.False(t, h.ctrl.DisplayOpen())
	assert.Empty(t, h.menus.built)
	assert.Empty(t, h.sounds.emitted)
}

func TestOnBombPlanted_Disabled(t *testing.T) {
	h := newHarness(t)
	h.enabled = false
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}

	ev := &host.BombPlantedEvent{}
	result := h.ctrl.OnBombPlanted(ev)

	assert.Equal(t, host.Continue, result)
	assert.False(t, ev.DontBroadcast)
	assert.False(t, h.ctrl.IsArmed())
	assert.Empty(t, h.menus.built)
	assert.Empty(t, h.sounds.emitted)
}

func TestOnBombPlanted_EnabledReadLive(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}

	h.enabled = false
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})
	assert.False(t, h.ctrl.IsArmed())

	h.enabled = true
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})
	assert.True(t, h.ctrl.IsArmed())
}

func TestOnBombPlanted_NilEventAndNoFuse(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 0, valid: true}}

	assert.NotPanics(t, func() { h.ctrl.OnBombPlanted(nil) })
	assert.Equal(t, "C4 Time: 40.00s", h.text(), "unknown fuse falls back to the default")
}

func TestOnTick_Countdown(t *testing.T) {
	tests := []struct {
		name    string
		fuse    float64
		elapsed float64
		want    string
	}{
		{name: "twelve seconds left", fuse: 40, elapsed: 27.66, want: "C4 Time: 12.34s"},
		{name: "twelve seconds elapsed", fuse: 40, elapsed: 12.34, want: "C4 Time: 27.66s"},
		{name: "just planted", fuse: 40, elapsed: 0, want: "C4 Time: 40.00s"},
		{name: "short fuse", fuse: 10, elapsed: 9.99, want: "C4 Time: 0.01s"},
		{name: "exactly zero", fuse: 40, elapsed: 40, want: TextDetonated},
		{name: "past zero", fuse: 40, elapsed: 55, want: TextDetonated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.entities.bombs = []*fakeBomb{{index: 1, fuse: tt.fuse, valid: true}}
			h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

			h.clock.now += tt.elapsed
			h.ctrl.OnTick()

			assert.Equal(t, tt.want, h.text())
		})
	}
}

func TestOnTick_DetonatedIsSticky(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.clock.now += 41
	h.ctrl.OnTick()
	require.Equal(t, TextDetonated, h.text())
	sets := h.menus.built[0].options[0].sets

	for i := 0; i < 5; i++ {
		h.clock.now += 0.5
		h.ctrl.OnTick()
		assert.Equal(t, TextDetonated, h.text())
	}
	assert.Equal(t, sets, h.menus.built[0].options[0].sets, "text should not be rewritten once detonated")
	assert.True(t, h.ctrl.IsArmed(), "expiry does not disarm; round end does")
	assert.True(t, h.ctrl.DisplayOpen())

	h.ctrl.OnRoundEnd(&host.RoundEndEvent{})
	assert.False(t, h.ctrl.IsArmed())
	assert.False(t, h.ctrl.DisplayOpen())
}

func TestOnTick_FuseReadEveryTick(t *testing.T) {
	h := newHarness(t)
	bomb := &fakeBomb{index: 1, fuse: 40, valid: true}
	h.entities.bombs = []*fakeBomb{bomb}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.clock.now += 10
	h.ctrl.OnTick()
	assert.Equal(t, "C4 Time: 30.00s", h.text())

	bomb.fuse = 45
	h.ctrl.OnTick()
	assert.Equal(t, "C4 Time: 35.00s", h.text())
}

func TestOnTick_IdleIsNoop(t *testing.T) {
	h := newHarness(t)

	assert.NotPanics(t, func() {
		for i := 0; i < 10; i++ {
			h.ctrl.OnTick()
		}
	})
	assert.Empty(t, h.menus.built)
	assert.False(t, h.ctrl.IsArmed())
}

func TestOnTick_InvalidatedBombFreezesText(t *testing.T) {
	h := newHarness(t)
	bomb := &fakeBomb{index: 1, fuse: 40, valid: true}
	h.entities.bombs = []*fakeBomb{bomb}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.clock.now += 5
	h.ctrl.OnTick()
	require.Equal(t, "C4 Time: 35.00s", h.text())

	bomb.valid = false
	h.clock.now += 5
	h.ctrl.OnTick()

	assert.Equal(t, "C4 Time: 35.00s", h.text())
	assert.True(t, h.ctrl.IsArmed(), "invalidation does not disarm")
	assert.True(t, h.ctrl.DisplayOpen())
	_, ok := h.ctrl.Remaining()
	assert.False(t, ok)
}

func TestOnTick_AfterCleanupIsNoop(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.ctrl.Cleanup()
	sets := h.menus.built[0].options[0].sets
	h.clock.now += 3
	h.ctrl.OnTick()

	assert.Equal(t, sets, h.menus.built[0].options[0].sets)
}

func TestReplantReplacesBomb(t *testing.T) {
	h := newHarness(t)
	a := &fakeBomb{index: 1, fuse: 40, valid: true}
	h.entities.bombs = []*fakeBomb{a}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.clock.now += 10
	h.ctrl.OnTick()
	require.Equal(t, "C4 Time: 30.00s", h.text())

	// bomb A is gone, bomb B planted at t=115 with a 20s fuse
	a.valid = false
	b := &fakeBomb{index: 2, fuse: 20, valid: true}
	h.entities.bombs = []*fakeBomb{a, b}
	h.clock.now += 5
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.clock.now += 2
	h.ctrl.OnTick()

	assert.Equal(t, "C4 Time: 18.00s", h.text())
	bomb, plantedAt, ok := h.ctrl.state.Bomb()
	require.True(t, ok)
	assert.Equal(t, uint32(2), bomb.Index())
	assert.Equal(t, 115.0, plantedAt)

	assert.Len(t, h.menus.built, 2)
	assert.Equal(t, 1, h.menus.openCount(), "the first menu is closed before the second opens")
	assert.Len(t, h.sounds.emitted, 2)
}

func TestReplantWithBothValid(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.entities.bombs = []*fakeBomb{{index: 9, fuse: 30, valid: true}}
	h.clock.now += 1
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	bomb, _, ok := h.ctrl.state.Bomb()
	require.True(t, ok)
	assert.Equal(t, uint32(9), bomb.Index())
	assert.Equal(t, 1, h.menus.openCount())
}

func TestOnRoundEnd_ClosesAndDisarms(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	result := h.ctrl.OnRoundEnd(&host.RoundEndEvent{Winner: 2})

	assert.Equal(t, host.Continue, result)
	assert.False(t, h.ctrl.IsArmed())
	assert.False(t, h.ctrl.DisplayOpen())
	assert.Equal(t, 0, h.menus.openCount())
	assert.Equal(t, 1, h.menus.closeCalls, "the menu is closed exactly once")
}

func TestOnRoundEnd_Idle(t *testing.T) {
	h := newHarness(t)

	assert.NotPanics(t, func() {
		h.ctrl.OnRoundEnd(&host.RoundEndEvent{})
		h.ctrl.OnRoundEnd(nil)
	})
	assert.False(t, h.ctrl.IsArmed())
	assert.Equal(t, 0, h.menus.closeCalls)
}

func TestCleanup_Idempotent(t *testing.T) {
	h := newHarness(t)

	h.ctrl.Cleanup()
	assert.Equal(t, 0, h.menus.closeCalls, "nothing to close")

	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.ctrl.Cleanup()
	h.ctrl.Cleanup()
	h.ctrl.Cleanup()

	assert.Equal(t, 1, h.menus.closeCalls)
	assert.False(t, h.ctrl.DisplayOpen())
}

func TestCleanup_MenuAlreadyClosedByServer(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	// the server tore the menu down on its own
	require.NoError(t, h.menus.CloseMenu(h.menus.built[0]))

	assert.NotPanics(t, h.ctrl.Cleanup)
	assert.False(t, h.ctrl.DisplayOpen())
}

func TestCleanup_ClosePanics(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}
	h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})

	h.menus.panicClose = true

	assert.NotPanics(t, func() { h.ctrl.OnRoundEnd(&host.RoundEndEvent{}) })
	assert.False(t, h.ctrl.DisplayOpen())
	assert.False(t, h.ctrl.IsArmed())
}

func TestFormatRemaining(t *testing.T) {
	assert.Equal(t, "C4 Time: 12.34s", FormatRemaining(12.34))
	assert.Equal(t, "C4 Time: 0.50s", FormatRemaining(0.5))
	assert.Equal(t, TextDetonated, FormatRemaining(0))
	assert.Equal(t, TextDetonated, FormatRemaining(-3))
}

func TestIsArmed_ConcurrentReaders(t *testing.T) {
	h := newHarness(t)
	h.entities.bombs = []*fakeBomb{{index: 1, fuse: 40, valid: true}}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				_ = h.ctrl.IsArmed()
			}
		}
	}()

	for i := 0; i < 200; i++ {
		h.ctrl.OnBombPlanted(&host.BombPlantedEvent{})
		h.ctrl.OnTick()
		h.ctrl.OnRoundEnd(&host.RoundEndEvent{})
	}
	close(done)
	wg.Wait()

	assert.False(t, h.ctrl.IsArmed())
}
