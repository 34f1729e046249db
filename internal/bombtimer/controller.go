// Package bombtimer shows a shared countdown menu between a bomb plant and the end of the round.
package bombtimer

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/c4timer/extension/pkg/host"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/c4timer/extension/internal/bombtimer"

// Dependencies holds the server services the controller needs.
type Dependencies struct {
	Entities host.EntitySystem
	Globals  host.GlobalVars
	Menus    host.MenuAPI
	Sounds   host.SoundEmitter

	// Enabled gates the plant handler. It is read on every plant so that a
	// config reload takes effect on the next round. Nil means always enabled.
	Enabled func() bool

	Logger *slog.Logger
}

// Controller drives State and the countdown menu from server events.
// All methods except IsArmed must be called from the server's event goroutine.
type Controller struct {
	deps  Dependencies
	state *State

	// armed mirrors state.IsArmed for readers on other goroutines, such as log handlers.
	armed atomic.Bool

	// menu and timerOption are both set or both nil.
	menu        host.Menu
	timerOption host.TextOption

	plants      metric.Int64Counter
	detonations metric.Int64Counter
}

// NewController creates a disarmed controller.
func NewController(deps Dependencies) (*Controller, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	c := &Controller{
		deps:  deps,
		state: NewState(),
	}

	m := otel.Meter(instrumentationName)

	var err error
	c.plants, err = m.Int64Counter(
		"bombtimer.plants",
		metric.WithDescription("Bomb plants that started a countdown"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating plants counter: %w", err)
	}

	c.detonations, err = m.Int64Counter(
		"bombtimer.detonations",
		metric.WithDescription("Countdowns that reached zero"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detonations counter: %w", err)
	}

	return c, nil
}

// IsArmed reports whether a bomb is being counted down. Safe for concurrent use.
func (c *Controller) IsArmed() bool {
	return c.armed.Load()
}

// DisplayOpen reports whether the countdown menu is open.
func (c *Controller) DisplayOpen() bool {
	return c.menu != nil
}

// Remaining returns the seconds left on the tracked bomb. ok is false when
// nothing is armed or the bomb entity is gone.
func (c *Controller) Remaining() (remaining float64, ok bool) {
	bomb, plantedAt, armed := c.state.Bomb()
	if !armed || !bomb.IsValid() {
		return 0, false
	}
	return bomb.TimerLength() - (c.deps.Globals.CurrentTime() - plantedAt), true
}

// OnBombPlanted starts the countdown for the planted bomb.
func (c *Controller) OnBombPlanted(ev *host.BombPlantedEvent) host.HookResult {
	if c.deps.Enabled != nil && !c.deps.Enabled() {
		return host.Continue
	}

	bomb := c.findPlantedBomb()
	if bomb == nil {
		c.deps.Logger.Debug("bomb planted but no planted_c4 entity found")
		return host.Continue
	}

	now := c.deps.Globals.CurrentTime()
	if err := c.state.Arm(bomb, now); err != nil {
		c.deps.Logger.Debug("could not arm bomb timer", "error", err, "entity", bomb.Index())
		return host.Continue
	}
	c.armed.Store(true)

	if ev != nil {
		ev.DontBroadcast = true
	}
	c.openDisplay(bomb)
	if c.deps.Sounds != nil {
		c.deps.Sounds.Emit(host.SoundEvent{Name: PlantedSound, Recipients: host.AllPlayers})
	}

	c.plants.Add(context.Background(), 1)
	c.deps.Logger.Info("bomb timer started", "entity", bomb.Index(), "plantedAt", now, "fuse", bomb.TimerLength())

	return host.Continue
}

// OnTick refreshes the countdown text. It does nothing unless a bomb is armed,
// still valid, and the menu is open; an invalidated bomb leaves the last text in place.
func (c *Controller) OnTick() {
	if c.timerOption == nil || c.menu == nil {
		return
	}
	remaining, ok := c.Remaining()
	if !ok {
		return
	}

	if remaining <= 0 {
		if c.timerOption.Text() != TextDetonated {
			c.timerOption.SetText(TextDetonated)
			c.detonations.Add(context.Background(), 1)
			c.deps.Logger.Info("bomb timer reached zero")
		}
		return
	}

	c.timerOption.SetText(FormatRemaining(remaining))
}

// OnRoundEnd closes the menu and forgets the bomb, armed or not.
func (c *Controller) OnRoundEnd(*host.RoundEndEvent) host.HookResult {
	c.Cleanup()
	c.state.Disarm()
	c.armed.Store(false)
	return host.Continue
}

// Cleanup closes the countdown menu if one is open. Safe to call repeatedly.
func (c *Controller) Cleanup() {
	if c.menu != nil {
		c.closeMenu(c.menu)
	}
	c.menu = nil
	c.timerOption = nil
}

func (c *Controller) findPlantedBomb() host.EntityRef {
	for _, e := range c.deps.Entities.FindByDesignerName(PlantedC4DesignerName) {
		if e != nil && e.IsValid() {
			return e
		}
	}
	return nil
}

func (c *Controller) openDisplay(bomb host.EntityRef) {
	c.Cleanup()

	fuse := bomb.TimerLength()
	if fuse <= 0 {
		fuse = DefaultFuseLength
	}

	builder, option := c.deps.Menus.CreateBuilder().
		SetTitle(MenuTitle).
		DisableExit().
		DisableSound().
		AddTextOption(FormatRemaining(fuse), host.TextSizeMedium, false)
	menu := builder.Build()
	menu.Configure(host.MenuConfig{HideFooter: true, DefaultComment: ""})

	c.deps.Menus.OpenMenu(menu)
	c.menu = menu
	c.timerOption = option
}

// closeMenu closes m, treating an already closed menu as success.
func (c *Controller) closeMenu(m host.Menu) {
	defer func() {
		if p := recover(); p != nil {
			c.deps.Logger.Debug("menu close panicked, assuming already closed", "panic", p)
		}
	}()
	if err := c.deps.Menus.CloseMenu(m); err != nil {
		c.deps.Logger.Debug("menu already closed", "error", err)
	}
}
