// Package plugin binds the bomb timer to a game server's event stream.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/c4timer/extension/internal/bombtimer"
	"github.com/c4timer/extension/internal/dispatcher"
	"github.com/c4timer/extension/pkg/host"
)

// ErrAlreadyLoaded is returned by Load when the plugin is loaded twice.
var ErrAlreadyLoaded = errors.New("plugin already loaded")

// Metadata identifies the plugin to the server.
type Metadata struct {
	ID          string
	Version     string
	Name        string
	Author      string
	Description string
}

// Info is the plugin's metadata.
var Info = Metadata{
	ID:          "C4Timer",
	Version:     "1.0.0",
	Name:        "C4Timer-SwiftlyCS2",
	Author:      "c4timer",
	Description: "Shows a countdown menu from bomb plant until detonation",
}

// Registrar is the part of the dispatcher the plugin needs.
type Registrar interface {
	Register(name string, h dispatcher.HandlerFunc, opts ...dispatcher.Option) dispatcher.ListenerID
	Remove(name string, id dispatcher.ListenerID) bool
}

// Core bundles the server services handed to the plugin.
type Core struct {
	Entities host.EntitySystem
	Globals  host.GlobalVars
	Menus    host.MenuAPI
	Sounds   host.SoundEmitter
	Events   Registrar
}

// Dependencies holds plugin-wide settings.
type Dependencies struct {
	Logger *slog.Logger
	// Enabled is the live feature switch. Nil means always on.
	Enabled func() bool
}

// Plugin owns the bomb timer controller for one server.
type Plugin struct {
	core      Core
	deps      Dependencies
	timer     *bombtimer.Controller
	listeners map[string]dispatcher.ListenerID
	loaded    bool
}

// New creates an unloaded plugin.
func New(core Core, deps Dependencies) *Plugin {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Plugin{core: core, deps: deps}
}

// Load creates the controller and subscribes it to the server events.
func (p *Plugin) Load(hotReload bool) error {
	if p.loaded {
		return ErrAlreadyLoaded
	}

	timer, err := bombtimer.NewController(bombtimer.Dependencies{
		Entities: p.core.Entities,
		Globals:  p.core.Globals,
		Menus:    p.core.Menus,
		Sounds:   p.core.Sounds,
		Enabled:  p.deps.Enabled,
		Logger:   p.deps.Logger,
	})
	if err != nil {
		return fmt.Errorf("creating bomb timer: %w", err)
	}
	p.timer = timer

	p.listeners = map[string]dispatcher.ListenerID{
		host.EventBombPlanted: p.core.Events.Register(host.EventBombPlanted, p.handleBombPlanted, dispatcher.Logged()),
		host.EventRoundEnd:    p.core.Events.Register(host.EventRoundEnd, p.handleRoundEnd, dispatcher.Logged()),
		host.EventTick:        p.core.Events.Register(host.EventTick, p.handleTick),
	}

	p.loaded = true
	p.deps.Logger.Info("Bomb Timer loaded", "version", Info.Version, "hotReload", hotReload)
	return nil
}

// Unload closes any open countdown and removes the plugin's own listeners.
// Listeners registered by others stay in place.
func (p *Plugin) Unload() {
	if !p.loaded {
		return
	}
	p.timer.Cleanup()

	for name, id := range p.listeners {
		p.core.Events.Remove(name, id)
	}
	p.listeners = nil

	p.loaded = false
	p.deps.Logger.Info("Bomb Timer unloaded")
}

// Loaded reports whether Load succeeded and Unload has not run since.
func (p *Plugin) Loaded() bool {
	return p.loaded
}

// Controller returns the bomb timer, nil before the first Load.
func (p *Plugin) Controller() *bombtimer.Controller {
	return p.timer
}
