// Package host describes the game server services a plugin is allowed to touch.
// The server owns every object behind these interfaces; plugins only borrow them.
package host

import "errors"

// ErrMenuNotFound is returned by MenuAPI.CloseMenu when the menu is not open,
// either because it was never opened or because the server already tore it down.
var ErrMenuNotFound = errors.New("menu not found")

// EntityRef is a borrowed reference to a server entity. The entity can disappear
// between any two calls, so IsValid must be checked before reading anything else.
type EntityRef interface {
	IsValid() bool
	// Index identifies the entity. It is never handed to a later entity, so two refs
	// with the same index are the same entity.
	Index() uint32
	DesignerName() string
	// TimerLength is the fuse duration in seconds of a planted bomb.
	TimerLength() float64
}

// EntitySystem looks up live entities.
type EntitySystem interface {
	FindByDesignerName(name string) []EntityRef
}

// GlobalVars exposes the server simulation clock.
type GlobalVars interface {
	// CurrentTime returns simulation time in seconds.
	CurrentTime() float64
}

// TextSize controls how large a menu option is drawn.
type TextSize int

const (
	TextSizeSmall TextSize = iota
	TextSizeMedium
	TextSizeLarge
)

// TextOption is a read-only line of text inside a menu.
type TextOption interface {
	Text() string
	SetText(text string)
}

// MenuConfig holds presentation switches applied after a menu is built.
type MenuConfig struct {
	HideFooter     bool
	DefaultComment string
}

// Menu is an on-screen menu handle.
type Menu interface {
	Title() string
	Configure(cfg MenuConfig)
}

// MenuBuilder assembles a Menu.
type MenuBuilder interface {
	SetTitle(title string) MenuBuilder
	DisableExit() MenuBuilder
	DisableSound() MenuBuilder
	AddTextOption(text string, size TextSize, playSound bool) (MenuBuilder, TextOption)
	Build() Menu
}

// MenuAPI creates, shows and closes menus.
type MenuAPI interface {
	CreateBuilder() MenuBuilder
	// OpenMenu shows the menu to every connected player.
	OpenMenu(m Menu)
	// CloseMenu hides the menu for everyone. It returns ErrMenuNotFound when the
	// menu is not open.
	CloseMenu(m Menu) error
}

// Recipients selects who hears a sound event.
type Recipients int

const (
	AllPlayers Recipients = iota
)

// SoundEvent is a one-shot sound played by the server.
type SoundEvent struct {
	Name       string
	Recipients Recipients
}

// SoundEmitter plays sound events. Emission is fire-and-forget.
type SoundEmitter interface {
	Emit(ev SoundEvent)
}
