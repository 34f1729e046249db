package sim

import (
	"github.com/c4timer/extension/pkg/host"
)

// TextChangeFunc observes countdown text changes.
type TextChangeFunc func(menu, text string)

// MenuRegistry keeps track of the menus shown to players.
type MenuRegistry struct {
	open   map[*Menu]bool
	opened int
	closed int

	// OnTextChange, when set, is called every time an option of an open menu changes text.
	OnTextChange TextChangeFunc
}

// NewMenuRegistry creates a registry with no menu open.
func NewMenuRegistry() *MenuRegistry {
	return &MenuRegistry{open: make(map[*Menu]bool)}
}

// CreateBuilder implements host.MenuAPI.
func (r *MenuRegistry) CreateBuilder() host.MenuBuilder {
	return &menuBuilder{menu: &Menu{registry: r}}
}

// OpenMenu implements host.MenuAPI.
func (r *MenuRegistry) OpenMenu(m host.Menu) {
	menu, ok := m.(*Menu)
	if !ok || r.open[menu] {
		return
	}
	r.open[menu] = true
	r.opened++
}

// CloseMenu implements host.MenuAPI.
func (r *MenuRegistry) CloseMenu(m host.Menu) error {
	menu, ok := m.(*Menu)
	if !ok || !r.open[menu] {
		return host.ErrMenuNotFound
	}
	delete(r.open, menu)
	r.closed++
	return nil
}

// CloseAll tears down every open menu, as the server does on map change.
func (r *MenuRegistry) CloseAll() {
	for m := range r.open {
		delete(r.open, m)
		r.closed++
	}
}

// Open returns the menus currently shown.
func (r *MenuRegistry) Open() []*Menu {
	menus := make([]*Menu, 0, len(r.open))
	for m := range r.open {
		menus = append(menus, m)
	}
	return menus
}

// Counts returns how many menus were opened and closed so far.
func (r *MenuRegistry) Counts() (opened, closed int) {
	return r.opened, r.closed
}

// Menu is a built menu.
type Menu struct {
	registry     *MenuRegistry
	title        string
	ExitDisabled bool
	SoundOff     bool
	Config       host.MenuConfig
	Options      []*TextOption
}

// Title implements host.Menu.
func (m *Menu) Title() string { return m.title }

// Configure implements host.Menu.
func (m *Menu) Configure(cfg host.MenuConfig) { m.Config = cfg }

// TextOption is a line of text in a Menu.
type TextOption struct {
	menu      *Menu
	text      string
	Size      host.TextSize
	PlaySound bool
}

// Text implements host.TextOption.
func (o *TextOption) Text() string { return o.text }

// SetText implements host.TextOption.
func (o *TextOption) SetText(text string) {
	if o.text == text {
		return
	}
	o.text = text
	r := o.menu.registry
	if r.OnTextChange != nil && r.open[o.menu] {
		r.OnTextChange(o.menu.title, text)
	}
}

type menuBuilder struct {
	menu *Menu
}

func (b *menuBuilder) SetTitle(title string) host.MenuBuilder {
	b.menu.title = title
	return b
}

func (b *menuBuilder) DisableExit() host.MenuBuilder {
	b.menu.ExitDisabled = true
	return b
}

func (b *menuBuilder) DisableSound() host.MenuBuilder {
	b.menu.SoundOff = true
	return b
}

func (b *menuBuilder) AddTextOption(text string, size host.TextSize, playSound bool) (host.MenuBuilder, host.TextOption) {
	o := &TextOption{menu: b.menu, text: text, Size: size, PlaySound: playSound}
	b.menu.Options = append(b.menu.Options, o)
	return b, o
}

func (b *menuBuilder) Build() host.Menu {
	return b.menu
}
