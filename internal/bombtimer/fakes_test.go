package bombtimer

import (
	"testing"

	"github.com/c4timer/extension/pkg/host"
)

type fakeBomb struct {
	index uint32
	fuse  float64
	valid bool
}

func (b *fakeBomb) IsValid() bool        { return b.valid }
func (b *fakeBomb) Index() uint32        { return b.index }
func (b *fakeBomb) DesignerName() string { return PlantedC4DesignerName }
func (b *fakeBomb) TimerLength() float64 { return b.fuse }

type fakeEntities struct {
	bombs []*fakeBomb
}

func (e *fakeEntities) FindByDesignerName(name string) []host.EntityRef {
	if name != PlantedC4DesignerName {
		return nil
	}
	refs := make([]host.EntityRef, 0, len(e.bombs))
	for _, b := range e.bombs {
		refs = append(refs, b)
	}
	return refs
}

type fakeClock struct {
	now float64
}

func (c *fakeClock) CurrentTime() float64 { return c.now }

type fakeOption struct {
	text string
	sets int
}

func (o *fakeOption) Text() string        { return o.text }
func (o *fakeOption) SetText(text string) { o.text = text; o.sets++ }

type fakeMenu struct {
	title        string
	exitDisabled bool
	soundOff     bool
	cfg          host.MenuConfig
	options      []*fakeOption
}

func (m *fakeMenu) Title() string                 { return m.title }
func (m *fakeMenu) Configure(cfg host.MenuConfig) { m.cfg = cfg }

type fakeBuilder struct {
	menu *fakeMenu
}

func (b *fakeBuilder) SetTitle(title string) host.MenuBuilder { b.menu.title = title; return b }
func (b *fakeBuilder) DisableExit() host.MenuBuilder          { b.menu.exitDisabled = true; return b }
func (b *fakeBuilder) DisableSound() host.MenuBuilder         { b.menu.soundOff = true; return b }
func (b *fakeBuilder) AddTextOption(text string, _ host.TextSize, _ bool) (host.MenuBuilder, host.TextOption) {
	o := &fakeOption{text: text}
	b.menu.options = append(b.menu.options, o)
	return b, o
}
func (b *fakeBuilder) Build() host.Menu { return b.menu }

type fakeMenus struct {
	open       map[*fakeMenu]bool
	built      []*fakeMenu
	closeCalls int
	panicClose bool
}

func newFakeMenus() *fakeMenus {
	return &fakeMenus{open: make(map[*fakeMenu]bool)}
}

func (m *fakeMenus) CreateBuilder() host.MenuBuilder {
	menu := &fakeMenu{}
	m.built = append(m.built, menu)
	return &fakeBuilder{menu: menu}
}

func (m *fakeMenus) OpenMenu(menu host.Menu) { m.open[menu.(*fakeMenu)] = true }

func (m *fakeMenus) CloseMenu(menu host.Menu) error {
	m.closeCalls++
	if m.panicClose {
		panic("menu already destroyed")
	}
	fm := menu.(*fakeMenu)
	if !m.open[fm] {
		return host.ErrMenuNotFound
	}
	delete(m.open, fm)
	return nil
}

func (m *fakeMenus) openCount() int { return len(m.open) }

type fakeSounds struct {
	emitted []host.SoundEvent
}

func (s *fakeSounds) Emit(ev host.SoundEvent) { s.emitted = append(s.emitted, ev) }

type harness struct {
	entities *fakeEntities
	clock    *fakeClock
	menus    *fakeMenus
	sounds   *fakeSounds
	enabled  bool
	ctrl     *Controller
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		entities: &fakeEntities{},
		clock:    &fakeClock{now: 100},
		menus:    newFakeMenus(),
		sounds:   &fakeSounds{},
		enabled:  true,
	}
	ctrl, err := NewController(Dependencies{
		Entities: h.entities,
		Globals:  h.clock,
		Menus:    h.menus,
		Sounds:   h.sounds,
		Enabled:  func() bool { return h.enabled },
	})
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	h.ctrl = ctrl
	return h
}

// text returns the countdown line of the most recently built menu.
func (h *harness) text() string {
	if len(h.menus.built) == 0 {
		return ""
	}
	m := h.menus.built[len(h.menus.built)-1]
	if len(m.options) == 0 {
		return ""
	}
	return m.options[0].text
}
