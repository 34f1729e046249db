// Package sim is an in-process game server used by the c4timer CLI and by
// integration tests. It implements the pkg/host interfaces on top of a donburi world.
package sim

import (
	"github.com/c4timer/extension/pkg/host"

	"github.com/yohamta/donburi"
)

type DesignerNameData struct {
	Name string
}

// SerialData numbers entities in spawn order. Unlike donburi ids, serials are never reused.
type SerialData struct {
	Serial uint32
}

type BombData struct {
	TimerLength float64
}

var (
	DesignerName = donburi.NewComponentType[DesignerNameData]()
	Bomb         = donburi.NewComponentType[BombData]()
	Serial       = donburi.NewComponentType[SerialData]()
)

// EntityWorld is the server's entity store.
type EntityWorld struct {
	world  donburi.World
	spawns uint32
}

// NewEntityWorld creates an empty world.
func NewEntityWorld() *EntityWorld {
	return &EntityWorld{world: donburi.NewWorld()}
}

// SpawnPlantedC4 creates a planted bomb with the given fuse in seconds.
func (w *EntityWorld) SpawnPlantedC4(fuse float64) host.EntityRef {
	w.spawns++
	entity := w.world.Create(Serial, DesignerName, Bomb)
	entry := w.world.Entry(entity)
	Serial.SetValue(entry, SerialData{Serial: w.spawns})
	DesignerName.SetValue(entry, DesignerNameData{Name: "planted_c4"})
	Bomb.SetValue(entry, BombData{TimerLength: fuse})
	return &entityRef{world: w.world, entity: entity, serial: w.spawns}
}

// Remove deletes the entity behind ref. Refs to it become invalid.
func (w *EntityWorld) Remove(ref host.EntityRef) {
	r, ok := ref.(*entityRef)
	if !ok || !r.IsValid() {
		return
	}
	w.world.Remove(r.entity)
}

// RemoveByDesignerName deletes every entity with the given designer name.
func (w *EntityWorld) RemoveByDesignerName(name string) int {
	refs := w.FindByDesignerName(name)
	for _, ref := range refs {
		w.Remove(ref)
	}
	return len(refs)
}

// SetTimerLength changes the fuse of a planted bomb.
func (w *EntityWorld) SetTimerLength(ref host.EntityRef, fuse float64) {
	r, ok := ref.(*entityRef)
	if !ok || !r.IsValid() {
		return
	}
	entry := w.world.Entry(r.entity)
	if entry.HasComponent(Bomb) {
		Bomb.Get(entry).TimerLength = fuse
	}
}

// FindByDesignerName returns refs to every live entity with the given designer name.
func (w *EntityWorld) FindByDesignerName(name string) []host.EntityRef {
	var refs []host.EntityRef
	DesignerName.Each(w.world, func(entry *donburi.Entry) {
		if DesignerName.Get(entry).Name == name {
			refs = append(refs, &entityRef{world: w.world, entity: entry.Entity()})
		}
	})
	return refs
}

// Len returns the number of live entities.
func (w *EntityWorld) Len() int {
	return w.world.Len()
}

// entityRef is a weak handle; every accessor rechecks validity.
type entityRef struct {
	world  donburi.World
	entity donburi.Entity
	serial uint32
}

// IsValid also compares the serial, so a ref never revives when donburi
// recycles the entity slot for a later spawn.
func (r *entityRef) IsValid() bool {
	if !r.world.Valid(r.entity) {
		return false
	}
	entry := r.world.Entry(r.entity)
	return entry.HasComponent(Serial) && Serial.Get(entry).Serial == r.serial
}

func (r *entityRef) Index() uint32 {
	return r.serial
}

func (r *entityRef) DesignerName() string {
	if !r.IsValid() {
		return ""
	}
	return DesignerName.Get(r.world.Entry(r.entity)).Name
}

func (r *entityRef) TimerLength() float64 {
	if !r.IsValid() {
		return 0
	}
	entry := r.world.Entry(r.entity)
	if !entry.HasComponent(Bomb) {
		return 0
	}
	return Bomb.Get(entry).TimerLength
}
