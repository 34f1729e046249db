package bombtimer

import "fmt"

const (
	// PlantedC4DesignerName is the designer name of the planted bomb entity.
	PlantedC4DesignerName = "planted_c4"

	// PlantedSound is the sound event played to everyone when the timer starts.
	PlantedSound = "Event.BombPlanted"

	// MenuTitle is the title of the countdown menu.
	MenuTitle = "Bomb Timer"

	// TextDetonated replaces the countdown once the fuse has run out.
	TextDetonated = "C4 Time: BOOM!"

	// DefaultFuseLength seeds the countdown text when the bomb cannot report its own fuse.
	DefaultFuseLength = 40.0
)

// FormatRemaining renders the countdown line for the given seconds left.
func FormatRemaining(remaining float64) string {
	if remaining <= 0 {
		return TextDetonated
	}
	return fmt.Sprintf("C4 Time: %.2fs", remaining)
}
