package render

import "github.com/gdamore/tcell/v2"

// entityPalette cycles by entity id so neighbours stay distinguishable
var entityPalette = []tcell.Color{
	tcell.ColorAqua,
	tcell.ColorYellow,
	tcell.ColorLime,
	tcell.ColorFuchsia,
	tcell.ColorOrange,
	tcell.ColorDodgerBlue,
	tcell.ColorHotPink,
	tcell.ColorSilver,
}

var (
	styleBorder   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleEmpty    = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite).Bold(true)
)

// EntityStyle returns the draw style for an entity id
func EntityStyle(id int) tcell.Style {
	idx := id % len(entityPalette)
	if idx < 0 {
		idx += len(entityPalette)
	}
	return tcell.StyleDefault.Foreground(entityPalette[idx]).Bold(true)
}
