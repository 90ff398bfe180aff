package render

import (
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/gridsim/core"
	"github.com/lixenwraith/gridsim/engine"
)

const (
	// CellWidth is the number of terminal columns per grid cell, roughly square on most fonts
	CellWidth = 2

	statusRow = 0
	gridTop   = 1 // border row; cells start one below
	gridLeft  = 0 // border column; cells start one right
)

const emptyGlyph = '·'

// GridRenderer draws a World onto a tcell screen and maps screen coordinates back to grid cells
// Grid y grows downward, matching screen rows
type GridRenderer struct {
	screen   tcell.Screen
	selected int
	hasSel   bool
}

// NewGridRenderer creates a renderer bound to screen
func NewGridRenderer(screen tcell.Screen) *GridRenderer {
	return &GridRenderer{screen: screen}
}

// Select highlights the entity with the given id on subsequent draws
func (r *GridRenderer) Select(id int) {
	r.selected = id
	r.hasSel = true
}

// ClearSelection removes the highlight
func (r *GridRenderer) ClearSelection() {
	r.hasSel = false
}

// Selected returns the highlighted id, if any
func (r *GridRenderer) Selected() (int, bool) {
	return r.selected, r.hasSel
}

// Draw renders the world's spatial index and a status line, then shows the frame
// Cells are drawn from the index, so the frame shows exactly what point queries return
func (r *GridRenderer) Draw(w *engine.World, status string) {
	r.screen.Clear()

	r.drawText(0, statusRow, status, styleStatus)
	r.drawBorder(w.Width(), w.Height())

	for cy := 0; cy < w.Height(); cy++ {
		for cx := 0; cx < w.Width(); cx++ {
			sx, sy := r.cellOrigin(cx, cy)
			e, ok := w.EntityAt(core.Vec2{X: float64(cx) + 0.5, Y: float64(cy) + 0.5})
			if !ok {
				r.screen.SetContent(sx, sy, emptyGlyph, nil, styleEmpty)
				continue
			}

			style := EntityStyle(e.ID)
			if r.hasSel && e.ID == r.selected {
				style = styleSelected
			}
			r.screen.SetContent(sx, sy, Glyph(e), nil, style)
		}
	}

	r.screen.Show()
}

// ScreenToWorld maps a screen position to the center of the grid cell under it
// ok is false outside the grid area
func (r *GridRenderer) ScreenToWorld(w *engine.World, sx, sy int) (core.Vec2, bool) {
	col := sx - (gridLeft + 1)
	row := sy - (gridTop + 1)
	if col < 0 || row < 0 {
		return core.Vec2{}, false
	}
	cx, cy := col/CellWidth, row
	if cx >= w.Width() || cy >= w.Height() {
		return core.Vec2{}, false
	}
	return core.Vec2{X: float64(cx) + 0.5, Y: float64(cy) + 0.5}, true
}

// HitTest returns the entity drawn at a screen position
func (r *GridRenderer) HitTest(w *engine.World, sx, sy int) (*core.Entity, bool) {
	p, ok := r.ScreenToWorld(w, sx, sy)
	if !ok {
		return nil, false
	}
	return w.EntityAt(p)
}

// Glyph picks the display rune for an entity: last alphanumeric of its name, else '@'
// "Entity 1" renders as '1'
func Glyph(e *core.Entity) rune {
	name := e.Name
	for len(name) > 0 {
		ch, size := utf8.DecodeLastRuneInString(name)
		if unicode.IsLetter(ch) || unicode.IsDigit(ch) {
			return ch
		}
		name = name[:len(name)-size]
	}
	return '@'
}

func (r *GridRenderer) cellOrigin(cx, cy int) (int, int) {
	return gridLeft + 1 + cx*CellWidth, gridTop + 1 + cy
}

func (r *GridRenderer) drawBorder(width, height int) {
	left, top := gridLeft, gridTop
	right := gridLeft + 1 + width*CellWidth
	bottom := gridTop + 1 + height

	for x := left + 1; x < right; x++ {
		r.screen.SetContent(x, top, tcell.RuneHLine, nil, styleBorder)
		r.screen.SetContent(x, bottom, tcell.RuneHLine, nil, styleBorder)
	}
	for y := top + 1; y < bottom; y++ {
		r.screen.SetContent(left, y, tcell.RuneVLine, nil, styleBorder)
		r.screen.SetContent(right, y, tcell.RuneVLine, nil, styleBorder)
	}
	r.screen.SetContent(left, top, tcell.RuneULCorner, nil, styleBorder)
	r.screen.SetContent(right, top, tcell.RuneURCorner, nil, styleBorder)
	r.screen.SetContent(left, bottom, tcell.RuneLLCorner, nil, styleBorder)
	r.screen.SetContent(right, bottom, tcell.RuneLRCorner, nil, styleBorder)
}

func (r *GridRenderer) drawText(x, y int, text string, style tcell.Style) {
	for _, ch := range text {
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
