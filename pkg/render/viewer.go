// Package render draws game-state snapshots to a terminal using tcell.
// The viewer is snapshot-driven: it never touches the simulation directly,
// so the same code serves the playing client and a local spectator.
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/cyohn55/RTS/pkg/config"
	"github.com/cyohn55/RTS/pkg/engine"
	"github.com/cyohn55/RTS/pkg/physics"
)

// Terminal cells are roughly twice as tall as wide, so the horizontal scale
// doubles the vertical one to keep the battlefield visually square.
const (
	cellsPerUnitX = 2.0
	cellsPerUnitZ = 1.0
	hudRows       = 2
)

var playerColors = []tcell.Color{
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorBlue,
	tcell.ColorYellow,
}

// Viewer renders snapshots of a skirmish onto a tcell screen.
type Viewer struct {
	screen tcell.Screen
	width  int
	height int

	// Camera center in world space. The cursor is the order target the
	// local player steers with the keyboard.
	camera  physics.Vector3
	cursor  physics.Vector3
	gates   []config.GateConfig
	localID int
}

// NewViewer creates a viewer for the given screen and gate layout.
func NewViewer(screen tcell.Screen, gates []config.GateConfig, localPlayerID int) *Viewer {
	w, h := screen.Size()
	return &Viewer{
		screen:  screen,
		width:   w,
		height:  h,
		gates:   gates,
		localID: localPlayerID,
	}
}

// Resize updates cached screen dimensions after a terminal resize event.
func (v *Viewer) Resize() {
	v.width, v.height = v.screen.Size()
}

// Cursor returns the current order-target position in world space.
func (v *Viewer) Cursor() physics.Vector3 {
	return v.cursor
}

// MoveCursor shifts the order cursor by the given world-space delta and
// drags the camera along when the cursor leaves the visible area.
func (v *Viewer) MoveCursor(dx, dz float64) {
	v.cursor.X += dx
	v.cursor.Z += dz

	halfW := float64(v.width) / (2 * cellsPerUnitX)
	halfH := float64(v.height-hudRows) / (2 * cellsPerUnitZ)
	if v.cursor.X < v.camera.X-halfW {
		v.camera.X = v.cursor.X + halfW
	}
	if v.cursor.X > v.camera.X+halfW {
		v.camera.X = v.cursor.X - halfW
	}
	if v.cursor.Z < v.camera.Z-halfH {
		v.camera.Z = v.cursor.Z + halfH
	}
	if v.cursor.Z > v.camera.Z+halfH {
		v.camera.Z = v.cursor.Z - halfH
	}
}

// CenterOn snaps the camera and cursor to a world position.
func (v *Viewer) CenterOn(pos physics.Vector3) {
	v.camera = pos
	v.cursor = pos
}

// worldToScreen projects a world position into screen cell coordinates.
// Row 0 is reserved for the HUD.
func (v *Viewer) worldToScreen(pos physics.Vector3) (int, int) {
	x := int(math.Round((pos.X-v.camera.X)*cellsPerUnitX)) + v.width/2
	y := int(math.Round((pos.Z-v.camera.Z)*cellsPerUnitZ)) + (v.height-hudRows)/2 + 1
	return x, y
}

func (v *Viewer) inField(x, y int) bool {
	return x >= 0 && x < v.width && y >= 1 && y < v.height-1
}

// RenderFrame draws one complete snapshot.
func (v *Viewer) RenderFrame(state *engine.GameState) {
	v.screen.Clear()
	defaultStyle := tcell.StyleDefault

	v.drawGates(state, defaultStyle)
	v.drawUnits(state, defaultStyle)
	v.drawCursor(defaultStyle)
	v.drawTopBar(state, defaultStyle)
	v.drawStatusBar(state, defaultStyle)

	if state.Status == engine.GameStatusEnded {
		v.drawBanner(state, defaultStyle)
	}

	v.screen.Show()
}

// unitGlyph picks the rune for one unit. Structures and royals get fixed
// glyphs; regular units show their species initial, hoppers and fliers
// alternating case with their animation phase so motion reads on screen.
func unitGlyph(u engine.UnitState) rune {
	switch u.Archetype {
	case "base":
		return '#'
	case "queen":
		return 'Q'
	case "king":
		return 'K'
	}
	if len(u.Species) == 0 {
		return '?'
	}
	ch := rune(u.Species[0])
	if u.AnimPhase >= 0.5 {
		return ch - ('a' - 'A')
	}
	return ch
}

func colorFor(playerID int) tcell.Color {
	if playerID >= 0 && playerID < len(playerColors) {
		return playerColors[playerID]
	}
	return tcell.ColorWhite
}

func (v *Viewer) drawUnits(state *engine.GameState, defaultStyle tcell.Style) {
	for _, u := range state.Units {
		x, y := v.worldToScreen(u.Position)
		if !v.inField(x, y) {
			continue
		}

		style := defaultStyle.Foreground(colorFor(u.PlayerID))
		if u.HP*4 <= u.MaxHP {
			style = style.Dim(true)
		}
		if u.Selected {
			style = style.Reverse(true)
		}
		if u.State == "pursuing_enemy" {
			style = style.Bold(true)
		}

		v.screen.SetContent(x, y, unitGlyph(u), nil, style)
	}
}

// drawGates shades each gate's trigger zone, darker the further the gate
// has lowered.
func (v *Viewer) drawGates(state *engine.GameState, defaultStyle tcell.Style) {
	frames := make(map[string]int, len(state.Gates))
	for _, gs := range state.Gates {
		frames[gs.Name] = gs.Frame
	}

	for _, gate := range v.gates {
		shade := gateShades[0]
		if f, ok := frames[gate.Name]; ok && f >= 0 && f < len(gateShades) {
			shade = gateShades[f]
		}
		style := defaultStyle.Foreground(tcell.ColorGray)

		minX := gate.Zone.X - gate.Radius
		maxX := gate.Zone.X + gate.Radius
		for wx := minX; wx <= maxX; wx += 1 / cellsPerUnitX {
			for wz := gate.Zone.Z - gate.Radius; wz <= gate.Zone.Z+gate.Radius; wz += 1 / cellsPerUnitZ {
				dx := wx - gate.Zone.X
				dz := wz - gate.Zone.Z
				if dx*dx+dz*dz > gate.Radius*gate.Radius {
					continue
				}
				x, y := v.worldToScreen(physics.Vector3{X: wx, Z: wz})
				if v.inField(x, y) {
					v.screen.SetContent(x, y, shade, nil, style)
				}
			}
		}
	}
}

// gateShades indexes by animation frame: fully up renders lightest.
var gateShades = [4]rune{'░', '▒', '▓', '█'}

func (v *Viewer) drawCursor(defaultStyle tcell.Style) {
	x, y := v.worldToScreen(v.cursor)
	if !v.inField(x, y) {
		return
	}
	style := defaultStyle.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)
	v.screen.SetContent(x, y, '+', nil, style)
}

func (v *Viewer) drawTopBar(state *engine.GameState, defaultStyle tcell.Style) {
	style := defaultStyle.Reverse(true)
	for x := 0; x < v.width; x++ {
		v.screen.SetContent(x, 0, ' ', nil, style)
	}

	text := fmt.Sprintf(" tick %d ", state.Tick)
	for id := 0; id < len(state.Players); id++ {
		p, ok := state.Players[id]
		if !ok {
			continue
		}
		text += fmt.Sprintf("| %s K:%d L:%d ", p.Name, p.Kills, p.Losses)
	}
	v.drawText(0, 0, text, style)
}

func (v *Viewer) drawStatusBar(state *engine.GameState, defaultStyle tcell.Style) {
	y := v.height - 1
	style := defaultStyle.Reverse(true)
	for x := 0; x < v.width; x++ {
		v.screen.SetContent(x, y, ' ', nil, style)
	}

	text := fmt.Sprintf(" cursor (%.1f, %.1f) ", v.cursor.X, v.cursor.Z)
	for _, gs := range state.Gates {
		text += fmt.Sprintf("| gate %s: %s ", gs.Name, gs.State)
	}
	v.drawText(0, y, text, style)
}

func (v *Viewer) drawBanner(state *engine.GameState, defaultStyle tcell.Style) {
	winner := "nobody"
	if p, ok := state.Players[state.Winner]; ok {
		winner = p.Name
	}
	text := fmt.Sprintf(" %s wins ", winner)
	style := defaultStyle.Bold(true).Reverse(true)
	v.drawText((v.width-len(text))/2, v.height/2, text, style)
}

func (v *Viewer) drawText(x, y int, text string, style tcell.Style) {
	for i, ch := range text {
		if x+i >= 0 && x+i < v.width {
			v.screen.SetContent(x+i, y, ch, nil, style)
		}
	}
}
