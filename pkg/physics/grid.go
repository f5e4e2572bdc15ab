// pkg/physics/grid.go
package physics

import "math"

// CellKey identifies a square cell on the ground plane by floor division of
// the (x, z) coordinates.
type CellKey struct {
	X int
	Z int
}

// Grid is a uniform-cell spatial index over ground-plane positions. It is
// rebuilt once per tick before any queries in that tick are issued, so all
// queries within a tick observe a consistent snapshot. Queries never mutate
// the grid.
type Grid struct {
	CellSize float64
	cells    map[CellKey][]gridItem
}

type gridItem struct {
	pos Vector3
	obj interface{}
}

// NewGrid creates a spatial grid with the given cell size
func NewGrid(cellSize float64) *Grid {
	return &Grid{
		CellSize: cellSize,
		cells:    make(map[CellKey][]gridItem),
	}
}

// Clear removes all indexed objects
func (g *Grid) Clear() {
	g.cells = make(map[CellKey][]gridItem)
}

// Insert buckets an object into the cell covering its position
func (g *Grid) Insert(pos Vector3, obj interface{}) {
	key := g.cellFor(pos)
	g.cells[key] = append(g.cells[key], gridItem{pos: pos, obj: obj})
}

// Len returns the number of indexed objects
func (g *Grid) Len() int {
	n := 0
	for _, items := range g.cells {
		n += len(items)
	}
	return n
}

// QueryRadius returns every object within radius of center. Candidate cells
// are taken from ceil(radius/cellSize) rings around the query cell, each
// candidate refined by exact Euclidean distance.
func (g *Grid) QueryRadius(center Vector3, radius float64) []interface{} {
	found := make([]interface{}, 0)
	if radius < 0 {
		return found
	}

	rings := int(math.Ceil(radius / g.CellSize))
	origin := g.cellFor(center)

	for dx := -rings; dx <= rings; dx++ {
		for dz := -rings; dz <= rings; dz++ {
			key := CellKey{X: origin.X + dx, Z: origin.Z + dz}
			for _, item := range g.cells[key] {
				if item.pos.Distance(center) <= radius {
					found = append(found, item.obj)
				}
			}
		}
	}

	return found
}

// cellFor maps a world position to its cell index
func (g *Grid) cellFor(pos Vector3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X / g.CellSize)),
		Z: int(math.Floor(pos.Z / g.CellSize)),
	}
}
