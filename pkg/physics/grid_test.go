// pkg/physics/grid_test.go
package physics

import (
	"math/rand"
	"testing"
)

type marker struct{ id int }

func TestGrid_QueryRadius_BasicBuckets(t *testing.T) {
	g := NewGrid(10)
	a := &marker{1}
	b := &marker{2}
	c := &marker{3}
	g.Insert(Vector3{X: 0, Z: 0}, a)
	g.Insert(Vector3{X: 5, Z: 0}, b)
	g.Insert(Vector3{X: 50, Z: 50}, c)

	got := g.QueryRadius(Vector3{}, 6)
	if len(got) != 2 {
		t.Fatalf("QueryRadius returned %d objects, want 2", len(got))
	}
	for _, obj := range got {
		if obj == c {
			t.Error("QueryRadius returned object outside the radius")
		}
	}
}

func TestGrid_QueryRadius_ExactBoundary(t *testing.T) {
	g := NewGrid(10)
	m := &marker{1}
	g.Insert(Vector3{X: 8, Z: 0}, m)

	if got := g.QueryRadius(Vector3{}, 8); len(got) != 1 {
		t.Errorf("object at exactly the radius should be included, got %d", len(got))
	}
	if got := g.QueryRadius(Vector3{}, 7.9); len(got) != 0 {
		t.Errorf("object beyond the radius should be excluded, got %d", len(got))
	}
}

func TestGrid_Clear_RemovesEverything(t *testing.T) {
	g := NewGrid(10)
	g.Insert(Vector3{X: 1, Z: 1}, &marker{1})
	g.Clear()
	if g.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", g.Len())
	}
	if got := g.QueryRadius(Vector3{}, 100); len(got) != 0 {
		t.Errorf("QueryRadius after Clear returned %d objects", len(got))
	}
}

// TestGrid_QueryRadius_MatchesBruteForce verifies the grid against a plain
// O(n) distance filter across randomized unit sets and radii, including
// negative coordinates that exercise the floor-division cell keys.
func TestGrid_QueryRadius_MatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 25; trial++ {
		g := NewGrid(10)
		type placed struct {
			pos Vector3
			obj *marker
		}
		n := 1 + rng.Intn(200)
		items := make([]placed, n)
		for i := range items {
			pos := Vector3{
				X: rng.Float64()*200 - 100,
				Z: rng.Float64()*200 - 100,
			}
			items[i] = placed{pos: pos, obj: &marker{i}}
			g.Insert(pos, items[i].obj)
		}

		center := Vector3{
			X: rng.Float64()*200 - 100,
			Z: rng.Float64()*200 - 100,
		}
		radius := rng.Float64() * 60

		want := make(map[*marker]bool)
		for _, it := range items {
			if it.pos.Distance(center) <= radius {
				want[it.obj] = true
			}
		}

		got := g.QueryRadius(center, radius)
		if len(got) != len(want) {
			t.Fatalf("trial %d: QueryRadius returned %d objects, brute force found %d",
				trial, len(got), len(want))
		}
		for _, obj := range got {
			if !want[obj.(*marker)] {
				t.Fatalf("trial %d: QueryRadius returned an object brute force excluded", trial)
			}
		}
	}
}
