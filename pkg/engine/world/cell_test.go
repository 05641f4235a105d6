package world

import (
	"testing"

	"github.com/ill13/wfc-softrender/pkg/engine/catalog"
)

func TestCollapse(t *testing.T) {
	c := NewCell(0, 0, testIDs)
	c.Collapse("grass", "#3a5")
	if !c.Collapsed || c.Terrain != "grass" || c.Color != "#3a5" {
		t.Errorf("after Collapse: collapsed=%v terrain=%q color=%q", c.Collapsed, c.Terrain, c.Color)
	}
	if c.Entropy() != 1 || !c.Allows("grass") {
		t.Errorf("after Collapse: entropy=%d, allows grass=%v", c.Entropy(), c.Allows("grass"))
	}
}

func TestRestrict_OnlyShrinks(t *testing.T) {
	c := NewCell(0, 0, testIDs)

	if c.Restrict(testIDs) {
		t.Error("Restrict(all) reported a change")
	}
	if !c.Restrict([]string{"water", "hill", "lava"}) {
		t.Error("Restrict(water, hill, lava) reported no change")
	}
	if c.Entropy() != 2 || c.Allows("lava") || c.Allows("grass") {
		t.Errorf("possibilities after Restrict = %v", c.Ordered(testIDs))
	}
	if !c.Restrict([]string{"grass"}) {
		t.Error("Restrict(grass) reported no change")
	}
	if !c.IsContradiction() {
		t.Errorf("Entropy() = %d, want contradiction", c.Entropy())
	}
}

func TestOrdered_FollowsGivenOrder(t *testing.T) {
	c := NewCell(0, 0, []string{"hill", "water", "grass"})
	got := c.Ordered(testIDs)
	want := []string{"water", "grass", "hill"}
	for i := range want {
		if i >= len(got) || got[i] != want[i] {
			t.Fatalf("Ordered() = %v, want %v", got, want)
		}
	}
}

func TestDirection(t *testing.T) {
	seen := map[[2]int]bool{}
	for _, dir := range neighborOrder {
		if !dir.IsValid() {
			t.Errorf("Direction(%d).IsValid() = false", dir)
		}
		dx, dy := dir.Delta()
		if abs(dx)+abs(dy) != 1 {
			t.Errorf("Direction(%d).Delta() = %d,%d, want a unit step", dir, dx, dy)
		}
		seen[[2]int{dx, dy}] = true
	}
	if len(seen) != 4 {
		t.Errorf("neighbour order covers %d directions, want 4", len(seen))
	}
	if Direction(9).IsValid() {
		t.Error("Direction(9).IsValid() = true")
	}
	if dx, dy := North.Delta(); dx != 0 || dy != -1 {
		t.Errorf("North.Delta() = %d,%d, want 0,-1", dx, dy)
	}
}

func TestHasLocation(t *testing.T) {
	c := NewCell(0, 0, testIDs)
	if c.HasLocation() {
		t.Error("new cell HasLocation() = true")
	}
	c.Location = &catalog.LocationTemplate{ID: "inn"}
	if !c.HasLocation() {
		t.Error("HasLocation() = false after a location was set")
	}
}
