package wfc

import (
	"math"

	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

// lowestEntropy returns an open cell with the fewest possibilities, breaking
// ties uniformly at random. It returns nil when every cell is collapsed.
// A contradicted cell would report entropy 0, so callers must not run it
// while one exists.
func (e *Engine) lowestEntropy() *world.Cell {
	lowest := math.MaxInt
	var candidates []*world.Cell

	e.grid.ForEachCell(func(_, _ int, c *world.Cell) {
		if c.Collapsed {
			return
		}
		n := c.Entropy()
		switch {
		case n < lowest:
			lowest = n
			candidates = append(candidates[:0], c)
		case n == lowest:
			candidates = append(candidates, c)
		}
	})

	if len(candidates) == 0 {
		return nil
	}
	return candidates[e.rng.Intn(len(candidates))]
}

// weights returns each remaining possibility of c in catalog order with its
// terrain weight scaled by multiplier^k, k being the number of collapsed
// neighbours already carrying that terrain.
func (e *Engine) weights(c *world.Cell) ([]string, []float64, float64) {
	options := c.Ordered(e.ids)
	around := e.grid.Neighbors(c.X, c.Y)
	weights := make([]float64, len(options))
	total := 0.0

	for i, p := range options {
		k := 0
		for _, n := range around {
			if n.Collapsed && n.Terrain == p {
				k++
			}
		}
		weights[i] = e.catalog.Weight(p) * math.Pow(e.multiplier, float64(k))
		total += weights[i]
	}
	return options, weights, total
}

// collapse commits c to one weighted random possibility. It reports false,
// leaving c untouched, when c is already collapsed or has no weight left.
func (e *Engine) collapse(c *world.Cell) bool {
	if c.Collapsed {
		return false
	}

	options, weights, total := e.weights(c)
	if total <= 0 {
		return false
	}

	r := e.rng.Float64() * total
	selected := options[0]
	for i, p := range options {
		r -= weights[i]
		if r <= 0 {
			selected = p
			break
		}
	}

	e.commit(c, selected)
	e.log.Debug("collapsed", "x", c.X, "y", c.Y, "terrain", selected)
	return true
}

// commit collapses c to id and draws its display color.
func (e *Engine) commit(c *world.Cell, id string) {
	c.Collapse(id, e.pickColor(id))
}

func (e *Engine) pickColor(id string) string {
	colors := e.catalog.Colors(id)
	if len(colors) == 0 {
		return ""
	}
	return colors[e.rng.Intn(len(colors))]
}
