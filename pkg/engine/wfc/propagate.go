package wfc

import (
	"github.com/zyedidia/generic/mapset"
	"github.com/zyedidia/generic/queue"

	"github.com/ill13/wfc-softrender/pkg/engine/world"
)

// propagate re-filters the open neighbours of start breadth first. Each cell
// is expanded at most once per call. A neighbour whose set shrinks is queued
// in turn; one left with a single possibility is committed to it. The first
// neighbour left with nothing stops the walk with a *ContradictionError.
func (e *Engine) propagate(start *world.Cell) error {
	frontier := queue.New[*world.Cell]()
	frontier.Enqueue(start)
	processed := mapset.New[*world.Cell]()

	for !frontier.Empty() {
		current := frontier.Dequeue()
		if processed.Has(current) {
			continue
		}
		processed.Put(current)

		for _, n := range e.grid.Neighbors(current.X, current.Y) {
			if n.Collapsed {
				continue
			}

			around := e.grid.Neighbors(n.X, n.Y)
			options := n.Ordered(e.ids)
			keep := make([]string, 0, len(options))
			for _, p := range options {
				if e.supported(p, around) {
					keep = append(keep, p)
				}
			}

			if !n.Restrict(keep) {
				continue
			}
			if n.IsContradiction() {
				e.log.Debug("contradiction", "x", n.X, "y", n.Y)
				return &ContradictionError{X: n.X, Y: n.Y}
			}
			if n.Entropy() == 1 {
				e.commit(n, keep[0])
			}
			frontier.Enqueue(n)
		}
	}
	return nil
}

// supported reports whether possibility p survives next to around: it does
// as soon as one neighbour is still open, or is collapsed to a terrain listed
// in p's adjacency. p is only ever dropped once every neighbour is collapsed
// and none of them is accepted.
func (e *Engine) supported(p string, around []*world.Cell) bool {
	for _, n := range around {
		if !n.Collapsed || e.catalog.Accepts(p, n.Terrain) {
			return true
		}
	}
	return false
}
