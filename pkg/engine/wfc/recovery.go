package wfc

// Recovery decides what happens to the grid after a failed step. It must
// leave the engine with no contradicted cell.
type Recovery interface {
	Recover(e *Engine, cause error)
}

// FullRestart discards all progress and rebuilds the grid from scratch,
// re-applying the seeder.
type FullRestart struct{}

func (FullRestart) Recover(e *Engine, cause error) {
	e.log.Debug("restarting", "cause", cause, "attempts", e.attempts)
	e.Reset()
}
