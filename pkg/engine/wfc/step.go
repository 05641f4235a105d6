package wfc

import (
	"context"
	"fmt"
	"time"
)

// StepResult tells the caller what a single Step did.
type StepResult int

const (
	// StepComplete means there was nothing left to collapse.
	StepComplete StepResult = iota
	// StepCollapsed means one cell was collapsed and propagated from.
	StepCollapsed
	// StepRestarted means the step failed and the recovery policy has
	// already rebuilt the grid.
	StepRestarted
)

func (r StepResult) String() string {
	switch r {
	case StepComplete:
		return "complete"
	case StepCollapsed:
		return "collapsed"
	case StepRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// Step selects the lowest-entropy cell, collapses it and propagates from it.
// On failure the recovery policy is applied before Step returns, and the
// error holds the cause: a *ContradictionError or ErrCollapseFailed.
func (e *Engine) Step() (StepResult, error) {
	cell := e.lowestEntropy()
	if cell == nil {
		return StepComplete, nil
	}

	if !e.collapse(cell) {
		err := fmt.Errorf("cell (%d,%d): %w", cell.X, cell.Y, ErrCollapseFailed)
		e.stats.CollapseFailures++
		e.restart(err)
		return StepRestarted, err
	}

	if err := e.propagate(cell); err != nil {
		e.stats.Contradictions++
		e.restart(err)
		return StepRestarted, err
	}

	e.stats.Steps++
	e.attempts++
	return StepCollapsed, nil
}

func (e *Engine) restart(cause error) {
	e.stats.Restarts++
	e.recovery.Recover(e, cause)
}

// Run generates a complete grid: it reseeds the random source with the
// engine's seed, rebuilds the grid and steps until every cell is collapsed,
// then places locations.
//
// Contradictions restart the grid and reset the attempt counter. Run fails
// with ErrStall when AttemptBudget successful steps pass without completing,
// with ErrRestartLimit when the restart bound is exceeded, and with the
// context's error when ctx is cancelled. Cancellation leaves the grid
// partially collapsed and unusable.
func (e *Engine) Run(ctx context.Context) error {
	e.Reseed(e.seed)
	e.stats = Stats{}
	e.Reset()

	started := time.Now()
	e.log.Info("generation started",
		"width", e.width, "height", e.height, "seed", e.seed, "budget", e.AttemptBudget())

	for !e.grid.IsComplete() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Exhausted(); err != nil {
			e.log.Warn("generation stopped", "err", err, "attempts", e.attempts, "restarts", e.stats.Restarts)
			return err
		}

		res, err := e.Step()
		if res == StepRestarted {
			e.log.Debug("restarted", "cause", err, "restarts", e.stats.Restarts)
			if e.restartLimitHit() {
				e.log.Warn("restart limit reached", "restarts", e.stats.Restarts)
				return fmt.Errorf("%w: %d (last: %v)", ErrRestartLimit, e.stats.Restarts, err)
			}
		}

		if err := e.pause(ctx); err != nil {
			return err
		}
	}

	placed, err := e.PlaceLocations()
	if err != nil {
		return err
	}

	e.log.Info("generation finished",
		"steps", e.stats.Steps,
		"restarts", e.stats.Restarts,
		"locations", len(placed),
		"elapsed", time.Since(started))
	return nil
}

// Exhausted returns ErrStall once AttemptBudget successful steps have passed
// since the last restart, or ErrRestartLimit once the restart bound is
// exceeded. Callers stepping the engine themselves check it between steps.
func (e *Engine) Exhausted() error {
	if e.attempts >= e.AttemptBudget() {
		return ErrStall
	}
	if e.restartLimitHit() {
		return fmt.Errorf("%w: %d", ErrRestartLimit, e.stats.Restarts)
	}
	return nil
}

func (e *Engine) restartLimitHit() bool {
	return e.maxRestart > 0 && e.stats.Restarts > e.maxRestart
}

// Delay returns the pause between steps.
func (e *Engine) Delay() time.Duration {
	return e.delay
}

// pause is the yield point between steps. It waits for the configured delay
// and returns early with the context's error on cancellation.
func (e *Engine) pause(ctx context.Context) error {
	if e.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(e.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
