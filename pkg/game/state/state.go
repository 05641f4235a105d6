// Package state holds the interactive generation session shared by the
// viewers: one prepared map, stepped or run to completion, with at most one
// run in flight.
package state

import (
	"context"
	"errors"
	"sync"

	"github.com/leonelquinteros/gotext"

	"github.com/ill13/wfc-softrender/pkg/engine/wfc"
	"github.com/ill13/wfc-softrender/pkg/engine/world"
	"github.com/ill13/wfc-softrender/pkg/game/generator"
)

const maxMessages = 5

var ErrBusy = errors.New("state: a generation is already running")

// Session drives one map through its lifecycle. Step, RunToCompletion and
// Regenerate refuse to start while a run is in flight; Cancel stops it.
// The grid must not be read from another goroutine while RunToCompletion
// is running.
type Session struct {
	mu         sync.Mutex
	gen        *generator.WFCGenerator
	req        generator.Request
	plan       *generator.Plan
	result     *generator.Result
	generating bool
	cancel     context.CancelFunc

	Messages []string
}

// NewSession prepares the first map described by req.
func NewSession(gen *generator.WFCGenerator, req generator.Request) (*Session, error) {
	s := &Session{gen: gen, req: req, Messages: make([]string, 0)}
	if err := s.prepare(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) prepare() error {
	plan, err := s.gen.Prepare(s.req)
	if err != nil {
		return err
	}
	s.plan = plan
	s.result = nil
	s.AddMessage(gotext.Get("Seeded %q (%d)", plan.Name, plan.Seed))
	return nil
}

// Regenerate discards the current map and its messages and prepares a new
// one. Without a user-chosen name or seed every call draws a new name and so
// a new map.
func (s *Session) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return ErrBusy
	}
	s.ClearMessages()
	return s.prepare()
}

// Step performs one collapse and propagation. Once nothing is left to
// collapse it places the locations and names the map. It fails with the
// engine's stall or restart-limit error once generation is exhausted; check
// the error before the result.
func (s *Session) Step() (wfc.StepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generating {
		return wfc.StepComplete, ErrBusy
	}

	if s.result == nil {
		if err := s.plan.Engine.Exhausted(); err != nil {
			s.AddMessage(gotext.Get("Generation failed: %v", err))
			return wfc.StepComplete, err
		}
	}

	res, err := s.plan.Engine.Step()
	switch res {
	case wfc.StepRestarted:
		s.AddMessage(gotext.Get("Contradiction, restarting"))
	case wfc.StepComplete:
		if s.result == nil {
			if err := s.finish(true); err != nil {
				return res, err
			}
		}
	}
	return res, err
}

// RunToCompletion generates the whole map, honouring the configured delay
// between steps. It returns early when ctx is done or Cancel is called; the
// grid is then rebuilt so the session can be stepped or run again.
func (s *Session) RunToCompletion(ctx context.Context) (*generator.Result, error) {
	s.mu.Lock()
	if s.generating {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	s.generating = true
	s.cancel = cancel
	engine := s.plan.Engine
	s.mu.Unlock()

	err := engine.Run(ctx)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.generating = false
	s.cancel = nil

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			s.AddMessage(gotext.Get("Generation cancelled"))
			engine.Reseed(engine.Seed())
			engine.Reset()
		} else {
			s.AddMessage(gotext.Get("Generation failed: %v", err))
		}
		return nil, err
	}

	if err := s.finish(false); err != nil {
		return nil, err
	}
	return s.result, nil
}

// finish names the completed map, placing its locations first when the
// grid was completed by stepping.
func (s *Session) finish(place bool) error {
	if place {
		if _, err := s.plan.Engine.PlaceLocations(); err != nil {
			return err
		}
	}
	res, err := s.plan.Finish()
	if err != nil {
		return err
	}
	s.result = res
	s.AddMessage(gotext.Get("Complete: %q with %d locations", res.Name, len(res.Placed)))
	return nil
}

// Cancel stops a run in flight. It is a no-op when nothing is running.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// IsGenerating reports whether RunToCompletion is in flight.
func (s *Session) IsGenerating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generating
}

// IsComplete reports whether the current map is finished and named.
func (s *Session) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result != nil
}

// Result returns the finished map, or nil.
func (s *Session) Result() *generator.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Grid returns the grid of the current map.
func (s *Session) Grid() *world.Grid {
	return s.plan.Engine.Grid()
}

// Engine returns the engine of the current map.
func (s *Session) Engine() *wfc.Engine {
	return s.plan.Engine
}

// Name returns the current map name. Until the map is finished this is the
// provisional name.
func (s *Session) Name() string {
	if s.result != nil {
		return s.result.Name
	}
	return s.plan.Name
}

// Theme returns the name of the theme the session generates with.
func (s *Session) Theme() string {
	return s.req.Theme.Name
}

// AddMessage adds a message to the session's message log
func (s *Session) AddMessage(msg string) {
	s.Messages = append(s.Messages, msg)

	// Keep only the last maxMessages
	if len(s.Messages) > maxMessages {
		s.Messages = s.Messages[len(s.Messages)-maxMessages:]
	}
}

// ClearMessages clears all messages
func (s *Session) ClearMessages() {
	s.Messages = make([]string, 0)
}
