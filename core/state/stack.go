package state

import (
	"fmt"

	"github.com/hedera-core/txcore/log"
)

// SavepointStack is the nested, rollback-capable mutation scope layered
// over a Container. It is initialised with one permanent base frame;
// createSavepoint/commit/rollback only ever touch the top two
// frames. The stack is not safe for concurrent use from more than one
// goroutine at a time.
type SavepointStack struct {
	frames []*Frame
	log    log.Logger
}

// NewSavepointStack returns a stack with a single, permanent base frame
// over c.
func NewSavepointStack(c *Container) *SavepointStack {
	return &SavepointStack{
		frames: []*Frame{newBaseFrame(c)},
		log:    log.New("module", "state"),
	}
}

// Peek returns the current top frame. It never returns nil: the stack is
// always initialised with a base frame.
func (s *SavepointStack) Peek() *Frame {
	return s.frames[len(s.frames)-1]
}

// Depth returns the number of frames, including the permanent base frame.
func (s *SavepointStack) Depth() int { return len(s.frames) }

// CreateSavepoint pushes a new, empty overlay on top of the stack and
// returns it. It is the only way to obtain a new frame.
func (s *SavepointStack) CreateSavepoint() *Frame {
	nf := newOverlayFrame(s.Peek())
	s.frames = append(s.frames, nf)
	return nf
}

// Commit merges the top frame into the frame below it, then pops it.
// Requires Depth() >= 2; returns ErrEmptyStack otherwise.
func (s *SavepointStack) Commit() error {
	if s.Depth() < 2 {
		return ErrEmptyStack
	}
	top := s.Peek()
	if err := top.commit(); err != nil {
		s.log.Error("savepoint commit failed", "err", err)
		return err
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// Rollback discards the top frame without merging it, then pops. Requires
// Depth() >= 2; returns ErrEmptyStack otherwise. No partial
// state from the discarded frame is ever observable, because an overlay
// never writes into the frame below until commit.
func (s *SavepointStack) Rollback() error {
	if s.Depth() < 2 {
		return ErrEmptyStack
	}
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// CommitFullStack repeatedly commits until only the base frame remains.
// Used after preceding dispatches so their effects are visible to later
// work in the same round.
func (s *SavepointStack) CommitFullStack() error {
	for s.Depth() > 1 {
		if err := s.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// Fork creates an independent SavepointStack seeded from the current top
// frame of s, used when a child dispatch needs its own commit/rollback
// scope without disturbing the parent's stack.
func (s *SavepointStack) Fork() *SavepointStack {
	return &SavepointStack{
		frames: []*Frame{newOverlayFrame(s.Peek())},
		log:    s.log,
	}
}

// CommitFork merges a forked child stack's single remaining frame into the
// parent frame it was seeded from. The child must first reduce itself to
// that single frame via CommitFullStack. Used when a child dispatch's
// handler succeeds.
func (s *SavepointStack) CommitFork() error {
	if len(s.frames) != 1 {
		return fmt.Errorf("state: CommitFork requires a single-frame forked stack, has %d", len(s.frames))
	}
	return s.frames[0].commit()
}
