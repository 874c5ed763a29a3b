package session

import (
	"sync"

	"github.com/desertthunder/moodcrowd/internal/shared"
)

// Action names a kind of request that may be in flight.
type Action string

const (
	ActionLogin    Action = "login"
	ActionRegister Action = "register"
	ActionAnalyze  Action = "analyze"
	ActionRefresh  Action = "refresh"
	ActionSave     Action = "save"
)

// Ticket identifies one request started with [Sequencer.Begin].
type Ticket struct {
	Action Action
	Seq    uint64
}

// Sequencer tags requests with increasing sequence numbers.
//
// Only one request per action may be pending. [Sequencer.Invalidate] makes any in-flight request
// of that action stale and frees the slot.
type Sequencer struct {
	mu      sync.Mutex
	next    uint64
	latest  map[Action]uint64
	pending map[Action]bool
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: map[Action]uint64{}, pending: map[Action]bool{}}
}

// Begin starts a request, or fails with [shared.ErrRequestPending].
func (s *Sequencer) Begin(a Action) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending[a] {
		return Ticket{}, shared.ErrRequestPending
	}
	s.next++
	s.latest[a] = s.next
	s.pending[a] = true
	return Ticket{Action: a, Seq: s.next}, nil
}

// Finish ends a request and reports whether its result may still be applied.
func (s *Sequencer) Finish(t Ticket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest[t.Action] != t.Seq {
		return false
	}
	s.pending[t.Action] = false
	return true
}

// Invalidate drops whatever request of action a is in flight.
func (s *Sequencer) Invalidate(a Action) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.next++
	s.latest[a] = s.next
	s.pending[a] = false
}

func (s *Sequencer) Pending(a Action) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[a]
}
