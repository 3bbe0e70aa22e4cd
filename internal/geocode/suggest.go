// README: Typeahead suggester; drops results superseded by newer input.
package geocode

import (
	"context"
	"sync"
)

// Suggestion pairs a result set with the query that produced it so callers
// can verify it still matches the current input.
type Suggestion struct {
	Query      string      `json:"query"`
	Candidates []Candidate `json:"candidates"`
}

// streamState tracks one input stream. The generation counter invalidates
// superseded lookups; the in-flight count tells the suggester when the state
// can be dropped. State is only removed while no lookup is running, so a slow
// lookup can never observe a recreated stream reusing its generation.
type streamState struct {
	gen      uint64
	inflight int
	cancel   context.CancelFunc
}

// Suggester guards against out-of-order typeahead responses. Each input
// stream (one per form field, identified by a caller-chosen key) carries a
// generation counter; a lookup whose generation has been superseded by the
// time it completes is discarded, and its in-flight provider call is
// cancelled by the newer one. Idle streams hold no state: keys are arbitrary
// client input, so anything retained per key would grow without bound.
//
// Two independent streams over the same keystrokes (suggestion list and the
// slower typing preview) simply use two keys and never cancel each other.
type Suggester struct {
	orch *Orchestrator

	mu      sync.Mutex
	streams map[string]*streamState
}

func NewSuggester(orch *Orchestrator) *Suggester {
	return &Suggester{
		orch:    orch,
		streams: make(map[string]*streamState),
	}
}

// Search runs an orchestrator lookup for the stream's current input. It
// returns ok=false when a newer Search for the same stream started before
// this one finished; such stale results must not be applied by the caller.
func (s *Suggester) Search(ctx context.Context, stream, query string, pref Preference) (Suggestion, bool) {
	s.mu.Lock()
	st := s.streams[stream]
	if st == nil {
		st = &streamState{}
		s.streams[stream] = st
	}
	st.gen++
	gen := st.gen
	if st.cancel != nil {
		st.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	st.inflight++
	s.mu.Unlock()
	defer cancel()

	candidates := s.orch.Search(ctx, query, pref)

	s.mu.Lock()
	st.inflight--
	current := st.gen == gen
	if st.inflight == 0 {
		delete(s.streams, stream)
	}
	s.mu.Unlock()

	if !current {
		return Suggestion{}, false
	}
	return Suggestion{Query: query, Candidates: candidates}, true
}

// Cancel aborts any in-flight lookup for the stream, e.g. when the location
// panel closes. Later Search calls for the stream work normally.
func (s *Suggester) Cancel(stream string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.streams[stream]
	if st == nil {
		return
	}
	st.gen++ // invalidate anything still running
	if st.cancel != nil {
		st.cancel()
		st.cancel = nil
	}
	if st.inflight == 0 {
		delete(s.streams, stream)
	}
}
