// Package api holds the per-browser search sessions and the event stream that mirrors them.
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"playerscout/domain/scouting"
	"playerscout/internal/errors"
	"playerscout/internal/search"
	"playerscout/internal/view"
	"playerscout/ports"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// Session is one browser's search workflow
type Session struct {
	ID        string
	Workflow  *search.Workflow
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns when the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Sessions owns every live session and expires the idle ones
type Sessions struct {
	lookup   ports.PlayerLookup
	opts     search.Options
	hub      *SSEHub
	ttl      time.Duration
	clock    clockwork.Clock
	taxonomy scouting.Taxonomy

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessions creates a registry. Workflow transitions are broadcast on hub when it is non-nil.
func NewSessions(lookup ports.PlayerLookup, opts search.Options, hub *SSEHub, ttl time.Duration) *Sessions {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Sessions{
		lookup:   lookup,
		opts:     opts,
		hub:      hub,
		ttl:      ttl,
		clock:    clock,
		taxonomy: scouting.DefaultTaxonomy,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with an idle workflow
func (r *Sessions) Create() *Session {
	now := r.clock.Now()
	s := &Session{
		ID:        uuid.NewString(),
		Workflow:  search.NewWorkflow(r.lookup, r.opts),
		CreatedAt: now,
		lastSeen:  now,
	}
	if r.hub != nil {
		id := s.ID
		s.Workflow.OnChange(func(snap search.Snapshot) {
			r.hub.Broadcast(r.event(id, snap))
		})
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	log.Printf("[Sessions] Created session %s (active: %d)", s.ID, total)
	return s
}

// Get returns a session and marks it as used
func (r *Sessions) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, errors.InvalidInput("invalid session ID")
	}
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("session")
	}
	s.touch(r.clock.Now())
	return s, nil
}

// Delete closes and removes a session
func (r *Sessions) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return errors.NotFound("session")
	}

	s.Workflow.Close()
	log.Printf("[Sessions] Deleted session %s", id)
	return nil
}

// Current implements SnapshotSource
func (r *Sessions) Current(sessionID string) (Event, bool) {
	s, err := r.Get(sessionID)
	if err != nil {
		return Event{}, false
	}
	return r.event(s.ID, s.Workflow.Snapshot()), true
}

// View builds the view model for a session's current snapshot
func (r *Sessions) View(s *Session) (search.Snapshot, view.PlayerView) {
	snap := s.Workflow.Snapshot()
	return snap, view.Build(snap, r.taxonomy)
}

func (r *Sessions) event(sessionID string, snap search.Snapshot) Event {
	return Event{
		SessionID: sessionID,
		EventType: EventSearch,
		Snapshot:  snap,
		View:      view.Build(snap, r.taxonomy),
		Timestamp: r.clock.Now(),
	}
}

// Count returns the number of live sessions
func (r *Sessions) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it removed
func (r *Sessions) Sweep() int {
	cutoff := r.clock.Now().Add(-r.ttl)

	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Workflow.Close()
	}
	if len(expired) > 0 {
		log.Printf("[Sessions] Expired %d idle sessions", len(expired))
	}
	return len(expired)
}

// RunJanitor sweeps on every interval until ctx is done
func (r *Sessions) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := r.clock.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.Sweep()
		}
	}
}

// Close shuts down every session
func (r *Sessions) Close() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	for _, s := range all {
		s.Workflow.Close()
	}
}
