// Package search owns the lifecycle of a player search: submission, the
// pending display floor, result or failure, and the on-demand analysis reveal.
package search

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"playerscout/models"
	"playerscout/ports"

	"github.com/jonboulle/clockwork"
)

// Workflow is the state machine for one search session. It is safe for
// concurrent use; commands never block on the network.
type Workflow struct {
	lookup ports.PlayerLookup
	opts   Options
	clock  clockwork.Clock

	mu         sync.RWMutex
	state      Snapshot
	generation uint64
	cancel     context.CancelFunc
	settled    chan struct{} // closed when the current search leaves pending
	revealed   chan struct{} // closed when the current reveal leaves revealing
	listeners  []Listener

	// queue holds snapshots awaiting delivery; one goroutine drains at a time
	queue    []Snapshot
	draining bool
	wg       sync.WaitGroup
}

// NewWorkflow creates an idle workflow backed by lookup
func NewWorkflow(lookup ports.PlayerLookup, opts Options) *Workflow {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	w := &Workflow{
		lookup:   lookup,
		opts:     opts,
		clock:    opts.Clock,
		settled:  closedChan(),
		revealed: closedChan(),
	}
	w.state = Snapshot{
		Status:    StatusIdle,
		Analysis:  AnalysisNotRequested,
		UpdatedAt: w.clock.Now(),
	}
	return w
}

// OnChange registers a listener for every subsequent transition. Listeners
// run outside the state lock and see transitions in the order they happened.
func (w *Workflow) OnChange(l Listener) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, l)
}

// Snapshot returns the current state
func (w *Workflow) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Submit starts a search for query. It returns false without any effect when
// the normalized query is blank or a search is already pending.
func (w *Workflow) Submit(query string) bool {
	q := NormalizeQuery(query)
	if q == "" {
		return false
	}

	w.mu.Lock()
	if w.state.Status == StatusPending {
		inflight := w.state.Query
		w.mu.Unlock()
		log.Printf("[Workflow] Ignoring submit for %q: search for %q still pending", q, inflight)
		return false
	}

	w.abortReveal()
	w.generation++
	gen := w.generation

	parent, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.settled = make(chan struct{})

	started := w.clock.Now()
	w.state = Snapshot{
		Generation: gen,
		Status:     StatusPending,
		Query:      q,
		Analysis:   AnalysisNotRequested,
		UpdatedAt:  started,
	}

	w.wg.Add(1)
	go w.run(parent, gen, q, started)

	log.Printf("[Workflow] Search #%d submitted for %q", gen, q)
	w.emitLocked()
	return true
}

func (w *Workflow) run(parent context.Context, gen uint64, query string, started time.Time) {
	defer w.wg.Done()

	ctx := parent
	if w.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, w.opts.RequestTimeout)
		defer cancel()
	}

	resp, err := w.lookup.Search(ctx, query)
	status, record, message := w.resolve(resp, err)

	if remaining := w.opts.MinDisplay - w.clock.Since(started); remaining > 0 {
		select {
		case <-w.clock.After(remaining):
		case <-parent.Done():
			return
		}
	}

	w.finish(gen, status, record, message)
}

// resolve maps a lookup outcome onto a terminal status
func (w *Workflow) resolve(resp *models.SearchResponse, err error) (Status, *models.PlayerRecord, string) {
	if err != nil {
		detail := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			detail = fmt.Sprintf("request timed out after %s", w.opts.RequestTimeout)
		}
		return StatusFailed, nil, ConnectionErrorPrefix + detail
	}
	if resp == nil {
		return StatusFailed, nil, GenericFailureMessage
	}
	if resp.Success {
		if resp.Data == nil {
			return StatusFailed, nil, GenericFailureMessage
		}
		return StatusSucceeded, resp.Data, ""
	}
	if msg := strings.TrimSpace(resp.Error); msg != "" {
		return StatusFailed, nil, msg
	}
	return StatusFailed, nil, GenericFailureMessage
}

func (w *Workflow) finish(gen uint64, status Status, record *models.PlayerRecord, message string) {
	w.mu.Lock()
	if gen != w.generation || w.state.Status != StatusPending {
		w.mu.Unlock()
		log.Printf("[Workflow] Discarding stale result for search #%d", gen)
		return
	}

	w.state.Status = status
	w.state.Record = record
	w.state.Error = message
	w.state.UpdatedAt = w.clock.Now()
	w.releaseRequest()
	close(w.settled)

	if status == StatusSucceeded {
		log.Printf("[Workflow] Search #%d succeeded: %s", gen, record.GeneralInfo.Name)
	} else {
		log.Printf("[Workflow] Search #%d failed: %s", gen, message)
	}
	w.emitLocked()
}

// Clear returns the workflow to idle from any state. An in-flight lookup is
// cancelled and its eventual result discarded.
func (w *Workflow) Clear() {
	w.mu.Lock()
	wasPending := w.state.Status == StatusPending
	w.releaseRequest()
	if wasPending {
		close(w.settled)
	}
	w.abortReveal()

	w.generation++
	w.state = Snapshot{
		Generation: w.generation,
		Status:     StatusIdle,
		Analysis:   AnalysisNotRequested,
		UpdatedAt:  w.clock.Now(),
	}

	if wasPending {
		log.Printf("[Workflow] Cleared while pending; cancelled in-flight lookup")
	}
	w.emitLocked()
}

// RevealAnalysis discloses the record's overview. It returns false when the
// search has not succeeded or the record carries no overview; repeated calls
// while revealing or revealed return true without restarting the delay.
func (w *Workflow) RevealAnalysis() bool {
	w.mu.Lock()
	if !w.state.CanReveal() {
		w.mu.Unlock()
		return false
	}
	if w.state.Analysis != AnalysisNotRequested {
		w.mu.Unlock()
		return true
	}

	if w.opts.RevealDelay <= 0 {
		w.state.Analysis = AnalysisRevealed
		w.state.UpdatedAt = w.clock.Now()
		w.emitLocked()
		return true
	}

	gen := w.generation
	done := make(chan struct{})
	w.revealed = done
	w.state.Analysis = AnalysisRevealing
	w.state.UpdatedAt = w.clock.Now()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		select {
		case <-w.clock.After(w.opts.RevealDelay):
			w.completeReveal(gen)
		case <-done:
		}
	}()

	w.emitLocked()
	return true
}

func (w *Workflow) completeReveal(gen uint64) {
	w.mu.Lock()
	if gen != w.generation || w.state.Analysis != AnalysisRevealing {
		w.mu.Unlock()
		return
	}
	w.state.Analysis = AnalysisRevealed
	w.state.UpdatedAt = w.clock.Now()
	close(w.revealed)
	w.emitLocked()
}

// Wait blocks until the current search leaves pending or ctx is done
func (w *Workflow) Wait(ctx context.Context) error {
	w.mu.RLock()
	ch := w.settled
	w.mu.RUnlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitAnalysis blocks until a pending reveal completes or ctx is done
func (w *Workflow) WaitAnalysis(ctx context.Context) error {
	w.mu.RLock()
	ch := w.revealed
	w.mu.RUnlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close clears the workflow and waits for background goroutines to exit
func (w *Workflow) Close() {
	w.Clear()
	w.wg.Wait()
}

// releaseRequest cancels the in-flight lookup context. Caller holds mu.
func (w *Workflow) releaseRequest() {
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
}

// abortReveal drops an unfinished reveal. Caller holds mu.
func (w *Workflow) abortReveal() {
	if w.state.Analysis == AnalysisRevealing {
		close(w.revealed)
	}
}

// emitLocked queues the current snapshot, releases mu, and delivers queued
// snapshots unless another goroutine is already doing so.
func (w *Workflow) emitLocked() {
	w.queue = append(w.queue, w.state)
	if w.draining {
		w.mu.Unlock()
		return
	}
	w.draining = true
	w.mu.Unlock()

	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		snap := w.queue[0]
		w.queue = w.queue[1:]
		listeners := append([]Listener(nil), w.listeners...)
		w.mu.Unlock()

		for _, l := range listeners {
			l(snap)
		}
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
