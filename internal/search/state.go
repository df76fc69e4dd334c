package search

import (
	"time"

	"playerscout/models"

	"github.com/jonboulle/clockwork"
)

// Status is the search axis of the workflow
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// AnalysisState is the disclosure axis, nested under StatusSucceeded
type AnalysisState string

const (
	AnalysisNotRequested AnalysisState = "not_requested"
	AnalysisRevealing    AnalysisState = "revealing"
	AnalysisRevealed     AnalysisState = "revealed"
)

const (
	// GenericFailureMessage is shown when the service rejects a search without saying why
	GenericFailureMessage = "Failed to find player"
	// ConnectionErrorPrefix prefixes transport and decode failures
	ConnectionErrorPrefix = "Connection error: "
)

// Snapshot is an immutable copy of the workflow state. Record is shared, never mutated.
type Snapshot struct {
	Generation uint64               `json:"generation"`
	Status     Status               `json:"status"`
	Query      string               `json:"query,omitempty"`
	Record     *models.PlayerRecord `json:"record,omitempty"`
	Error      string               `json:"error,omitempty"`
	Analysis   AnalysisState        `json:"analysis"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

// Pending reports whether a lookup is in flight
func (s Snapshot) Pending() bool {
	return s.Status == StatusPending
}

// CanReveal reports whether RevealAnalysis would be accepted
func (s Snapshot) CanReveal() bool {
	return s.Status == StatusSucceeded && s.Record.HasOverview()
}

// AnalysisVisible reports whether the overview should be rendered
func (s Snapshot) AnalysisVisible() bool {
	return s.Analysis == AnalysisRevealed && s.CanReveal()
}

// Options tunes workflow timing. Zero durations disable the corresponding delay.
type Options struct {
	// MinDisplay is the floor on how long a search stays pending
	MinDisplay time.Duration
	// RevealDelay is the latency between requesting and showing the analysis
	RevealDelay time.Duration
	// RequestTimeout bounds a single lookup
	RequestTimeout time.Duration
	// Clock drives the display floor and reveal delay; tests inject a fake
	Clock clockwork.Clock
}

// DefaultOptions returns the interactive defaults
func DefaultOptions() Options {
	return Options{
		MinDisplay:     1500 * time.Millisecond,
		RevealDelay:    800 * time.Millisecond,
		RequestTimeout: 15 * time.Second,
		Clock:          clockwork.NewRealClock(),
	}
}

// Listener receives every transition in order
type Listener func(Snapshot)
