// Package ratelimit gates heartbeat reporting on elapsed wall-clock time.
//
// The limiter's persisted state is the plugin's only cross-invocation
// memory of having reported: one timestamp, overwritten on success.
package ratelimit

import (
	"time"

	"github.com/grovetools/codex-wakatime/state"
)

// State is the persisted rate-limit bookkeeping.
type State struct {
	LastHeartbeatAt time.Time `json:"lastHeartbeatAt"`
}

// Limiter decides whether a new heartbeat batch is due.
type Limiter struct {
	statePath string
	interval  time.Duration
}

// New creates a Limiter persisting to statePath with the given minimum
// interval between heartbeat batches.
func New(statePath string, interval time.Duration) *Limiter {
	return &Limiter{statePath: statePath, interval: interval}
}

// Due reports whether enough time has passed since the last recorded
// heartbeat. Missing, unreadable, or malformed state counts as due.
func (l *Limiter) Due(now time.Time) bool {
	var s State
	if err := state.Read(l.statePath, &s); err != nil {
		return true
	}
	if s.LastHeartbeatAt.IsZero() {
		return true
	}
	return now.Sub(s.LastHeartbeatAt) >= l.interval
}

// Record overwrites the persisted timestamp with now. Callers treat a
// write failure as a warning, never as fatal to the turn.
func (l *Limiter) Record(now time.Time) error {
	return state.Write(l.statePath, State{LastHeartbeatAt: now})
}
