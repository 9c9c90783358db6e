// Package session tracks in-flight session cancellation on a single pod.
//
// When a cancel request arrives for a session this pod is processing, the
// worker cancels the session's context. Context cancellation alone cannot
// distinguish an operator cancel from a session timeout (both surface as
// context.Canceled / DeadlineExceeded at the agent), so the tracker records
// which sessions were cancelled on purpose. The worker consults it when
// classifying the terminal status.
package session

import "sync"

// CancellationTracker records sessions whose contexts were cancelled by an
// explicit cancel request. Safe for concurrent use.
type CancellationTracker struct {
	mu        sync.RWMutex
	cancelled map[string]struct{}
}

// NewCancellationTracker creates an empty tracker.
func NewCancellationTracker() *CancellationTracker {
	return &CancellationTracker{
		cancelled: make(map[string]struct{}),
	}
}

// MarkCancelled records that sessionID was cancelled by request.
func (t *CancellationTracker) MarkCancelled(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelled[sessionID] = struct{}{}
}

// IsCancelled reports whether sessionID was cancelled by request.
func (t *CancellationTracker) IsCancelled(sessionID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.cancelled[sessionID]
	return ok
}

// Clear removes the record for sessionID. Called once the worker has
// finished the terminal write so the map does not grow unbounded.
func (t *CancellationTracker) Clear(sessionID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.cancelled, sessionID)
}
