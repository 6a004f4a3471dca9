package bot

import (
	"sync"
	"time"
)

// activityCap bounds the retained activity entries.
const activityCap = 100

// ActivityEntry is one line of the bot's in-memory activity log,
// surfaced through the status endpoint.
type ActivityEntry struct {
	TS    time.Time `json:"ts"`
	Level string    `json:"level"`
	Msg   string    `json:"msg"`
}

// ActivityLog is a bounded, newest-first event log.
type ActivityLog struct {
	mu      sync.Mutex
	entries []ActivityEntry
}

// NewActivityLog creates an empty activity log.
func NewActivityLog() *ActivityLog {
	return &ActivityLog{entries: make([]ActivityEntry, 0, activityCap)}
}

// Add prepends an entry, evicting the oldest beyond the cap.
func (a *ActivityLog) Add(level, msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e := ActivityEntry{TS: time.Now().UTC(), Level: level, Msg: msg}
	a.entries = append([]ActivityEntry{e}, a.entries...)
	if len(a.entries) > activityCap {
		a.entries = a.entries[:activityCap]
	}
}

// Entries returns up to n entries, newest first.
func (a *ActivityLog) Entries(n int) []ActivityEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if n > len(a.entries) {
		n = len(a.entries)
	}
	cp := make([]ActivityEntry, n)
	copy(cp, a.entries[:n])
	return cp
}
