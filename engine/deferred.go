package engine

import (
	"sort"
	"time"

	"github.com/cwbudde/chordharp/notes"
)

// DefaultStopDelay is how long chord-change note-offs are held back while a
// chord wheel selection is in progress.
const DefaultStopDelay = 350 * time.Millisecond

// DeferredStops collects note-offs that should be sent later. A note that is
// sounding again by the time the stops fall due is not stopped.
type DeferredStops struct {
	due   time.Time
	armed bool
	notes []notes.UnmidiNote
}

// Defer queues notes for a later stop. They are not sent until Arm has been
// called and the due time has passed.
func (d *DeferredStops) Defer(ns []notes.UnmidiNote) {
	d.notes = append(d.notes, ns...)
}

// Arm sets the due time to now+delay, keeping an existing due time if it is
// later.
func (d *DeferredStops) Arm(now time.Time, delay time.Duration) {
	due := now.Add(delay)
	if d.armed && d.due.After(due) {
		return
	}
	d.due = due
	d.armed = true
}

// Due returns the armed due time.
func (d *DeferredStops) Due() (time.Time, bool) { return d.due, d.armed }

// Pending returns the number of queued notes.
func (d *DeferredStops) Pending() int { return len(d.notes) }

// Flush returns the stops that are due at now. Notes for which isActive
// reports true have been retriggered and are dropped. Calling Flush before
// the due time, or when nothing is armed, returns nil.
func (d *DeferredStops) Flush(now time.Time, isActive func(notes.UnmidiNote) bool) []notes.UnmidiNote {
	if !d.armed || now.Before(d.due) {
		return nil
	}
	return d.Drain(isActive)
}

// Drain returns every queued stop regardless of the due time, filtered and
// de-duplicated like Flush, and disarms the coordinator.
func (d *DeferredStops) Drain(isActive func(notes.UnmidiNote) bool) []notes.UnmidiNote {
	pending := d.notes
	d.notes = nil
	d.armed = false
	d.due = time.Time{}

	sort.Slice(pending, func(i, j int) bool { return pending[i] < pending[j] })
	var out []notes.UnmidiNote
	for i, n := range pending {
		if i > 0 && pending[i-1] == n {
			continue
		}
		if isActive != nil && isActive(n) {
			continue
		}
		out = append(out, n)
	}
	return out
}
