package memory

import (
	"context"
	"sync"
	"time"

	appoutbox "staybook/internal/app/outbox"
)

type outboxEntry struct {
	record   appoutbox.EventRecord
	attempts int
	next     time.Time
}

// Outbox buffers event records until a worker publishes them.
type Outbox struct {
	mu      sync.Mutex
	entries []*outboxEntry
	claimed map[string]bool
}

func NewOutbox() *Outbox {
	return &Outbox{claimed: make(map[string]bool)}
}

func (o *Outbox) Add(ctx context.Context, record appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.entries = append(o.entries, &outboxEntry{record: record})
	return nil
}

func (o *Outbox) Flush(context.Context) error { return nil }

// Claim hands out the oldest due record, or nil when nothing is pending.
func (o *Outbox) Claim(ctx context.Context, workerID string) (*appoutbox.Claimed, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	for _, e := range o.entries {
		if o.claimed[e.record.ID] || e.next.After(now) {
			continue
		}
		o.claimed[e.record.ID] = true
		return &appoutbox.Claimed{Record: e.record, Attempts: e.attempts}, nil
	}
	return nil, nil
}

func (o *Outbox) MarkSent(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.record.ID == id {
			continue
		}
		kept = append(kept, e)
	}
	o.entries = kept
	return nil
}

func (o *Outbox) MarkFailed(ctx context.Context, id string, next time.Time, _ string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.claimed, id)
	for _, e := range o.entries {
		if e.record.ID == id {
			e.attempts++
			e.next = next
		}
	}
	return nil
}

// Pending reports records not yet published.
func (o *Outbox) Pending() []appoutbox.EventRecord {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]appoutbox.EventRecord, 0, len(o.entries))
	for _, e := range o.entries {
		out = append(out, e.record)
	}
	return out
}
