package source

import (
	"sync"

	"github.com/lepinkainen/bookstw/internal/metadata"
)

// Queue receives records from a source as they are produced.
type Queue interface {
	Put(rec *metadata.Record)
}

// QueueFunc adapts a function to the Queue interface.
type QueueFunc func(rec *metadata.Record)

// Put calls f(rec).
func (f QueueFunc) Put(rec *metadata.Record) { f(rec) }

// Discard is a Queue that drops every record.
var Discard Queue = QueueFunc(func(*metadata.Record) {})

// Collector is a Queue that keeps records in arrival order.
type Collector struct {
	mu      sync.Mutex
	records []*metadata.Record
}

// Put appends rec.
func (c *Collector) Put(rec *metadata.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, rec)
}

// Records returns a copy of the collected records.
func (c *Collector) Records() []*metadata.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*metadata.Record, len(c.records))
	copy(out, c.records)
	return out
}

// Len returns the number of collected records.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}
