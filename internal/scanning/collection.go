package scanning

import "sync"

// HostRecord is one reachable address and its resolved name, if any.
type HostRecord struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// String renders "address" or "address - name".
func (h HostRecord) String() string {
	if h.Name == "" {
		return h.Address
	}
	return h.Address + " - " + h.Name
}

// Collection is an append-only set of host records shared by the workers of
// one pass.
type Collection struct {
	mu    sync.Mutex
	hosts []HostRecord
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{hosts: make([]HostRecord, 0, RangeSize)}
}

// Add appends a record.
func (c *Collection) Add(h HostRecord) {
	c.mu.Lock()
	c.hosts = append(c.hosts, h)
	c.mu.Unlock()
}

// Len returns the number of records.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.hosts)
}

// Snapshot returns a copy of the records in insertion order.
func (c *Collection) Snapshot() []HostRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]HostRecord, len(c.hosts))
	copy(out, c.hosts)
	return out
}
