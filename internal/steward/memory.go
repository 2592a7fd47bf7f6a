package steward

import (
	"fmt"
	"strings"
	"sync"

	"github.com/talgya/clearing/internal/world"
)

const maxRecords = 32

// CycleRecord captures what happened in a single steward cycle.
type CycleRecord struct {
	Tick      uint64       `json:"tick"`
	Action    world.Action `json:"action"`
	Applied   bool         `json:"applied"`
	People    float64      `json:"people"`
	Food      float64      `json:"food"`
	Rationale string       `json:"rationale,omitempty"`
}

// Memory is a ring of recent cycle records.
type Memory struct {
	mu      sync.Mutex
	records []CycleRecord
}

// Record adds a cycle record, trimming to maxRecords.
func (m *Memory) Record(r CycleRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, r)
	if len(m.records) > maxRecords {
		m.records = m.records[len(m.records)-maxRecords:]
	}
}

// Records returns a copy of the retained records, oldest first.
func (m *Memory) Records() []CycleRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CycleRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Summary counts retained cycles per action, e.g. "food=3 birth=1 war=0 wait=2".
func (m *Memory) Summary() string {
	counts := make(map[world.Action]int)
	waits := 0
	for _, r := range m.Records() {
		if r.Action.Valid() {
			counts[r.Action]++
		} else {
			waits++
		}
	}

	var b strings.Builder
	for _, a := range world.Actions {
		fmt.Fprintf(&b, "%s=%d ", a, counts[a])
	}
	fmt.Fprintf(&b, "wait=%d", waits)
	return b.String()
}
