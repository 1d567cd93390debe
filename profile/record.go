package profile

import (
	"time"
)

// NodeRecord is the per-node metadata attached to a frame record. The tree
// of records mirrors the component tree as built this frame.
type NodeRecord struct {
	Type     uint64        `json:"type"`
	Key      string        `json:"key,omitempty"`
	Logic    uint32        `json:"logic,omitempty"`
	Class    string        `json:"class,omitempty"` // cache classification, if measured
	Width    float64       `json:"w"`
	Height   float64       `json:"h"`
	Elapsed  time.Duration `json:"elapsed_ns,omitempty"`
	Replayed bool          `json:"replayed,omitempty"`
	Skipped  bool          `json:"skipped,omitempty"`
	Children []*NodeRecord `json:"children,omitempty"`
}

// FrameRecord is the structured record emitted once per frame. The on-disk
// encoding is an external, independently versioned contract; only the field
// set here is promised.
type FrameRecord struct {
	Session  string        `json:"session"` // uuid stamped at runtime start
	Seq      uint64        `json:"seq"`
	Mode     string        `json:"mode"`
	Reasons  []string      `json:"reasons,omitempty"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Counters Counters      `json:"counters"`
	Root     *NodeRecord   `json:"root,omitempty"`
}

// Counters is the wire form of FrameStats.
type Counters struct {
	DirtyParams    uint64            `json:"dirty_params"`
	DirtyStructure uint64            `json:"dirty_structure"`
	DirtyTotal     uint64            `json:"dirty_total"`
	FingerprintNS  int64             `json:"fingerprint_ns"`
	MeasureCalls   uint64            `json:"measure_calls"`
	Stores         uint64            `json:"stores"`
	TornDown       uint64            `json:"torn_down"`
	Lookups        map[string]uint64 `json:"lookups"`
}

// CountersFrom flattens FrameStats into wire form.
func CountersFrom(s *FrameStats) Counters {
	lookups := make(map[string]uint64, int(classCount))
	for _, c := range Classifications() {
		if n := s.Lookup(c); n > 0 {
			lookups[c.String()] = n
		}
	}
	return Counters{
		DirtyParams:    s.DirtyParams,
		DirtyStructure: s.DirtyStructure,
		DirtyTotal:     s.DirtyTotal,
		FingerprintNS:  s.FingerprintTime.Nanoseconds(),
		MeasureCalls:   s.MeasureCalls,
		Stores:         s.Stores,
		TornDown:       s.TornDown,
		Lookups:        lookups,
	}
}
