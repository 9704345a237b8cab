package search

import (
	"fmt"
	"time"
)

// Record is one iteration of a skeleton. Iteration 0 is the initial solution.
type Record struct {
	Iteration   int           `json:"iteration"`
	Elapsed     time.Duration `json:"elapsed"`
	Current     Fitness       `json:"current"`
	Best        Fitness       `json:"best"`
	Feasible    bool          `json:"feasible"`
	Accepted    bool          `json:"accepted"`
	Improved    bool          `json:"improved"`
	Temperature float64       `json:"temperature,omitempty"`
	Strength    float64       `json:"strength,omitempty"`
}

type EventKind int

const (
	EventImprovement EventKind = iota
	EventTemperatureChange
	EventAcceptanceWindow
	EventRestart
)

func (k EventKind) String() string {
	switch k {
	case EventImprovement:
		return "improvement"
	case EventTemperatureChange:
		return "temperature_change"
	case EventAcceptanceWindow:
		return "acceptance_window"
	case EventRestart:
		return "restart"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is a discrete occurrence between records. Value holds the new best
// scalar, the new temperature or the window acceptance rate depending on Kind.
type Event struct {
	Kind      EventKind     `json:"kind"`
	Iteration int           `json:"iteration"`
	Elapsed   time.Duration `json:"elapsed"`
	Value     float64       `json:"value"`
}

// Trace is append-only. It is the only data a search exports for reports.
type Trace struct {
	records []Record
	events  []Event
}

func (t *Trace) Append(r Record) { t.records = append(t.records, r) }
func (t *Trace) Emit(e Event)    { t.events = append(t.events, e) }
func (t *Trace) Len() int        { return len(t.records) }

func (t *Trace) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

func (t *Trace) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

func (t *Trace) Last() (Record, bool) {
	if len(t.records) == 0 {
		return Record{}, false
	}
	return t.records[len(t.records)-1], true
}

// Normalized returns a copy with every timestamp zeroed so that two runs of
// the same (tree, instance, seed) compare equal.
func (t *Trace) Normalized() *Trace {
	out := &Trace{records: t.Records(), events: t.Events()}
	for i := range out.records {
		out.records[i].Elapsed = 0
	}
	for i := range out.events {
		out.events[i].Elapsed = 0
	}
	return out
}
