package value

import (
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
)

// EventEntry is one emitted event: its argument tuple plus a generated
// identifier host collaborators can use to deduplicate or reference a
// specific emission (SPEC_FULL.md §4.1e).
type EventEntry struct {
	ID        uuid.UUID
	Arguments []Value
}

// EventLog is a process-lifetime, append-only mapping from event name to
// the ordered list of argument tuples emitted under that name
// (spec.md §3 Glossary).
type EventLog struct {
	order   []string
	entries map[string][]EventEntry
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{entries: make(map[string][]EventEntry)}
}

// Append records one emission under name and returns its generated ID.
func (l *EventLog) Append(name string, args []Value) uuid.UUID {
	if _, ok := l.entries[name]; !ok {
		l.order = append(l.order, name)
	}
	id := uuid.New()
	l.entries[name] = append(l.entries[name], EventEntry{ID: id, Arguments: args})
	return id
}

// Entries returns the recorded argument tuples for name, in emission
// order.
func (l *EventLog) Entries(name string) []EventEntry {
	return l.entries[name]
}

// Names returns the event names that have at least one entry, in the
// order they were first emitted.
func (l *EventLog) Names() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Emitter is passed down from the entry point rather than used as a
// process-global (spec.md §9: "pass an emitter interface down from the
// entry point rather than using a process-global").
type Emitter struct {
	Log    *EventLog
	Output io.Writer
}

// NewEmitter builds an Emitter writing the `[EVENT] ...` side effect to
// out and recording into a fresh EventLog.
func NewEmitter(out io.Writer) *Emitter {
	return &Emitter{Log: NewEventLog(), Output: out}
}

// Emit appends args to the log under name and writes the standard-output
// line `[EVENT] name: [arg1, arg2, ...]` (spec.md §6).
func (e *Emitter) Emit(name string, args []Value) uuid.UUID {
	id := e.Log.Append(name, args)
	if e.Output != nil {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = elementRepr(a)
		}
		fmt.Fprintf(e.Output, "[EVENT] %s: [%s]\n", name, strings.Join(parts, ", "))
	}
	return id
}
