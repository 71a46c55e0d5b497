// Package debugnode wraps grammar nodes with tracing instrumentation,
// without needing a variant of its own in the node catalog: Node is free
// of unexported methods (spec §4.3, node.Node), so a wrapper can embed a
// Node value and override only MatchNext — the standard Go "embed an
// interface value, override one method" decorator idiom.
package debugnode

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/node"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Event records one MatchNext call observed through a Tracer.
type Event struct {
	Pos    int
	Result int
}

// Tracer decorates a Node, recording every MatchNext call made through it.
// String is overridden to show the trace label; all other Node methods
// (MatchLength, Parent, SetParent, SuccOfChild) pass straight through to the
// wrapped node via embedding.
type Tracer struct {
	node.Node
	Name string

	mu     sync.Mutex
	events []Event
}

// NewTracer wraps n, labeling its recorded events with name (typically the
// rule or sub-pattern being watched).
func NewTracer(name string, n node.Node) *Tracer {
	return &Tracer{Node: n, Name: name}
}

func (t *Tracer) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	result := t.Node.MatchNext(in, pos, parent, st)
	t.mu.Lock()
	t.events = append(t.events, Event{Pos: pos, Result: result})
	t.mu.Unlock()
	return result
}

// Events returns every recorded call, in order.
func (t *Tracer) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}

// Count returns the number of recorded MatchNext calls.
func (t *Tracer) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *Tracer) String() string {
	return fmt.Sprintf("Trace(%s,%s)", t.Name, t.Node.String())
}

// Factory collects Tracers created through Wrap, keyed by name, so a host
// can inspect every watched node's call history after a match without
// threading references through the grammar assembly code by hand.
type Factory struct {
	mu      sync.Mutex
	tracers map[string]*Tracer
}

// NewFactory creates an empty Factory.
func NewFactory() *Factory {
	return &Factory{tracers: make(map[string]*Tracer)}
}

// Wrap decorates n with a Tracer registered under name and returns it as a
// node.Node, so it can be spliced directly into a Builder call in place of
// n (e.g. b.Define("Digit", f.Wrap("Digit", b.Range('0','9')), true)).
// Wrapping the same name twice replaces the earlier Tracer.
func (f *Factory) Wrap(name string, n node.Node) node.Node {
	t := NewTracer(name, n)
	f.mu.Lock()
	f.tracers[name] = t
	f.mu.Unlock()
	return t
}

// Get returns the Tracer registered under name, or nil if none was wrapped
// with that name.
func (f *Factory) Get(name string) *Tracer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracers[name]
}

// Report formats a one-line call count per watched node, sorted by name,
// for quick inspection after a match run.
func (f *Factory) Report() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.tracers))
	for name := range f.tracers {
		names = append(names, name)
	}
	sort.Strings(names)
	out := ""
	for _, name := range names {
		out += fmt.Sprintf("%s: %d calls\n", name, f.tracers[name].Count())
	}
	return out
}
