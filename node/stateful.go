package node

import (
	"fmt"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Set unconditionally sets a named flag to Value, without consuming input
// (spec §4.3 Set). The scope is resolved by whoever owns this node's
// definition; a nil Scope addresses the local flag table directly.
type Set struct {
	Base
	Scope  state.Scope
	FlagID int
	Value  bool
}

func NewSet(scope state.Scope, flagID int, value bool) *Set {
	return &Set{Scope: scope, FlagID: flagID, Value: value}
}

func (n *Set) MatchNext(_ *input.Input, pos int, _ *token.Token, st *state.State) int {
	st.SetFlag(n.Scope, n.FlagID, n.Value)
	return pos
}

func (n *Set) MatchLength() int { return 0 }
func (n *Set) String() string   { return fmt.Sprintf("Set(%d,%v)", n.FlagID, n.Value) }

// If matches Item only when the named flag equals Value, otherwise fails
// without attempting Item at all (spec §4.3 If).
type If struct {
	Base
	Scope  state.Scope
	FlagID int
	Value  bool
	Item   Node
}

func NewIf(scope state.Scope, flagID int, value bool, item Node) *If {
	n := &If{Scope: scope, FlagID: flagID, Value: value, Item: item}
	item.SetParent(n)
	return n
}

func (n *If) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *If) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	if st.Flag(n.Scope, n.FlagID) != n.Value {
		return Fail
	}
	return n.Item.MatchNext(in, pos, parent, st)
}

func (n *If) MatchLength() int { return n.Item.MatchLength() }
func (n *If) String() string   { return fmt.Sprintf("If(%d,%v,%s)", n.FlagID, n.Value, n.Item) }

// Capture matches Item and, on success, records the matched span under the
// named capture id for later use by a Replay node (spec §4.3 Capture).
type Capture struct {
	Base
	Scope     state.Scope
	CaptureID int
	Item      Node
}

func NewCapture(scope state.Scope, captureID int, item Node) *Capture {
	n := &Capture{Scope: scope, CaptureID: captureID, Item: item}
	item.SetParent(n)
	return n
}

// SuccOfChild passes succession through, same as Glue's single-item case:
// Capture does not interpose any ordering semantics of its own.
func (n *Capture) SuccOfChild(child Node) Node {
	if child == n.Item {
		return Succ(n)
	}
	return nil
}

func (n *Capture) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	at := anchor(parent)
	next := n.Item.MatchNext(in, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
		return Fail
	}
	st.SetCapture(n.Scope, n.CaptureID, state.Range{I0: pos, I1: next})
	return next
}

func (n *Capture) MatchLength() int { return n.Item.MatchLength() }
func (n *Capture) String() string   { return fmt.Sprintf("Capture(%d,%s)", n.CaptureID, n.Item) }

// Replay matches the literal bytes previously recorded by the named
// capture, case-sensitively, at the current position (spec §4.3 Replay).
// It fails if the capture was never set.
type Replay struct {
	Base
	Scope     state.Scope
	CaptureID int
}

func NewReplay(scope state.Scope, captureID int) *Replay {
	return &Replay{Scope: scope, CaptureID: captureID}
}

func (n *Replay) MatchNext(in *input.Input, pos int, _ *token.Token, st *state.State) int {
	r := st.Capture(n.Scope, n.CaptureID)
	if r.Unset() {
		return Fail
	}
	want := in.Slice(r.I0, r.I1)
	i := pos
	for _, ch := range want {
		if !in.Has(i) || in.At(i) != ch {
			return Fail
		}
		i++
	}
	return i
}

func (n *Replay) MatchLength() int { return -1 }
func (n *Replay) String() string   { return fmt.Sprintf("Replay(%d)", n.CaptureID) }
