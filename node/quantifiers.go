package node

import (
	"fmt"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/internal/queue"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// repeatBase holds the fields shared by all three repetition variants.
type repeatBase struct {
	Base
	Item     Node
	Min, Max int // Max < 0 means unbounded
}

func (r *repeatBase) SetParent(p Node) {
	r.Base.SetParent(p)
}

func (r *repeatBase) MatchLength() int {
	if r.Min == r.Max {
		n := r.Item.MatchLength()
		if n < 0 {
			return -1
		}
		return n * r.Min
	}
	return -1
}

// Repeat matches Item between Min and Max times (Max<0 for unbounded),
// greedily and without backtracking: it simply stops at the first failed
// iteration or at Max, succeeding iff it collected at least Min (spec §4.3
// Repeat, the "~" ordinary repetition).
type Repeat struct{ repeatBase }

func NewRepeat(item Node, min, max int) *Repeat {
	n := &Repeat{repeatBase{Item: item, Min: min, Max: max}}
	item.SetParent(n)
	return n
}

func (n *Repeat) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n.Item
	}
	return nil
}

func (n *Repeat) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	count := 0
	i := pos
	for n.Max < 0 || count < n.Max {
		at := anchor(parent)
		next := n.Item.MatchNext(in, i, parent, st)
		if next == Fail {
			rollback(parent, at)
			break
		}
		if next == i && n.Item.MatchLength() < 0 {
			// zero-width iteration with unknown length: stop to avoid an
			// infinite loop instead of looping forever.
			break
		}
		i = next
		count++
	}
	if count < n.Min {
		return Fail
	}
	return i
}

func (n *Repeat) String() string {
	return fmt.Sprintf("Repeat(%s,%d,%d)", n.Item, n.Min, n.Max)
}

// checkpoint records one accepted iteration of a backtracking repeat, so it
// can be undone to try a different repeat count against the succession
// chain.
type checkpoint struct {
	pos    int
	anchor *token.Token
}

// tryRest peeks whether whatever matches after n (per the succession chain)
// can match at pos, without leaving any tokens behind.
func tryRest(n Node, in *input.Input, pos int, parent *token.Token, st *state.State) bool {
	rest := Succ(n)
	if rest == nil {
		return true
	}
	at := anchor(parent)
	ok := rest.MatchNext(in, pos, parent, st) != Fail
	rollback(parent, at)
	return ok
}

// LazyRepeat matches Item as few times as possible: after reaching Min, it
// stops as soon as the succession chain can match at the current position,
// only consuming more when that peek fails (spec §4.3 LazyRepeat).
type LazyRepeat struct{ repeatBase }

func NewLazyRepeat(item Node, min, max int) *LazyRepeat {
	n := &LazyRepeat{repeatBase{Item: item, Min: min, Max: max}}
	item.SetParent(n)
	return n
}

func (n *LazyRepeat) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n.Item
	}
	return nil
}

func (n *LazyRepeat) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	var points []checkpoint
	i := pos
	count := 0
	for {
		if count >= n.Min && tryRest(n, in, i, parent, st) {
			return i
		}
		if n.Max >= 0 && count >= n.Max {
			break
		}
		at := anchor(parent)
		next := n.Item.MatchNext(in, i, parent, st)
		if next == Fail {
			rollback(parent, at)
			break
		}
		points = append(points, checkpoint{pos: i, anchor: at})
		i = next
		count++
	}
	if count >= n.Min {
		return i
	}
	// Unwind everything matched: the whole quantifier fails.
	if len(points) > 0 {
		rollback(parent, points[0].anchor)
	}
	return Fail
}

func (n *LazyRepeat) String() string {
	return fmt.Sprintf("LazyRepeat(%s,%d,%d)", n.Item, n.Min, n.Max)
}

// GreedyRepeat matches Item as many times as possible, then backs off one
// iteration at a time until the succession chain can match, or until Min is
// reached (spec §4.3 GreedyRepeat, §8 "GreedyRepeat maximality").
type GreedyRepeat struct{ repeatBase }

func NewGreedyRepeat(item Node, min, max int) *GreedyRepeat {
	n := &GreedyRepeat{repeatBase{Item: item, Min: min, Max: max}}
	item.SetParent(n)
	return n
}

func (n *GreedyRepeat) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n.Item
	}
	return nil
}

// GreedyRepeat records one checkpoint per accepted iteration in a LIFO
// queue.Queue (pushed in match order, popped in reverse during backoff) so
// that backing off one iteration at a time is a queue.Queue.Last() away
// rather than hand-indexed slice bookkeeping.
func (n *GreedyRepeat) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	initial := anchor(parent)
	points := queue.New[checkpoint]()
	i := pos
	count := 0
	for n.Max < 0 || count < n.Max {
		at := anchor(parent)
		next := n.Item.MatchNext(in, i, parent, st)
		if next == Fail {
			rollback(parent, at)
			break
		}
		if next == i && n.Item.MatchLength() < 0 {
			break
		}
		points.Append(checkpoint{pos: next, anchor: at})
		i = next
		count++
	}

	var top checkpoint
	if count > 0 {
		top, _ = points.Last()
	}

	for count >= n.Min {
		if tryRest(n, in, i, parent, st) {
			return i
		}
		if count == n.Min {
			break
		}
		rollback(parent, top.anchor)
		count--
		if count > 0 {
			top, _ = points.Last()
			i = top.pos
		} else {
			i = pos
		}
	}

	rollback(parent, initial)
	return Fail
}

func (n *GreedyRepeat) String() string {
	return fmt.Sprintf("GreedyRepeat(%s,%d,%d)", n.Item, n.Min, n.Max)
}
