// Package node implements the grammar node catalog: the matching algebra of
// terminals, quantifiers, structural combinators, stateful primitives, and
// cross-rule links that together form a Definition (spec §4.3).
//
// Every variant is a small struct implementing Node. Go has no tagged
// unions, so one struct per variant standing behind a common interface is
// the idiomatic substitute for the virtual-dispatch node hierarchy this
// catalog is grounded on.
package node

import (
	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Fail re-exports input.Fail for readability within node implementations.
const Fail = input.Fail

// Node is a single grammar node. MatchNext reads zero or more bytes
// starting at pos and returns the new position on success or Fail. It may
// append children to parent (nil-safe); on failure it must restore
// parent's child list to the snapshot taken on entry (spec §4.1).
type Node interface {
	MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int

	// MatchLength returns the node's fixed match length in bytes, or -1 if
	// the length is not statically known (spec §4.3 Repeat, §4.3 Behind).
	MatchLength() int

	// Parent returns the node's parent in the grammar tree, or nil for a
	// detached or root node.
	Parent() Node

	// SetParent sets the node's parent. Called once by whichever
	// constructor appends this node as a child.
	SetParent(Node)

	// SuccOfChild returns what logically comes after child within this
	// node's own sub-pattern, or nil if this node type does not pass
	// succession through (spec §4.2). Only Glue, Choice, and Capture
	// override the default (which returns nil).
	SuccOfChild(child Node) Node

	String() string
}

// Succ returns the node that would be matched after n, found by asking n's
// parent how its children chain (spec §4.2's "succession chain"). Used by
// LazyRepeat and GreedyRepeat to look ahead without committing tokens.
func Succ(n Node) Node {
	p := n.Parent()
	if p == nil {
		return nil
	}
	return p.SuccOfChild(n)
}

// Base is embedded by every node variant for the parent link and the
// default (pass-nothing) succession behavior.
type Base struct {
	parent Node
}

// Parent implements Node.
func (b *Base) Parent() Node { return b.parent }

// SetParent implements Node.
func (b *Base) SetParent(p Node) { b.parent = p }

// SuccOfChild implements Node's default: no succession passes through.
func (b *Base) SuccOfChild(Node) Node { return nil }

// anchor snapshots parent's last child before a node attempts to match, for
// later rollback. parent may be nil.
func anchor(parent *token.Token) *token.Token {
	if parent == nil {
		return nil
	}
	return parent.LastChild()
}

// rollback restores parent's child list to a previously taken anchor.
// parent may be nil, in which case it is a no-op.
func rollback(parent *token.Token, at *token.Token) {
	if parent == nil {
		return
	}
	parent.RestoreTo(at)
}
