package node

import (
	"fmt"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Rule wraps a rule's entry sub-pattern and, whenever it is actually
// invoked, unconditionally creates and appends a token spanning the match
// (spec §4.1 invariant #3). Whether it is invoked at all for a given
// reference site is decided entirely by the referencing Ref, which may
// instead call Entry directly to inline the rule and produce no token.
type Rule struct {
	Base
	RuleID   int
	Generate bool // consulted only by Ref; Rule.MatchNext always tokenizes
	entry    Node
}

func NewRule(ruleID int, generate bool, entry Node) *Rule {
	n := &Rule{RuleID: ruleID, Generate: generate, entry: entry}
	entry.SetParent(n)
	return n
}

// Entry returns the rule's sub-pattern, used by Ref to inline it.
func (n *Rule) Entry() Node { return n.entry }

func (n *Rule) SuccOfChild(child Node) Node {
	return nil
}

// MatchNext attaches the rule's token to parent before matching the entry,
// so that nodes inside the rule (Context) can see the enclosing token, and
// detaches it again if the entry fails.
func (n *Rule) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	tok := st.NewToken(n.RuleID, pos, pos)
	at := anchor(parent)
	if parent != nil {
		parent.AppendChild(tok)
	}
	next := n.entry.MatchNext(in, pos, tok, st)
	if next == Fail {
		rollback(parent, at)
		return Fail
	}
	tok.I1 = next
	return next
}

func (n *Rule) MatchLength() int { return n.entry.MatchLength() }
func (n *Rule) String() string   { return fmt.Sprintf("Rule(%d)", n.RuleID) }

// Ref refers to another rule by pointer. Generate is this reference site's
// own opinion on whether to tokenize; the rule is actually tokenized only
// if both this flag and the target rule's own Generate are set — otherwise
// the reference is inlined by calling the target's entry directly, ported
// from RefNode::matchNext's dispatch (spec §4.3 Ref).
type Ref struct {
	Base
	Target   *Rule
	Generate bool
}

func NewRef(target *Rule, generate bool) *Ref {
	return &Ref{Target: target, Generate: generate}
}

func (n *Ref) SuccOfChild(Node) Node { return nil }

func (n *Ref) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	if n.Generate && n.Target.Generate {
		return n.Target.MatchNext(in, pos, parent, st)
	}
	return n.Target.Entry().MatchNext(in, pos, parent, st)
}

func (n *Ref) MatchLength() int { return n.Target.MatchLength() }
func (n *Ref) String() string   { return fmt.Sprintf("Ref(%d)", n.Target.RuleID) }

// Invoke re-parses a previously captured span with Item, as if it were a
// standalone input starting at offset zero, then shifts every produced
// token's coordinates back into the enclosing input before splicing them
// in (spec §4.3 Invoke). It is zero-width in the enclosing match: the
// bytes it reads were already consumed by whatever Capture recorded them.
//
// The original shiftTree coordinate-adjustment helper this is grounded on
// was not available in the retrieved source; the offset-and-splice scheme
// here is a reconstruction from the node's documented contract.
type Invoke struct {
	Base
	Scope     state.Scope
	CaptureID int
	Item      Node
}

func NewInvoke(scope state.Scope, captureID int, item Node) *Invoke {
	n := &Invoke{Scope: scope, CaptureID: captureID, Item: item}
	item.SetParent(n)
	return n
}

func (n *Invoke) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Invoke) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	r := st.Capture(n.Scope, n.CaptureID)
	if r.Unset() {
		return Fail
	}
	sub := input.New(in.Name(), in.Slice(r.I0, r.I1))
	root := token.New(token.NoRule, 0, 0)
	end := n.Item.MatchNext(sub, 0, root, st)
	if end == Fail {
		return Fail
	}
	shiftTree(root, r.I0)
	if parent != nil {
		for c := root.FirstChild(); c != nil; {
			next := c.NextSibling()
			parent.AppendChild(c)
			c = next
		}
	}
	return pos
}

// shiftTree adds delta to every token's coordinates in the subtree rooted
// at t, recursively.
func shiftTree(t *token.Token, delta int) {
	for c := t.FirstChild(); c != nil; c = c.NextSibling() {
		c.I0 += delta
		c.I1 += delta
		shiftTree(c, delta)
	}
}

func (n *Invoke) MatchLength() int { return 0 }
func (n *Invoke) String() string   { return fmt.Sprintf("Invoke(%d,%s)", n.CaptureID, n.Item) }

// Previous succeeds iff the parent token's last existing child at the time
// of the check has the given rule id (spec §4.3 Previous); it never
// consumes input. Implemented against the parent token's own last child
// rather than the parent token's sibling, since the latter reading would
// make the node unusable for its documented purpose of checking the token
// just produced within the current rule. KeywordID, if not token.NoKeyword,
// additionally requires the sibling to carry that keyword id.
type Previous struct {
	Base
	RuleID    int
	KeywordID int
	Invert    bool
}

func NewPrevious(ruleID int, invert bool) *Previous {
	return &Previous{RuleID: ruleID, KeywordID: token.NoKeyword, Invert: invert}
}

func (n *Previous) MatchNext(_ *input.Input, pos int, parent *token.Token, _ *state.State) int {
	ok := false
	if parent != nil {
		last := parent.LastChild()
		ok = last != nil && last.RuleID == n.RuleID &&
			(n.KeywordID == token.NoKeyword || last.KeywordID == n.KeywordID)
	}
	if ok == n.Invert {
		return Fail
	}
	return pos
}

func (n *Previous) MatchLength() int { return 0 }
func (n *Previous) String() string   { return fmt.Sprintf("Previous(%d,%v)", n.RuleID, n.Invert) }

// Context picks InContext or OutOfContext depending on whether the rule
// enclosing the current one (the parent token's own parent rule id) equals
// RuleID, then actually matches the chosen branch — it is not itself
// zero-width, only a dispatch (spec §4.3 Context, ported from
// ContextNode::matchNext).
type Context struct {
	Base
	RuleID                 int
	InContext, OutOfContext Node
}

func NewContext(ruleID int, inContext, outOfContext Node) *Context {
	n := &Context{RuleID: ruleID, InContext: inContext, OutOfContext: outOfContext}
	inContext.SetParent(n)
	outOfContext.SetParent(n)
	return n
}

func (n *Context) SuccOfChild(child Node) Node {
	if child == n.InContext || child == n.OutOfContext {
		return n
	}
	return nil
}

func (n *Context) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	if parent == nil {
		return Fail
	}
	gp := parent.Parent()
	if gp == nil {
		return Fail
	}
	entry := n.OutOfContext
	if gp.RuleID == n.RuleID {
		entry = n.InContext
	}
	at := anchor(parent)
	next := entry.MatchNext(in, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
	}
	return next
}

func (n *Context) MatchLength() int {
	if n.InContext.MatchLength() == n.OutOfContext.MatchLength() {
		return n.InContext.MatchLength()
	}
	return -1
}

func (n *Context) String() string { return fmt.Sprintf("Context(%d)", n.RuleID) }
