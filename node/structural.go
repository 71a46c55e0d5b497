package node

import (
	"fmt"
	"strings"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// childList is embedded by every node that owns a fixed ordered list of
// sub-nodes (Choice, Glue) to share append/parent-wiring logic.
type childList struct {
	Base
	Items []Node
}

func (c *childList) add(item Node, self Node) {
	item.SetParent(self)
	c.Items = append(c.Items, item)
}

// Choice tries each alternative in order and commits to the first that
// matches (spec §4.3 Choice, ordered choice with no backtracking into
// earlier alternatives once one has matched).
type Choice struct{ childList }

func NewChoice(items ...Node) *Choice {
	n := &Choice{}
	for _, it := range items {
		n.add(it, n)
	}
	return n
}

// SuccOfChild implements the succession-passthrough documented in spec
// §4.2: whatever comes after a Choice also comes after each of its
// alternatives, since exactly one alternative's match stands in for the
// whole Choice.
func (n *Choice) SuccOfChild(child Node) Node {
	return Succ(n)
}

func (n *Choice) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	for _, alt := range n.Items {
		at := anchor(parent)
		next := alt.MatchNext(in, pos, parent, st)
		if next != Fail {
			return next
		}
		rollback(parent, at)
		if st.Finalize() {
			break
		}
	}
	return Fail
}

func (n *Choice) MatchLength() int {
	if len(n.Items) == 0 {
		return 0
	}
	l := n.Items[0].MatchLength()
	for _, it := range n.Items[1:] {
		if it.MatchLength() != l {
			return -1
		}
	}
	return l
}

func (n *Choice) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return "Choice(" + strings.Join(parts, "|") + ")"
}

// LazyChoice is Choice restricted to exactly two alternatives, where the
// second is only attempted if the first's match turns out not to lead to an
// overall success — it peeks via the succession chain before committing to
// the first (spec §4.3 LazyChoice).
type LazyChoice struct {
	childList
}

func NewLazyChoice(first, second Node) *LazyChoice {
	n := &LazyChoice{}
	n.add(first, n)
	n.add(second, n)
	return n
}

func (n *LazyChoice) SuccOfChild(child Node) Node {
	return Succ(n)
}

func (n *LazyChoice) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	first, second := n.Items[0], n.Items[1]

	at := anchor(parent)
	next := first.MatchNext(in, pos, parent, st)
	if next != Fail && tryRest(n, in, next, parent, st) {
		return next
	}
	rollback(parent, at)
	if next != Fail && st.Finalize() {
		return Fail
	}

	at = anchor(parent)
	next = second.MatchNext(in, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
		return Fail
	}
	return next
}

func (n *LazyChoice) MatchLength() int {
	if n.Items[0].MatchLength() == n.Items[1].MatchLength() {
		return n.Items[0].MatchLength()
	}
	return -1
}

func (n *LazyChoice) String() string {
	return fmt.Sprintf("LazyChoice(%s,%s)", n.Items[0], n.Items[1])
}

// Glue matches each item in sequence, all or nothing (spec §4.3 Glue).
type Glue struct{ childList }

func NewGlue(items ...Node) *Glue {
	n := &Glue{}
	for _, it := range items {
		n.add(it, n)
	}
	return n
}

// SuccOfChild implements sequencing: the node after item i is item i+1, or
// whatever comes after the whole Glue if item i is last.
func (n *Glue) SuccOfChild(child Node) Node {
	for i, it := range n.Items {
		if it == child {
			if i+1 < len(n.Items) {
				return n.Items[i+1]
			}
			return Succ(n)
		}
	}
	return nil
}

func (n *Glue) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	at := anchor(parent)
	i := pos
	for _, it := range n.Items {
		next := it.MatchNext(in, i, parent, st)
		if next == Fail {
			rollback(parent, at)
			return Fail
		}
		i = next
		if st.Finalize() {
			rollback(parent, at)
			return Fail
		}
	}
	return i
}

func (n *Glue) MatchLength() int {
	total := 0
	for _, it := range n.Items {
		l := it.MatchLength()
		if l < 0 {
			return -1
		}
		total += l
	}
	return total
}

func (n *Glue) String() string {
	parts := make([]string, len(n.Items))
	for i, it := range n.Items {
		parts[i] = it.String()
	}
	return "Glue(" + strings.Join(parts, ",") + ")"
}

// Length succeeds iff Item matches and the match covers between Min and
// Max bytes inclusive (Max<0 for unbounded) (spec §4.3 Length).
type Length struct {
	Base
	Item     Node
	Min, Max int
}

func NewLength(item Node, min, max int) *Length {
	r := &Length{Item: item, Min: min, Max: max}
	item.SetParent(r)
	return r
}

func (n *Length) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Length) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	at := anchor(parent)
	next := n.Item.MatchNext(in, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
		return Fail
	}
	l := next - pos
	if l < n.Min || (n.Max >= 0 && l > n.Max) {
		rollback(parent, at)
		return Fail
	}
	return next
}

func (n *Length) MatchLength() int {
	l := n.Item.MatchLength()
	if l >= n.Min && (n.Max < 0 || l <= n.Max) {
		return l
	}
	return -1
}

func (n *Length) String() string { return fmt.Sprintf("Length(%s,%d,%d)", n.Item, n.Min, n.Max) }

// Filter runs FilterExpr to produce zero-width-or-not tokens marking spans
// of the input to hide, blanks exactly those spans in a private copy, then
// matches Entry against the masked copy. FilterExpr's own tokens are never
// part of the real tree: they are collected, then discarded by a rollback,
// then (only once Entry has matched) spliced back into parent's child list
// at the position their span implies, interleaved with whatever tokens
// Entry produced (spec §4.3 Filter).
type Filter struct {
	Base
	FilterExpr Node
	Blank      byte
	Entry      Node
}

func NewFilter(filterExpr Node, blank byte, entry Node) *Filter {
	n := &Filter{FilterExpr: filterExpr, Blank: blank, Entry: entry}
	filterExpr.SetParent(n)
	entry.SetParent(n)
	return n
}

func (n *Filter) SuccOfChild(child Node) Node {
	if child == n.FilterExpr || child == n.Entry {
		return n
	}
	return nil
}

func (n *Filter) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	lastChildSaved := anchor(parent)
	h := n.FilterExpr.MatchNext(in, pos, parent, st)

	var filterToken *token.Token
	if parent != nil {
		if lastChildSaved != nil {
			filterToken = lastChildSaved.NextSibling()
		} else {
			filterToken = parent.FirstChild()
		}
	}
	rollback(parent, lastChildSaved)

	if h == Fail {
		return Fail
	}

	var spans [][2]int
	for t := filterToken; t != nil; t = t.NextSibling() {
		spans = append(spans, [2]int{t.I0, t.I1})
	}
	masked := in.Masked(n.Blank, spans)

	at := anchor(parent)
	next := n.Entry.MatchNext(masked, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
		return Fail
	}

	if parent != nil && filterToken != nil {
		var ta *token.Token
		if at != nil {
			ta = at.NextSibling()
		} else {
			ta = parent.FirstChild()
		}
		for ta != nil && filterToken != nil {
			if ta.I1 <= filterToken.I0 {
				tb := ta.NextSibling()
				found := tb == nil || filterToken.I1 <= tb.I0
				if found {
					afterFilterToken := filterToken.NextSibling()
					parent.InsertBefore(filterToken, tb)
					filterToken = afterFilterToken
				}
			}
			ta = ta.NextSibling()
		}
	}

	return next
}

func (n *Filter) MatchLength() int { return n.Entry.MatchLength() }
func (n *Filter) String() string {
	return fmt.Sprintf("Filter(%s,%q,%s)", n.FilterExpr, n.Blank, n.Entry)
}

// Find scans forward from pos, trying Item at each offset in turn, and
// succeeds at the first offset where it matches (spec §4.3 Find).
type Find struct {
	Base
	Item Node
}

func NewFind(item Node) *Find {
	n := &Find{Item: item}
	item.SetParent(n)
	return n
}

func (n *Find) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Find) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	for i := pos; in.Has(i) || i == pos; i++ {
		at := anchor(parent)
		next := n.Item.MatchNext(in, i, parent, st)
		if next != Fail {
			return next
		}
		rollback(parent, at)
		if !in.Has(i) {
			break
		}
	}
	return Fail
}

func (n *Find) MatchLength() int { return -1 }
func (n *Find) String() string   { return fmt.Sprintf("Find(%s)", n.Item) }

// Ahead matches Item but consumes no input either way (spec §4.3 Ahead, a
// positive lookahead): it always rolls back any tokens Item produced.
type Ahead struct {
	Base
	Item   Node
	Invert bool
}

func NewAhead(item Node, invert bool) *Ahead {
	n := &Ahead{Item: item, Invert: invert}
	item.SetParent(n)
	return n
}

func (n *Ahead) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Ahead) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	at := anchor(parent)
	ok := n.Item.MatchNext(in, pos, parent, st) != Fail
	rollback(parent, at)
	if ok == n.Invert {
		return Fail
	}
	return pos
}

func (n *Ahead) MatchLength() int { return 0 }
func (n *Ahead) String() string {
	if n.Invert {
		return fmt.Sprintf("NotAhead(%s)", n.Item)
	}
	return fmt.Sprintf("Ahead(%s)", n.Item)
}

// Behind matches Item ending exactly at pos, by re-matching it starting
// from pos-len(Item) — it therefore requires Item to have a fixed
// MatchLength (spec §4.3 Behind, a fixed-width lookbehind).
type Behind struct {
	Base
	Item   Node
	Invert bool
}

func NewBehind(item Node, invert bool) *Behind {
	n := &Behind{Item: item, Invert: invert}
	item.SetParent(n)
	return n
}

func (n *Behind) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Behind) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	l := n.Item.MatchLength()
	ok := false
	if l >= 0 && pos-l >= 0 {
		at := anchor(parent)
		next := n.Item.MatchNext(in, pos-l, parent, st)
		ok = next == pos
		rollback(parent, at)
	}
	if ok == n.Invert {
		return Fail
	}
	return pos
}

func (n *Behind) MatchLength() int { return 0 }
func (n *Behind) String() string {
	if n.Invert {
		return fmt.Sprintf("NotBehind(%s)", n.Item)
	}
	return fmt.Sprintf("Behind(%s)", n.Item)
}

// Hint records Message as the failure explanation at pos whenever Item
// fails to match, without itself affecting success or failure (spec §4.3
// Hint): only the first hint recorded at the deepest failure offset
// survives (an inner Hint fails before its enclosing one, so the innermost
// wins), and nothing is recorded once the state is finalized.
type Hint struct {
	Base
	Item    Node
	Message string
	Strict  bool
}

func NewHint(item Node, message string, strict bool) *Hint {
	n := &Hint{Item: item, Message: message, Strict: strict}
	item.SetParent(n)
	return n
}

func (n *Hint) SuccOfChild(child Node) Node {
	if child == n.Item {
		return n
	}
	return nil
}

func (n *Hint) MatchNext(in *input.Input, pos int, parent *token.Token, st *state.State) int {
	at := anchor(parent)
	next := n.Item.MatchNext(in, pos, parent, st)
	if next == Fail {
		rollback(parent, at)
		if _, offset, ok := st.Hint(); !st.Finalize() && (!ok || pos > offset) {
			st.SetHint(n.Message, pos)
		}
		if n.Strict {
			st.SetFinalize(true)
		}
		return Fail
	}
	return next
}

func (n *Hint) MatchLength() int { return n.Item.MatchLength() }
func (n *Hint) String() string   { return fmt.Sprintf("Hint(%s,%q)", n.Item, n.Message) }

// Call invokes an arbitrary host-supplied predicate at pos, with no token
// tree access: used for semantic checks the grammar itself cannot express
// (spec §4.3 Call).
type Call struct {
	Base
	Fn func(in *input.Input, pos int) bool
}

func NewCall(fn func(in *input.Input, pos int) bool) *Call {
	return &Call{Fn: fn}
}

func (n *Call) MatchNext(in *input.Input, pos int, _ *token.Token, _ *state.State) int {
	if n.Fn == nil || !n.Fn(in, pos) {
		return Fail
	}
	return pos
}

func (n *Call) MatchLength() int { return 0 }
func (n *Call) String() string   { return "Call" }
