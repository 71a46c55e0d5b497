// Package token implements the parse-tree node produced by matching rules.
package token

// NoRule and NoKeyword mark a Token with no assigned rule or keyword id.
const (
	NoRule    = -1
	NoKeyword = -1
)

// Token is a parse-tree node recording the span of input covered by a
// generating rule, plus links to its parent, children, and siblings.
// Tokens are produced only by rules whose definition elects to generate
// them; an inlined rule's match contributes no token of its own, only
// whatever its entry sub-pattern produced.
type Token struct {
	RuleID    int
	KeywordID int
	I0, I1    int

	parent                   *Token
	firstChild, lastChild    *Token
	prevSibling, nextSibling *Token
}

// New creates a detached token covering [i0, i1) for the given rule id.
func New(ruleID, i0, i1 int) *Token {
	return &Token{RuleID: ruleID, KeywordID: NoKeyword, I0: i0, I1: i1}
}

// Parent returns the parent token, or nil for a root or detached token.
func (t *Token) Parent() *Token { return t.parent }

// FirstChild returns the first child token, or nil if there are none.
func (t *Token) FirstChild() *Token { return t.firstChild }

// LastChild returns the last child token, or nil if there are none.
func (t *Token) LastChild() *Token { return t.lastChild }

// PrevSibling returns the previous sibling, or nil if t is the first child.
func (t *Token) PrevSibling() *Token { return t.prevSibling }

// NextSibling returns the next sibling, or nil if t is the last child.
func (t *Token) NextSibling() *Token { return t.nextSibling }

// SetKeyword sets the token's keyword id, used by Keyword nodes (spec §4.3).
func (t *Token) SetKeyword(id int) { t.KeywordID = id }

// Children returns the child tokens in input order.
func (t *Token) Children() []*Token {
	var res []*Token
	for c := t.firstChild; c != nil; c = c.nextSibling {
		res = append(res, c)
	}
	return res
}

// AppendChild appends c as the last child of t.
func (t *Token) AppendChild(c *Token) {
	c.parent = t
	c.prevSibling = t.lastChild
	c.nextSibling = nil
	if t.lastChild != nil {
		t.lastChild.nextSibling = c
	} else {
		t.firstChild = c
	}
	t.lastChild = c
}

// InsertBefore inserts c as t's child immediately before mark. If mark is
// nil, c is appended as the last child. Used by Filter to splice its
// sub-tokens back into position order (spec §4.3 Filter).
func (t *Token) InsertBefore(c, mark *Token) {
	if mark == nil {
		t.AppendChild(c)
		return
	}

	c.parent = t
	c.prevSibling = mark.prevSibling
	c.nextSibling = mark
	if mark.prevSibling != nil {
		mark.prevSibling.nextSibling = c
	} else {
		t.firstChild = c
	}
	mark.prevSibling = c
}

// RestoreTo removes every child appended after anchor, restoring t's child
// list to a previously recorded rollback point (spec §4.1). anchor may be
// nil, meaning "no children were present on entry".
func (t *Token) RestoreTo(anchor *Token) {
	if t == nil {
		return
	}
	if anchor == nil {
		t.firstChild = nil
		t.lastChild = nil
		return
	}
	anchor.nextSibling = nil
	t.lastChild = anchor
}
