// Package syntax assembles grammar node trees into a Definition: a frozen,
// reusable matcher built from a set of named rules, one of them marked as
// the entry point (spec §3 Definition/Linker).
package syntax

import (
	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/internal/bmap"
	"github.com/ava12/pegx/node"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Definition is an immutable, linked grammar, safe for concurrent use by
// multiple matches (each call to Match/Find creates its own State). It
// implements state.Scope so that its own flags and captures can be
// addressed from a composite State when imported by another Definition
// (spec §4.5).
type Definition struct {
	name    string
	scopeID uint32

	entry *node.Rule
	rules []*node.Rule

	// Name tables are frozen at Link() time, when their final size is
	// known, so each becomes a bmap.BMap instead of the Builder's growing
	// plain map (spec's name->id tables are exactly the small, append-only,
	// fixed-size keyset bmap.BMap was built for).
	ruleIndex    *bmap.BMap[int]
	keywordIndex *bmap.BMap[int]

	flagCount    int
	captureCount int
	flagIndex    *bmap.BMap[int]
	captureIndex *bmap.BMap[int]

	imports *bmap.BMap[*Definition]

	// scopeBases maps an imported Definition's own ScopeID to the
	// (flagBase, captureBase) offset at which its flags/captures live
	// within this Definition's composite State (spec §4.5).
	scopeBases map[uint32][2]int
	// totalFlags/totalCaptures include every directly imported scope's
	// own counts, laid out after this Definition's own flagCount/
	// captureCount.
	totalFlags    int
	totalCaptures int
}

// Name returns the definition's name, as given to NewBuilder ("" for an
// anonymous definition).
func (d *Definition) Name() string { return d.name }

// ScopeID returns the crc32 of the definition's name, used to identify it
// when imported by another definition (spec §3 "scope identity").
func (d *Definition) ScopeID() uint32 { return d.scopeID }

// RuleID looks up a top-level rule's id by name, for hosts that need to
// interpret a resulting token tree's RuleID fields.
func (d *Definition) RuleID(name string) (int, bool) {
	i, ok := d.ruleIndex.Get([]byte(name))
	if !ok {
		return 0, false
	}
	return d.rules[i].RuleID, true
}

// KeywordID looks up a keyword's id by name.
func (d *Definition) KeywordID(name string) (int, bool) {
	return d.keywordIndex.Get([]byte(name))
}

// FlagID looks up a Set/If flag's id by name, for hosts that want to read
// or pre-seed state.State flags without going through the grammar.
func (d *Definition) FlagID(name string) (int, bool) {
	return d.flagIndex.Get([]byte(name))
}

// CaptureID looks up a Capture/Replay capture's id by name.
func (d *Definition) CaptureID(name string) (int, bool) {
	return d.captureIndex.Get([]byte(name))
}

func (d *Definition) ruleByName(name string) (*node.Rule, bool) {
	i, ok := d.ruleIndex.Get([]byte(name))
	if !ok {
		return nil, false
	}
	return d.rules[i], true
}

func (d *Definition) newState(factory state.TokenFactory) *state.State {
	if len(d.scopeBases) == 0 {
		return state.New(d.flagCount, d.captureCount, factory)
	}
	return state.NewScoped(d.totalFlags, d.totalCaptures, d.scopeBases, factory)
}

// Match attempts to match the entry rule at pos exactly, returning the
// root token (its children are whatever the entry rule produced — the
// entry's own token only if its rule generates), the state used, and the
// end position, or node.Fail (spec §3 "matcher").
func (d *Definition) Match(in *input.Input, pos int, factory state.TokenFactory) (*token.Token, *state.State, int) {
	st := d.newState(factory)
	root := token.New(token.NoRule, pos, pos)
	var end int
	if d.entry.Generate {
		end = d.entry.MatchNext(in, pos, root, st)
	} else {
		end = d.entry.Entry().MatchNext(in, pos, root, st)
	}
	if end == node.Fail {
		return nil, st, node.Fail
	}
	root.I1 = end
	return root, st, end
}

// Find scans forward from pos, trying Match at each offset in turn, and
// returns Match's result for the first offset at which it succeeds (the
// root token's I0 is that offset), or nil, nil, node.Fail (spec §3).
func (d *Definition) Find(in *input.Input, pos int, factory state.TokenFactory) (*token.Token, *state.State, int) {
	for i := pos; ; i++ {
		if tok, st, end := d.Match(in, i, factory); end != node.Fail {
			return tok, st, end
		}
		if !in.Has(i) {
			break
		}
	}
	return nil, nil, node.Fail
}
