package syntax

import (
	"hash/crc32"
	"strings"

	"github.com/ava12/pegx"
	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/internal/bmap"
	"github.com/ava12/pegx/node"
)

// Builder assembles a Definition one rule at a time. It is mutable during
// assembly; Link freezes it into an executable Definition, resolving every
// forward reference introduced by Ref, Inline, Previous and Context along
// the way (spec §3 Builder, grounded on DefinitionNode's builder half —
// split into its own type here since a growing value and a frozen one
// carry different invariants in Go).
//
// A zero Builder is not usable; create one with NewBuilder.
type Builder struct {
	name          string
	scopeID       uint32
	caseSensitive bool

	rules     []*node.Rule
	ruleIndex map[string]int
	entryName string

	keywordIndex map[string]int
	keywordCount int

	flagIndex    map[string]int
	captureIndex map[string]int

	imports map[string]*Definition

	pendingRefs  []pendingRef
	pendingPrevs []pendingPrev
	pendingCtxs  []pendingCtx

	err error
}

type pendingRef struct {
	n    *node.Ref
	name string
}

type pendingPrev struct {
	n       *node.Previous
	name    string
	keyword string
}

type pendingCtx struct {
	n    *node.Context
	name string
}

// NewBuilder creates an empty Builder identified by name (used for its
// scope id and for qualifying imports of it elsewhere). name may be empty
// for an anonymous, never-imported grammar.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:          name,
		scopeID:       crc32.ChecksumIEEE([]byte(name)),
		caseSensitive: true,
		ruleIndex:     make(map[string]int),
		keywordIndex:  make(map[string]int),
		flagIndex:     make(map[string]int),
		captureIndex:  make(map[string]int),
		imports:       make(map[string]*Definition),
	}
}

func (b *Builder) fail(code int, format string, args ...any) {
	if b.err == nil {
		b.err = pegx.FormatError(code, format, args...)
	}
}

// Option sets a named boolean build option. The only recognized option is
// "caseSensitive", which governs String and Keyword folding for every
// terminal built afterwards (spec §4.3, §9 Open Question).
func (b *Builder) Option(name string, value bool) {
	if !strings.EqualFold(name, "caseSensitive") {
		b.fail(pegx.UsageErrors, "unknown option %q", name)
		return
	}
	b.caseSensitive = value
}

// Import registers an already-linked Definition as a named scope, making
// its rules reachable via "name::rule" qualified references from this
// builder (spec §4.5). Its keywords, flags and captures are not addressable
// by name from this builder; its own stateful nodes keep addressing them
// through its scope id. name defaults to def's own name.
func (b *Builder) Import(def *Definition, name string) {
	if name == "" {
		name = def.name
	}
	if name == "" {
		b.fail(pegx.UsageErrors, "cannot import an anonymous definition")
		return
	}
	b.imports[name] = def
}

// --- terminals (spec §4.3) ---

func (b *Builder) Char(ch byte) node.Node           { return node.NewChar(ch, false) }
func (b *Builder) Other(ch byte) node.Node          { return node.NewChar(ch, true) }
func (b *Builder) Greater(ch byte) node.Node        { return node.NewGreater(ch, false) }
func (b *Builder) Below(ch byte) node.Node          { return node.NewGreaterOrEqual(ch, true) }
func (b *Builder) GreaterOrEqual(ch byte) node.Node { return node.NewGreaterOrEqual(ch, false) }
func (b *Builder) BelowOrEqual(ch byte) node.Node   { return node.NewGreater(ch, true) }
func (b *Builder) Any() node.Node                   { return node.NewAny() }
func (b *Builder) Range(a, z byte) node.Node        { return node.NewRangeMinMax(a, z, false) }
func (b *Builder) Except(a, z byte) node.Node       { return node.NewRangeMinMax(a, z, true) }
func (b *Builder) RangeSet(set string) node.Node    { return node.NewRangeExplicit([]byte(set), false) }
func (b *Builder) ExceptSet(set string) node.Node   { return node.NewRangeExplicit([]byte(set), true) }
func (b *Builder) String(s string) node.Node        { return node.NewString(s, b.caseSensitive) }
func (b *Builder) Boi() node.Node                   { return node.NewBoi() }
func (b *Builder) Eoi() node.Node                    { return node.NewEoi() }
func (b *Builder) Pass() node.Node                  { return node.NewPass(false) }
func (b *Builder) FailNode() node.Node              { return node.NewPass(true) }

// Keyword registers each whitespace-separated word in keywords (assigning
// it a fresh keyword id the first time it is seen anywhere in this
// builder) and returns a node matching the longest one present at the
// current position (spec §4.3 Keyword).
func (b *Builder) Keyword(keywords string) node.Node {
	fields := strings.Fields(keywords)
	m := make(map[string]int, len(fields))
	for _, kw := range fields {
		id, ok := b.keywordIndex[kw]
		if !ok {
			id = b.keywordCount
			b.keywordCount++
			b.keywordIndex[kw] = id
		}
		m[kw] = id
	}
	return node.NewKeyword(node.NewKeywordMap(m, b.caseSensitive))
}

// --- quantifiers (spec §4.3) ---

func (b *Builder) Repeat(min, max int, item node.Node) node.Node {
	return node.NewRepeat(item, min, max)
}

func (b *Builder) LazyRepeat(min, max int, item node.Node) node.Node {
	return node.NewLazyRepeat(item, min, max)
}

func (b *Builder) GreedyRepeat(min, max int, item node.Node) node.Node {
	return node.NewGreedyRepeat(item, min, max)
}

// --- structural combinators (spec §4.3) ---

func (b *Builder) Choice(items ...node.Node) node.Node     { return node.NewChoice(items...) }
func (b *Builder) LazyChoice(a, b2 node.Node) node.Node    { return node.NewLazyChoice(a, b2) }
func (b *Builder) Glue(items ...node.Node) node.Node       { return node.NewGlue(items...) }
func (b *Builder) Length(min, max int, item node.Node) node.Node {
	return node.NewLength(item, min, max)
}
func (b *Builder) Filter(filterExpr node.Node, blank byte, entry node.Node) node.Node {
	return node.NewFilter(filterExpr, blank, entry)
}
func (b *Builder) Find(item node.Node) node.Node               { return node.NewFind(item) }
func (b *Builder) Ahead(item node.Node) node.Node              { return node.NewAhead(item, false) }
func (b *Builder) NotAhead(item node.Node) node.Node           { return node.NewAhead(item, true) }
func (b *Builder) Behind(item node.Node) node.Node             { return node.NewBehind(item, false) }
func (b *Builder) NotBehind(item node.Node) node.Node          { return node.NewBehind(item, true) }

func (b *Builder) Hint(message string, item node.Node) node.Node {
	return node.NewHint(item, message, false)
}

func (b *Builder) Expect(message string, item node.Node) node.Node {
	return node.NewHint(item, message, true)
}

// Call matches a host-supplied predicate at the current position without
// consuming input or inspecting the token tree (spec §4.3 Call).
func (b *Builder) Call(fn func(in *input.Input, pos int) bool) node.Node {
	return node.NewCall(fn)
}

// --- rule definition and entry point ---

// Define registers a new rule named name with the given entry sub-pattern.
// generate controls whether matching this rule (when referenced via a
// generating Ref) produces a token of its own (spec §4.1 invariant #3,
// §4.3 Rule). Returns the rule's id, stable for the life of the resulting
// Definition.
func (b *Builder) Define(name string, entry node.Node, generate bool) int {
	if _, exists := b.ruleIndex[name]; exists {
		b.fail(pegx.UsageErrors, "redefinition of rule %q", name)
		return -1
	}
	id := len(b.rules)
	r := node.NewRule(id, generate, entry)
	b.rules = append(b.rules, r)
	b.ruleIndex[name] = id
	return id
}

// Entry names the rule that Definition.Match/Find starts from.
func (b *Builder) Entry(name string) {
	b.entryName = name
}

func (b *Builder) splitScope(name string) (scope string, local string, qualified bool) {
	if i := strings.Index(name, "::"); i >= 0 {
		return name[:i], name[i+2:], true
	}
	return "", name, false
}

// Ref returns a node that, once Link runs, matches the named rule and
// tokenizes it iff both this reference and the target rule itself elect
// to generate (spec §4.3 Ref). name may be "scope::rule" to reach into an
// imported definition.
func (b *Builder) Ref(name string) node.Node {
	r := &node.Ref{Generate: true}
	b.pendingRefs = append(b.pendingRefs, pendingRef{n: r, name: name})
	return r
}

// Inline is Ref with Generate forced false: the referenced rule is always
// matched without producing its own token (spec §4.3 Ref "inline" form).
func (b *Builder) Inline(name string) node.Node {
	r := &node.Ref{Generate: false}
	b.pendingRefs = append(b.pendingRefs, pendingRef{n: r, name: name})
	return r
}

// Invoke re-parses the text previously recorded under captureName with
// item, splicing the resulting sub-tokens back in with their coordinates
// shifted into the enclosing input (spec §4.3 Invoke).
func (b *Builder) Invoke(captureName string, item node.Node) node.Node {
	return node.NewInvoke(b, b.touchCapture(captureName), item)
}

// Previous returns a node that succeeds iff the parent token's last child
// was produced by the named rule (and, if keyword is non-empty, carries
// that keyword) (spec §4.3 Previous).
func (b *Builder) Previous(name string, keyword string) node.Node {
	p := node.NewPrevious(0, false)
	b.pendingPrevs = append(b.pendingPrevs, pendingPrev{n: p, name: name, keyword: keyword})
	return p
}

// Context dispatches to inContext or outOfContext depending on whether the
// rule enclosing the current one is the named rule (spec §4.3 Context).
func (b *Builder) Context(name string, inContext, outOfContext node.Node) node.Node {
	if inContext == nil {
		inContext = node.NewPass(false)
	}
	if outOfContext == nil {
		outOfContext = node.NewPass(true)
	}
	c := node.NewContext(0, inContext, outOfContext)
	b.pendingCtxs = append(b.pendingCtxs, pendingCtx{n: c, name: name})
	return c
}

// --- stateful primitives (spec §4.3) ---

func (b *Builder) touchFlag(name string) int {
	id, ok := b.flagIndex[name]
	if !ok {
		id = len(b.flagIndex)
		b.flagIndex[name] = id
	}
	return id
}

func (b *Builder) touchCapture(name string) int {
	id, ok := b.captureIndex[name]
	if !ok {
		id = len(b.captureIndex)
		b.captureIndex[name] = id
	}
	return id
}

func (b *Builder) Set(name string, value bool) node.Node {
	return node.NewSet(b, b.touchFlag(name), value)
}

func (b *Builder) If(name string, trueBranch, falseBranch node.Node) node.Node {
	if trueBranch == nil {
		trueBranch = node.NewPass(false)
	}
	if falseBranch == nil {
		falseBranch = node.NewPass(false)
	}
	flagID := b.touchFlag(name)
	return node.NewChoice(
		node.NewIf(b, flagID, true, trueBranch),
		node.NewIf(b, flagID, false, falseBranch),
	)
}

func (b *Builder) Capture(name string, item node.Node) node.Node {
	return node.NewCapture(b, b.touchCapture(name), item)
}

func (b *Builder) Replay(name string) node.Node {
	return node.NewReplay(b, b.touchCapture(name))
}

// ScopeID implements state.Scope so that stateful nodes built before Link
// has produced the final Definition can still carry a stable scope
// identity (spec §4.5): it is the same crc32(name) the resulting
// Definition itself reports.
func (b *Builder) ScopeID() uint32 { return b.scopeID }

// Link resolves every forward reference and freezes the builder into a
// Definition. It is an error to leave the entry rule unset or any
// Ref/Previous/Context name unresolved. A second Link on the same Builder is
// not detected: it links again and returns another Definition sharing the
// same rule nodes.
func (b *Builder) Link() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.entryName == "" {
		return nil, pegx.FormatError(pegx.LinkErrors, "no entry rule set")
	}
	entryIdx, ok := b.ruleIndex[b.entryName]
	if !ok {
		return nil, pegx.FormatError(pegx.LinkErrors+1, "undefined entry rule %q", b.entryName)
	}

	for _, p := range b.pendingRefs {
		target, err := b.resolveRule(p.name)
		if err != nil {
			return nil, err
		}
		p.n.Target = target
	}
	for _, p := range b.pendingPrevs {
		target, err := b.resolveRule(p.name)
		if err != nil {
			return nil, err
		}
		p.n.RuleID = target.RuleID
		if p.keyword != "" {
			kwID, ok := b.keywordIndex[p.keyword]
			if !ok {
				return nil, pegx.FormatError(pegx.LinkErrors+2, "undefined keyword %q", p.keyword)
			}
			p.n.KeywordID = kwID
		}
	}
	for _, p := range b.pendingCtxs {
		target, err := b.resolveRule(p.name)
		if err != nil {
			return nil, err
		}
		p.n.RuleID = target.RuleID
	}

	d := &Definition{
		name:         b.name,
		scopeID:      b.scopeID,
		entry:        b.rules[entryIdx],
		rules:        b.rules,
		ruleIndex:    intBMap(b.ruleIndex),
		keywordIndex: intBMap(b.keywordIndex),
		flagCount:    len(b.flagIndex),
		captureCount: len(b.captureIndex),
		flagIndex:    intBMap(b.flagIndex),
		captureIndex: intBMap(b.captureIndex),
		imports:      defBMap(b.imports),
	}

	d.totalFlags = d.flagCount
	d.totalCaptures = d.captureCount
	if len(b.imports) > 0 {
		d.scopeBases = make(map[uint32][2]int, len(b.imports))
		for _, imp := range b.imports {
			d.scopeBases[imp.scopeID] = [2]int{d.totalFlags, d.totalCaptures}
			d.totalFlags += imp.flagCount
			d.totalCaptures += imp.captureCount
		}
		d.scopeBases[d.scopeID] = [2]int{0, 0}
	}

	return d, nil
}

// intBMap freezes a Builder's growing name->id map into a fixed-size
// bmap.BMap, sized exactly to the final key count.
func intBMap(m map[string]int) *bmap.BMap[int] {
	bm := bmap.New[int](len(m))
	for k, v := range m {
		bm.Set([]byte(k), v)
	}
	return bm
}

// defBMap freezes a Builder's growing import table into a fixed-size
// bmap.BMap.
func defBMap(m map[string]*Definition) *bmap.BMap[*Definition] {
	bm := bmap.New[*Definition](len(m))
	for k, v := range m {
		bm.Set([]byte(k), v)
	}
	return bm
}

func (b *Builder) resolveRule(name string) (*node.Rule, error) {
	scope, local, qualified := b.splitScope(name)
	if !qualified {
		idx, ok := b.ruleIndex[local]
		if !ok {
			return nil, pegx.FormatError(pegx.LinkErrors+3, "undefined rule %q", name)
		}
		return b.rules[idx], nil
	}

	def, ok := b.imports[scope]
	if !ok {
		return nil, pegx.FormatError(pegx.LinkErrors+4, "undefined scope %q", scope)
	}
	r, ok := def.ruleByName(local)
	if !ok {
		return nil, pegx.FormatError(pegx.LinkErrors+3, "undefined rule %q in scope %q", local, scope)
	}
	return r, nil
}
