// Package pattern compiles a compact regex-style surface syntax into a
// Definition, grounded on PatternCompiler in the C++ source this engine is
// ported from. The compiler is itself implemented as a grammar (the
// "bootstrap" grammar below) assembled once via syntax.Builder and used to
// parse every pattern string passed to Compile.
package pattern

import (
	"sync"

	"github.com/ava12/pegx/syntax"
)

// bootstrap holds the linked pattern-syntax grammar plus the rule ids
// compileSequence needs to dispatch on, mirroring PatternCompiler's member
// fields (any_, gap_, char_, ...).
type bootstrap struct {
	def *syntax.Definition

	anyID, gapID, boiID, eoiID     int
	charID                         int
	rangeMinMaxID, rangeExplicitID int
	repeatID, sequenceID           int
	groupID, choiceID              int
}

var (
	bootstrapOnce sync.Once
	bootstrapInst *bootstrap
	bootstrapErr  error
)

// getBootstrap builds the pattern-syntax grammar exactly once per process
// (spec §9 design note: the bootstrap grammar is process-wide and
// immutable, so a lazy singleton is safe to share across concurrent
// Compile calls).
func getBootstrap() (*bootstrap, error) {
	bootstrapOnce.Do(func() {
		bootstrapInst, bootstrapErr = buildBootstrap()
	})
	return bootstrapInst, bootstrapErr
}

func buildBootstrap() (*bootstrap, error) {
	b := syntax.NewBuilder("pattern")
	bs := &bootstrap{}

	bs.anyID = b.Define("Any", b.Char('#'), true)
	bs.gapID = b.Define("Gap", b.Char('*'), true)
	bs.boiID = b.Define("Boi", b.Char('^'), true)
	bs.eoiID = b.Define("Eoi", b.Char('$'), true)

	escapable := b.RangeSet("#*\\[](){}|^$fnrt\"/")
	hexDigit := b.Choice(b.Range('0', '9'), b.Range('a', 'f'), b.Range('A', 'F'))
	hexEscape := b.Glue(b.Char('x'), b.Repeat(2, 2, hexDigit))
	escape := b.Glue(
		b.Char('\\'),
		b.Hint("illegal escape sequence", b.Choice(escapable, hexEscape)),
	)
	bs.charID = b.Define("Char", b.Choice(b.ExceptSet("#*\\[](){}|^$"), escape), true)

	rangeMinMaxBody := b.Choice(
		b.Glue(
			b.Repeat(0, 1, b.Char('^')),
			b.Choice(
				b.Glue(b.String(".."), b.Ref("Char")),
				b.Glue(b.Ref("Char"), b.String(".."), b.Ref("Char")),
				b.Glue(b.Ref("Char"), b.String("..")),
			),
		),
		b.String(".."),
	)
	bs.rangeMinMaxID = b.Define("RangeMinMax",
		b.Glue(b.Char('['), rangeMinMaxBody, b.Char(']')), true)

	bs.rangeExplicitID = b.Define("RangeExplicit",
		b.Glue(
			b.Char('['),
			b.Repeat(0, 1, b.Char('^')),
			b.Repeat(1, -1, b.Ref("Char")),
			b.Char(']'),
		), true)

	count := b.Glue(
		b.Repeat(0, 20, b.Range('0', '9')),
		b.Repeat(0, 1, b.Glue(b.Char(','), b.Repeat(0, 20, b.Range('0', '9')))),
	)
	bs.repeatID = b.Define("Repeat",
		b.Glue(
			b.Char('{'),
			count,
			b.Repeat(0, 1, b.RangeSet("~?")),
			b.Char('}'),
		), true)

	// A repeat must follow an atom. Previous inspects the last child of the
	// token it runs in, so the check sits here, where that token is the
	// Sequence's (holding the preceding atom), not inside the Repeat rule,
	// whose own token has no children yet.
	bs.sequenceID = b.Define("Sequence",
		b.Repeat(0, -1, b.Choice(
			b.Glue(
				b.Choice(
					b.Previous("Char", ""),
					b.Previous("Any", ""),
					b.Previous("RangeMinMax", ""),
					b.Previous("RangeExplicit", ""),
					b.Previous("Group", ""),
				),
				b.Ref("Repeat"),
			),
			b.Ref("Char"), b.Ref("Any"), b.Ref("Gap"),
			b.Ref("RangeMinMax"), b.Ref("RangeExplicit"), b.Ref("Boi"), b.Ref("Eoi"),
			b.Ref("Group"),
		)), true)

	bs.groupID = b.Define("Group",
		b.Glue(b.Char('('), b.Ref("Choice"), b.Char(')')), true)

	bs.choiceID = b.Define("Choice",
		b.Glue(
			b.Ref("Sequence"),
			b.Repeat(0, -1, b.Glue(b.Char('|'), b.Ref("Sequence"))),
		), true)

	b.Entry("Choice")
	def, err := b.Link()
	if err != nil {
		return nil, err
	}
	bs.def = def
	return bs, nil
}
