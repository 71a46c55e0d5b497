package pattern

import (
	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/node"
	"github.com/ava12/pegx/syntax"
	"github.com/ava12/pegx/token"
)

// compiler walks the token tree produced by matching a pattern string
// against the bootstrap grammar and builds the equivalent node tree in a
// target Builder, mirroring PatternCompiler::compile/compileChoice/
// compileSequence/compileRangeMinMax/compileRangeExplicit/compileRepeat.
type compiler struct {
	in *input.Input
	bs *bootstrap
	b  *syntax.Builder
}

func (c *compiler) compileChoice(tok *token.Token) node.Node {
	var alts []node.Node
	for ch := tok.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if ch.RuleID == c.bs.sequenceID {
			alts = append(alts, c.compileSequence(ch))
		}
	}
	if len(alts) == 1 {
		return alts[0]
	}
	return c.b.Choice(alts...)
}

func (c *compiler) compileSequence(tok *token.Token) node.Node {
	var items []node.Node
	for ch := tok.FirstChild(); ch != nil; ch = ch.NextSibling() {
		if ch.RuleID == c.bs.repeatID {
			if len(items) == 0 {
				continue // malformed input already rejected by the bootstrap grammar
			}
			items[len(items)-1] = c.compileRepeat(ch, items[len(items)-1])
			continue
		}
		items = append(items, c.compileAtom(ch))
	}
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 0 {
		return c.b.Pass()
	}
	return c.b.Glue(items...)
}

func (c *compiler) compileAtom(tok *token.Token) node.Node {
	switch tok.RuleID {
	case c.bs.anyID:
		return c.b.Any()
	case c.bs.gapID:
		return c.b.GreedyRepeat(0, -1, c.b.Any())
	case c.bs.boiID:
		return c.b.Boi()
	case c.bs.eoiID:
		return c.b.Eoi()
	case c.bs.charID:
		text := c.in.Slice(tok.I0, tok.I1)
		i := 0
		return c.b.Char(readChar(text, &i))
	case c.bs.rangeMinMaxID:
		return c.compileRangeMinMax(tok)
	case c.bs.rangeExplicitID:
		return c.compileRangeExplicit(tok)
	case c.bs.groupID:
		for ch := tok.FirstChild(); ch != nil; ch = ch.NextSibling() {
			if ch.RuleID == c.bs.choiceID {
				return c.compileChoice(ch)
			}
		}
		return c.b.Pass()
	default:
		return c.b.Pass()
	}
}

// compileRangeMinMax reads "[^a..b]", "[^..b]", "[^a..]" or "[^..]" (the
// invert marker and either bound are optional) into a Range/Except node
// bounded at 0/255 where a side is omitted.
func (c *compiler) compileRangeMinMax(tok *token.Token) node.Node {
	text := c.in.Slice(tok.I0, tok.I1)
	i := 1 // skip '['
	invert := false
	if i < len(text) && text[i] == '^' {
		invert = true
		i++
	}

	lo, hasLo := byte(0), false
	if i < len(text) && text[i] != '.' {
		lo = readChar(text, &i)
		hasLo = true
	}
	if i+1 < len(text) && text[i] == '.' && text[i+1] == '.' {
		i += 2
	}
	hi, hasHi := byte(255), false
	if i < len(text) && text[i] != ']' {
		hi = readChar(text, &i)
		hasHi = true
	}
	if !hasLo {
		lo = 0
	}
	if !hasHi {
		hi = 255
	}

	if invert {
		return c.b.Except(lo, hi)
	}
	return c.b.Range(lo, hi)
}

// compileRangeExplicit reads "[^abc]" or "[abc]" into a RangeSet/ExceptSet
// node, expanding escapes via readChar.
func (c *compiler) compileRangeExplicit(tok *token.Token) node.Node {
	text := c.in.Slice(tok.I0, tok.I1)
	i := 1 // skip '['
	invert := false
	if i < len(text) && text[i] == '^' {
		invert = true
		i++
	}

	var set []byte
	for i < len(text) && text[i] != ']' {
		set = append(set, readChar(text, &i))
	}

	if invert {
		return c.b.ExceptSet(string(set))
	}
	return c.b.RangeSet(string(set))
}

// compileRepeat reads "{min,max}" (either bound optional; a bare "{n}"
// means exactly n) and the optional trailing '~' (ordinary) or '?' (lazy)
// modifier, then wraps item accordingly. No modifier means greedy, which
// matches the surface syntax's bias towards maximal matches.
func (c *compiler) compileRepeat(tok *token.Token, item node.Node) node.Node {
	text := c.in.Slice(tok.I0, tok.I1)
	i := 1 // skip '{'

	min, hasMin := readInt(text, &i)
	hasComma := i < len(text) && text[i] == ','
	max := min
	if hasComma {
		i++
		var hasMax bool
		max, hasMax = readInt(text, &i)
		if !hasMax {
			max = -1
		}
	}
	if !hasMin {
		min = 0
	}

	modifier := byte(0)
	if i < len(text) && (text[i] == '~' || text[i] == '?') {
		modifier = text[i]
	}

	switch modifier {
	case '~':
		return c.b.Repeat(min, max, item)
	case '?':
		return c.b.LazyRepeat(min, max, item)
	default:
		return c.b.GreedyRepeat(min, max, item)
	}
}

// readInt parses decimal digits starting at *i, advancing *i past them.
// present is false if there were no digits to read.
func readInt(text []byte, i *int) (value int, present bool) {
	for *i < len(text) && text[*i] >= '0' && text[*i] <= '9' {
		value = value*10 + int(text[*i]-'0')
		*i++
		present = true
	}
	return value, present
}

// readChar reads one literal byte or escape sequence starting at *i,
// advancing *i past it.
func readChar(text []byte, i *int) byte {
	if *i >= len(text) {
		return 0
	}
	ch := text[*i]
	*i++
	if ch != '\\' || *i >= len(text) {
		return ch
	}

	esc := text[*i]
	*i++
	switch esc {
	case 'f':
		return '\f'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'x':
		if *i+1 < len(text) {
			v := hexVal(text[*i])<<4 | hexVal(text[*i+1])
			*i += 2
			return v
		}
		return 'x'
	default:
		return esc
	}
}

func hexVal(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}
