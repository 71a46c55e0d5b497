package node

import (
	"fmt"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// Char matches one byte equal (or, if Invert, not equal) to Ch.
type Char struct {
	Base
	Ch     byte
	Invert bool
}

func NewChar(ch byte, invert bool) *Char { return &Char{Ch: ch, Invert: invert} }

func (n *Char) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	if (in.At(i) != n.Ch) != n.Invert {
		return Fail
	}
	return i + 1
}

func (n *Char) MatchLength() int { return 1 }

func (n *Char) String() string {
	if n.Invert {
		return fmt.Sprintf("Other(%q)", n.Ch)
	}
	return fmt.Sprintf("Char(%q)", n.Ch)
}

// Greater matches one byte strictly greater (or, inverted, lesser-or-equal)
// than Ch.
type Greater struct {
	Base
	Ch     byte
	Invert bool
}

func NewGreater(ch byte, invert bool) *Greater { return &Greater{Ch: ch, Invert: invert} }

func (n *Greater) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	if (in.At(i) <= n.Ch) != n.Invert {
		return Fail
	}
	return i + 1
}

func (n *Greater) MatchLength() int { return 1 }
func (n *Greater) String() string   { return fmt.Sprintf("Greater(%q,%v)", n.Ch, n.Invert) }

// GreaterOrEqual matches one byte greater-or-equal (or, inverted, strictly
// lesser) than Ch.
type GreaterOrEqual struct {
	Base
	Ch     byte
	Invert bool
}

func NewGreaterOrEqual(ch byte, invert bool) *GreaterOrEqual {
	return &GreaterOrEqual{Ch: ch, Invert: invert}
}

func (n *GreaterOrEqual) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	if (in.At(i) < n.Ch) != n.Invert {
		return Fail
	}
	return i + 1
}

func (n *GreaterOrEqual) MatchLength() int { return 1 }
func (n *GreaterOrEqual) String() string   { return fmt.Sprintf("GreaterOrEqual(%q,%v)", n.Ch, n.Invert) }

// Any matches any one byte; fails at end of input.
type Any struct{ Base }

func NewAny() *Any { return &Any{} }

func (n *Any) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	return i + 1
}

func (n *Any) MatchLength() int { return 1 }
func (n *Any) String() string   { return "Any" }

// RangeMinMax matches one byte in the inclusive range [A, B] (or, inverted,
// outside it).
type RangeMinMax struct {
	Base
	A, B   byte
	Invert bool
}

func NewRangeMinMax(a, b byte, invert bool) *RangeMinMax {
	return &RangeMinMax{A: a, B: b, Invert: invert}
}

func (n *RangeMinMax) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	ch := in.At(i)
	if ((ch < n.A) || (n.B < ch)) != n.Invert {
		return Fail
	}
	return i + 1
}

func (n *RangeMinMax) MatchLength() int { return 1 }
func (n *RangeMinMax) String() string   { return fmt.Sprintf("RangeMinMax(%q,%q,%v)", n.A, n.B, n.Invert) }

// RangeExplicit matches one byte that is a member (or, inverted, not a
// member) of Set.
type RangeExplicit struct {
	Base
	Set    []byte
	Invert bool
}

func NewRangeExplicit(set []byte, invert bool) *RangeExplicit {
	return &RangeExplicit{Set: set, Invert: invert}
}

func (n *RangeExplicit) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	if !in.Has(i) {
		return Fail
	}
	ch := in.At(i)
	member := false
	for _, c := range n.Set {
		if c == ch {
			member = true
			break
		}
	}
	if member == n.Invert {
		return Fail
	}
	return i + 1
}

func (n *RangeExplicit) MatchLength() int { return 1 }
func (n *RangeExplicit) String() string   { return fmt.Sprintf("RangeExplicit(%q,%v)", n.Set, n.Invert) }

// String matches a literal byte sequence. When !CaseSensitive, bytes are
// compared via the ASCII lowercase fold (spec §4.3 String).
type String struct {
	Base
	S             []byte
	CaseSensitive bool
}

func NewString(s string, caseSensitive bool) *String {
	b := []byte(s)
	if !caseSensitive {
		b = foldBytes(b)
	}
	return &String{S: b, CaseSensitive: caseSensitive}
}

func (n *String) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	k := 0
	for k < len(n.S) && in.Has(i) {
		ch := in.At(i)
		if !n.CaseSensitive {
			ch = foldByte(ch)
		}
		if n.S[k] != ch {
			break
		}
		i++
		k++
	}
	if k != len(n.S) {
		return Fail
	}
	return i
}

func (n *String) MatchLength() int { return len(n.S) }
func (n *String) String() string   { return fmt.Sprintf("String(%q)", n.S) }

// Keyword performs a longest-prefix match against Map; on success it sets
// the parent token's keyword id (spec §4.3 Keyword).
type Keyword struct {
	Base
	Map *KeywordMap
}

func NewKeyword(m *KeywordMap) *Keyword { return &Keyword{Map: m} }

func (n *Keyword) MatchNext(in *input.Input, i int, parent *token.Token, _ *state.State) int {
	at := func(j int) (byte, bool) {
		if !in.Has(j) {
			return 0, false
		}
		return in.At(j), true
	}
	end, id, ok := n.Map.Match(at, i)
	if !ok {
		return Fail
	}
	if parent != nil {
		parent.SetKeyword(id)
	}
	return end
}

func (n *Keyword) MatchLength() int { return -1 }
func (n *Keyword) String() string   { return "Keyword" }

// Boi succeeds only at offset 0.
type Boi struct{ Base }

func NewBoi() *Boi { return &Boi{} }

func (n *Boi) MatchNext(_ *input.Input, i int, _ *token.Token, _ *state.State) int {
	if i == 0 {
		return i
	}
	return Fail
}

func (n *Boi) MatchLength() int { return 0 }
func (n *Boi) String() string   { return "Boi" }

// Eoi succeeds only past the last byte, provided there is a previous byte
// or the input is empty.
type Eoi struct{ Base }

func NewEoi() *Eoi { return &Eoi{} }

func (n *Eoi) MatchNext(in *input.Input, i int, _ *token.Token, _ *state.State) int {
	eoi := !in.Has(i) && (i == 0 || in.Has(i-1))
	if eoi {
		return i
	}
	return Fail
}

func (n *Eoi) MatchLength() int { return 0 }
func (n *Eoi) String() string   { return "Eoi" }

// Pass is a zero-width unconditional success (Invert=false) or failure
// (Invert=true).
type Pass struct {
	Base
	Invert bool
}

func NewPass(invert bool) *Pass { return &Pass{Invert: invert} }

func (n *Pass) MatchNext(_ *input.Input, i int, _ *token.Token, _ *state.State) int {
	if n.Invert {
		return Fail
	}
	return i
}

func (n *Pass) MatchLength() int { return 0 }
func (n *Pass) String() string {
	if n.Invert {
		return "Fail"
	}
	return "Pass"
}
