package pattern

import (
	"github.com/ava12/pegx"
	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/syntax"
)

// Compile parses pattern as the compact regex-style surface syntax (spec
// §9 pattern compiler) and returns an equivalent Definition with a single
// generating rule named "Expression". It is equivalent to
// CompileNamed("", pattern).
func Compile(pattern string) (*syntax.Definition, error) {
	return CompileNamed("", pattern)
}

// CompileNamed is Compile with the resulting Definition's own name (and
// therefore its scope id, for later Import) set to name.
func CompileNamed(name, pattern string) (*syntax.Definition, error) {
	bs, err := getBootstrap()
	if err != nil {
		return nil, err
	}

	in := input.NewString(name, pattern)
	root, st, end := bs.def.Match(in, 0, nil)
	if root == nil || end < in.Len() {
		offset := end
		message := "invalid pattern"
		if hint, hintOffset, ok := st.Hint(); ok {
			message = hint
			offset = hintOffset
		} else if offset == input.Fail {
			offset = 0
		}
		return nil, pegx.OffsetError(pegx.CompileErrors, offset, message)
	}

	choiceTok := root.FirstChild()
	if choiceTok == nil {
		return nil, pegx.OffsetError(pegx.CompileErrors, 0, "empty pattern")
	}

	b := syntax.NewBuilder(name)
	c := &compiler{in: in, bs: bs, b: b}
	entry := c.compileChoice(choiceTok)

	b.Define("Expression", entry, true)
	b.Entry("Expression")
	return b.Link()
}
