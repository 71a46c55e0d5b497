/*
pegtrace is a console utility compiling a pattern (spec §4.6 surface
syntax) and matching it against an input file, printing the resulting
token tree. Usage is

	pegtrace -p <pattern> [-o <offset>] <file>

-p <pattern> defines the pattern text, compiled via pattern.Compile;

-o <offset> defines the byte offset to start matching at, default 0;

<file> defines the input file to match against.
*/
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/internal/ints"
	"github.com/ava12/pegx/pattern"
	"github.com/ava12/pegx/token"
)

var (
	patternText string
	offset      int
	inFileName  string
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "Usage is  pegtrace -p <pattern> [-o <offset>] <file>")
		flag.PrintDefaults()
		fmt.Fprintln(flag.CommandLine.Output(), "  <file>")
		fmt.Fprintln(flag.CommandLine.Output(), "\tinput file to match against")
	}

	flag.StringVar(&patternText, "p", "", "pattern text, compiled via pattern.Compile")
	flag.IntVar(&offset, "o", 0, "byte offset to start matching at")
	flag.Parse()
	inFileName = flag.Arg(0)
	if patternText == "" || inFileName == "" {
		flag.Usage()
		os.Exit(2)
	}

	def, e := pattern.CompileNamed(inFileName, patternText)
	var src []byte
	if e == nil {
		src, e = os.ReadFile(inFileName)
	}
	if e != nil {
		fmt.Fprintln(os.Stderr, e.Error())
		os.Exit(3)
	}

	in := input.New(inFileName, src)
	root, st, end := def.Match(in, offset, nil)
	if root == nil {
		message := "no match"
		hintOffset := offset
		if hint, ho, ok := st.Hint(); ok {
			message = hint
			hintOffset = ho
		}
		fmt.Fprintf(os.Stderr, "%d: %s\n", hintOffset, message)
		os.Exit(1)
	}

	printTree(os.Stdout, src, root, 0)
	fmt.Fprintf(os.Stdout, "matched [%d:%d)\n", offset, end)

	ruleIDs := ints.NewSet()
	collectRuleIDs(root, ruleIDs)
	fmt.Fprintf(os.Stdout, "rules generated: %v\n", ruleIDs.ToSlice())
}

func printTree(w *os.File, src []byte, tok *token.Token, depth int) {
	for i := 0; i < depth; i++ {
		fmt.Fprint(w, "  ")
	}
	fmt.Fprintf(w, "#%d [%d:%d) %q\n", tok.RuleID, tok.I0, tok.I1, src[tok.I0:tok.I1])
	for c := tok.FirstChild(); c != nil; c = c.NextSibling() {
		printTree(w, src, c, depth+1)
	}
}

// collectRuleIDs gathers the distinct rule ids that actually produced a
// token in the match, for the trailing summary line.
func collectRuleIDs(tok *token.Token, set *ints.Set) {
	if tok.RuleID != token.NoRule {
		set.Add(tok.RuleID)
	}
	for c := tok.FirstChild(); c != nil; c = c.NextSibling() {
		collectRuleIDs(c, set)
	}
}
