package pattern

import (
	"strings"
	"testing"

	"github.com/ava12/pegx"
	"github.com/ava12/pegx/input"
)

// sample is the shared shape for the compile-then-match table tests below.
type sample struct {
	name    string
	pattern string
	text    string
	offset  int
	wantEnd int // input.Fail for "must not match"
}

func runSamples(t *testing.T, samples []sample) {
	for _, s := range samples {
		t.Run(s.name, func(t *testing.T) {
			def, err := Compile(s.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error: %v", s.pattern, err)
			}
			in := input.NewString("t", s.text)
			root, _, end := def.Match(in, s.offset, nil)
			if s.wantEnd == input.Fail {
				if root != nil {
					t.Fatalf("Match(%q) = [%d,%d), want no match", s.text, s.offset, end)
				}
				return
			}
			if root == nil {
				t.Fatalf("Match(%q) did not match, want end %d", s.text, s.wantEnd)
			}
			if end != s.wantEnd {
				t.Fatalf("Match(%q) ended at %d, want %d", s.text, end, s.wantEnd)
			}
		})
	}
}

// TestCompilePatternScenarios covers spec §8's concrete end-to-end
// compile_pattern scenarios (rows 2-4 of the table).
func TestCompilePatternScenarios(t *testing.T) {
	runSamples(t, []sample{
		{"repeat-lower-bound", "[a..z]{1,}", "hello9", 0, 5},
		{"hex-escapes", "\\x61\\x62", "ab", 0, 2},
		{"alternation", "a|bc|d", "bc", 0, 2},
	})
}

// TestCompilePatternAnchors covers spec §8's round-trip law:
// compile_pattern("abc") accepts only "abc" at position 0; "^abc$" accepts
// only the exact input "abc".
func TestCompilePatternAnchors(t *testing.T) {
	runSamples(t, []sample{
		{"unanchored-matches-prefix", "abc", "abcdef", 0, 3},
		{"unanchored-matches-mid-input", "abc", "xabc", 1, 4},
		{"boi-anchor-rejects-mid-input", "^abc", "xabc", 1, input.Fail},
		{"full-anchor-accepts-exact", "^abc$", "abc", 0, 3},
		{"full-anchor-rejects-trailing-bytes", "^abc$", "abcd", 0, input.Fail},
	})
}

// TestCompileGap confirms '*' compiles to a greedy any-run (spec.md §4.6),
// not a lazy one: against input with more than one possible stopping
// point, it must consume through the last one, not the first.
func TestCompileGap(t *testing.T) {
	runSamples(t, []sample{
		{"gap-is-greedy", "a*b", "ababab", 0, 6},
		{"gap-with-single-stopping-point", "a*b", "a123b", 0, 5},
	})
}

// TestCompileRangeExplicitAndInvert exercises the explicit-set and
// inverted-range surface syntax, grounded in compileRangeExplicit /
// compileRangeMinMax.
func TestCompileRangeExplicitAndInvert(t *testing.T) {
	runSamples(t, []sample{
		{"explicit-set-matches-member", "[abc]", "b", 0, 1},
		{"explicit-set-rejects-non-member", "[abc]", "d", 0, input.Fail},
		{"inverted-set-matches-non-member", "[^abc]", "d", 0, 1},
		{"inverted-range-matches-outside", "[^a..z]", "9", 0, 1},
	})
}

// TestCompileGroupChoice exercises a parenthesized alternation nested
// inside a sequence.
func TestCompileGroupChoice(t *testing.T) {
	runSamples(t, []sample{
		{"group-first-alt", "(cat|dog)s", "cats", 0, 4},
		{"group-second-alt", "(cat|dog)s", "dogs", 0, 4},
		{"group-no-alt-matches", "(cat|dog)s", "cows", 0, input.Fail},
	})
}

// TestCompileRepeatModifiers covers the three repeat-bound modifiers
// ("~" ordinary, "?" lazy, default greedy). Greedy and lazy are tried on
// "#{0,}" (an any-byte run) against input with more than one place the
// trailing "b" could match, the same way TestCompileGap distinguishes
// greedy from lazy for '*'; "~" is tried with an exact count "a{3~}".
// The modifier is written inside the braces, right before the closing
// "}" (spec surface syntax, confirmed against bootstrap.go's own Repeat
// rule), not after it.
func TestCompileRepeatModifiers(t *testing.T) {
	runSamples(t, []sample{
		{"greedy-default-consumes-maximally", "#{0,}b", "ababab", 0, 6},
		{"lazy-stops-as-soon-as-possible", "#{0,?}b", "ababab", 0, 2},
		{"ordinary-exact-count", "a{3~}b", "aaab", 0, 4},
	})
}

func TestCompileInvalidPatternReportsOffset(t *testing.T) {
	_, err := Compile("[a..")
	if err == nil {
		t.Fatalf("Compile(\"[a..\") succeeded, want error")
	}
	// The bootstrap grammar cannot parse anything from offset 0, so that is
	// the reported offset.
	pe, ok := err.(*pegx.Error)
	if !ok || pe.Code != pegx.CompileErrors || !strings.HasPrefix(pe.Message, "0: ") {
		t.Fatalf("Compile(\"[a..\") error = %v, want a CompileErrors error reporting offset 0", err)
	}
}
