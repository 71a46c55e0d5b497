package node

import (
	"testing"

	"github.com/ava12/pegx/input"
	"github.com/ava12/pegx/state"
	"github.com/ava12/pegx/token"
)

// testScope is a minimal state.Scope for tests that need one; its id is
// never consulted since every test State here addresses flags/captures
// directly (no imported scopes).
type testScope struct{}

func (testScope) ScopeID() uint32 { return 0 }

func newTestState(captureCount int) *state.State {
	return state.New(1, captureCount, nil)
}

// TestGlueRollsBackOnFailure exercises spec §8 property 2: a node that
// fails midway through a sequence leaves the parent's child list exactly
// as it found it, even though an earlier item in the same Glue already
// appended a token.
func TestGlueRollsBackOnFailure(t *testing.T) {
	rule := NewRule(1, true, NewChar('a', false))
	g := NewGlue(rule, NewChar('b', false))
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "ax")

	next := g.MatchNext(in, 0, root, st)
	if next != Fail {
		t.Fatalf("MatchNext() = %d, want Fail", next)
	}
	if c := root.FirstChild(); c != nil {
		t.Fatalf("root has child {RuleID:%d, I0:%d, I1:%d} after rollback, want none", c.RuleID, c.I0, c.I1)
	}
}

// TestRuleAppendsExactlyOneToken exercises spec §8 property 3: a
// generating Rule that matches appends exactly one token, spanning the
// whole match, regardless of how many sub-nodes it contains.
func TestRuleAppendsExactlyOneToken(t *testing.T) {
	entry := NewGlue(NewChar('a', false), NewChar('b', false), NewChar('c', false))
	rule := NewRule(7, true, entry)
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "abc")

	next := rule.MatchNext(in, 0, root, st)
	if next != 3 {
		t.Fatalf("MatchNext() = %d, want 3", next)
	}

	count := 0
	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		count++
		if c.RuleID != 7 || c.I0 != 0 || c.I1 != 3 {
			t.Errorf("child token = {RuleID:%d, I0:%d, I1:%d}, want {7,0,3}", c.RuleID, c.I0, c.I1)
		}
	}
	if count != 1 {
		t.Fatalf("root has %d children, want 1", count)
	}
}

// TestCaptureReplay exercises spec §8 property 4: Replay matches the
// literal bytes a prior Capture recorded, byte for byte, and fails if
// those bytes differ.
func TestCaptureReplay(t *testing.T) {
	scope := testScope{}
	word := NewRepeat(NewRangeMinMax('a', 'z', false), 1, -1)
	capture := NewCapture(scope, 0, word)
	replay := NewReplay(scope, 0)
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(1)

	matching := input.NewString("t", "cat=cat")
	next := capture.MatchNext(matching, 0, root, st)
	if next != 3 {
		t.Fatalf("Capture.MatchNext() = %d, want 3", next)
	}
	next = replay.MatchNext(matching, 4, root, st)
	if next != 7 {
		t.Fatalf("Replay.MatchNext() on matching input = %d, want 7", next)
	}

	mismatching := input.NewString("t", "cat=dog")
	next = replay.MatchNext(mismatching, 4, root, st)
	if next != Fail {
		t.Fatalf("Replay.MatchNext() on mismatching input = %d, want Fail", next)
	}
}

// TestReplayFailsWhenCaptureUnset: Replay must fail rather than match an
// empty span when its capture id was never populated.
func TestReplayFailsWhenCaptureUnset(t *testing.T) {
	replay := NewReplay(testScope{}, 0)
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(1)
	in := input.NewString("t", "anything")

	if next := replay.MatchNext(in, 0, root, st); next != Fail {
		t.Fatalf("MatchNext() = %d, want Fail", next)
	}
}

// TestChoiceHonorsFinalize exercises spec §8 property 6: once an
// alternative sets the sticky finalize bit, Choice does not try any
// further alternative, even one that would otherwise succeed.
func TestChoiceHonorsFinalize(t *testing.T) {
	strictDigit := NewHint(NewRangeMinMax('0', '9', false), "expected digit", true)
	fallback := NewChar('a', false)
	choice := NewChoice(strictDigit, fallback)
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "ab")

	next := choice.MatchNext(in, 0, root, st)
	if next != Fail {
		t.Fatalf("MatchNext() = %d, want Fail (fallback must not run)", next)
	}
	if !st.Finalize() {
		t.Fatalf("Finalize() = false, want true")
	}
}

// TestChoiceTriesNextAlternativeWithoutFinalize is the mirror case: absent
// a strict Hint, a failing alternative does not stop Choice from trying
// the next one.
func TestChoiceTriesNextAlternativeWithoutFinalize(t *testing.T) {
	choice := NewChoice(NewChar('0', false), NewChar('a', false))
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "ab")

	next := choice.MatchNext(in, 0, root, st)
	if next != 1 {
		t.Fatalf("MatchNext() = %d, want 1 (second alternative should have matched)", next)
	}
}

// TestHintSetsFinalizeOnlyWhenStrict is spec §8 scenario 6: a strict Hint
// sets finalize on failure; a non-strict one records the same hint text
// but leaves finalize untouched.
func TestHintSetsFinalizeOnlyWhenStrict(t *testing.T) {
	root := token.New(token.NoRule, 0, 0)
	in := input.NewString("t", "x")

	st := newTestState(0)
	strict := NewHint(NewChar('0', false), "expected digit", true)
	if next := strict.MatchNext(in, 0, root, st); next != Fail {
		t.Fatalf("strict Hint MatchNext() = %d, want Fail", next)
	}
	if !st.Finalize() {
		t.Fatalf("strict Hint: Finalize() = false, want true")
	}
	if msg, offset, ok := st.Hint(); !ok || msg != "expected digit" || offset != 0 {
		t.Fatalf("strict Hint: Hint() = (%q,%d,%v), want (%q,0,true)", msg, offset, ok, "expected digit")
	}

	st = newTestState(0)
	lax := NewHint(NewChar('0', false), "expected digit", false)
	if next := lax.MatchNext(in, 0, root, st); next != Fail {
		t.Fatalf("lax Hint MatchNext() = %d, want Fail", next)
	}
	if st.Finalize() {
		t.Fatalf("lax Hint: Finalize() = true, want false")
	}
}

// TestHintKeepsFurthestOffset: once a hint is recorded, a later failure at
// an earlier offset does not overwrite it (spec §4.3 Hint: only the
// deepest failure's explanation survives).
func TestHintKeepsFurthestOffset(t *testing.T) {
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "xy")

	far := NewHint(NewChar('0', false), "far", false)
	far.MatchNext(in, 1, root, st)
	near := NewHint(NewChar('0', false), "near", false)
	near.MatchNext(in, 0, root, st)

	if msg, offset, ok := st.Hint(); !ok || msg != "far" || offset != 1 {
		t.Fatalf("Hint() = (%q,%d,%v), want (%q,1,true)", msg, offset, ok, "far")
	}
}

// TestGreedyRepeatMaximality exercises spec §8 property 7: GreedyRepeat
// consumes as much as it can, backing off only as far as needed for
// whatever follows it to still succeed.
func TestGreedyRepeatMaximality(t *testing.T) {
	rep := NewGreedyRepeat(NewChar('a', false), 0, -1)
	g := NewGlue(rep, NewChar('a', false), NewChar('b', false))
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "aaab")

	next := g.MatchNext(in, 0, root, st)
	if next != 4 {
		t.Fatalf("MatchNext() = %d, want 4", next)
	}
}

// TestGreedyRepeatRespectsMin: backing off never goes below Min, even
// when a lower count would let the succession chain succeed.
func TestGreedyRepeatRespectsMin(t *testing.T) {
	rep := NewGreedyRepeat(NewChar('a', false), 3, -1)
	g := NewGlue(rep, NewChar('a', false))
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "aaab")

	// Backing off to 2 iterations would let the trailing Char('a') match
	// the third 'a' at position 2, but Min=3 forbids going below 3.
	if next := g.MatchNext(in, 0, root, st); next != Fail {
		t.Fatalf("MatchNext() = %d, want Fail (Min=3 forbids the backoff that would otherwise succeed)", next)
	}
}

// TestLazyRepeatMinimality is the mirror of TestGreedyRepeatMaximality:
// LazyRepeat grows only when the succession chain cannot yet match.
func TestLazyRepeatMinimality(t *testing.T) {
	rep := NewLazyRepeat(NewAny(), 0, -1)
	g := NewGlue(rep, NewChar('b', false))
	root := token.New(token.NoRule, 0, 0)
	st := newTestState(0)
	in := input.NewString("t", "aaab")

	next := g.MatchNext(in, 0, root, st)
	if next != 4 {
		t.Fatalf("MatchNext() = %d, want 4", next)
	}
	if c := root.FirstChild(); c != nil {
		t.Fatalf("root has child {RuleID:%d, I0:%d, I1:%d}, want none (Any/Char produce no tokens)", c.RuleID, c.I0, c.I1)
	}
}
