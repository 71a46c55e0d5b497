// Package state implements the per-match scratch area: flags, captures,
// the best failure hint recorded so far, and the sticky finalize bit.
package state

import (
	"github.com/ava12/pegx/token"
)

// Scope identifies a Definition for flag/capture addressing across
// cross-grammar references (spec §4.5). Kept as a minimal interface here so
// that state does not need to import syntax.
type Scope interface {
	ScopeID() uint32
}

// Range is a captured span of input, set by a Capture node and consulted by
// a Replay node (spec §4.3). An unset range is Range{-1,-1}.
type Range struct {
	I0, I1 int
}

// Unset reports whether the range has never been captured.
func (r Range) Unset() bool {
	return r.I0 < 0
}

// TokenFactory allocates tokens during a match. The default factory simply
// calls token.New; hosts may supply a pooling factory (spec §5: token
// factories may be pooled per state but never shared across states).
type TokenFactory func(ruleID, i0, i1 int) *token.Token

func defaultFactory(ruleID, i0, i1 int) *token.Token {
	return token.New(ruleID, i0, i1)
}

// offsets records, for one imported scope, the base index into the flat
// flags/captures vectors at which that scope's own ids begin.
type offsets struct {
	flagBase, captureBase int
}

// State is the per-match mutable scratch area. One State is created per
// match and discarded afterwards; it is never shared across concurrent
// matches (spec §5).
type State struct {
	flags    []bool
	captures []Range

	scopeOffsets map[uint32]offsets

	hint       string
	hintOffset int
	finalize   bool

	factory TokenFactory
}

// New creates a State with flagCount flags and captureCount captures, all
// addressed directly (no imported scopes). Used by definitions with no
// imports.
func New(flagCount, captureCount int, factory TokenFactory) *State {
	return newWithScopes(flagCount, captureCount, nil, factory)
}

// NewScoped creates a State with flagCount flags and captureCount captures
// in total, covering the owning definition and every imported scope. Each
// scope's ids are based at the offset recorded in bases (scope id ->
// (flagBase, captureBase)), the owning definition's own entry included; a
// scope missing from bases addresses the vectors directly.
func NewScoped(flagCount, captureCount int, bases map[uint32][2]int, factory TokenFactory) *State {
	scoped := make(map[uint32]offsets, len(bases))
	for id, b := range bases {
		scoped[id] = offsets{flagBase: b[0], captureBase: b[1]}
	}
	return newWithScopes(flagCount, captureCount, scoped, factory)
}

func newWithScopes(flagCount, captureCount int, scoped map[uint32]offsets, factory TokenFactory) *State {
	if factory == nil {
		factory = defaultFactory
	}
	captures := make([]Range, captureCount)
	for i := range captures {
		captures[i] = Range{-1, -1}
	}
	return &State{
		flags:        make([]bool, flagCount),
		captures:     captures,
		scopeOffsets: scoped,
		hintOffset:   -1,
		factory:      factory,
	}
}

func (s *State) resolveFlag(scope Scope, id int) int {
	if scope == nil || s.scopeOffsets == nil {
		return id
	}
	if off, ok := s.scopeOffsets[scope.ScopeID()]; ok {
		return off.flagBase + id
	}
	return id
}

func (s *State) resolveCapture(scope Scope, id int) int {
	if scope == nil || s.scopeOffsets == nil {
		return id
	}
	if off, ok := s.scopeOffsets[scope.ScopeID()]; ok {
		return off.captureBase + id
	}
	return id
}

// Flag returns the named flag's current value. Flags default to false.
func (s *State) Flag(scope Scope, id int) bool {
	return s.flags[s.resolveFlag(scope, id)]
}

// SetFlag sets the named flag. Not rolled back on backtrack (spec §3, §9):
// a Set inside a failing Choice branch still leaves the flag set.
func (s *State) SetFlag(scope Scope, id int, value bool) {
	s.flags[s.resolveFlag(scope, id)] = value
}

// Capture returns the named capture's current range. Returns an unset
// range if it was never captured.
func (s *State) Capture(scope Scope, id int) Range {
	return s.captures[s.resolveCapture(scope, id)]
}

// SetCapture records a capture's range. Not rolled back on backtrack,
// same as flags.
func (s *State) SetCapture(scope Scope, id int, r Range) {
	s.captures[s.resolveCapture(scope, id)] = r
}

// Hint returns the best human-readable failure explanation recorded so
// far, and the byte offset at which it was detected. ok is false if no
// hint was ever recorded.
func (s *State) Hint() (message string, offset int, ok bool) {
	return s.hint, s.hintOffset, s.hintOffset >= 0
}

// SetHint records a failure hint. Called by Hint nodes (spec §4.3).
func (s *State) SetHint(message string, offset int) {
	s.hint = message
	s.hintOffset = offset
}

// Finalize reports the sticky finalize bit (spec §5, §8 property 6).
func (s *State) Finalize() bool {
	return s.finalize
}

// SetFinalize sets the finalize bit. Once true it is never cleared within
// a match; every enclosing Choice and Glue bails out at its next
// iteration boundary.
func (s *State) SetFinalize(value bool) {
	s.finalize = value
}

// NewToken allocates a token via the state's token factory.
func (s *State) NewToken(ruleID, i0, i1 int) *token.Token {
	return s.factory(ruleID, i0, i1)
}
