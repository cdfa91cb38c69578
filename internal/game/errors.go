package game

import (
	"errors"
	"fmt"
)

// Rule violations. These are expected outcomes of bad input and are always
// returned wrapped in a *RuleError.
var (
	ErrInvalidGroupSize = errors.New("invalid group size")
	ErrUnknownPlayer    = errors.New("unknown player")
	ErrNotPlayersTurn   = errors.New("not player's turn")
	ErrIllegalCard      = errors.New("illegal card")
	ErrIllegalTarget    = errors.New("illegal target")
	ErrIllegalGuess     = errors.New("illegal guess")
	ErrRoundOver        = errors.New("round is over")
	ErrRoundNotOver     = errors.New("round is not over")
)

// Invariant violations. These are returned wrapped in an *InvariantError and
// indicate a defect upstream of the engine.
var (
	ErrNoActivePlayer      = errors.New("no active player")
	ErrMultipleActive      = errors.New("multiple active players")
	ErrMalformedComparison = errors.New("malformed comparison")
	ErrCorruptState        = errors.New("corrupt state")
)

// RuleError reports a rejected action or query.
type RuleError struct {
	Rule   error
	Detail string
}

func (e *RuleError) Error() string {
	if e.Detail == "" {
		return "game: " + e.Rule.Error()
	}
	return fmt.Sprintf("game: %s: %s", e.Rule, e.Detail)
}

func (e *RuleError) Unwrap() error { return e.Rule }

// InvariantError reports a state the rules can never produce.
type InvariantError struct {
	Invariant error
	Detail    string
}

func (e *InvariantError) Error() string {
	if e.Detail == "" {
		return "game: invariant violated: " + e.Invariant.Error()
	}
	return fmt.Sprintf("game: invariant violated: %s: %s", e.Invariant, e.Detail)
}

func (e *InvariantError) Unwrap() error { return e.Invariant }

// IsInvariant reports whether err is (or wraps) an *InvariantError.
func IsInvariant(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}

func ruleErr(rule error, format string, args ...any) error {
	return &RuleError{Rule: rule, Detail: fmt.Sprintf(format, args...)}
}

func invariantErr(inv error, format string, args ...any) error {
	return &InvariantError{Invariant: inv, Detail: fmt.Sprintf(format, args...)}
}
