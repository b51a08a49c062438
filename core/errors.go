package core

import "fmt"

// ErrorKind is the closed set of failure categories the pipeline engine can
// return. Every layer of the engine returns one of these; none are
// swallowed internally.
type ErrorKind string

const (
	// KindConfig covers malformed input, missing files, unknown YAML tags,
	// and bad reference path grammar.
	KindConfig ErrorKind = "config"
	// KindVariableNotFound is returned when a !var reference has no
	// matching local or shared variable.
	KindVariableNotFound ErrorKind = "variable_not_found"
	// KindOutputNotFound is returned when an !output reference has no
	// matching entry in the output index.
	KindOutputNotFound ErrorKind = "output_not_found"
	// KindTypeConversion is returned when a literal cannot be coerced to
	// its expected Solidity type.
	KindTypeConversion ErrorKind = "type_conversion"
	// KindAbiParsing is returned when a function/constructor signature
	// cannot be parsed.
	KindAbiParsing ErrorKind = "abi_parsing"
	// KindDeploymentFailed is returned on a CREATE2 address mismatch or a
	// reverted deployment transaction.
	KindDeploymentFailed ErrorKind = "deployment_failed"
	// KindTransactionFailed is returned on a reverted write transaction.
	KindTransactionFailed ErrorKind = "transaction_failed"
	// KindExecution covers preconditions that failed before a call could
	// be attempted, e.g. no code at the call target.
	KindExecution ErrorKind = "execution"
)

// Error is the engine's single error type. Kind is always one of the
// constants above; Msg carries the human-readable detail.
type Error struct {
	Kind     ErrorKind
	Msg      string
	Expected string // set only for KindTypeConversion
	Actual   string // set only for KindTypeConversion
	Wrapped  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTypeConversion:
		return fmt.Sprintf("invalid type conversion: expected %s, got %s", e.Expected, e.Actual)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Wrapped }

// Is reports whether target is an *Error carrying the same Kind, so
// callers can do errors.Is(err, core.ErrConfig("")) style checks against
// the kind alone.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == other.Kind
}

// ErrConfig builds a KindConfig error.
func ErrConfig(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Msg: fmt.Sprintf(format, args...)}
}

// ErrVariableNotFound builds a KindVariableNotFound error.
func ErrVariableNotFound(name string) *Error {
	return &Error{Kind: KindVariableNotFound, Msg: fmt.Sprintf("variable not found: %s", name)}
}

// ErrOutputNotFound builds a KindOutputNotFound error.
func ErrOutputNotFound(path string) *Error {
	return &Error{Kind: KindOutputNotFound, Msg: fmt.Sprintf("output not found: %s", path)}
}

// ErrTypeConversion builds a KindTypeConversion error.
func ErrTypeConversion(expected, actual string) *Error {
	return &Error{
		Kind:     KindTypeConversion,
		Expected: expected,
		Actual:   actual,
	}
}

// ErrAbiParsing builds a KindAbiParsing error.
func ErrAbiParsing(format string, args ...any) *Error {
	return &Error{Kind: KindAbiParsing, Msg: fmt.Sprintf(format, args...)}
}

// ErrDeploymentFailed builds a KindDeploymentFailed error.
func ErrDeploymentFailed(format string, args ...any) *Error {
	return &Error{Kind: KindDeploymentFailed, Msg: fmt.Sprintf(format, args...)}
}

// ErrTransactionFailed builds a KindTransactionFailed error.
func ErrTransactionFailed(format string, args ...any) *Error {
	return &Error{Kind: KindTransactionFailed, Msg: fmt.Sprintf(format, args...)}
}

// ErrExecution builds a KindExecution error.
func ErrExecution(format string, args ...any) *Error {
	return &Error{Kind: KindExecution, Msg: fmt.Sprintf(format, args...)}
}

// wrap attaches additional context to err while preserving it as the
// unwrap target.
func wrap(kind ErrorKind, err error, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: fmt.Sprintf("%s: %v", message, err), Wrapped: err}
}
