package engine

import "fmt"

// Code classifies an engine error for HTTP status mapping and CLI exit codes.
type Code string

const (
	CodeInvalidInput    Code = "invalid_input"
	CodeInvalidConfig   Code = "invalid_config"
	CodeUpstream        Code = "upstream_error"
	CodeAllChunksFailed Code = "all_chunks_failed"
	CodeSink            Code = "sink_error"
)

// Error is a classified engine-level error, distinct from the transient
// vs. fatal classification providers use internally for retries.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...)}
}

// upstreamError wraps a provider failure with a transient/fatal
// classification the retry loop in provider.go acts on (spec.md §4.2).
type upstreamError struct {
	transient bool
	err       error
}

func (e *upstreamError) Error() string {
	if e.transient {
		return "upstream (transient): " + e.err.Error()
	}
	return "upstream (fatal): " + e.err.Error()
}

func (e *upstreamError) Unwrap() error { return e.err }
