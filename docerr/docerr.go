// Package docerr defines the error taxonomy shared by every stage of the
// ingestion pipeline: fatal errors that abort a run and recoverable errors
// that get logged into a block's metadata instead.
package docerr

import (
	"fmt"
	"strings"
)

// Code identifies one of the closed error categories a pipeline run can
// produce.
type Code string

const (
	// UnsupportedFormat means a Provider refused the input file. Fatal.
	UnsupportedFormat Code = "UnsupportedFormat"
	// CorruptedInput means a parser detected irrecoverable malformation. Fatal.
	CorruptedInput Code = "CorruptedInput"
	// IoError wraps an underlying I/O failure reading the input. Fatal.
	IoError Code = "IoError"
	// UnknownBlockId means a reference resolved to no block in the
	// Document's index — an internal invariant violation. Fatal.
	UnknownBlockId Code = "UnknownBlockId"
	// ConcurrentMutation means a parallel code path mutated the Document
	// while an iteration was in flight. Fatal.
	ConcurrentMutation Code = "ConcurrentMutation"
	// TableExtractionFailed is per-table and recoverable: the processor
	// emits a degraded Table instead.
	TableExtractionFailed Code = "TableExtractionFailed"
	// LanguageDetectionTimeout is per-block and recoverable: language is
	// set to nil.
	LanguageDetectionTimeout Code = "LanguageDetectionTimeout"
	// ExternalCallFailed means an LLM or model call failed after retries.
	// Recoverable: the processor falls back to heuristic output.
	ExternalCallFailed Code = "ExternalCallFailed"
	// Cancelled is cooperative shutdown; propagates but is not reported to
	// the user as a failure.
	Cancelled Code = "Cancelled"
)

// Fatal reports whether errors of this code abort the pipeline run.
func (c Code) Fatal() bool {
	switch c {
	case UnsupportedFormat, CorruptedInput, IoError, UnknownBlockId, ConcurrentMutation:
		return true
	default:
		return false
	}
}

// Error is the structured error value carried through the pipeline. Fatal
// errors carry full context (file, processor, block ID, cause chain) per
// spec; recoverable errors are also recorded into the offending block's
// metadata by the processor that produced them.
type Error struct {
	Code      Code
	File      string // source file being processed, when known
	Processor string // processor name that raised the error
	BlockID   string // block ID involved, when known
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Code))
	if e.Processor != "" {
		parts = append(parts, fmt.Sprintf("processor=%s", e.Processor))
	}
	if e.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", e.File))
	}
	if e.BlockID != "" {
		parts = append(parts, fmt.Sprintf("block=%s", e.BlockID))
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}
	return strings.Join(parts, "; ")
}

// Unwrap exposes the cause chain for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New builds an Error for the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds an Error around an existing cause.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithProcessor returns a copy of the error annotated with the processor
// name that raised it.
func (e *Error) WithProcessor(name string) *Error {
	c := *e
	c.Processor = name
	return &c
}

// WithBlock returns a copy of the error annotated with the block ID it
// concerns.
func (e *Error) WithBlock(id string) *Error {
	c := *e
	c.BlockID = id
	return &c
}

// WithFile returns a copy of the error annotated with the source file.
func (e *Error) WithFile(file string) *Error {
	c := *e
	c.File = file
	return &c
}

// Reporter accumulates recoverable errors across a run so the final
// Document.Metadata["validation.issues"] can list them (spec §7).
type Reporter struct {
	issues []*Error
}

// NewReporter creates an empty Reporter.
func NewReporter() *Reporter {
	return &Reporter{}
}

// Record appends a recoverable error to the reporter. Fatal errors should
// not be passed here — they should propagate directly.
func (r *Reporter) Record(err *Error) {
	if err == nil {
		return
	}
	r.issues = append(r.issues, err)
}

// Issues returns a copy of the recorded issues.
func (r *Reporter) Issues() []*Error {
	out := make([]*Error, len(r.issues))
	copy(out, r.issues)
	return out
}

// HasIssues reports whether any recoverable error was recorded.
func (r *Reporter) HasIssues() bool {
	return len(r.issues) > 0
}
