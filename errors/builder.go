package errors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorBuilder provides a fluent API for constructing enriched errors.
type ErrorBuilder struct {
	err       error
	hints     []string
	context   map[string]interface{}
	exitCode  *int
	sentinels []error
}

// Build creates a new ErrorBuilder from a base error.
// A leaf error (no wrapped cause) is treated as a sentinel and marked,
// so errors.Is() keeps working after the error is enriched.
func Build(err error) *ErrorBuilder {
	builder := &ErrorBuilder{err: err}

	if err != nil && errors.UnwrapOnce(err) == nil {
		builder.sentinels = append(builder.sentinels, err)
	}

	return builder
}

// Wrapf wraps a sentinel with a formatted message and returns a builder
// that keeps the sentinel matchable.
func Wrapf(sentinel error, format string, args ...interface{}) *ErrorBuilder {
	return Build(errors.Wrapf(sentinel, format, args...)).WithSentinel(sentinel)
}

// WithHint adds a user-facing hint to the error.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.hints = append(b.hints, hint)
	return b
}

// WithHintf adds a formatted user-facing hint to the error.
func (b *ErrorBuilder) WithHintf(format string, args ...interface{}) *ErrorBuilder {
	b.hints = append(b.hints, fmt.Sprintf(format, args...))
	return b
}

// WithExplanation attaches a detailed explanation of what went wrong.
func (b *ErrorBuilder) WithExplanation(explanation string) *ErrorBuilder {
	b.err = errors.WithDetail(b.err, explanation)
	return b
}

// WithContext adds structured context (host, file, variable, ...) to the error.
// Context is shown in verbose mode only.
func (b *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	if b.context == nil {
		b.context = make(map[string]interface{})
	}
	b.context[key] = value
	return b
}

// WithFile is a shorthand for WithContext("file", path).
func (b *ErrorBuilder) WithFile(path string) *ErrorBuilder {
	return b.WithContext("file", path)
}

// WithVariable is a shorthand for WithContext("variable", name).
func (b *ErrorBuilder) WithVariable(name string) *ErrorBuilder {
	return b.WithContext("variable", name)
}

// WithExitCode attaches an exit code to the error.
func (b *ErrorBuilder) WithExitCode(code int) *ErrorBuilder {
	b.exitCode = &code
	return b
}

// WithSentinel marks the error with a sentinel for errors.Is() checks.
func (b *ErrorBuilder) WithSentinel(sentinel error) *ErrorBuilder {
	b.sentinels = append(b.sentinels, sentinel)
	return b
}

// Err finalizes and returns the enriched error.
func (b *ErrorBuilder) Err() error {
	if b.err == nil {
		return nil
	}

	err := b.err

	for _, hint := range b.hints {
		err = errors.WithHint(err, hint)
	}

	if len(b.context) > 0 {
		keys := make([]string, 0, len(b.context))
		for k := range b.context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		// Rendered as "file=%s variable=%s".
		var formatParts []string
		var safeValues []interface{}
		for _, key := range keys {
			formatParts = append(formatParts, key+"=%s")
			safeValues = append(safeValues, errors.Safe(b.context[key]))
		}

		err = errors.WithSafeDetails(err, strings.Join(formatParts, " "), safeValues...)
	}

	// Marks go on last so they sit at the top of the chain.
	for _, sentinel := range b.sentinels {
		err = errors.Mark(err, sentinel)
	}
	if len(b.sentinels) > 0 {
		err = &sentinelMatcher{cause: err, sentinels: b.sentinels}
	}

	if b.exitCode != nil {
		err = WithExitCode(err, *b.exitCode)
	}

	return err
}

// sentinelMatcher exposes the marks of an error to the standard library's
// errors.Is, which does not understand cockroachdb markers.
type sentinelMatcher struct {
	cause     error
	sentinels []error
}

func (m *sentinelMatcher) Error() string { return m.cause.Error() }
func (m *sentinelMatcher) Cause() error  { return m.cause }
func (m *sentinelMatcher) Unwrap() error { return m.cause }

// Is reports whether target is one of the sentinels the error was marked with.
func (m *sentinelMatcher) Is(target error) bool {
	for _, sentinel := range m.sentinels {
		if sentinel == target {
			return true
		}
	}
	return false
}
