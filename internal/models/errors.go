package models

import (
	"fmt"
	"strings"
)

// FetchError reports that the page could not be loaded at all.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RenderError reports that the page loaded but the expected content never appeared.
type RenderError struct {
	URL    string
	Marker string
	Err    error
}

func (e *RenderError) Error() string {
	msg := fmt.Sprintf("render %s: marker %q never appeared", e.URL, e.Marker)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RenderError) Unwrap() error { return e.Err }

// SchemaError reports that no table of a scrape matched the canonical schema.
type SchemaError struct {
	Tables int
}

func (e *SchemaError) Error() string {
	if e.Tables == 0 {
		return "no tables found on page"
	}
	return fmt.Sprintf("none of %d tables matched the market schema", e.Tables)
}

// NotFoundError reports a symbol lookup miss.
type NotFoundError struct {
	Symbols []string
}

func (e *NotFoundError) Error() string {
	if len(e.Symbols) == 1 {
		return fmt.Sprintf("symbol %q not found in snapshot", e.Symbols[0])
	}
	return fmt.Sprintf("symbols %s not found in snapshot", strings.Join(e.Symbols, ", "))
}

// ExplanationError reports a failed completion request. It is never fatal.
type ExplanationError struct {
	Task string
	Err  error
}

func (e *ExplanationError) Error() string {
	return fmt.Sprintf("explanation for %s unavailable: %v", e.Task, e.Err)
}

func (e *ExplanationError) Unwrap() error { return e.Err }
