package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a lookup for an article ID that was never created.
var ErrNotFound = errors.New("article not found")

// FetchError reports a failed network retrieval (feed or rewrite call).
// It is always recovered locally: the affected source or record is skipped
// and the sweep continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func NewFetch(url string, err error) *FetchError {
	return &FetchError{URL: url, Err: err}
}

// ParseError reports a malformed feed or service document. The source yields
// an empty result; other sources are unaffected.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func NewParse(source string, err error) *ParseError {
	return &ParseError{Source: source, Err: err}
}

// DuplicateKeyError signals a store-level uniqueness violation on the
// source link. The deduplicator is expected to prevent this; the store
// still enforces it.
type DuplicateKeyError struct {
	SourceLink string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate source link %q", e.SourceLink)
}

func NewDuplicateKey(link string) *DuplicateKeyError {
	return &DuplicateKeyError{SourceLink: link}
}

// InvalidTransitionError signals a status transition attempted from a state
// other than pending. The record is left unchanged.
type InvalidTransitionError struct {
	ID   string
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("article %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}

func NewInvalidTransition(id, from, to string) *InvalidTransitionError {
	return &InvalidTransitionError{ID: id, From: from, To: to}
}
