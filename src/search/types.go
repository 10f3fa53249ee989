package search

import (
	"context"
	"errors"
	"fmt"
)

// Result is one search hit. Results are ordered most relevant first.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Provider queries one search backend.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// ErrInvalidRequest is wrapped by Error when the caller's arguments are unusable.
var ErrInvalidRequest = errors.New("invalid request")

// Error reports a failed search. Callers never receive partial results with it.
type Error struct {
	Provider string
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("search (%s): %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("search (%s): %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
