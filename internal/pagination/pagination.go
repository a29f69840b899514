package pagination

import (
	"errors"
	"fmt"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

var ErrInvalidWindow = errors.New("invalid pagination window")

// Window is the [Offset, Offset+Limit) slice of a filtered, sorted result set.
type Window struct {
	Limit  int
	Offset int
}

func NewWindow(limit, offset int) (Window, error) {
	if limit < 1 || limit > MaxLimit {
		return Window{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidWindow, MaxLimit)
	}
	if offset < 0 {
		return Window{}, fmt.Errorf("%w: offset must be >= 0", ErrInvalidWindow)
	}
	return Window{Limit: limit, Offset: offset}, nil
}

// Page carries the cursor hints returned next to every listing.
// Previous is -Limit on the first page; clients rely on that value.
type Page struct {
	Next     *int `json:"next"`
	Limit    int  `json:"limit"`
	Previous int  `json:"previous"`
}

func (w Window) Page(total int64) Page {
	p := Page{Limit: w.Limit, Previous: -w.Limit}

	if end := w.Offset + w.Limit; int64(end) < total {
		p.Next = &end
	}
	if w.Offset > 0 {
		p.Previous = max(0, w.Offset-w.Limit)
	}
	return p
}

type Result[T any] struct {
	Items []T
	Total int64
}
