package pagination

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestWindow_Page(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		window   Window
		total    int64
		next     *int
		previous int
	}{
		{name: "last page has no next", window: Window{Limit: 10, Offset: 20}, total: 25, next: nil, previous: 10},
		{name: "middle page", window: Window{Limit: 10, Offset: 10}, total: 25, next: intPtr(20), previous: 0},
		{name: "first page keeps negative sentinel", window: Window{Limit: 10, Offset: 0}, total: 25, next: intPtr(10), previous: -10},
		{name: "exact end has no next", window: Window{Limit: 5, Offset: 5}, total: 10, next: nil, previous: 0},
		{name: "offset smaller than limit clamps to zero", window: Window{Limit: 10, Offset: 3}, total: 50, next: intPtr(13), previous: 0},
		{name: "empty result", window: Window{Limit: 10, Offset: 0}, total: 0, next: nil, previous: -10},
		{name: "offset past the end", window: Window{Limit: 10, Offset: 40}, total: 25, next: nil, previous: 30},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := tt.window.Page(tt.total)
			assert.Equal(t, tt.window.Limit, p.Limit)
			assert.Equal(t, tt.previous, p.Previous)
			if tt.next == nil {
				assert.Nil(t, p.Next)
				return
			}
			require.NotNil(t, p.Next)
			assert.Equal(t, *tt.next, *p.Next)
		})
	}
}

func TestNewWindow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		limit   int
		offset  int
		wantErr bool
	}{
		{name: "defaults", limit: DefaultLimit, offset: 0},
		{name: "max limit", limit: MaxLimit, offset: 7},
		{name: "zero limit", limit: 0, offset: 0, wantErr: true},
		{name: "limit above max", limit: MaxLimit + 1, offset: 0, wantErr: true},
		{name: "negative offset", limit: 10, offset: -1, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w, err := NewWindow(tt.limit, tt.offset)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidWindow))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, Window{Limit: tt.limit, Offset: tt.offset}, w)
		})
	}
}
