package vars

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

func TestStore_GetAfterSet(t *testing.T) {
	s := NewStore()
	s.Set("postId", value.NumberValue(1))

	got, err := s.Get("postId")
	require.NoError(t, err)
	assert.True(t, got.Equal(value.NumberValue(1)))

	s.Set("postId", value.StringValue("two"))
	got, err = s.Get("postId")
	require.NoError(t, err)
	assert.Equal(t, "two", got.String())
}

func TestStore_GetBeforeSet(t *testing.T) {
	s := NewStore()
	_, err := s.Get("never")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingVariable))
	assert.Contains(t, err.Error(), `"never"`)
}

func TestStore_Substitute(t *testing.T) {
	s := NewStore()
	s.Set("storedUserId", value.NumberValue(3))
	s.Set("slug", value.StringValue("hello"))

	tests := []struct {
		name     string
		template string
		want     string
		wantErr  error
	}{
		{name: "no placeholders", template: "/posts?_limit=5", want: "/posts?_limit=5"},
		{name: "single", template: "/users/{storedUserId}", want: "/users/3"},
		{name: "repeated", template: "/users/{storedUserId}/posts/{storedUserId}", want: "/users/3/posts/3"},
		{name: "mixed", template: "/{slug}/{storedUserId}", want: "/hello/3"},
		{name: "unresolved", template: "/users/{unknown}", wantErr: ErrUnresolvedPlaceholder},
		{name: "one resolved one not", template: "/users/{storedUserId}/{other}", wantErr: ErrUnresolvedPlaceholder},
		{name: "json braces ignored", template: `{"a": 1}`, want: `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Substitute(tt.template)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_Names(t *testing.T) {
	s := NewStore()
	s.Set("b", value.NumberValue(1))
	s.Set("a", value.NumberValue(2))
	assert.Equal(t, []string{"a", "b"}, s.Names())
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))
}
