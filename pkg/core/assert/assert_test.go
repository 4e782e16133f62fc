package assert

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/blackcoderx/apicheck/pkg/core/value"
)

func mustParse(t *testing.T, s string) value.Value {
	t.Helper()
	v, err := value.Parse([]byte(s))
	require.NoError(t, err)
	return v
}

func requireAssertion(t *testing.T, err error) *Error {
	t.Helper()
	require.Error(t, err)
	var ae *Error
	require.True(t, errors.As(err, &ae), "want *assert.Error, got %T: %v", err, err)
	return ae
}

func TestSorted(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		order Order
		ok    bool
	}{
		{"ascending", `[{"id":1},{"id":2},{"id":3}]`, Ascending, true},
		{"reversed ascending", `[{"id":3},{"id":2},{"id":1}]`, Ascending, false},
		{"descending", `[{"id":3},{"id":2},{"id":1}]`, Descending, true},
		{"equal neighbours", `[{"id":1},{"id":1},{"id":2}]`, Ascending, true},
		{"strings", `[{"n":"a"},{"n":"b"}]`, Ascending, true},
		{"empty", `[]`, Descending, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := "id"
			if strings.Contains(tt.body, `"n"`) {
				path = "n"
			}
			err := Sorted(mustParse(t, tt.body), path, tt.order)
			if tt.ok {
				require.NoError(t, err)
				return
			}
			ae := requireAssertion(t, err)
			require.Equal(t, "sorted", ae.Check)
		})
	}
}

func TestParseOrder(t *testing.T) {
	o, err := ParseOrder("descending")
	require.NoError(t, err)
	require.Equal(t, Descending, o)

	_, err = ParseOrder("sideways")
	require.Error(t, err)
}

func TestEachUnique(t *testing.T) {
	require.NoError(t, EachUnique(mustParse(t, `[{"id":1},{"id":2},{"id":3}]`), "id"))

	ae := requireAssertion(t, EachUnique(mustParse(t, `[{"id":1},{"id":2},{"id":1}]`), "id"))
	require.Equal(t, "3 distinct values", ae.Expected)
	require.Equal(t, 2, ae.Actual)
	require.Contains(t, ae.Detail, "[0] and [2]")
}

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a@b.co", true},
		{"a@b.c", true},
		{"Sincere@april.biz", true},
		{"a@b", false},
		{"a.b@c", false},
		{"a b@c.d", false},
		{"@b.co", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, IsEmail(tt.in))
		})
	}
}

func TestHasControlChars(t *testing.T) {
	require.True(t, HasControlChars("ring\x07"))
	require.True(t, HasControlChars("\x7f"))
	require.True(t, HasControlChars("\x0b"))
	require.False(t, HasControlChars("\t\n\r"))
	require.False(t, HasControlChars("plain text"))

	ae := requireAssertion(t, NoControlChars(mustParse(t, `{"s":"a\u0007"}`), "s"))
	require.Equal(t, "s", ae.Field)
}

func TestFieldChecks(t *testing.T) {
	body := mustParse(t, `{
		"id": 1,
		"name": "Leanne Graham",
		"email": "Sincere@april.biz",
		"padded": " x ",
		"empty": "",
		"nothing": null,
		"address": {"city": "Gwenborough", "geo": {"lat": "-37.3159"}}
	}`)

	require.NoError(t, HasFields(body, []string{"id", "name", "address.geo.lat"}))
	require.NoError(t, FieldType(body, "id", "number"))
	require.NoError(t, FieldType(body, "address", "object"))
	require.NoError(t, FieldType(body, "nothing", "null"))
	require.NoError(t, FieldEquals(body, "id", value.NumberValue(1)))
	require.NoError(t, PositiveNumber(body, "id"))
	require.NoError(t, EmailFormat(body, "email"))
	require.NoError(t, NonEmptyString(body, "name"))
	require.NoError(t, LengthGreaterThan(body, "name", 5))
	require.NoError(t, GreaterThan(body, "id", value.NumberValue(0)))

	ae := requireAssertion(t, HasField(body, "address.zip.code"))
	require.Equal(t, "address.zip.code", ae.Field)
	require.Contains(t, ae.Actual, "zip")

	ae = requireAssertion(t, FieldType(body, "id", "string"))
	require.Equal(t, "string", ae.Expected)
	require.Equal(t, "number", ae.Actual)

	requireAssertion(t, FieldEquals(body, "id", value.StringValue("1")))
	requireAssertion(t, FieldNotNull(body, "nothing"))
	requireAssertion(t, NoLeadingWhitespace(body, "padded"))
	requireAssertion(t, NoTrailingWhitespace(body, "padded"))
	requireAssertion(t, NoSpaces(body, "name"))
	requireAssertion(t, NonEmptyString(body, "empty"))
	requireAssertion(t, NotEmptyString(body, "empty"))
	requireAssertion(t, NonEmptyString(body, "id"))
	requireAssertion(t, LengthGreaterThan(body, "name", 13))
}

func TestLengthGreaterThan_CountsCharacters(t *testing.T) {
	body := mustParse(t, `{"name": "héllo", "tags": ["a", "b"]}`)

	tests := []struct {
		path string
		n    int
		ok   bool
	}{
		{"name", 4, true},
		{"name", 5, false},
		{"tags", 1, true},
		{"tags", 2, false},
	}
	for _, tt := range tests {
		err := LengthGreaterThan(body, tt.path, tt.n)
		if tt.ok {
			require.NoError(t, err, "%s > %d", tt.path, tt.n)
			continue
		}
		ae := requireAssertion(t, err)
		require.Equal(t, tt.path, ae.Field)
	}
}

func TestShapeChecks(t *testing.T) {
	arr := mustParse(t, `[1,2,3]`)
	obj := mustParse(t, `{"a":1,"b":2}`)

	require.NoError(t, IsArray(arr))
	require.NoError(t, IsObject(obj))
	require.NoError(t, MinItems(arr, 3))
	require.NoError(t, MaxItems(arr, 3))
	require.NoError(t, NotEmpty(arr))
	require.NoError(t, MinKeys(obj, 2))
	require.NoError(t, Empty(mustParse(t, `[]`)))

	requireAssertion(t, IsArray(obj))
	requireAssertion(t, MinItems(arr, 4))
	requireAssertion(t, MaxItems(arr, 2))
	requireAssertion(t, Empty(arr))
	requireAssertion(t, MinKeys(obj, 3))
	requireAssertion(t, MinItems(obj, 1))
}

func TestStatus(t *testing.T) {
	require.NoError(t, Status(200, 200))
	ae := requireAssertion(t, Status(404, 200))
	require.Equal(t, "status code: expected 200, got 404", ae.Error())

	require.NoError(t, StatusIn(404, []int{200, 404}))
	requireAssertion(t, StatusIn(500, []int{200, 404}))
}

func TestArrayWide(t *testing.T) {
	posts := mustParse(t, `[
		{"id":1,"userId":1,"title":"a"},
		{"id":2,"userId":2,"title":"b"}
	]`)

	require.NoError(t, EachHasFields(posts, []string{"id", "userId", "title"}))
	require.NoError(t, EachFieldType(posts, "title", "string"))
	require.NoError(t, EachPositive(posts, "userId"))
	require.NoError(t, EachNonEmptyString(posts, "title"))

	ae := requireAssertion(t, EachHasFields(posts, []string{"body"}))
	require.Equal(t, "[0].body", ae.Field)

	ae = requireAssertion(t, EachPositive(mustParse(t, `[{"n":1},{"n":0}]`), "n"))
	require.Equal(t, "[1].n", ae.Field)
}

func TestNoneIn(t *testing.T) {
	stored := mustParse(t, `[1]`)
	require.NoError(t, NoneIn(mustParse(t, `[{"id":2},{"id":3}]`), stored))

	ae := requireAssertion(t, NoneIn(mustParse(t, `[{"id":1},{"id":2}]`), stored))
	require.Equal(t, "[1]", ae.Actual)

	requireAssertion(t, NoneIn(mustParse(t, `[]`), value.NumberValue(1)))
}

func TestForeignKeys(t *testing.T) {
	body := mustParse(t, `[{"userId":1},{"userId":2},{"userId":9}]`)
	var calls []string
	lookup := func(_ context.Context, path string) (int, error) {
		calls = append(calls, path)
		if path == "/users/9" {
			return 404, nil
		}
		return 200, nil
	}

	ae := requireAssertion(t, ForeignKeys(context.Background(), body, "userId", "/users/", lookup))
	require.Equal(t, "[2].userId", ae.Field)
	require.Equal(t, []string{"/users/1", "/users/2", "/users/9"}, calls)

	boom := errors.New("boom")
	err := ForeignKeys(context.Background(), body, "userId", "/users", func(context.Context, string) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, IsAssertion(err))
}

func TestHeaders(t *testing.T) {
	h := headerMap{"content-type": "application/json; charset=utf-8"}
	require.NoError(t, HasHeader(h, "Content-Type"))
	require.NoError(t, HeaderContains(h, "CONTENT-TYPE", "application/json"))
	requireAssertion(t, HeaderContains(h, "content-type", "xml"))
	requireAssertion(t, HasHeader(h, "x-missing"))
}

type headerMap map[string]string

func (h headerMap) Get(name string) (string, bool) {
	v, ok := h[strings.ToLower(name)]
	return v, ok
}

func TestTiming(t *testing.T) {
	require.NoError(t, ResponseTimeBelow(20*time.Millisecond, 100))
	requireAssertion(t, ResponseTimeBelow(100*time.Millisecond, 100))

	require.NoError(t, WithinBaseline(100*time.Millisecond, 100*time.Millisecond, 150))
	requireAssertion(t, WithinBaseline(200*time.Millisecond, 100*time.Millisecond, 150))

	require.NoError(t, PayloadBelowKB(1023, 1))
	requireAssertion(t, PayloadBelowKB(1024, 1))

	durations := []time.Duration{5, 1, 4, 2, 3, 6, 7, 8, 9, 100}
	for i := range durations {
		durations[i] *= time.Millisecond
	}
	require.Equal(t, 100*time.Millisecond, Percentile(durations, 95))
	require.Equal(t, 5*time.Millisecond, Percentile(durations, 50))
	require.NoError(t, PercentileBelow(durations, 50, 10))
	requireAssertion(t, PercentileBelow(durations, 95, 50))
	requireAssertion(t, PercentileBelow(nil, 95, 50))
}

func TestConsistency(t *testing.T) {
	require.NoError(t, AllStatus([]int{200, 200}, 200))
	ae := requireAssertion(t, AllStatus([]int{200, 500}, 200))
	require.Equal(t, "response 2", ae.Field)

	a := mustParse(t, `{"id":1,"title":"a"}`)
	b := mustParse(t, `{"title":"b","id":2}`)
	c := mustParse(t, `{"id":3}`)
	require.NoError(t, ConsistentStructure([]value.Value{a, b}))
	requireAssertion(t, ConsistentStructure([]value.Value{a, b, c}))
}

func TestMatchesSnapshot(t *testing.T) {
	stored := mustParse(t, `{"id":1,"title":"a"}`).Canonical()
	require.NoError(t, MatchesSnapshot(mustParse(t, `{"title":"a","id":1}`), stored))

	ae := requireAssertion(t, MatchesSnapshot(mustParse(t, `{"id":1,"title":"b"}`), stored))
	require.Contains(t, ae.Detail, `-  "title": "a"`)
	require.Contains(t, ae.Detail, `+  "title": "b"`)
}

func TestMatchesSchema(t *testing.T) {
	schema := []byte(`{
		"type": "object",
		"required": ["id", "title"],
		"properties": {
			"id": {"type": "integer", "minimum": 1},
			"title": {"type": "string"}
		}
	}`)
	require.NoError(t, MatchesSchema([]byte(`{"id":1,"title":"x"}`), schema))

	ae := requireAssertion(t, MatchesSchema([]byte(`{"id":0}`), schema))
	require.Contains(t, ae.Detail, "title")
	require.Contains(t, ae.Detail, "id")
}
