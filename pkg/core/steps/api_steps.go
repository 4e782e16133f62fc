package steps

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/blackcoderx/apicheck/pkg/core/assert"
	"github.com/blackcoderx/apicheck/pkg/core/auth"
	"github.com/blackcoderx/apicheck/pkg/core/scenario"
	"github.com/blackcoderx/apicheck/pkg/core/value"
)

// NewAPIRegistry returns a registry holding every REST API phrase.
func NewAPIRegistry() *Registry {
	r := NewRegistry()
	RegisterAPISteps(r)
	return r
}

// RegisterAPISteps adds the REST API phrases to r. It panics on a conflicting
// template so a bad catalogue fails at start-up.
func RegisterAPISteps(r *Registry) {
	registerSetupSteps(r)
	registerRequestSteps(r)
	registerShapeSteps(r)
	registerFieldSteps(r)
	registerVariableSteps(r)
	registerArraySteps(r)
	registerHeaderSteps(r)
	registerPerformanceSteps(r)
	registerQualitySteps(r)
}

// check adapts a body predicate into a handler.
func check(fn func(body value.Value, args Args) error) Handler {
	return func(_ context.Context, sc *scenario.Context, args Args) error {
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return fn(body, args)
	}
}

func noop(ctx context.Context, sc *scenario.Context, args Args) error {
	return nil
}

func registerSetupSteps(r *Registry) {
	r.MustRegister(`the API base URL is {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		if declared := strings.TrimRight(args.Text(0), "/"); declared != sc.Client().BaseURL() {
			sc.Logger().Debug("scenario declares a different base URL; using the configured one",
				"declared", declared, "configured", sc.Client().BaseURL())
		}
		return nil
	})
	r.MustRegister(`the API supports multiple authentication methods`, noop)

	r.MustRegister(`I have a bearer token {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		sc.Credentials().SetBearer(args.Text(0))
		return nil
	})
	r.MustRegister(`I have an API key {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		sc.Credentials().SetAPIKey(args.Text(0))
		return nil
	})
	r.MustRegister(`I have basic auth credentials {string} and {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		sc.Credentials().SetBasic(args.Text(0), args.Text(1))
		return nil
	})
	r.MustRegister(`I clear the credentials`, func(_ context.Context, sc *scenario.Context, args Args) error {
		sc.Credentials().Clear()
		return nil
	})
	r.MustRegister(`I obtain an OAuth2 token from {string} with client {string} and secret {string}`, func(ctx context.Context, sc *scenario.Context, args Args) error {
		return sc.FetchToken(ctx, args.Text(0), args.Text(1), args.Text(2))
	})
	r.MustRegister(`I obtain an OAuth2 token`, func(ctx context.Context, sc *scenario.Context, args Args) error {
		return sc.FetchToken(ctx, "", "", "")
	})

	pending := func(_ context.Context, sc *scenario.Context, args Args) error {
		return sc.PendingFromTable(args.Table)
	}
	r.MustRegisterTable(`I have the following post data:`, pending)
	r.MustRegisterTable(`I have the following update data:`, pending)
	r.MustRegister(`I have the payload fixture {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return sc.PendingFromFixture(args.Text(0))
	})
}

func send(method string, opts ...scenario.SendOption) Handler {
	return func(ctx context.Context, sc *scenario.Context, args Args) error {
		_, err := sc.Send(ctx, method, args.Text(0), opts...)
		return err
	}
}

func sendTable(method string) Handler {
	return func(ctx context.Context, sc *scenario.Context, args Args) error {
		if err := sc.PendingFromTable(args.Table); err != nil {
			return err
		}
		_, err := sc.Send(ctx, method, args.Text(0), scenario.WithPending())
		return err
	}
}

func registerRequestSteps(r *Registry) {
	r.MustRegister(`I send a GET request to {string}`, send(http.MethodGet))
	r.MustRegister(`I send a GET request to {string} with bearer authentication`, send(http.MethodGet, scenario.WithAuth(auth.Bearer)))
	r.MustRegister(`I send a GET request to {string} with API key in header`, send(http.MethodGet, scenario.WithAuth(auth.APIKey)))
	r.MustRegister(`I send a GET request to {string} with API key in query`, send(http.MethodGet, scenario.WithAPIKeyQuery()))
	r.MustRegister(`I send a GET request to {string} with basic authentication`, send(http.MethodGet, scenario.WithAuth(auth.Basic)))

	r.MustRegister(`I send a POST request to {string} with the data`, send(http.MethodPost, scenario.WithPending()))
	r.MustRegister(`I send a POST request to {string} with the data and bearer authentication`, send(http.MethodPost, scenario.WithPending(), scenario.WithAuth(auth.Bearer)))
	r.MustRegisterTable(`I send a POST request to {string} with the data:`, sendTable(http.MethodPost))

	r.MustRegister(`I send a PUT request to {string} with the data`, send(http.MethodPut, scenario.WithPending()))
	r.MustRegister(`I send a PUT request to {string} with the data and bearer authentication`, send(http.MethodPut, scenario.WithPending(), scenario.WithAuth(auth.Bearer)))
	r.MustRegisterTable(`I send a PUT request to {string} with the data:`, sendTable(http.MethodPut))

	r.MustRegister(`I send a DELETE request to {string}`, send(http.MethodDelete))
	r.MustRegister(`I send a DELETE request to {string} with bearer authentication`, send(http.MethodDelete, scenario.WithAuth(auth.Bearer)))

	r.MustRegister(`I send {int} GET requests to {string}`, func(ctx context.Context, sc *scenario.Context, args Args) error {
		return sc.SendBatch(ctx, args.Int(0), args.Text(1))
	})
	r.MustRegister(`I send the saved request {string}`, func(ctx context.Context, sc *scenario.Context, args Args) error {
		_, err := sc.SendSaved(ctx, args.Text(0))
		return err
	})
}

func registerShapeSteps(r *Registry) {
	r.MustRegister(`the response status code should be {int}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		return assert.Status(resp.StatusCode, args.Int(0))
	})
	r.MustRegister(`the response status code should be one of {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		codes, err := parseCodes(args.Text(0))
		if err != nil {
			return err
		}
		return assert.StatusIn(resp.StatusCode, codes)
	})

	isArray := check(func(body value.Value, _ Args) error { return assert.IsArray(body) })
	r.MustRegister(`the response should be a JSON array`, isArray)
	r.MustRegister(`the response should be an array`, isArray)
	r.MustRegister(`the response should be a JSON object`, check(func(body value.Value, _ Args) error {
		return assert.IsObject(body)
	}))
	r.MustRegister(`the response should be valid JSON`, check(func(value.Value, Args) error { return nil }))

	r.MustRegister(`the response array should contain at least {int} item(s)`, check(func(body value.Value, args Args) error {
		return assert.MinItems(body, args.Int(0))
	}))
	r.MustRegister(`the response array should have at most {int} item(s)`, check(func(body value.Value, args Args) error {
		return assert.MaxItems(body, args.Int(0))
	}))
	r.MustRegister(`the response array should not be empty`, check(func(body value.Value, _ Args) error {
		return assert.NotEmpty(body)
	}))
	r.MustRegister(`the response array should be empty`, check(func(body value.Value, _ Args) error {
		return assert.Empty(body)
	}))
	r.MustRegister(`the response should have at least {int} fields`, check(func(body value.Value, args Args) error {
		return assert.MinKeys(body, args.Int(0))
	}))
	r.MustRegister(`the response should match the JSON schema {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		path, err := sc.SchemaPath(args.Text(0))
		if err != nil {
			return err
		}
		return assert.MatchesSchemaFile(resp.Bytes(), path)
	})
}

func registerFieldSteps(r *Registry) {
	r.MustRegister(`the response should have property {string}`, check(func(body value.Value, args Args) error {
		return assert.HasField(body, args.Text(0))
	}))
	r.MustRegister(`the response should have property {string} with value {int}`, check(func(body value.Value, args Args) error {
		return assert.FieldEquals(body, args.Text(0), value.NumberValue(float64(args.Int(1))))
	}))
	r.MustRegister(`the response should have property {string} with value {string}`, check(func(body value.Value, args Args) error {
		return assert.FieldEquals(body, args.Text(0), value.StringValue(args.Text(1)))
	}))
	r.MustRegister(`the response property {string} should have property {string}`, check(func(body value.Value, args Args) error {
		return assert.HasField(body, args.Text(0)+"."+args.Text(1))
	}))
	r.MustRegister(`the response property {string} should be a number`, check(func(body value.Value, args Args) error {
		return assert.FieldType(body, args.Text(0), value.Number.String())
	}))
	r.MustRegister(`the response property {string} should be a string`, check(func(body value.Value, args Args) error {
		return assert.FieldType(body, args.Text(0), value.String.String())
	}))
	r.MustRegisterTable(`the response should have required fields:`, check(func(body value.Value, args Args) error {
		return assert.HasFields(body, args.Table.Column())
	}))
	r.MustRegister(`the response field {string} should be of type {string}`, check(func(body value.Value, args Args) error {
		return assert.FieldType(body, args.Text(0), args.Text(1))
	}))
	r.MustRegister(`the response nested field {string} should exist`, check(func(body value.Value, args Args) error {
		return assert.HasField(body, args.Text(0))
	}))
	r.MustRegister(`the response field {string} should not be null`, check(func(body value.Value, args Args) error {
		return assert.FieldNotNull(body, args.Text(0))
	}))
	r.MustRegister(`the response field {string} should be a positive number`, check(func(body value.Value, args Args) error {
		return assert.PositiveNumber(body, args.Text(0))
	}))
}

func registerVariableSteps(r *Registry) {
	r.MustRegister(`I store the response field {string} as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return storeFrom(sc, args.Text(1), func(body value.Value) (value.Value, error) {
			return fieldOf("store", body, args.Text(0))
		})
	})
	r.MustRegister(`the response field {string} should equal stored value {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(1))
		if err != nil {
			return err
		}
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return assert.FieldEquals(body, args.Text(0), stored)
	})
	r.MustRegister(`I store the last array item field {string} as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return storeFrom(sc, args.Text(1), func(body value.Value) (value.Value, error) {
			n, err := body.Len()
			if err != nil || !body.IsArray() || n == 0 {
				return value.Value{}, &assert.Error{Check: "store", Field: args.Text(0), Expected: "a non-empty array", Actual: body.Kind().String()}
			}
			last, _ := body.Index(n - 1)
			return fieldOf("store", last, args.Text(0))
		})
	})
	r.MustRegister(`the first array item field {string} should be greater than stored value {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(1))
		if err != nil {
			return err
		}
		body, err := sc.Body()
		if err != nil {
			return err
		}
		if err := assert.NotEmpty(body); err != nil {
			return err
		}
		first, _ := body.Index(0)
		return assert.GreaterThan(first, args.Text(0), stored)
	})
	r.MustRegister(`I store all array item field {string} values as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return storeFrom(sc, args.Text(1), func(body value.Value) (value.Value, error) {
			items, err := body.AsArray()
			if err != nil {
				return value.Value{}, &assert.Error{Check: "store", Expected: "a JSON array", Actual: body.Kind().String()}
			}
			out := make([]value.Value, 0, len(items))
			for _, item := range items {
				v, err := fieldOf("store", item, args.Text(0))
				if err != nil {
					return value.Value{}, err
				}
				out = append(out, v)
			}
			return value.ArrayValue(out), nil
		})
	})
	r.MustRegister(`the array should not contain any stored {string} values`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(0))
		if err != nil {
			return err
		}
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return assert.NoneIn(body, stored)
	})
	r.MustRegister(`I store the entire response as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return storeFrom(sc, args.Text(0), func(body value.Value) (value.Value, error) {
			return value.StringValue(body.Canonical()), nil
		})
	})
	r.MustRegister(`the response should match stored {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(0))
		if err != nil {
			return err
		}
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return assert.MatchesSnapshot(body, stored.String())
	})
	r.MustRegister(`I store the response array length as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		return storeFrom(sc, args.Text(0), func(body value.Value) (value.Value, error) {
			items, err := body.AsArray()
			if err != nil {
				return value.Value{}, &assert.Error{Check: "store", Expected: "a JSON array", Actual: body.Kind().String()}
			}
			return value.NumberValue(float64(len(items))), nil
		})
	})
	r.MustRegister(`the response array length should equal stored value {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(0))
		if err != nil {
			return err
		}
		n, err := stored.AsNumber()
		if err != nil {
			return fmt.Errorf("stored value %q: %w", args.Text(0), err)
		}
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return assert.ItemCount(body, int(n))
	})
}

func registerArraySteps(r *Registry) {
	r.MustRegister(`each item should have property {string}`, check(func(body value.Value, args Args) error {
		return assert.EachHasFields(body, []string{args.Text(0)})
	}))
	r.MustRegisterTable(`each array item should have required fields:`, check(func(body value.Value, args Args) error {
		return assert.EachHasFields(body, args.Table.Column())
	}))
	r.MustRegister(`each array item should have field {string} of type {string}`, check(func(body value.Value, args Args) error {
		return assert.EachFieldType(body, args.Text(0), args.Text(1))
	}))
	r.MustRegister(`each array item field {string} should be a positive number`, check(func(body value.Value, args Args) error {
		return assert.EachPositive(body, args.Text(0))
	}))
	r.MustRegister(`each array item field {string} should be a non-empty string`, check(func(body value.Value, args Args) error {
		return assert.EachNonEmptyString(body, args.Text(0))
	}))
	r.MustRegister(`each array item field {string} should be unique`, check(func(body value.Value, args Args) error {
		return assert.EachUnique(body, args.Text(0))
	}))
	r.MustRegister(`the response array should be sorted by {string} in {string} order`, check(func(body value.Value, args Args) error {
		order, err := assert.ParseOrder(args.Text(1))
		if err != nil {
			return err
		}
		return assert.Sorted(body, args.Text(0), order)
	}))
	r.MustRegister(`each array item should have valid foreign key {string} in resource {string}`, func(ctx context.Context, sc *scenario.Context, args Args) error {
		body, err := sc.Body()
		if err != nil {
			return err
		}
		return assert.ForeignKeys(ctx, body, args.Text(0), args.Text(1), sc.Status)
	})
	r.MustRegister(`all responses should have status code {int}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		batch := sc.Batch()
		if len(batch) == 0 {
			return scenario.ErrNoBatch
		}
		statuses := make([]int, len(batch))
		for i, resp := range batch {
			statuses[i] = resp.StatusCode
		}
		return assert.AllStatus(statuses, args.Int(0))
	})
	r.MustRegister(`all responses should have consistent data structure`, func(_ context.Context, sc *scenario.Context, _ Args) error {
		bodies, err := sc.BatchBodies()
		if err != nil {
			return err
		}
		return assert.ConsistentStructure(bodies)
	})
}

func registerHeaderSteps(r *Registry) {
	r.MustRegister(`the response header {string} should contain {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		return assert.HeaderContains(resp.Headers, args.Text(0), args.Text(1))
	})
	r.MustRegister(`the response should have header {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		return assert.HasHeader(resp.Headers, args.Text(0))
	})
}

func registerPerformanceSteps(r *Registry) {
	r.MustRegister(`the response time should be less than {int} ms`, func(_ context.Context, sc *scenario.Context, args Args) error {
		elapsed, err := sc.Elapsed()
		if err != nil {
			return err
		}
		return assert.ResponseTimeBelow(elapsed, args.Int(0))
	})
	r.MustRegister(`the response payload size should be less than {int} KB`, func(_ context.Context, sc *scenario.Context, args Args) error {
		resp, err := sc.Last()
		if err != nil {
			return err
		}
		return assert.PayloadBelowKB(resp.Size(), args.Int(0))
	})
	r.MustRegister(`I measure the response time as {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		elapsed, err := sc.Elapsed()
		if err != nil {
			return err
		}
		sc.Vars().Set(args.Text(0), value.NumberValue(float64(elapsed)/float64(time.Millisecond)))
		return nil
	})
	r.MustRegister(`the response time should be within {int}% of {string}`, func(_ context.Context, sc *scenario.Context, args Args) error {
		stored, err := sc.Vars().Get(args.Text(1))
		if err != nil {
			return err
		}
		ms, err := stored.AsNumber()
		if err != nil {
			return fmt.Errorf("stored value %q: %w", args.Text(1), err)
		}
		elapsed, err := sc.Elapsed()
		if err != nil {
			return err
		}
		return assert.WithinBaseline(elapsed, time.Duration(ms*float64(time.Millisecond)), args.Int(0))
	})
	r.MustRegister(`the p{int} response time of the batch should be less than {int} ms`, func(_ context.Context, sc *scenario.Context, args Args) error {
		batch := sc.Batch()
		if len(batch) == 0 {
			return scenario.ErrNoBatch
		}
		durations := make([]time.Duration, len(batch))
		for i, resp := range batch {
			durations[i] = resp.Duration
		}
		return assert.PercentileBelow(durations, args.Int(0), args.Int(1))
	})
}

func registerQualitySteps(r *Registry) {
	field := func(fn func(value.Value, string) error) Handler {
		return check(func(body value.Value, args Args) error { return fn(body, args.Text(0)) })
	}
	r.MustRegister(`the response field {string} should match email format`, field(assert.EmailFormat))
	r.MustRegister(`the response field {string} should be a non-empty string`, field(assert.NonEmptyString))
	r.MustRegister(`the response field {string} should not be an empty string`, field(assert.NotEmptyString))
	r.MustRegister(`the response field {string} should not have leading whitespace`, field(assert.NoLeadingWhitespace))
	r.MustRegister(`the response field {string} should not have trailing whitespace`, field(assert.NoTrailingWhitespace))
	r.MustRegister(`the response field {string} should not contain spaces`, field(assert.NoSpaces))
	r.MustRegister(`the response field {string} should not contain control characters`, field(assert.NoControlChars))
	r.MustRegister(`the response field {string} should have length greater than {int}`, check(func(body value.Value, args Args) error {
		return assert.LengthGreaterThan(body, args.Text(0), args.Int(1))
	}))
}

// storeFrom extracts a value from the current body and stores it under name.
func storeFrom(sc *scenario.Context, name string, extract func(value.Value) (value.Value, error)) error {
	body, err := sc.Body()
	if err != nil {
		return err
	}
	v, err := extract(body)
	if err != nil {
		return err
	}
	sc.Vars().Set(name, v)
	return nil
}

func fieldOf(check string, body value.Value, path string) (value.Value, error) {
	v, err := body.Path(path)
	if err != nil {
		return value.Value{}, &assert.Error{Check: check, Field: path, Expected: "field to exist", Actual: err.Error()}
	}
	return v, nil
}

func parseCodes(list string) ([]int, error) {
	var codes []int
	for _, part := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ' ' }) {
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid status code %q in %q", part, list)
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("no status codes in %q", list)
	}
	return codes, nil
}
