// Package steps maps scenario phrases onto handlers and runs scenarios one
// phrase at a time.
package steps

import (
	"context"
	"fmt"
	"regexp"
	"regexp/syntax"
	"sort"
	"strconv"
	"strings"
	"unicode"

	cucumberexpressions "github.com/cucumber/cucumber-expressions/go/v16"

	"github.com/blackcoderx/apicheck/pkg/core/scenario"
)

// Handler implements one phrase template.
type Handler func(ctx context.Context, sc *scenario.Context, args Args) error

// Args are the coerced placeholder values of a matched phrase, in order,
// plus the data table for table templates.
type Args struct {
	values []any
	Table  scenario.Table
}

func (a Args) Len() int { return len(a.values) }

// Int returns the i-th argument, which must come from {int}.
func (a Args) Int(i int) int { return a.values[i].(int) }

// Float returns the i-th argument from {float}, {double} or {int}.
func (a Args) Float(i int) float64 {
	if n, ok := a.values[i].(int); ok {
		return float64(n)
	}
	return a.values[i].(float64)
}

// Text returns the i-th argument from {string}, {word} or {}.
func (a Args) Text(i int) string { return a.values[i].(string) }

// Definition is one registered template.
type Definition struct {
	Template string
	// Table is set for templates that take a data table; they end with ":".
	Table bool

	handler Handler
	expr    cucumberexpressions.Expression
	prog    *syntax.Prog
	shape   string
}

// Registry holds the phrase templates of a run. Register everything before
// matching; the registry is read-only afterwards and may be shared.
type Registry struct {
	types *cucumberexpressions.ParameterTypeRegistry
	defs  []*Definition
}

func NewRegistry() *Registry {
	return &Registry{types: cucumberexpressions.NewParameterTypeRegistry()}
}

// Register adds a template without a data table.
func (r *Registry) Register(template string, h Handler) error {
	return r.add(template, false, h)
}

// RegisterTable adds a template that takes a data table.
func (r *Registry) RegisterTable(template string, h Handler) error {
	return r.add(template, true, h)
}

// MustRegister is Register that panics, for start-up wiring.
func (r *Registry) MustRegister(template string, h Handler) {
	if err := r.Register(template, h); err != nil {
		panic(err)
	}
}

// MustRegisterTable is RegisterTable that panics, for start-up wiring.
func (r *Registry) MustRegisterTable(template string, h Handler) {
	if err := r.RegisterTable(template, h); err != nil {
		panic(err)
	}
}

func (r *Registry) add(template string, table bool, h Handler) error {
	if h == nil {
		return fmt.Errorf("template %q: nil handler", template)
	}
	if strings.HasSuffix(template, ":") != table {
		if table {
			return fmt.Errorf("table template %q must end with \":\"", template)
		}
		return fmt.Errorf("template %q ends with \":\" but takes no table", template)
	}

	def, err := compile(template, r.types)
	if err != nil {
		return err
	}
	def.Table = table
	def.handler = h

	for _, other := range r.defs {
		if conflicts(def, other) {
			return fmt.Errorf("%w: %q overlaps %q", ErrAmbiguousStep, template, other.Template)
		}
	}
	r.defs = append(r.defs, def)
	return nil
}

// Definitions returns the registered templates sorted by text.
func (r *Registry) Definitions() []*Definition {
	out := append([]*Definition(nil), r.defs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Template < out[j].Template })
	return out
}

// Match resolves a phrase to its single definition and coerced arguments.
func (r *Registry) Match(phrase string) (*Definition, Args, error) {
	phrase = strings.TrimSpace(phrase)
	var found *Definition
	var found2 *Definition
	var args Args
	for _, def := range r.defs {
		if !def.expr.Regexp().MatchString(phrase) {
			continue
		}
		if found != nil {
			found2 = def
			break
		}
		values, err := def.arguments(phrase)
		if err != nil {
			return nil, Args{}, fmt.Errorf("step %q: %w", phrase, err)
		}
		found, args = def, Args{values: values}
	}
	if found2 != nil {
		return nil, Args{}, fmt.Errorf("%w: %q matches %q and %q", ErrAmbiguousStep, phrase, found.Template, found2.Template)
	}
	if found == nil {
		return nil, Args{}, &UndefinedStepError{Phrase: phrase}
	}
	return found, args, nil
}

// arguments extracts the typed parameter values. A transformer panics when a
// matched number overflows its type.
func (d *Definition) arguments(phrase string) (values []any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parameter cannot be converted: %v", r)
		}
	}()
	matched, err := d.expr.Match(phrase)
	if err != nil {
		return nil, err
	}
	values = make([]any, 0, len(matched))
	for _, arg := range matched {
		values = append(values, normalize(arg.GetValue()))
	}
	return values, nil
}

// normalize narrows transformer output to int, float64 and string.
func normalize(v any) any {
	switch t := v.(type) {
	case int8:
		return int(t)
	case int16:
		return int(t)
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float32:
		f, err := strconv.ParseFloat(strconv.FormatFloat(float64(t), 'g', -1, 32), 64)
		if err != nil {
			return float64(t)
		}
		return f
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case nil:
		return ""
	default:
		return v
	}
}

// compile parses a cucumber expression: {type} is a parameter, (text) is
// optional, a/b is an alternation and a backslash escapes the next rune.
func compile(template string, types *cucumberexpressions.ParameterTypeRegistry) (*Definition, error) {
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("empty step template")
	}
	expr, err := cucumberexpressions.NewCucumberExpression(template, types)
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", template, err)
	}
	prog, err := program(expr.Regexp())
	if err != nil {
		return nil, fmt.Errorf("template %q: %w", template, err)
	}
	return &Definition{
		Template: template,
		expr:     expr,
		prog:     prog,
		shape:    strings.Join(strings.Fields(template), " "),
	}, nil
}

func program(re *regexp.Regexp) (*syntax.Prog, error) {
	parsed, err := syntax.Parse(re.String(), syntax.Perl)
	if err != nil {
		return nil, err
	}
	return syntax.Compile(parsed.Simplify())
}

// conflicts reports whether two templates could claim the same phrase.
func conflicts(a, b *Definition) bool {
	return a.shape == b.shape || intersects(a.prog, b.prog)
}

// intersects reports whether some string is accepted by both programs. It
// walks the product of the two automata, pairing instructions that can
// consume a common rune.
func intersects(a, b *syntax.Prog) bool {
	type state struct{ a, b uint32 }
	seen := map[state]bool{}
	queue := []state{{uint32(a.Start), uint32(b.Start)}}
	begin := true
	for len(queue) > 0 {
		next := []state{}
		for _, st := range queue {
			if seen[st] {
				continue
			}
			seen[st] = true
			if accepts(a, st.a, begin) && accepts(b, st.b, begin) {
				return true
			}
			consumeB := closure(b, st.b, begin, false)
			for _, pa := range closure(a, st.a, begin, false) {
				for _, pb := range consumeB {
					ia, ib := &a.Inst[pa], &b.Inst[pb]
					if sharesRune(ia, ib) {
						next = append(next, state{ia.Out, ib.Out})
					}
				}
			}
		}
		queue = next
		begin = false
	}
	return false
}

func accepts(p *syntax.Prog, pc uint32, begin bool) bool {
	for _, q := range closure(p, pc, begin, true) {
		if p.Inst[q].Op == syntax.InstMatch {
			return true
		}
	}
	return false
}

// closure follows empty transitions from pc and returns the reachable
// instructions that consume a rune or match.
func closure(p *syntax.Prog, pc uint32, begin, end bool) []uint32 {
	var out []uint32
	seen := map[uint32]bool{}
	stack := []uint32{pc}
	for len(stack) > 0 {
		pc := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[pc] {
			continue
		}
		seen[pc] = true
		inst := &p.Inst[pc]
		switch inst.Op {
		case syntax.InstAlt, syntax.InstAltMatch:
			stack = append(stack, inst.Out, inst.Arg)
		case syntax.InstCapture, syntax.InstNop:
			stack = append(stack, inst.Out)
		case syntax.InstEmptyWidth:
			op := syntax.EmptyOp(inst.Arg)
			if op&(syntax.EmptyBeginText|syntax.EmptyBeginLine) != 0 && !begin {
				continue
			}
			if op&(syntax.EmptyEndText|syntax.EmptyEndLine) != 0 && !end {
				continue
			}
			stack = append(stack, inst.Out)
		case syntax.InstMatch, syntax.InstRune, syntax.InstRune1, syntax.InstRuneAny, syntax.InstRuneAnyNotNL:
			out = append(out, pc)
		}
	}
	return out
}

func sharesRune(a, b *syntax.Inst) bool {
	ra, rb := runeRanges(a), runeRanges(b)
	for i := 0; i+1 < len(ra); i += 2 {
		for j := 0; j+1 < len(rb); j += 2 {
			if ra[i] <= rb[j+1] && rb[j] <= ra[i+1] {
				return true
			}
		}
	}
	return false
}

// runeRanges returns lo/hi pairs; nil for instructions that consume nothing.
func runeRanges(inst *syntax.Inst) []rune {
	switch inst.Op {
	case syntax.InstRune:
		if len(inst.Rune) == 1 {
			return []rune{inst.Rune[0], inst.Rune[0]}
		}
		return inst.Rune
	case syntax.InstRune1:
		return []rune{inst.Rune[0], inst.Rune[0]}
	case syntax.InstRuneAny:
		return []rune{0, unicode.MaxRune}
	case syntax.InstRuneAnyNotNL:
		return []rune{0, '\n' - 1, '\n' + 1, unicode.MaxRune}
	default:
		return nil
	}
}
