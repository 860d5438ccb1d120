// Package rewardfn implements reward functions on time: pure functions of
// (time, horizon) -> scalar, required by spec.md §3 to come in constant,
// linear, and tabular variants, each copy-able with a scalar weight
// applied and textually (de)serializable.
//
// Concrete variants are discriminated by an explicit Kind tag rather than
// reflection (spec.md §9 Design Notes): each variant writes its own tag
// in Serialize, and Parse dispatches on that tag with a plain switch.
package rewardfn

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind discriminates the concrete reward-function variants.
type Kind byte

const (
	KindConstant Kind = iota
	KindLinear
	KindTabular
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindLinear:
		return "linear"
	case KindTabular:
		return "tabular"
	default:
		return "unknown"
	}
}

// Func is the capability set every reward-function variant implements.
type Func interface {
	// Kind reports which concrete variant this Func is.
	Kind() Kind

	// Eval returns the reward at time t of a transition within a horizon
	// of h steps.
	Eval(t, h int) float64

	// CopyWeighted returns a copy of this Func with every output scaled
	// by weight.
	CopyWeighted(weight float64) Func

	// Serialize returns a canonical textual form that round-trips through
	// Parse.
	Serialize() string
}

// Constant is a reward function returning the same value at every time
// step.
type Constant struct {
	Value float64
}

func (c Constant) Kind() Kind                  { return KindConstant }
func (c Constant) Eval(t, h int) float64       { return c.Value }
func (c Constant) CopyWeighted(w float64) Func { return Constant{Value: c.Value * w} }
func (c Constant) Serialize() string           { return serialize(KindConstant, formatFloat(c.Value)) }

// Linear is a reward function of the form a*t + b.
type Linear struct {
	A, B float64
}

func (l Linear) Kind() Kind                  { return KindLinear }
func (l Linear) Eval(t, h int) float64       { return l.A*float64(t) + l.B }
func (l Linear) CopyWeighted(w float64) Func { return Linear{A: l.A * w, B: l.B * w} }
func (l Linear) Serialize() string {
	return serialize(KindLinear, formatFloat(l.A), formatFloat(l.B))
}

// Tabular is a reward function with one explicit value per time step.
// Eval(t, h) indexes Values[t]; if t is out of range, Eval returns 0.
type Tabular struct {
	Values []float64
}

func (tb Tabular) Kind() Kind { return KindTabular }

func (tb Tabular) Eval(t, h int) float64 {
	if t < 0 || t >= len(tb.Values) {
		return 0
	}
	return tb.Values[t]
}

func (tb Tabular) CopyWeighted(w float64) Func {
	out := make([]float64, len(tb.Values))
	for i, v := range tb.Values {
		out[i] = v * w
	}
	return Tabular{Values: out}
}

func (tb Tabular) Serialize() string {
	fields := make([]string, len(tb.Values))
	for i, v := range tb.Values {
		fields[i] = formatFloat(v)
	}
	return serialize(KindTabular, fields...)
}

// serialize produces the canonical wire form: "<kind>|<n>|f1|f2|...|fn",
// where n is an explicit count of the fields that follow. Spelling out the
// count (rather than trimming trailing separators, as the design notes
// call out as a style wart in the original) makes the format trivially
// round-trippable without any ambiguity about trailing empty fields.
func serialize(k Kind, fields ...string) string {
	parts := make([]string, 0, len(fields)+2)
	parts = append(parts, k.String(), strconv.Itoa(len(fields)))
	parts = append(parts, fields...)
	return strings.Join(parts, "|")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Parse parses the canonical textual form produced by Serialize back into
// a concrete Func.
func Parse(s string) (Func, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 2 {
		return nil, fmt.Errorf("rewardfn: Parse: malformed reward function %q", s)
	}
	kindStr, countStr, fields := parts[0], parts[1], parts[2:]
	count, err := strconv.Atoi(countStr)
	if err != nil || count != len(fields) {
		return nil, fmt.Errorf("rewardfn: Parse: field count mismatch in %q", s)
	}

	switch kindStr {
	case KindConstant.String():
		if count != 1 {
			return nil, fmt.Errorf("rewardfn: Parse: constant expects 1 field, got %d", count)
		}
		v, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("rewardfn: Parse: %w", err)
		}
		return Constant{Value: v}, nil

	case KindLinear.String():
		if count != 2 {
			return nil, fmt.Errorf("rewardfn: Parse: linear expects 2 fields, got %d", count)
		}
		a, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("rewardfn: Parse: %w", err)
		}
		b, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("rewardfn: Parse: %w", err)
		}
		return Linear{A: a, B: b}, nil

	case KindTabular.String():
		values := make([]float64, count)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("rewardfn: Parse: %w", err)
			}
			values[i] = v
		}
		return Tabular{Values: values}, nil

	default:
		return nil, fmt.Errorf("rewardfn: Parse: unknown kind %q", kindStr)
	}
}
