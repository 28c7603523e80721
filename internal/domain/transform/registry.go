package transform

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Func is a named pure transformation. Functions must not fail: a value a
// function cannot handle is returned unchanged.
type Func func(value any) any

// Registry is the closed table of custom transformations. Names that came
// in from mapping spreadsheets are looked up here and never executed as
// code; an unknown name leaves the value unchanged with a warning.
type Registry struct {
	funcs map[string]Func
}

// NewRegistry returns a registry preloaded with the standard functions.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[string]Func)}
	r.Register("normalize_whitespace", normalizeWhitespace)
	r.Register("negate", negate)
	r.Register("absolute", absolute)
	return r
}

// Register adds or replaces a named function. Registration happens at
// construction time only; the registry is read-only while the engine runs.
func (r *Registry) Register(name string, fn Func) {
	r.funcs[strings.ToLower(strings.TrimSpace(name))] = fn
}

// Lookup resolves a function by its case-insensitive name.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.funcs[strings.ToLower(strings.TrimSpace(name))]
	return fn, ok
}

func normalizeWhitespace(value any) any {
	s, ok := value.(string)
	if !ok {
		return value
	}
	return strings.Join(strings.Fields(s), " ")
}

func negate(value any) any {
	d, ok := toDecimal(value)
	if !ok {
		return value
	}
	return d.Neg()
}

func absolute(value any) any {
	d, ok := toDecimal(value)
	if !ok {
		return value
	}
	return d.Abs()
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	case float64:
		return decimal.NewFromFloat(v), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}
