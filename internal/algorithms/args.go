package algorithms

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"graph_router/pkg"

	"github.com/spf13/cast"
)

// ParamKind selects how a raw argument is coerced
type ParamKind string

const (
	KindFloat  ParamKind = "float"
	KindInt    ParamKind = "int"
	KindBool   ParamKind = "bool"
	KindString ParamKind = "string"
	KindNode   ParamKind = "node"
)

// Param describes one named argument of an operation
type Param struct {
	Name     string
	Kind     ParamKind
	Required bool
	Default  any
}

// Args holds coerced argument values keyed by name
type Args map[string]any

// Float returns a float argument
func (a Args) Float(name string) float64 { return cast.ToFloat64(a[name]) }

// Int returns an int argument
func (a Args) Int(name string) int { return cast.ToInt(a[name]) }

// Bool returns a bool argument
func (a Args) Bool(name string) bool { return cast.ToBool(a[name]) }

// String returns a string or node argument
func (a Args) String(name string) string { return cast.ToString(a[name]) }

// Has reports whether the argument was given or has a default
func (a Args) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Resolver maps a user-supplied node name to a graph label
type Resolver func(name string) (string, bool)

// Bind coerces raw arguments against params. Unknown names, bad values,
// unknown nodes and missing required arguments are ParameterErrors.
func Bind(op string, params []Param, raw map[string]string, resolve Resolver) (Args, error) {
	known := make(map[string]Param, len(params))
	for _, p := range params {
		known[p.Name] = p
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	args := make(Args, len(params))
	for _, name := range names {
		p, ok := known[name]
		if !ok {
			return nil, pkg.Errorf(pkg.KindParameter, "%s: unknown argument %q", op, name)
		}
		v, err := coerce(p, Unquote(raw[name]), resolve)
		if err != nil {
			return nil, pkg.Errorf(pkg.KindParameter, "%s: argument %q: %v", op, name, err)
		}
		args[name] = v
	}

	for _, p := range params {
		if _, ok := args[p.Name]; ok {
			continue
		}
		if p.Required {
			return nil, pkg.Errorf(pkg.KindParameter, "%s: missing required argument %q", op, p.Name)
		}
		if p.Default != nil {
			args[p.Name] = p.Default
		}
	}
	return args, nil
}

func coerce(p Param, value string, resolve Resolver) (any, error) {
	switch p.Kind {
	case KindFloat:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%q is not a finite number", value)
		}
		return f, nil
	case KindInt:
		return cast.ToIntE(value)
	case KindBool:
		return cast.ToBoolE(value)
	case KindNode:
		if resolve == nil {
			return value, nil
		}
		label, ok := resolve(value)
		if !ok {
			return nil, fmt.Errorf("node %q not found", value)
		}
		return label, nil
	}
	return value, nil
}

// Unquote strips one pair of matching single or double quotes
func Unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if first == last && (first == '"' || first == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}

// Signature renders "name(a, b)" for prompts and listings
func Signature(name string, params []Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
