// Package parser turns generated code of the form name(k1=v1, k2=v2) into a
// pkg.Operation. Values are kept verbatim; commas and parentheses inside values
// are not supported.
package parser

import (
	"strings"

	"graph_router/pkg"
)

// ParseOperation parses a single call expression.
func ParseOperation(code string) (pkg.Operation, error) {
	open := strings.Index(code, "(")
	if open < 0 {
		return pkg.Operation{}, pkg.Errorf(pkg.KindParse, "missing '(' in %q", code)
	}

	name := strings.TrimSpace(code[:open])
	if name == "" {
		return pkg.Operation{}, pkg.Errorf(pkg.KindParse, "missing operation name in %q", code)
	}

	params := strings.TrimSpace(code[open+1:])
	params = strings.TrimSpace(strings.TrimRight(params, ")"))

	op := pkg.Operation{
		Name:      name,
		Arguments: make(map[string]string),
	}
	if params == "" {
		return op, nil
	}

	for _, segment := range strings.Split(params, ",") {
		key, value, found := strings.Cut(segment, "=")
		if !found {
			return pkg.Operation{}, pkg.Errorf(pkg.KindParse, "parameter %q is not key=value", strings.TrimSpace(segment))
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return pkg.Operation{}, pkg.Errorf(pkg.KindParse, "parameter %q has an empty name", strings.TrimSpace(segment))
		}
		op.Arguments[key] = strings.TrimSpace(value)
	}

	return op, nil
}
