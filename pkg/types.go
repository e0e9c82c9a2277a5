package pkg

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Core types shared by the router, the invokers and the CLI

// Category is the routing tag produced by the intent classifier
type Category string

const (
	CategoryAQL  Category = "AQL"  // graph database query
	CategoryNx   Category = "Nx"   // in-memory algorithm
	CategoryNxCu Category = "NxCu" // accelerated algorithm
	CategoryViz  Category = "Viz"  // visualization only
)

// Categories lists every valid category in routing order
var Categories = []Category{CategoryAQL, CategoryNx, CategoryNxCu, CategoryViz}

// ParseCategory maps a tag to a Category. "Nx-Cu" is the spelling used in the
// classification prompt and is accepted as an alias of NxCu.
func ParseCategory(tag string) (Category, error) {
	switch strings.TrimSpace(tag) {
	case "AQL":
		return CategoryAQL, nil
	case "Nx":
		return CategoryNx, nil
	case "NxCu", "Nx-Cu":
		return CategoryNxCu, nil
	case "Viz":
		return CategoryViz, nil
	}
	return "", NewError(KindInvalidCategory, fmt.Sprintf("invalid category %q", tag))
}

// Valid reports whether c is one of the four routing tags
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Visualized reports whether results of this category get a visualization attached
func (c Category) Visualized() bool {
	return c == CategoryAQL || c == CategoryNx || c == CategoryNxCu
}

// Operation is a parsed `name(key=value, ...)` invocation. Argument values are
// kept as raw text; invokers coerce them per operation signature.
type Operation struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// String renders the operation back into call form with sorted arguments
func (o Operation) String() string {
	keys := make([]string, 0, len(o.Arguments))
	for k := range o.Arguments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+o.Arguments[k])
	}
	return o.Name + "(" + strings.Join(parts, ", ") + ")"
}

// ExecutionResult is either Ok(value) or Fail(err), never both
type ExecutionResult struct {
	value any
	err   *Error
}

// Ok wraps a successful value
func Ok(value any) ExecutionResult {
	return ExecutionResult{value: value}
}

// Fail wraps an error. Errors that are not *Error are classified as
// AlgorithmExecutionError so callers always see a kind.
func Fail(err error) ExecutionResult {
	if err == nil {
		err = NewError(KindAlgorithmExecution, "unknown failure")
	}
	return ExecutionResult{err: AsError(err, KindAlgorithmExecution)}
}

// IsOk reports whether the result carries a value
func (r ExecutionResult) IsOk() bool {
	return r.err == nil
}

// Value returns the successful value, nil for failures
func (r ExecutionResult) Value() any {
	return r.value
}

// Err returns the failure, nil for successes
func (r ExecutionResult) Err() *Error {
	return r.err
}

// MarshalJSON encodes the union as {"ok":true,"value":...} or {"ok":false,"error":{...}}
func (r ExecutionResult) MarshalJSON() ([]byte, error) {
	if r.err != nil {
		return marshalJSON(map[string]any{"ok": false, "error": r.err})
	}
	return marshalJSON(map[string]any{"ok": true, "value": r.value})
}

// UnmarshalJSON decodes the union; values come back as generic JSON data
func (r *ExecutionResult) UnmarshalJSON(data []byte) error {
	var raw struct {
		OK    bool   `json:"ok"`
		Value any    `json:"value"`
		Error *Error `json:"error"`
	}
	if err := unmarshalJSON(data, &raw); err != nil {
		return err
	}
	if !raw.OK {
		if raw.Error == nil {
			raw.Error = NewError(KindAlgorithmExecution, "unknown failure")
		}
		*r = ExecutionResult{err: raw.Error}
		return nil
	}
	*r = ExecutionResult{value: raw.Value}
	return nil
}

// VisualizationOutcome reports what the visualizer did with a result
type VisualizationOutcome struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Visualizer messages
const (
	MessageRendered     = "rendered"
	MessageNotAGraph    = "not a graph; nothing rendered"
	MessageEmptyGraph   = "empty graph; nothing rendered"
	MessageRenderFailed = "visualization failed"
)

// WorkflowOutput is the dispatcher response. Visualization is only attached
// for the AQL, Nx and NxCu categories.
type WorkflowOutput struct {
	Result        ExecutionResult       `json:"result"`
	Visualization *VisualizationOutcome `json:"visualization,omitempty"`
}

// EdgeRecord is a source/target pair written to the graph store
type EdgeRecord struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CollectionSchema describes one store collection: its kind and the
// attribute names of a sample document
type CollectionSchema struct {
	Name string   `json:"name"`
	Edge bool     `json:"edge"`
	Keys []string `json:"keys"`
}

// RunRecord is one routed query as kept by the history store
type RunRecord struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	Category   Category       `json:"category,omitempty"`
	Code       string         `json:"code,omitempty"`
	Output     WorkflowOutput `json:"output"`
	DurationMS int64          `json:"duration_ms"`
	CreatedAt  time.Time      `json:"created_at"`
}
