package cmd

import (
	"fmt"
	"io"
	"strings"

	"graph_router/pkg"

	"github.com/fatih/color"
	"github.com/spf13/cast"
)

// runView is what the CLI prints for one routed query
type runView struct {
	ID       string             `json:"id,omitempty"`
	Query    string             `json:"query,omitempty"`
	Category pkg.Category       `json:"category,omitempty"`
	Code     string             `json:"code,omitempty"`
	Output   pkg.WorkflowOutput `json:"output"`
	Path     []string           `json:"execution_path,omitempty"`
}

func printJSON(w io.Writer, v any) error {
	data, err := pkg.JSON.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func printRun(w io.Writer, v runView) error {
	if jsonOutput {
		return printJSON(w, v)
	}

	label := color.New(color.FgWhite, color.Bold)
	if v.Query != "" {
		label.Fprint(w, "Query:    ")
		fmt.Fprintln(w, v.Query)
	}
	if v.Category != "" {
		label.Fprint(w, "Category: ")
		color.New(color.FgCyan).Fprintln(w, v.Category)
	}
	if v.Code != "" {
		label.Fprint(w, "Code:     ")
		fmt.Fprintln(w, v.Code)
	}

	result := v.Output.Result
	if result.IsOk() {
		label.Fprint(w, "Result:   ")
		color.New(color.FgGreen).Fprintln(w, formatValue(result.Value()))
	} else {
		label.Fprint(w, "Error:    ")
		color.New(color.FgRed).Fprintln(w, result.Err().Error())
	}

	if vis := v.Output.Visualization; vis != nil {
		label.Fprint(w, "Graph:    ")
		fmt.Fprintln(w, formatOutcome(*vis))
	}
	if v.ID != "" {
		color.New(color.FgHiBlack).Fprintf(w, "run %s\n", v.ID)
	}
	return nil
}

// formatValue renders a result value on one line
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case pkg.VisualizationOutcome:
		return formatOutcome(v)
	}
	if s, err := cast.ToStringE(value); err == nil {
		return s
	}
	data, err := pkg.JSON.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}

func formatOutcome(o pkg.VisualizationOutcome) string {
	parts := []string{o.Message}
	if o.Path != "" {
		parts = append(parts, o.Path)
	}
	if o.Error != "" {
		parts = append(parts, o.Error)
	}
	return strings.Join(parts, " ")
}
