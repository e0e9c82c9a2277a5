package core

import (
	"context"

	"graph_router/pkg"
)

// Node represents a single processing unit in the graph flow
type Node interface {
	Execute(ctx context.Context, input NodeInput) (NodeOutput, error)
	GetName() string
	GetType() NodeType
}

// NodeType defines the different types of nodes in the graph
type NodeType string

const (
	NodeTypeClassify NodeType = "classify"
	NodeTypeGenerate NodeType = "generate"
	NodeTypeExecute  NodeType = "execute"
)

// Keys nodes use in NodeOutput.Data
const (
	KeyCategory = "category"
	KeyCode     = "code"
	KeyOutput   = "output"
	KeyFailed   = "failed"
)

// CompleteNode ends the flow
const CompleteNode = "complete"

// NodeInput contains the input data for a node
type NodeInput struct {
	Query    string         `json:"query"`
	Category pkg.Category   `json:"category,omitempty"`
	Code     string         `json:"code,omitempty"`
	Metadata map[string]any `json:"metadata"`
}

// NodeOutput contains the output data from a node. Error is non-fatal: the
// flow continues along the edge whose condition matches Data.
type NodeOutput struct {
	Data     map[string]any `json:"data"`
	NextNode string         `json:"next_node,omitempty"`
	Error    error          `json:"error,omitempty"`
	Complete bool           `json:"complete"`
}

// Failed builds the output of a node that could not do its work
func Failed(err error) NodeOutput {
	return NodeOutput{Data: map[string]any{KeyFailed: true}, Error: err}
}

// GraphProcessor orchestrates the execution of nodes in a graph flow
type GraphProcessor interface {
	Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error)
	AddNode(node Node) error
	GetNode(name string) (Node, error)
	SetFlow(flow GraphFlow) error
}

// ProcessorInput is the main input for the graph processor
type ProcessorInput struct {
	Query string `json:"query"`
}

// ProcessorOutput is the main output from the graph processor
type ProcessorOutput struct {
	Query          string             `json:"query"`
	Category       pkg.Category       `json:"category,omitempty"`
	Code           string             `json:"code,omitempty"`
	Output         pkg.WorkflowOutput `json:"output"`
	ExecutionPath  []string           `json:"execution_path"`
	ProcessingTime int64              `json:"processing_time_ms"`
	Metadata       map[string]any     `json:"metadata,omitempty"`
}

// GraphFlow defines the execution flow between nodes
type GraphFlow struct {
	StartNode string                 `json:"start_node" yaml:"start_node"`
	Edges     map[string][]GraphEdge `json:"edges" yaml:"edges"` // node_name -> possible next nodes
}

// GraphEdge represents a connection between two nodes with conditions
type GraphEdge struct {
	To        string         `json:"to" yaml:"to"`
	Condition map[string]any `json:"condition,omitempty" yaml:"condition,omitempty"`
	Priority  int            `json:"priority" yaml:"priority"`
}

// DefaultFlow is classify → generate → execute; a failed node jumps to complete
func DefaultFlow() GraphFlow {
	return GraphFlow{
		StartNode: string(NodeTypeClassify),
		Edges: map[string][]GraphEdge{
			string(NodeTypeClassify): {
				{To: CompleteNode, Condition: map[string]any{KeyFailed: true}, Priority: 1},
				{To: string(NodeTypeGenerate), Priority: 2},
			},
			string(NodeTypeGenerate): {
				{To: CompleteNode, Condition: map[string]any{KeyFailed: true}, Priority: 1},
				{To: string(NodeTypeExecute), Priority: 2},
			},
			string(NodeTypeExecute): {
				{To: CompleteNode, Priority: 1},
			},
		},
	}
}
