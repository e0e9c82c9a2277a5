package nodes

import (
	"context"

	"graph_router/internal/core"
	"graph_router/pkg"
)

// Dispatcher executes code for a category
type Dispatcher interface {
	Execute(ctx context.Context, category pkg.Category, code string) pkg.WorkflowOutput
}

// ExecuteNode hands the generated code to the dispatcher. Execution failures
// travel inside the workflow output, so this node never fails the flow.
type ExecuteNode struct {
	dispatcher Dispatcher
}

// NewExecuteNode creates the execute node
func NewExecuteNode(dispatcher Dispatcher) *ExecuteNode {
	return &ExecuteNode{dispatcher: dispatcher}
}

// Execute dispatches input.Code
func (n *ExecuteNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	output := n.dispatcher.Execute(ctx, input.Category, input.Code)
	return core.NodeOutput{
		Data:     map[string]any{core.KeyOutput: output},
		Complete: true,
	}, nil
}

// GetName returns the node name
func (n *ExecuteNode) GetName() string {
	return string(core.NodeTypeExecute)
}

// GetType returns the node type
func (n *ExecuteNode) GetType() core.NodeType {
	return core.NodeTypeExecute
}

// NewRouter wires the classify, generate and execute nodes into a processor
func NewRouter(classifier *Classifier, generator *Generator, dispatcher Dispatcher, flow core.GraphFlow) (core.GraphProcessor, error) {
	processor := core.NewGraphProcessor(flow)
	for _, node := range []core.Node{
		NewClassifyNode(classifier),
		NewGenerateNode(generator),
		NewExecuteNode(dispatcher),
	} {
		if err := processor.AddNode(node); err != nil {
			return nil, err
		}
	}
	return processor, nil
}
