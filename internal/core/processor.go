package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"graph_router/internal/logger"
	"graph_router/pkg"
)

// maxSteps stops a flow whose edges loop forever
const maxSteps = 32

// DefaultGraphProcessor implements the GraphProcessor interface
type DefaultGraphProcessor struct {
	nodes map[string]Node
	flow  GraphFlow
}

// NewGraphProcessor creates a new graph processor
func NewGraphProcessor(flow GraphFlow) GraphProcessor {
	return &DefaultGraphProcessor{
		nodes: make(map[string]Node),
		flow:  flow,
	}
}

// Execute runs the graph flow with the given input
func (g *DefaultGraphProcessor) Execute(ctx context.Context, input ProcessorInput) (*ProcessorOutput, error) {
	startTime := time.Now()

	logger.Info().Str("query", input.Query).Msg("🚀 Starting graph execution")

	nodeInput := NodeInput{
		Query:    input.Query,
		Metadata: make(map[string]any),
	}

	output := &ProcessorOutput{
		Query:    input.Query,
		Metadata: make(map[string]any),
	}
	resultSet := false

	currentNode := g.flow.StartNode
	var executionPath []string

	for currentNode != "" && currentNode != CompleteNode {
		if len(executionPath) >= maxSteps {
			return nil, fmt.Errorf("flow exceeded %d steps at node %s", maxSteps, currentNode)
		}
		executionPath = append(executionPath, currentNode)
		logger.Debug().Str("node", currentNode).Msg("📍 Executing node")

		node, exists := g.nodes[currentNode]
		if !exists {
			return nil, fmt.Errorf("node not found: %s", currentNode)
		}

		nodeOutput, err := node.Execute(ctx, nodeInput)
		if err != nil {
			logger.Error().Err(err).Str("node", currentNode).Msg("❌ Error executing node")
			return nil, fmt.Errorf("error executing node %s: %w", currentNode, err)
		}

		// Handle node error (non-fatal)
		if nodeOutput.Error != nil {
			logger.Warn().Err(nodeOutput.Error).Str("node", currentNode).Msg("⚠️ Node returned error")
			output.Metadata["errors"] = append(getStringSlice(output.Metadata, "errors"), nodeOutput.Error.Error())
			if !resultSet {
				output.Output = pkg.WorkflowOutput{Result: pkg.Fail(nodeOutput.Error)}
				resultSet = true
			}
		}

		if g.processNodeOutput(currentNode, nodeOutput, output, &nodeInput) {
			resultSet = true
		}

		if nodeOutput.Complete {
			logger.Debug().Str("node", currentNode).Msg("✅ Graph execution completed at node")
			break
		}

		nextNode := nodeOutput.NextNode
		if nextNode == "" {
			nextNode = g.getNextNode(currentNode, nodeOutput)
		}
		currentNode = nextNode
	}

	processingTime := time.Since(startTime)
	output.ProcessingTime = processingTime.Milliseconds()
	output.ExecutionPath = executionPath

	logger.Info().
		Strs("path", executionPath).
		Dur("elapsed", processingTime).
		Msg("🏁 Graph execution completed")

	return output, nil
}

// AddNode adds a node to the processor
func (g *DefaultGraphProcessor) AddNode(node Node) error {
	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}

	nodeName := node.GetName()
	if nodeName == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	g.nodes[nodeName] = node
	logger.Debug().Str("node", nodeName).Str("type", string(node.GetType())).Msg("➕ Added node")

	return nil
}

// GetNode retrieves a node by name
func (g *DefaultGraphProcessor) GetNode(name string) (Node, error) {
	node, exists := g.nodes[name]
	if !exists {
		return nil, fmt.Errorf("node not found: %s", name)
	}
	return node, nil
}

// SetFlow sets the execution flow
func (g *DefaultGraphProcessor) SetFlow(flow GraphFlow) error {
	if flow.StartNode == "" {
		return fmt.Errorf("start node cannot be empty")
	}

	g.flow = flow
	logger.Debug().Str("start", flow.StartNode).Msg("🔀 Updated graph flow")

	return nil
}

// processNodeOutput merges node data into the output and the next node's
// input. It reports whether the node produced the workflow result.
func (g *DefaultGraphProcessor) processNodeOutput(nodeName string, nodeOutput NodeOutput, globalOutput *ProcessorOutput, nodeInput *NodeInput) bool {
	produced := false
	for key, value := range nodeOutput.Data {
		switch key {
		case KeyCategory:
			if category, ok := value.(pkg.Category); ok {
				globalOutput.Category = category
				nodeInput.Category = category
			}
		case KeyCode:
			if code, ok := value.(string); ok {
				globalOutput.Code = code
				nodeInput.Code = code
			}
		case KeyOutput:
			if out, ok := value.(pkg.WorkflowOutput); ok {
				globalOutput.Output = out
				produced = true
			}
		case KeyFailed:
			// routing only
		default:
			globalOutput.Metadata[fmt.Sprintf("%s_%s", nodeName, key)] = value
			nodeInput.Metadata[key] = value
		}
	}
	return produced
}

// getNextNode determines the next node based on flow edges and conditions
func (g *DefaultGraphProcessor) getNextNode(currentNode string, nodeOutput NodeOutput) string {
	edges, exists := g.flow.Edges[currentNode]
	if !exists || len(edges) == 0 {
		return CompleteNode
	}

	sorted := make([]GraphEdge, len(edges))
	copy(sorted, edges)
	// lower number = higher priority
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority < sorted[j].Priority })

	for _, edge := range sorted {
		if g.evaluateCondition(edge.Condition, nodeOutput) {
			return edge.To
		}
	}

	return CompleteNode
}

// evaluateCondition checks that every condition key equals the node's data
func (g *DefaultGraphProcessor) evaluateCondition(condition map[string]any, nodeOutput NodeOutput) bool {
	if len(condition) == 0 {
		return true
	}

	for key, expectedValue := range condition {
		actualValue, exists := nodeOutput.Data[key]
		if !exists || actualValue != expectedValue {
			return false
		}
	}

	return true
}

// Helper function to safely get string slice from metadata
func getStringSlice(metadata map[string]any, key string) []string {
	if value, exists := metadata[key]; exists {
		if slice, ok := value.([]string); ok {
			return slice
		}
	}
	return []string{}
}
