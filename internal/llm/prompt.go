package llm

import (
	"context"
	"fmt"
	"strings"

	"graph_router/pkg"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

// SystemPrompt frames every completion
const SystemPrompt = `You are a routing assistant for a graph analytics service backed by ArangoDB. Answer with exactly what is asked and nothing else.`

// Templates use FString syntax; a literal brace is written {{ or }}.

// ClassifyPrompt asks for one routing tag
const ClassifyPrompt = `Determine if this query requires an ArangoDB AQL query, a NetworkX graph algorithm, a cuGraph algorithm, or only a visualization of the graph.
Respond with exactly one of: AQL, Nx, Nx-Cu, Viz.
Query: {query}`

const aqlPrompt = `Generate a single ArangoDB AQL query for the following user query: {query}
The graph is named "{graph}". Edges live in the collection "{edges}" and vertices in "{vertices}".
Collections and sample attribute keys:
{schema}
Return only the AQL text.`

const operationPrompt = `Generate a single {category} operation call for the following user query: {query}
Use the form name(key=value, ...) with one of these operation names:
{operations}
Node arguments are vertex ids such as nodes/A. Return only the call.`

const vizPrompt = `The user wants to see the graph: {query}
Reply with "graph" to draw the whole graph, or with a single NetworkX operation call of the form name(key=value, ...) that returns a subgraph, using one of:
{operations}
Return only the reply.`

// PromptContext fills the placeholders of the generation templates
type PromptContext struct {
	Graph            string
	EdgeCollection   string
	VertexCollection string
	Collections      []pkg.CollectionSchema
	Operations       map[pkg.Category][]string
}

// RenderClassify fills the classification template
func RenderClassify(ctx context.Context, query string) (string, error) {
	return render(ctx, ClassifyPrompt, map[string]any{"query": query})
}

// RenderGenerate fills the generation template for a category
func RenderGenerate(ctx context.Context, query string, category pkg.Category, pc PromptContext) (string, error) {
	vars := map[string]any{"query": query}
	var template string
	switch category {
	case pkg.CategoryAQL:
		template = aqlPrompt
		vars["graph"] = pc.Graph
		vars["edges"] = pc.EdgeCollection
		vars["vertices"] = pc.VertexCollection
		vars["schema"] = formatSchema(pc.Collections)
	case pkg.CategoryViz:
		template = vizPrompt
		vars["operations"] = formatOperations(pc.Operations[pkg.CategoryNx])
	default:
		template = operationPrompt
		vars["category"] = categoryLabel(category)
		vars["operations"] = formatOperations(pc.Operations[category])
	}
	return render(ctx, template, vars)
}

func render(ctx context.Context, template string, vars map[string]any) (string, error) {
	msgs, err := prompt.FromMessages(schema.FString, schema.UserMessage(template)).Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	if len(msgs) != 1 {
		return "", fmt.Errorf("prompt rendered %d messages", len(msgs))
	}
	return msgs[0].Content, nil
}

func formatOperations(ops []string) string {
	if len(ops) == 0 {
		return "- (none)"
	}
	return "- " + strings.Join(ops, "\n- ")
}

func formatSchema(collections []pkg.CollectionSchema) string {
	if len(collections) == 0 {
		return "- (unavailable)"
	}
	lines := make([]string, 0, len(collections))
	for _, c := range collections {
		kind := "document"
		if c.Edge {
			kind = "edge"
		}
		keys := "no sample"
		if len(c.Keys) > 0 {
			keys = strings.Join(c.Keys, ", ")
		}
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", c.Name, kind, keys))
	}
	return strings.Join(lines, "\n")
}

func categoryLabel(category pkg.Category) string {
	switch category {
	case pkg.CategoryNx:
		return "NetworkX"
	case pkg.CategoryNxCu:
		return "cuGraph"
	}
	return string(category)
}
