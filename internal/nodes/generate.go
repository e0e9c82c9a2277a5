package nodes

import (
	"context"
	"strings"

	"graph_router/internal/core"
	"graph_router/internal/llm"
	"graph_router/internal/logger"
	"graph_router/pkg"
)

// Generator asks the model for category-specific code
type Generator struct {
	completer llm.Completer
	prompts   llm.PromptContext
}

// NewGenerator creates a generator; prompts carries graph names and the
// operation lists of both registries.
func NewGenerator(completer llm.Completer, prompts llm.PromptContext) *Generator {
	return &Generator{completer: completer, prompts: prompts}
}

// Generate returns the code text, trimmed and without a surrounding Markdown
// fence. The code itself is not validated here.
func (g *Generator) Generate(ctx context.Context, query string, category pkg.Category) (string, error) {
	if !category.Valid() {
		return "", pkg.Errorf(pkg.KindGeneration, "cannot generate code for category %q", category)
	}

	text, err := llm.RenderGenerate(ctx, query, category, g.prompts)
	if err != nil {
		return "", pkg.Wrap(pkg.KindGeneration, err, "generation prompt failed")
	}

	reply, err := g.completer.Complete(ctx, text)
	if err != nil {
		return "", pkg.Wrap(pkg.KindGeneration, err, "code generation failed")
	}

	code := StripCodeFence(reply)
	logger.Info().Str("category", string(category)).Str("code", code).Msg("🛠️ Code generated")
	return code, nil
}

// StripCodeFence removes a ```lang ... ``` wrapper if the whole reply is one
func StripCodeFence(reply string) string {
	code := strings.TrimSpace(reply)
	if !strings.HasPrefix(code, "```") || !strings.HasSuffix(code, "```") || len(code) < 6 {
		return code
	}
	code = strings.TrimSuffix(strings.TrimPrefix(code, "```"), "```")
	// drop the info string on the opening line
	if i := strings.IndexByte(code, '\n'); i >= 0 {
		first := strings.TrimSpace(code[:i])
		if first == "" || !strings.ContainsAny(first, " (=") {
			code = code[i+1:]
		}
	}
	return strings.TrimSpace(code)
}

// GenerateNode runs the generator inside the workflow
type GenerateNode struct {
	generator *Generator
}

// NewGenerateNode creates the generate node
func NewGenerateNode(generator *Generator) *GenerateNode {
	return &GenerateNode{generator: generator}
}

// Execute generates code for input.Category
func (n *GenerateNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	code, err := n.generator.Generate(ctx, input.Query, input.Category)
	if err != nil {
		return core.Failed(err), nil
	}
	return core.NodeOutput{
		Data: map[string]any{core.KeyCode: code},
	}, nil
}

// GetName returns the node name
func (n *GenerateNode) GetName() string {
	return string(core.NodeTypeGenerate)
}

// GetType returns the node type
func (n *GenerateNode) GetType() core.NodeType {
	return core.NodeTypeGenerate
}
