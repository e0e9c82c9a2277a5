package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"graph_router/pkg"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel answers with a fixed reply and records the last input
type fakeChatModel struct {
	reply string
	err   error
	block bool
	input []*schema.Message
}

func (f *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := f.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

func TestChatCompleter_Complete(t *testing.T) {
	ctx := context.Background()
	fake := &fakeChatModel{reply: "  Nx-Cu \n"}

	completer, err := NewChatCompleter(ctx, fake, time.Second)
	require.NoError(t, err)

	out, err := completer.Complete(ctx, "which nodes have {braces}?")
	require.NoError(t, err)
	assert.Equal(t, "Nx-Cu", out)

	require.Len(t, fake.input, 2)
	assert.Equal(t, schema.System, fake.input[0].Role)
	assert.Equal(t, schema.User, fake.input[1].Role)
	assert.Equal(t, "which nodes have {braces}?", fake.input[1].Content)
}

func TestChatCompleter_Errors(t *testing.T) {
	ctx := context.Background()

	completer, err := NewChatCompleter(ctx, &fakeChatModel{err: errors.New("rate limited")}, time.Second)
	require.NoError(t, err)
	_, err = completer.Complete(ctx, "q")
	assert.Error(t, err)

	completer, err = NewChatCompleter(ctx, &fakeChatModel{block: true}, 20*time.Millisecond)
	require.NoError(t, err)
	_, err = completer.Complete(ctx, "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRenderPrompts(t *testing.T) {
	ctx := context.Background()

	classify, err := RenderClassify(ctx, "How many nodes?")
	require.NoError(t, err)
	assert.Contains(t, classify, "Query: How many nodes?")

	pc := PromptContext{
		Graph:            "social",
		EdgeCollection:   "edges",
		VertexCollection: "nodes",
		Operations: map[pkg.Category][]string{
			pkg.CategoryNx:   {"pagerank(alpha, tol, max_iter)", "density()"},
			pkg.CategoryNxCu: {"bfs(start, depth_limit)"},
		},
	}

	aql, err := RenderGenerate(ctx, "list all edges", pkg.CategoryAQL, pc)
	require.NoError(t, err)
	assert.Contains(t, aql, `"social"`)
	assert.Contains(t, aql, "list all edges")
	assert.Contains(t, aql, "- (unavailable)")

	nx, err := RenderGenerate(ctx, "rank nodes", pkg.CategoryNx, pc)
	require.NoError(t, err)
	assert.Contains(t, nx, "NetworkX")
	assert.Contains(t, nx, "- pagerank(alpha, tol, max_iter)")
	assert.NotContains(t, nx, "bfs")

	cu, err := RenderGenerate(ctx, "walk from A", pkg.CategoryNxCu, pc)
	require.NoError(t, err)
	assert.Contains(t, cu, "cuGraph")
	assert.Contains(t, cu, "- bfs(start, depth_limit)")

	viz, err := RenderGenerate(ctx, "show me the graph", pkg.CategoryViz, pc)
	require.NoError(t, err)
	assert.Contains(t, viz, "density()")
}

func TestRenderKeepsBracesInQuery(t *testing.T) {
	ctx := context.Background()

	for _, query := range []string{"show me {graph}", "FOR d IN nodes RETURN {id: d._id}", "{", "}}"} {
		out, err := RenderClassify(ctx, query)
		require.NoError(t, err, query)
		assert.Contains(t, out, "Query: "+query)

		out, err = RenderGenerate(ctx, query, pkg.CategoryAQL, PromptContext{Graph: "social"})
		require.NoError(t, err, query)
		assert.Contains(t, out, query)
		assert.Contains(t, out, `"social"`)
	}
}

func TestRenderAQLSchema(t *testing.T) {
	pc := PromptContext{
		Graph:            "social",
		EdgeCollection:   "knows",
		VertexCollection: "people",
		Collections: []pkg.CollectionSchema{
			{Name: "people", Keys: []string{"_key", "age", "name"}},
			{Name: "knows", Edge: true, Keys: []string{"_from", "_to", "since"}},
			{Name: "empty"},
		},
	}

	out, err := RenderGenerate(context.Background(), "who is older than 30", pkg.CategoryAQL, pc)
	require.NoError(t, err)
	assert.Contains(t, out, "- people (document): _key, age, name")
	assert.Contains(t, out, "- knows (edge): _from, _to, since")
	assert.Contains(t, out, "- empty (document): no sample")
}

func TestNewChatModel_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewChatModel(ctx, Config{Provider: "mystery"})
	assert.Error(t, err)

	_, err = NewChatModel(ctx, Config{Provider: ProviderOpenAI, Model: "gpt-4o-mini"})
	assert.Error(t, err, "missing API key")

	m, err := NewChatModel(ctx, Config{Provider: ProviderOllama, Model: "llama3", Timeout: time.Second})
	require.NoError(t, err)
	assert.NotNil(t, m)
}
