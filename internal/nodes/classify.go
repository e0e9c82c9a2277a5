package nodes

import (
	"context"
	"strings"

	"graph_router/internal/core"
	"graph_router/internal/llm"
	"graph_router/internal/logger"
	"graph_router/internal/metrics"
	"graph_router/pkg"
)

// Classifier maps a free-text query to a routing category
type Classifier struct {
	completer llm.Completer
	metrics   *metrics.Metrics
}

// NewClassifier creates a classifier. m may be nil.
func NewClassifier(completer llm.Completer, m *metrics.Metrics) *Classifier {
	return &Classifier{completer: completer, metrics: m}
}

// Classify asks the model for a tag. A reply that is not one of the four tags
// after normalization is a ClassificationError; there is no default category.
func (c *Classifier) Classify(ctx context.Context, query string) (pkg.Category, error) {
	text, err := llm.RenderClassify(ctx, query)
	if err != nil {
		c.record("error")
		return "", pkg.Wrap(pkg.KindClassification, err, "classification prompt failed")
	}

	reply, err := c.completer.Complete(ctx, text)
	if err != nil {
		c.record("error")
		return "", pkg.Wrap(pkg.KindClassification, err, "classification failed")
	}

	category, err := pkg.ParseCategory(NormalizeTag(reply))
	if err != nil {
		c.record("error")
		return "", pkg.Errorf(pkg.KindClassification, "unrecognized category %q", reply)
	}

	c.record(string(category))
	logger.Info().Str("category", string(category)).Msg("🧭 Query classified")
	return category, nil
}

func (c *Classifier) record(label string) {
	if c.metrics != nil {
		c.metrics.RecordClassification(label)
	}
}

// NormalizeTag strips whitespace, surrounding quotes or backticks and a
// trailing period from a model reply
func NormalizeTag(reply string) string {
	tag := strings.TrimSpace(reply)
	for {
		before := tag
		tag = strings.TrimSuffix(tag, ".")
		tag = strings.Trim(tag, "'\"`")
		tag = strings.TrimSpace(tag)
		if tag == before {
			return tag
		}
	}
}

// ClassifyNode runs the classifier inside the workflow
type ClassifyNode struct {
	classifier *Classifier
}

// NewClassifyNode creates the classify node
func NewClassifyNode(classifier *Classifier) *ClassifyNode {
	return &ClassifyNode{classifier: classifier}
}

// Execute classifies input.Query
func (n *ClassifyNode) Execute(ctx context.Context, input core.NodeInput) (core.NodeOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return core.Failed(pkg.NewError(pkg.KindClassification, "query cannot be empty")), nil
	}

	category, err := n.classifier.Classify(ctx, input.Query)
	if err != nil {
		return core.Failed(err), nil
	}

	return core.NodeOutput{
		Data: map[string]any{core.KeyCategory: category},
	}, nil
}

// GetName returns the node name
func (n *ClassifyNode) GetName() string {
	return string(core.NodeTypeClassify)
}

// GetType returns the node type
func (n *ClassifyNode) GetType() core.NodeType {
	return core.NodeTypeClassify
}
