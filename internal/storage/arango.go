package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"graph_router/internal/graph"
	"graph_router/internal/logger"
	"graph_router/pkg"

	driver "github.com/arangodb/go-driver"
	"github.com/arangodb/go-driver/http"
)

// ArangoConfig holds ArangoDB connection settings. Credentials come from the
// environment only.
type ArangoConfig struct {
	Host             string        `envconfig:"ARANGO_HOST" yaml:"host"`
	Username         string        `envconfig:"ARANGO_USERNAME" yaml:"username"`
	Password         string        `envconfig:"ARANGO_PASSWORD" yaml:"-"`
	Database         string        `envconfig:"ARANGO_DATABASE" yaml:"database"`
	GraphName        string        `envconfig:"GRAPH_NAME" yaml:"graph_name"`
	EdgeCollection   string        `envconfig:"ARANGO_EDGE_COLLECTION" yaml:"edge_collection"`
	VertexCollection string        `envconfig:"ARANGO_VERTEX_COLLECTION" yaml:"vertex_collection"`
	QueryTimeout     time.Duration `envconfig:"ARANGO_QUERY_TIMEOUT" yaml:"query_timeout"`
	RequireGraph     bool          `envconfig:"ARANGO_REQUIRE_GRAPH" yaml:"require_graph"`
}

// ArangoStore implements GraphStore on ArangoDB
type ArangoStore struct {
	db     driver.Database
	config ArangoConfig
}

const (
	edgeQuery   = "FOR e IN @@collection RETURN { source: e._from, target: e._to }"
	vertexQuery = "FOR v IN @@collection RETURN v._id"
	sampleQuery = "FOR d IN @@collection LIMIT 1 RETURN ATTRIBUTES(d, false, true)"
)

// NewArangoStore connects to ArangoDB and opens the configured database.
// Any failure here is a ConnectionError.
func NewArangoStore(ctx context.Context, config ArangoConfig) (*ArangoStore, error) {
	logger.Info().Str("host", config.Host).Str("username", config.Username).Msg("🔗 Connecting to ArangoDB")

	conn, err := http.NewConnection(http.ConnectionConfig{
		Endpoints: []string{config.Host},
	})
	if err != nil {
		return nil, pkg.Wrap(pkg.KindConnection, err, "failed to create connection")
	}

	client, err := driver.NewClient(driver.ClientConfig{
		Connection:     conn,
		Authentication: driver.BasicAuthentication(config.Username, config.Password),
	})
	if err != nil {
		return nil, pkg.Wrap(pkg.KindConnection, err, "failed to create client")
	}

	ctx, cancel := withTimeout(ctx, config.QueryTimeout)
	defer cancel()

	db, err := client.Database(ctx, config.Database)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindConnection, err, fmt.Sprintf("failed to open database %q", config.Database))
	}

	store := &ArangoStore{db: db, config: config}

	exists, err := db.GraphExists(ctx, config.GraphName)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindConnection, err, "failed to look up graph")
	}
	if err := checkGraph(config, exists); err != nil {
		return nil, err
	}
	return store, nil
}

// checkGraph handles a missing named graph: a ConnectionError when
// RequireGraph is set, otherwise the edge collection is read instead.
func checkGraph(config ArangoConfig, exists bool) error {
	if exists {
		logger.Info().Str("graph", config.GraphName).Msg("Graph connected successfully")
		return nil
	}
	if config.RequireGraph {
		return pkg.Errorf(pkg.KindConnection, "graph %q not found", config.GraphName)
	}
	logger.Warn().
		Str("graph", config.GraphName).
		Str("edge_collection", config.EdgeCollection).
		Msg("⚠️ Graph not found: reading the edge collection instead of stopping (set ARANGO_REQUIRE_GRAPH=true to stop)")
	return nil
}

// ExecuteQuery runs an AQL query
func (s *ArangoStore) ExecuteQuery(ctx context.Context, query string) ([]map[string]any, error) {
	return s.query(ctx, query, nil)
}

// FetchGraph reads every vertex and edge collection of the named graph, or the
// configured edge collection when the named graph does not exist. A graph with
// no nodes is reported as nil.
func (s *ArangoStore) FetchGraph(ctx context.Context) (*graph.Graph, error) {
	edgeCols, vertexCols, err := s.collections(ctx)
	if err != nil {
		return nil, err
	}
	if len(edgeCols) == 0 && len(vertexCols) == 0 {
		return nil, nil
	}

	g := graph.New()
	for _, col := range vertexCols {
		ids, err := s.query(ctx, vertexQuery, map[string]any{"@collection": col})
		if err != nil {
			return nil, err
		}
		for _, row := range ids {
			if id, ok := row["value"].(string); ok {
				g.AddNode(id)
			}
		}
	}
	for _, col := range edgeCols {
		rows, err := s.query(ctx, edgeQuery, map[string]any{"@collection": col})
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			source, _ := row["source"].(string)
			target, _ := row["target"].(string)
			if source == "" || target == "" {
				continue
			}
			g.AddEdge(source, target)
		}
	}

	if g.NodeCount() == 0 {
		return nil, nil
	}
	logger.Debug().Int("nodes", g.NodeCount()).Int("edges", g.EdgeCount()).Msg("Fetched graph from ArangoDB")
	return g, nil
}

// InsertEdges stores edges in the edge collection, creating it if needed
func (s *ArangoStore) InsertEdges(ctx context.Context, edges []pkg.EdgeRecord) error {
	ctx, cancel := withTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	name := s.config.EdgeCollection
	exists, err := s.db.CollectionExists(ctx, name)
	if err != nil {
		return pkg.Wrap(pkg.KindQuery, err, "failed to check edge collection")
	}

	var col driver.Collection
	if exists {
		col, err = s.db.Collection(ctx, name)
	} else {
		col, err = s.db.CreateCollection(ctx, name, &driver.CreateCollectionOptions{Type: driver.CollectionTypeEdge})
	}
	if err != nil {
		return pkg.Wrap(pkg.KindQuery, err, fmt.Sprintf("failed to open collection %q", name))
	}

	docs := EdgeDocuments(s.config.VertexCollection, edges)
	if len(docs) == 0 {
		return nil
	}
	_, errs, err := col.CreateDocuments(ctx, docs)
	if err != nil {
		return pkg.Wrap(pkg.KindQuery, err, "failed to insert edges")
	}
	if err := errs.FirstNonNil(); err != nil {
		return pkg.Wrap(pkg.KindQuery, err, "failed to insert edge")
	}

	logger.Info().Int("edges", len(docs)).Str("collection", name).Msg("💾 Stored edges")
	return nil
}

// EdgeDocuments converts records into ArangoDB edge documents. Endpoints that
// already carry a collection prefix are kept as they are.
func EdgeDocuments(vertexCollection string, edges []pkg.EdgeRecord) []map[string]any {
	docs := make([]map[string]any, 0, len(edges))
	for _, e := range edges {
		docs = append(docs, map[string]any{
			"_from": vertexID(vertexCollection, e.Source),
			"_to":   vertexID(vertexCollection, e.Target),
		})
	}
	return docs
}

func vertexID(collection, key string) string {
	if strings.Contains(key, "/") {
		return key
	}
	return collection + "/" + key
}

// Schema lists the non-system collections with the attribute keys of one
// sample document each
func (s *ArangoStore) Schema(ctx context.Context) ([]pkg.CollectionSchema, error) {
	listCtx, cancel := withTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	cols, err := s.db.Collections(listCtx)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindQuery, err, "failed to list collections")
	}

	schemas := []pkg.CollectionSchema{}
	for _, c := range cols {
		props, err := c.Properties(listCtx)
		if err != nil {
			return nil, pkg.Wrap(pkg.KindQuery, err, fmt.Sprintf("failed to read collection %q", c.Name()))
		}
		if props.IsSystem {
			continue
		}
		records, err := s.query(ctx, sampleQuery, map[string]any{"@collection": c.Name()})
		if err != nil {
			return nil, err
		}
		schemas = append(schemas, pkg.CollectionSchema{
			Name: c.Name(),
			Edge: props.Type == driver.CollectionTypeEdge,
			Keys: sampleKeys(records),
		})
	}
	sort.Slice(schemas, func(i, j int) bool { return schemas[i].Name < schemas[j].Name })

	logger.Debug().Int("collections", len(schemas)).Msg("📚 Collection schema loaded")
	return schemas, nil
}

// sampleKeys reads the ATTRIBUTES() array boxed by normalizeRecord
func sampleKeys(records []map[string]any) []string {
	if len(records) == 0 {
		return nil
	}
	attrs, _ := records[0]["value"].([]any)
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		if k, ok := a.(string); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *ArangoStore) collections(ctx context.Context) (edges []string, vertices []string, err error) {
	ctx, cancel := withTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	exists, err := s.db.GraphExists(ctx, s.config.GraphName)
	if err != nil {
		return nil, nil, pkg.Wrap(pkg.KindQuery, err, "failed to look up graph")
	}

	if exists {
		g, err := s.db.Graph(ctx, s.config.GraphName)
		if err != nil {
			return nil, nil, pkg.Wrap(pkg.KindQuery, err, "failed to open graph")
		}
		edgeCols, _, err := g.EdgeCollections(ctx)
		if err != nil {
			return nil, nil, pkg.Wrap(pkg.KindQuery, err, "failed to list edge collections")
		}
		vertexCols, err := g.VertexCollections(ctx)
		if err != nil {
			return nil, nil, pkg.Wrap(pkg.KindQuery, err, "failed to list vertex collections")
		}
		for _, c := range edgeCols {
			edges = append(edges, c.Name())
		}
		for _, c := range vertexCols {
			vertices = append(vertices, c.Name())
		}
		return edges, vertices, nil
	}

	found, err := s.db.CollectionExists(ctx, s.config.EdgeCollection)
	if err != nil {
		return nil, nil, pkg.Wrap(pkg.KindQuery, err, "failed to check edge collection")
	}
	if found {
		edges = append(edges, s.config.EdgeCollection)
	}
	return edges, nil, nil
}

func (s *ArangoStore) query(ctx context.Context, query string, bindVars map[string]any) ([]map[string]any, error) {
	ctx, cancel := withTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	cursor, err := s.db.Query(ctx, query, bindVars)
	if err != nil {
		return nil, pkg.Wrap(pkg.KindQuery, err, "error executing AQL query")
	}
	defer cursor.Close()

	records := []map[string]any{}
	for {
		var doc any
		_, err := cursor.ReadDocument(ctx, &doc)
		if driver.IsNoMoreDocuments(err) {
			break
		}
		if err != nil {
			return nil, pkg.Wrap(pkg.KindQuery, err, "error reading AQL result")
		}
		records = append(records, normalizeRecord(doc))
	}
	return records, nil
}

// normalizeRecord keeps documents as they are and boxes scalar rows
// (e.g. RETURN v._id) under "value" so every record has the same shape.
func normalizeRecord(doc any) map[string]any {
	if m, ok := doc.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": doc}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
