// Package export mirrors a snapshot of the in-memory store into an external
// Neo4j instance so the contact graph can be explored with standard graph
// tooling. Mirroring is one-way and idempotent: nodes merge on (label, id)
// and connections merge as undirected CONNECTED_WITH relationships.
package export

import (
	"context"
	"fmt"
	"sort"

	"github.com/eljog/tracegraph/internal/graph"
	"github.com/eljog/tracegraph/internal/graphdb"
)

// Stats summarizes one export run.
type Stats struct {
	Nodes       int
	Connections int
}

// Exporter writes store snapshots through a graph client.
type Exporter struct {
	client graph.Client
	store  *graphdb.Store
}

// New creates an Exporter for the given client and store.
func New(client graph.Client, store *graphdb.Store) *Exporter {
	return &Exporter{
		client: client,
		store:  store,
	}
}

// Export mirrors every node and every connection currently in the store.
// Nodes are written before connections so both endpoints always exist when a
// relationship merges.
func (e *Exporter) Export(ctx context.Context) (Stats, error) {
	nodes, err := e.store.QueryExact("")
	if err != nil {
		return Stats{}, fmt.Errorf("snapshot store: %w", err)
	}

	// Stable order keeps runs reproducible and mirrors easy to diff.
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Label() != nodes[j].Label() {
			return nodes[i].Label() < nodes[j].Label()
		}
		return nodes[i].ID() < nodes[j].ID()
	})

	var stats Stats
	for _, node := range nodes {
		props := node.Properties()
		delete(props, graphdb.PropertyID)

		params := map[string]any{
			"id":    node.ID(),
			"props": toAnyMap(props),
		}
		if err := e.client.ExecuteWrite(ctx, mergeNodeCypher(node.Label()), params); err != nil {
			return stats, fmt.Errorf("merge node %s:%s: %w", node.Label(), node.ID(), err)
		}
		stats.Nodes++
	}

	seen := make(map[[2]string]struct{})
	for _, node := range nodes {
		for _, peer := range node.Connections() {
			key := connectionKey(node, peer)
			if _, done := seen[key]; done {
				continue
			}
			seen[key] = struct{}{}

			params := map[string]any{
				"id1": node.ID(),
				"id2": peer.ID(),
			}
			if err := e.client.ExecuteWrite(ctx, mergeConnectionCypher(node.Label(), peer.Label()), params); err != nil {
				return stats, fmt.Errorf("merge connection %s:%s—%s:%s: %w",
					node.Label(), node.ID(), peer.Label(), peer.ID(), err)
			}
			stats.Connections++
		}
	}

	return stats, nil
}

// connectionKey canonicalizes an undirected pair so each edge exports once.
func connectionKey(a, b *graphdb.Node) [2]string {
	ka := a.Label() + ":" + a.ID()
	kb := b.Label() + ":" + b.ID()
	if ka > kb {
		ka, kb = kb, ka
	}
	return [2]string{ka, kb}
}

// Labels cannot be parameterized in cypher, so they are embedded backticked.
func mergeNodeCypher(label string) string {
	return fmt.Sprintf("MERGE (n:`%s` {id: $id})\nSET n += $props", label)
}

func mergeConnectionCypher(label1, label2 string) string {
	return fmt.Sprintf(
		"MATCH (a:`%s` {id: $id1})\nMATCH (b:`%s` {id: $id2})\nMERGE (a)-[:CONNECTED_WITH]-(b)",
		label1, label2)
}

func toAnyMap(props map[string]string) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}
