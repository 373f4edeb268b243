// Package graphdb implements a fully indexed, in-memory graph database:
// labeled nodes with free-form string properties, undirected connections,
// exact-match lookups served from a three-level index, and bounded
// breadth-first traversal with per-level filtering.
//
// Queries are addressed through a compact textual syntax, for example
// "Person", "Person:123" or "Person:gender=Female"; see ParseQualifier.
package graphdb

import (
	"fmt"
	"sync"
)

// DefaultMaxDepth bounds GraphQuery when the caller passes a negative depth.
const DefaultMaxDepth = 100

// Store owns every node for the lifetime of the process. There is no delete:
// nodes persist once added, and only their properties and connections change.
//
// All operations are safe for concurrent use. Mutations take the write lock;
// queries take the read lock, which suits the read-heavy access pattern of
// the tracing workloads built on top. Nodes returned by queries share the
// store's lock, so inspecting them through their exported accessors is safe
// even while the store is being mutated.
type Store struct {
	mu    sync.RWMutex
	nodes nodeSet
	index *indexStore
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		nodes: make(nodeSet),
		index: newIndexStore(),
	}
}

// AddNode creates a node with the given label and id and indexes it. The
// (label, id) pair must be unique across the store; nodes are never created
// implicitly by Connect or SetProperty.
func (s *Store) AddNode(label, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupByID(label, id) != nil {
		return fmt.Errorf("%w: %s:%s", ErrDuplicateEntity, label, id)
	}

	node := newNode(label, id, &s.mu)
	s.nodes.add(node)
	s.index.reindex(node)
	return nil
}

// SetProperty resolves qualifier as Label:id and upserts one property on the
// node, reindexing it afterwards so the change is immediately queryable.
// Writing the reserved id property fails with ErrInvalidOperation.
func (s *Store) SetProperty(qualifier, name, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, err := s.queryByID(qualifier)
	if err != nil {
		return err
	}
	if err := node.setProperty(name, value); err != nil {
		return err
	}
	s.index.reindex(node)
	return nil
}

// Connect resolves both qualifiers as Label:id and adds an undirected edge
// between the two nodes. Connecting an already connected pair changes
// nothing; connecting a node to itself fails with ErrInvalidOperation.
func (s *Store) Connect(qualifier1, qualifier2 string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node1, err := s.queryByID(qualifier1)
	if err != nil {
		return err
	}
	node2, err := s.queryByID(qualifier2)
	if err != nil {
		return err
	}
	return node1.connect(node2)
}

// QueryByID resolves a Label:id qualifier to exactly one node. The (label,
// id) uniqueness invariant makes the result deterministic.
func (s *Store) QueryByID(qualifier string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryByID(qualifier)
}

// QueryExact returns all nodes matching the qualifier: "" returns every node
// in the store, "Label" all nodes carrying the label, "Label:key=value" an
// exact property match, and "Label:value" is shorthand for an id match. An
// unknown label or value yields an empty result, never an error; only
// malformed syntax fails.
func (s *Store) QueryExact(qualifier string) ([]*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if qualifier == "" {
		return s.nodes.slice(), nil
	}

	q, err := ParseQualifier(qualifier)
	if err != nil {
		return nil, err
	}
	if !q.HasClause {
		return s.index.lookupLabel(q.Label).slice(), nil
	}
	return s.index.lookup(q.Label, q.Key, q.Value).slice(), nil
}

// GraphQuery resolves the start node via a Label:id qualifier and walks its
// connection graph breadth-first, at most maxDepth levels deep. filter, when
// non-empty, is a single "key=value" clause applied to every level except
// level 0; the start node is always included. A negative maxDepth falls back
// to DefaultMaxDepth, while zero restricts the result to the start node.
func (s *Store) GraphQuery(qualifier, filter string, maxDepth int) (Levels, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, err := s.queryByID(qualifier)
	if err != nil {
		return nil, err
	}

	var clause *Clause
	if filter != "" {
		c, err := ParseClause(filter)
		if err != nil {
			return nil, err
		}
		clause = &c
	}

	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return bfs(start, clause, maxDepth), nil
}

// Len returns the number of nodes in the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

func (s *Store) queryByID(qualifier string) (*Node, error) {
	q, err := ParseQualifier(qualifier)
	if err != nil {
		return nil, err
	}
	if !q.HasClause || q.Key != PropertyID {
		return nil, fmt.Errorf("%w: id lookup expects %s:<id>", ErrQuerySyntax, q.Label)
	}

	node := s.lookupByID(q.Label, q.Value)
	if node == nil {
		return nil, fmt.Errorf("%w: no %s with id %q", ErrNotFound, q.Label, q.Value)
	}
	return node, nil
}

// lookupByID reads the id index bucket; at most one node can live there.
func (s *Store) lookupByID(label, id string) *Node {
	for node := range s.index.lookup(label, PropertyID, id) {
		return node
	}
	return nil
}
