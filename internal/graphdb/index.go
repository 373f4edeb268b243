package graphdb

// nodeSet is the unit of indexing; every index bucket is one of these.
type nodeSet map[*Node]struct{}

func (s nodeSet) add(n *Node)    { s[n] = struct{}{} }
func (s nodeSet) remove(n *Node) { delete(s, n) }

func (s nodeSet) contains(n *Node) bool {
	_, ok := s[n]
	return ok
}

func (s nodeSet) slice() []*Node {
	nodes := make([]*Node, 0, len(s))
	for n := range s {
		nodes = append(nodes, n)
	}
	return nodes
}

// indexStore maintains, for every (label, property name, property value)
// triple, the set of nodes matching the triple, plus one label-wide set per
// label so "all nodes of a label" is also a constant-time lookup.
//
// allSets is a flat list of every bucket ever created. Unindexing a node
// walks that list instead of the nested map, which keeps removal independent
// of how many distinct keys and values exist under each label.
type indexStore struct {
	byLabel  map[string]map[string]map[string]nodeSet
	labelAll map[string]nodeSet
	allSets  []nodeSet
}

func newIndexStore() *indexStore {
	return &indexStore{
		byLabel:  make(map[string]map[string]map[string]nodeSet),
		labelAll: make(map[string]nodeSet),
	}
}

// index adds node under (label, key, value) and under the label-wide set,
// creating missing map levels lazily. Re-adding an indexed node is a no-op.
func (ix *indexStore) index(label, key, value string, node *Node) {
	byKey, ok := ix.byLabel[label]
	if !ok {
		byKey = make(map[string]map[string]nodeSet)
		ix.byLabel[label] = byKey

		all := make(nodeSet)
		ix.labelAll[label] = all
		ix.allSets = append(ix.allSets, all)
	}

	byValue, ok := byKey[key]
	if !ok {
		byValue = make(map[string]nodeSet)
		byKey[key] = byValue
	}

	bucket, ok := byValue[value]
	if !ok {
		bucket = make(nodeSet)
		byValue[value] = bucket
		ix.allSets = append(ix.allSets, bucket)
	}

	bucket.add(node)
	ix.labelAll[label].add(node)
}

// unindex removes node from every bucket it may appear in.
func (ix *indexStore) unindex(node *Node) {
	for _, bucket := range ix.allSets {
		bucket.remove(node)
	}
}

// reindex drops the node from all buckets and re-derives its entries from
// the current property map. Called after every insert and property mutation
// so no stale entry can survive an update.
func (ix *indexStore) reindex(node *Node) {
	ix.unindex(node)
	for key, value := range node.properties {
		ix.index(node.label, key, value, node)
	}
}

// lookup returns the bucket for (label, key, value), or nil when the
// combination is unknown. Chained reads on missing map levels are safe.
func (ix *indexStore) lookup(label, key, value string) nodeSet {
	return ix.byLabel[label][key][value]
}

// lookupLabel returns all nodes carrying the label.
func (ix *indexStore) lookupLabel(label string) nodeSet {
	return ix.labelAll[label]
}
