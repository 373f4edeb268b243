package graphdb

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// PropertyID is the reserved property holding a node's identifier. It is set
// once at creation time and can never be reassigned.
const PropertyID = "id"

// Node is a labeled entity in the graph. The label groups nodes the way a
// table groups rows in a relational database; properties are free-form
// string pairs; connections form an undirected edge set that is maintained
// symmetrically on both endpoints.
//
// Nodes are owned exclusively by the Store that created them and share its
// readers-writer lock: the exported accessors take the read lock, so a node
// handle obtained from a query stays safe to inspect while other goroutines
// mutate the store. Connections are non-owning back-references, so the
// connection graph may contain cycles without affecting node lifetime.
type Node struct {
	label string
	id    string

	// mu is the owning store's lock; it guards properties and connections.
	mu          *sync.RWMutex
	properties  map[string]string
	connections map[*Node]struct{}
}

func newNode(label, id string, mu *sync.RWMutex) *Node {
	return &Node{
		label:       label,
		id:          id,
		mu:          mu,
		properties:  map[string]string{PropertyID: id},
		connections: make(map[*Node]struct{}),
	}
}

// Label returns the node's category tag.
func (n *Node) Label() string { return n.label }

// ID returns the reserved id property.
func (n *Node) ID() string { return n.id }

// Property returns the value stored under name and whether it is set.
func (n *Node) Property(name string) (string, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, ok := n.properties[name]
	return v, ok
}

// Properties returns a copy of the node's property map.
func (n *Node) Properties() map[string]string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	props := make(map[string]string, len(n.properties))
	for k, v := range n.properties {
		props[k] = v
	}
	return props
}

// Connections returns the directly connected nodes in unspecified order.
func (n *Node) Connections() []*Node {
	n.mu.RLock()
	defer n.mu.RUnlock()

	peers := make([]*Node, 0, len(n.connections))
	for peer := range n.connections {
		peers = append(peers, peer)
	}
	return peers
}

// Degree returns the number of direct connections.
func (n *Node) Degree() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.connections)
}

// setProperty requires the store's write lock.
func (n *Node) setProperty(name, value string) error {
	if name == PropertyID {
		return fmt.Errorf("%w: property %q is reserved", ErrInvalidOperation, PropertyID)
	}
	n.properties[name] = value
	return nil
}

// connect adds the undirected edge n—peer. Both connection sets are updated,
// so the relation stays symmetric; set semantics make repeats a no-op.
// Requires the store's write lock.
func (n *Node) connect(peer *Node) error {
	if peer == n {
		return fmt.Errorf("%w: cannot connect %s:%s to itself", ErrInvalidOperation, n.label, n.id)
	}
	n.connections[peer] = struct{}{}
	peer.connections[n] = struct{}{}
	return nil
}

// matches reports whether the node's properties satisfy the equality clause.
// Requires the store's lock (read or write).
func (n *Node) matches(c Clause) bool {
	v, ok := n.properties[c.Key]
	return ok && v == c.Value
}

// String renders the node as Label:id plus its remaining properties sorted by
// name. Intended for logs and interactive output.
func (n *Node) String() string {
	n.mu.RLock()
	defer n.mu.RUnlock()

	keys := make([]string, 0, len(n.properties))
	for k := range n.properties {
		if k != PropertyID {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%s", n.label, n.id)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%s", k, n.properties[k])
	}
	return sb.String()
}
