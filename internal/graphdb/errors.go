package graphdb

import "errors"

// Error taxonomy surfaced by the store. Callers branch with errors.Is; a
// failed operation never leaves a partial mutation behind, so the node set
// and every index stay consistent after an error.
var (
	// ErrDuplicateEntity reports an AddNode call for an existing (label, id) pair.
	ErrDuplicateEntity = errors.New("entity already exists")

	// ErrNotFound reports an id lookup that resolved no node.
	ErrNotFound = errors.New("entity not found")

	// ErrQuerySyntax reports a malformed qualifier or filter clause.
	ErrQuerySyntax = errors.New("invalid query syntax")

	// ErrInvalidOperation reports a mutation the data model forbids, such as
	// self-connections or reassigning the reserved id property.
	ErrInvalidOperation = errors.New("invalid operation")
)
