// Package graph provides a minimal client abstraction over an external
// property-graph database. It is used to mirror snapshots of the in-memory
// store into Neo4j for visualization tooling; the mirror is write-only and
// the in-memory store remains the system of record.
package graph

import (
	"context"
	"errors"
)

// Client is the contract the exporter needs from a graph database.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the graph URI is not provided.
var ErrMissingURI = errors.New("graph URI is required")
