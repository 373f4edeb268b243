package graphdb

import (
	"fmt"
	"strings"
)

// Clause is a single equality filter over one property.
type Clause struct {
	Key   string
	Value string
}

// Qualifier is the parsed form of the textual query syntax:
//
//	Label            all nodes carrying the label
//	Label:value      shorthand for Label:id=value
//	Label:key=value  exact property match
//
// Labels, property names and values are opaque strings; all comparisons are
// plain string equality.
type Qualifier struct {
	Label     string
	Key       string
	Value     string
	HasClause bool
}

// ParseQualifier parses a query qualifier. More than one ":" separator is a
// syntax error.
func ParseQualifier(qualifier string) (Qualifier, error) {
	parts := strings.Split(qualifier, ":")
	switch len(parts) {
	case 1:
		return Qualifier{Label: parts[0]}, nil
	case 2:
		clause, err := ParseClause(parts[1])
		if err != nil {
			return Qualifier{}, err
		}
		return Qualifier{
			Label:     parts[0],
			Key:       clause.Key,
			Value:     clause.Value,
			HasClause: true,
		}, nil
	default:
		return Qualifier{}, fmt.Errorf("%w: %q has more than one ':'", ErrQuerySyntax, qualifier)
	}
}

// ParseClause parses a filter clause of the form "key=value". A clause
// without "=" is an id match; more than one "=" is a syntax error.
func ParseClause(clause string) (Clause, error) {
	parts := strings.Split(clause, "=")
	switch len(parts) {
	case 1:
		return Clause{Key: PropertyID, Value: parts[0]}, nil
	case 2:
		return Clause{Key: parts[0], Value: parts[1]}, nil
	default:
		return Clause{}, fmt.Errorf("%w: %q has more than one '='", ErrQuerySyntax, clause)
	}
}
