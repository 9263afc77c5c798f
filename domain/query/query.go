// Package query describes store lookups as a list of equality filters and
// sort keys, independent of the database behind the store.
package query

import "fmt"

// Option adds a filter or sort key to a Query.
type Option func(*Query)

// Query is a conjunction of equality filters with an ordering.
type Query struct {
	filters []Filter
	orders  []string
}

// Build applies options in order.
func Build(options ...Option) Query {
	var q Query
	for _, opt := range options {
		opt(&q)
	}
	return q
}

// Filters returns a copy of the equality filters.
func (q Query) Filters() []Filter {
	return append([]Filter(nil), q.filters...)
}

// Orders returns the columns to sort by, ascending, in priority order.
func (q Query) Orders() []string {
	return append([]string(nil), q.orders...)
}

// Filter restricts Column to equal Value.
type Filter struct {
	Column string
	Value  any
}

func (f Filter) String() string {
	return fmt.Sprintf("%s = %v", f.Column, f.Value)
}

// WithID selects the record with the given id.
func WithID(id string) Option {
	return func(q *Query) {
		q.filters = append(q.filters, Filter{Column: "id", Value: id})
	}
}

// WithOwnerID selects the records owned by ownerID.
func WithOwnerID(ownerID string) Option {
	return func(q *Query) {
		q.filters = append(q.filters, Filter{Column: "owner_id", Value: ownerID})
	}
}

// WithOrderAsc sorts ascending by column, after any earlier sort keys.
func WithOrderAsc(column string) Option {
	return func(q *Query) {
		q.orders = append(q.orders, column)
	}
}
