package entity

import (
	"encoding/json"
	"time"
)

// Document is a JSON document stored in a collection
type Document struct {
	Collection string
	ID         string
	Data       json.RawMessage
	UpdatedAt  time.Time
}

// Decode unmarshals the document data into v
func (d *Document) Decode(v any) error {
	return json.Unmarshal(d.Data, v)
}

// FilterOp is a comparison operator supported by document queries
type FilterOp string

const (
	OpEqual        FilterOp = "=="
	OpNotEqual     FilterOp = "!="
	OpLess         FilterOp = "<"
	OpLessEqual    FilterOp = "<="
	OpGreater      FilterOp = ">"
	OpGreaterEqual FilterOp = ">="
)

// Valid reports whether op is supported
func (op FilterOp) Valid() bool {
	switch op {
	case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return true
	}
	return false
}

// SQL returns the SQL comparison operator
func (op FilterOp) SQL() string {
	switch op {
	case OpEqual:
		return "="
	case OpNotEqual:
		return "<>"
	}
	return string(op)
}

// Filter compares a top-level string field of the document with Value
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Query selects documents of a collection
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}
