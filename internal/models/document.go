package models

// Fields maps column names to values for inserts and partial updates
type Fields map[string]any

// Document is a record stored in one of the catalog collections
type Document interface {
	// Fields returns the writable columns of the document
	Fields() Fields
}
