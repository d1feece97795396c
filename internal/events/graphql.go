package events

import "time"

// GraphQLStart is emitted before executing a GraphQL operation.
type GraphQLStart struct {
	Query         string
	OperationName string
	OperationType string
}

// GraphQLFinish is emitted after executing a GraphQL operation.
type GraphQLFinish struct {
	Query         string
	OperationName string
	OperationType string
	Errors        []error
	Duration      time.Duration
}

// FieldRedacted is emitted each time a field is withheld from a session
// that may not read it. The field resolves to null without an error.
type FieldRedacted struct {
	Type     string
	Field    string
	Property string
	UserID   string
	Path     []any
}
