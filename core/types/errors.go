package types

import "fmt"

// SchemaNotFoundError is returned by a SchemaLookup that cannot resolve an entity type or
// one of its fields.
type SchemaNotFoundError struct {
	Entity string
	// Field is empty when the entity type itself is unknown.
	Field string
}

func (e *SchemaNotFoundError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema not found for entity %q", e.Entity)
	}
	return fmt.Sprintf("schema not found for field %q of entity %q", e.Field, e.Entity)
}

// RemoteFault is a fault reported by the remote API, e.g. INVALID_QUERY_LOCATOR.
type RemoteFault struct {
	Code    string
	Message string
}

func (e *RemoteFault) Error() string {
	return fmt.Sprintf("remote fault %s: %s", e.Code, e.Message)
}

// TransportError is a failure to reach the remote API or to read its response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
