package types

import "context"

// SchemaLookup resolves the decode type of a field of an entity type.
// It fails with *SchemaNotFoundError when either cannot be resolved.
type SchemaLookup interface {
	FieldType(ctx context.Context, entity string, field string) (FieldType, error)
}

// QueryPort fetches the page following the one identified by queryLocator.
// Failures are reported as *TransportError or *RemoteFault.
type QueryPort interface {
	QueryMore(ctx context.Context, queryLocator string) (*QueryPage, error)
}

// SchemaLookupFunc adapts a function to SchemaLookup.
type SchemaLookupFunc func(ctx context.Context, entity string, field string) (FieldType, error)

func (f SchemaLookupFunc) FieldType(ctx context.Context, entity string, field string) (FieldType, error) {
	return f(ctx, entity, field)
}

// QueryPortFunc adapts a function to QueryPort.
type QueryPortFunc func(ctx context.Context, queryLocator string) (*QueryPage, error)

func (f QueryPortFunc) QueryMore(ctx context.Context, queryLocator string) (*QueryPage, error) {
	return f(ctx, queryLocator)
}
