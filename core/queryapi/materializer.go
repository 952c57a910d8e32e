package queryapi

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/logging"
	"github.com/sforcekit/sdk-go/core/types"
	"go.uber.org/zap"
)

// Converter post-processes a materialized record. Its result is what iterators report as
// the current record.
type Converter func(types.TypedRecord) (types.TypedRecord, error)

// Materializer turns raw transport records into typed records. It never modifies its
// input, so materializing the same raw record twice gives equal results.
type Materializer struct {
	port    types.QueryPort
	decoder *FieldDecoder
	logger  *zap.Logger
}

var _ valueMaterializer = (*Materializer)(nil)

type MaterializerOption func(*Materializer)

func WithMaterializerLogger(logger *zap.Logger) MaterializerOption {
	return func(m *Materializer) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewMaterializer creates a materializer decoding fragments with decoder. Nested query
// results are iterated through port.
//
// The decoder is bound to the returned materializer for nested values and must not be
// shared with another one.
func NewMaterializer(port types.QueryPort, decoder *FieldDecoder, options ...MaterializerOption) *Materializer {
	m := &Materializer{
		port:    port,
		decoder: decoder,
		logger:  logging.Logger,
	}
	for _, option := range options {
		option(m)
	}
	decoder.nested = m
	return m
}

// Materialize builds the typed form of raw.
//
// entity names the schema used for the extension fragment; when empty the record's own
// type field is used. The identifier is unwrapped from a singleton sequence, the fragment
// is expanded into named fields and nested values are materialized recursively. convert,
// when not nil, is applied last.
func (m *Materializer) Materialize(ctx context.Context, entity string, raw types.RawRecord, convert Converter) (types.TypedRecord, error) {
	if entity == "" {
		entity = raw.Type()
	}

	out := make(types.TypedRecord, len(raw))
	for name, value := range raw {
		switch name {
		case types.FieldAny:
			continue
		case types.FieldID:
			out[name] = normalizeID(value)
		default:
			v, err := m.MaterializeValue(ctx, value)
			if err != nil {
				return nil, err
			}
			out[name] = v
		}
	}

	if value, ok := raw[types.FieldAny]; ok {
		fragment, ok := value.(types.Fragment)
		if !ok {
			return nil, newDecodeError(entity, types.FieldAny, errors.Errorf("unexpected fragment of type %T", value))
		}
		for _, entry := range fragment {
			fields, err := m.decoder.Decode(ctx, entity, entry)
			if err != nil {
				return nil, err
			}
			for _, field := range fields {
				out[field.Name] = field.Value
			}
		}
	}

	if convert == nil {
		return out, nil
	}
	converted, err := convert(out)
	if err != nil {
		return nil, errors.Wrapf(err, "convert %s record", entity)
	}
	return converted, nil
}

// MaterializeValue materializes a single field value. A nested query result becomes a
// RecordIterator over it, a nested raw record is materialized with its own type, and any
// other value is returned unchanged.
func (m *Materializer) MaterializeValue(ctx context.Context, value any) (any, error) {
	switch v := value.(type) {
	case *types.QueryPage:
		return NewRecordIterator(m, v)
	case types.RawRecord:
		return m.Materialize(ctx, "", v, nil)
	default:
		return value, nil
	}
}

func normalizeID(value any) any {
	switch ids := value.(type) {
	case []string:
		if len(ids) == 0 {
			return nil
		}
		return ids[0]
	case []any:
		if len(ids) == 0 {
			return nil
		}
		return ids[0]
	default:
		return value
	}
}
