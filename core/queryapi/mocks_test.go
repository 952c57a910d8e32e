package queryapi

import (
	"context"
	"strings"
	"testing"

	"github.com/sforcekit/sdk-go/core/types"
)

const testNamespace = "urn:partner.soap.sforce.com"

// mockQueryPort implements types.QueryPort for testing
type mockQueryPort struct {
	queryMoreFunc func(ctx context.Context, queryLocator string) (*types.QueryPage, error)
	pages         map[string]*types.QueryPage
	calls         []string
}

var _ types.QueryPort = (*mockQueryPort)(nil)

func (m *mockQueryPort) QueryMore(ctx context.Context, queryLocator string) (*types.QueryPage, error) {
	m.calls = append(m.calls, queryLocator)
	if m.queryMoreFunc != nil {
		return m.queryMoreFunc(ctx, queryLocator)
	}
	if page, ok := m.pages[queryLocator]; ok {
		return page, nil
	}
	return nil, &types.RemoteFault{Code: "INVALID_QUERY_LOCATOR", Message: "invalid query locator " + queryLocator}
}

// fakeSchema resolves field types from a map keyed by "Entity.Field".
type fakeSchema map[string]types.FieldType

func (s fakeSchema) FieldType(_ context.Context, entity string, field string) (types.FieldType, error) {
	for key, fieldType := range s {
		if strings.EqualFold(key, entity+"."+field) {
			return fieldType, nil
		}
	}
	return types.FieldTypeOther, &types.SchemaNotFoundError{Entity: entity, Field: field}
}

var accountSchema = fakeSchema{
	"Account.Name":          types.FieldTypeOther,
	"Account.CreatedDate":   types.FieldTypeDateTime,
	"Account.LastActivity":  types.FieldTypeDate,
	"Account.Logo":          types.FieldTypeBase64Binary,
	"Account.AnnualRevenue": types.FieldTypeCurrency,
	"Account.Description":   types.FieldTypeOther,
	"Contact.LastName":      types.FieldTypeOther,
	"Contact.Birthdate":     types.FieldTypeDate,
}

func newTestMaterializer(t *testing.T, port types.QueryPort, options ...DecoderOption) *Materializer {
	t.Helper()
	if port == nil {
		port = &mockQueryPort{}
	}
	return NewMaterializer(port, NewFieldDecoder(accountSchema, testNamespace, options...))
}

// account builds a raw Account record the way the partner transport delivers it.
func account(id string, fields string) types.RawRecord {
	record := types.RawRecord{
		types.FieldTypeKey: "Account",
		types.FieldID:      []string{id},
	}
	if fields != "" {
		record[types.FieldAny] = types.Fragment{{Name: "fields", Value: fields}}
	}
	return record
}

func ids(records []types.TypedRecord) []string {
	result := make([]string, len(records))
	for i, record := range records {
		result[i] = record.ID()
	}
	return result
}
