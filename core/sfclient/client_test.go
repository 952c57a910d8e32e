package sfclient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/sforcekit/sdk-go/core/queryapi"
	"github.com/sforcekit/sdk-go/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTransport implements Transport interface for testing
type mockTransport struct {
	queryFunc     func(ctx context.Context, query string) (*types.QueryPage, error)
	queryAllFunc  func(ctx context.Context, query string) (*types.QueryPage, error)
	queryMoreFunc func(ctx context.Context, queryLocator string) (*types.QueryPage, error)
	describeFunc  func(ctx context.Context, name string) (*types.SObjectDescribe, error)
	describeCalls int
}

// Verify mockTransport implements Transport interface at compile time
var _ Transport = (*mockTransport)(nil)

func (m *mockTransport) Query(ctx context.Context, query string) (*types.QueryPage, error) {
	if m.queryFunc != nil {
		return m.queryFunc(ctx, query)
	}
	return types.NewQueryPage(nil, 0, "", true), nil
}

func (m *mockTransport) QueryAll(ctx context.Context, query string) (*types.QueryPage, error) {
	if m.queryAllFunc != nil {
		return m.queryAllFunc(ctx, query)
	}
	return types.NewQueryPage(nil, 0, "", true), nil
}

func (m *mockTransport) QueryMore(ctx context.Context, queryLocator string) (*types.QueryPage, error) {
	if m.queryMoreFunc != nil {
		return m.queryMoreFunc(ctx, queryLocator)
	}
	return nil, &types.RemoteFault{Code: "INVALID_QUERY_LOCATOR", Message: queryLocator}
}

func (m *mockTransport) DescribeSObject(ctx context.Context, name string) (*types.SObjectDescribe, error) {
	m.describeCalls++
	if m.describeFunc != nil {
		return m.describeFunc(ctx, name)
	}
	return nil, nil
}

func contactDescribe(_ context.Context, name string) (*types.SObjectDescribe, error) {
	if name != "Contact" {
		return nil, nil
	}
	return &types.SObjectDescribe{Name: "Contact", Fields: []types.FieldDescribe{
		{Name: "LastName", Type: "string"},
		{Name: "Birthdate", Type: "date"},
		{Name: "LastModifiedDate", Type: "datetime"},
		{Name: "Score__c", Type: "double"},
	}}, nil
}

func contact(id, fields string) types.RawRecord {
	return types.RawRecord{
		types.FieldTypeKey: "Contact",
		types.FieldID:      []string{id, id},
		types.FieldAny:     types.Fragment{{Name: "fields", Value: fields}},
	}
}

// newContactsTransport serves two pages of contacts.
func newContactsTransport() *mockTransport {
	return &mockTransport{
		queryFunc: func(_ context.Context, query string) (*types.QueryPage, error) {
			return types.NewQueryPage([]types.RawRecord{
				contact("003A", `<sf:LastName>Doe</sf:LastName><sf:LastModifiedDate>2020-01-02T03:04:05Z</sf:LastModifiedDate>`),
				contact("003B", `<sf:LastName>Roe</sf:LastName><sf:LastModifiedDate xsi:nil="true"/>`),
			}, 3, "01gXX-2", false), nil
		},
		queryMoreFunc: func(_ context.Context, queryLocator string) (*types.QueryPage, error) {
			if queryLocator != "01gXX-2" {
				return nil, &types.RemoteFault{Code: "INVALID_QUERY_LOCATOR", Message: queryLocator}
			}
			return types.NewQueryPage([]types.RawRecord{
				contact("003C", `<sf:LastName>Poe</sf:LastName><sf:Score__c>4.5</sf:Score__c>`),
			}, 3, "", true), nil
		},
		describeFunc: contactDescribe,
	}
}

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name      string
		options   []Option
		expectErr bool
	}{
		{name: "missing transport", options: nil, expectErr: true},
		{name: "partner by default", options: []Option{WithTransport(&mockTransport{})}},
		{name: "enterprise", options: []Option{WithTransport(&mockTransport{}), WithNamespace(NamespaceEnterprise)}},
		{name: "unsupported namespace", options: []Option{WithTransport(&mockTransport{}), WithNamespace("urn:tooling.soap.sforce.com")}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.options...)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, client.Materializer())
		})
	}
}

func TestClient_QueryIteratesAllPages(t *testing.T) {
	transport := newContactsTransport()
	client, err := NewClient(WithTransport(transport))
	require.NoError(t, err)

	it, err := client.Query(context.Background(), "SELECT Id, LastName, LastModifiedDate FROM Contact")
	require.NoError(t, err)
	assert.Equal(t, 3, it.Count())

	var records []types.TypedRecord
	require.NoError(t, it.ForEach(context.Background(), func(_ int, record types.TypedRecord) error {
		records = append(records, record)
		return nil
	}))
	require.Len(t, records, 3)

	assert.Equal(t, "003A", records[0].ID())
	assert.Equal(t, "Doe", records[0].String("LastName"))
	assert.Equal(t, time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC), records[0]["LastModifiedDate"])
	assert.True(t, records[1].IsNull("LastModifiedDate"))
	assert.Equal(t, "4.5", records[2]["Score__c"])

	// Contact was described once for all records
	assert.Equal(t, 1, transport.describeCalls)
}

func TestClient_DecimalNumbersAndConverter(t *testing.T) {
	type contactRow struct {
		ID       string `sf:"Id"`
		LastName string
		Score    *apd.Decimal `sf:"Score__c"`
	}

	var rows []contactRow
	collect := func(record types.TypedRecord) (types.TypedRecord, error) {
		row, err := queryapi.ScanRecord[contactRow](record)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
		return record, nil
	}

	client, err := NewClient(
		WithTransport(newContactsTransport()),
		WithDecimalNumbers(true),
		WithConverter(collect),
	)
	require.NoError(t, err)

	it, err := client.Query(context.Background(), "SELECT Id, LastName, Score__c FROM Contact")
	require.NoError(t, err)
	require.NoError(t, it.ForEach(context.Background(), func(int, types.TypedRecord) error { return nil }))

	require.Len(t, rows, 3)
	assert.Equal(t, "Poe", rows[2].LastName)
	require.NotNil(t, rows[2].Score)
	assert.Equal(t, "4.5", rows[2].Score.String())
	assert.Nil(t, rows[0].Score)
}

func TestClient_QueryAll(t *testing.T) {
	var gotQuery string
	transport := &mockTransport{queryAllFunc: func(_ context.Context, query string) (*types.QueryPage, error) {
		gotQuery = query
		return types.NewQueryPage([]types.RawRecord{{types.FieldID: []string{"001D"}, "IsDeleted": "true"}}, 1, "", true), nil
	}}
	client, err := NewClient(WithTransport(transport))
	require.NoError(t, err)

	it, err := client.QueryAll(context.Background(), "SELECT Id, IsDeleted FROM Account")
	require.NoError(t, err)
	assert.Equal(t, "SELECT Id, IsDeleted FROM Account", gotQuery)

	record, ok, err := it.First(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "001D", record.ID())
}

func TestClient_Errors(t *testing.T) {
	fault := &types.RemoteFault{Code: "MALFORMED_QUERY", Message: "unexpected token"}
	transport := newContactsTransport()
	transport.queryFunc = func(context.Context, string) (*types.QueryPage, error) {
		return nil, fault
	}
	client, err := NewClient(WithTransport(transport))
	require.NoError(t, err)

	_, err = client.Query(context.Background(), "SELEC")
	var remoteFault *types.RemoteFault
	require.True(t, errors.As(err, &remoteFault))
	assert.Equal(t, "MALFORMED_QUERY", remoteFault.Code)

	_, err = client.QueryMore(context.Background(), "bogus")
	require.True(t, errors.As(err, &remoteFault))
	assert.Equal(t, "INVALID_QUERY_LOCATOR", remoteFault.Code)

	transport.queryFunc = func(context.Context, string) (*types.QueryPage, error) {
		return &types.QueryPage{TotalSize: 10}, nil
	}
	_, err = client.Query(context.Background(), "SELECT Id FROM Contact")
	assert.Error(t, err, "a page without locator that is not done is rejected")
}

func TestClient_DescribeSObject(t *testing.T) {
	transport := newContactsTransport()
	client, err := NewClient(WithTransport(transport))
	require.NoError(t, err)

	describe, err := client.DescribeSObject(context.Background(), "Contact")
	require.NoError(t, err)
	assert.Equal(t, "Contact", describe.Name)

	_, err = client.DescribeSObject(context.Background(), "contact")
	require.NoError(t, err)
	assert.Equal(t, 1, transport.describeCalls)

	_, err = client.DescribeSObject(context.Background(), "Nope")
	var notFound *types.SchemaNotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestClient_WithSchemaLookup(t *testing.T) {
	transport := newContactsTransport()
	lookup := types.SchemaLookupFunc(func(context.Context, string, string) (types.FieldType, error) {
		return types.FieldTypeOther, nil
	})
	client, err := NewClient(WithTransport(transport), WithSchemaLookup(lookup))
	require.NoError(t, err)

	it, err := client.Query(context.Background(), "SELECT Id FROM Contact")
	require.NoError(t, err)
	record, ok, err := it.First(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2020-01-02T03:04:05Z", record["LastModifiedDate"])
	assert.Zero(t, transport.describeCalls)
}
