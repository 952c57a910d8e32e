package sfclient

import (
	"context"

	"github.com/sforcekit/sdk-go/core/metadata"
	"github.com/sforcekit/sdk-go/core/types"
)

// Transport abstracts the communication layer with the remote query API.
// Session handling, envelope construction and retries belong to the implementation; the
// client only consumes pages and describe results.
//
// Implementations should report failures as *types.TransportError or
// *types.RemoteFault. Errors returned by QueryMore reach iterator callers unchanged.
//
// Example custom transport usage:
//
//	type MyTransport struct { ... }
//
//	func (t *MyTransport) QueryMore(ctx context.Context, queryLocator string) (*types.QueryPage, error) {
//	    // Custom implementation
//	    return types.NewQueryPage(records, total, nextLocator, done), nil
//	}
//
//	client, err := sfclient.NewClient(sfclient.WithTransport(myTransport))
type Transport interface {
	types.QueryPort
	metadata.Describer

	// Query runs a query and returns its first page.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - query: The query text
	//
	// Returns:
	//   - The first page of results
	//   - Error if the call fails or the remote API reports a fault
	Query(ctx context.Context, query string) (*types.QueryPage, error)

	// QueryAll is Query including deleted and archived records.
	QueryAll(ctx context.Context, query string) (*types.QueryPage, error)
}
