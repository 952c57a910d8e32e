package sfclient

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/logging"
	"github.com/sforcekit/sdk-go/core/metadata"
	"github.com/sforcekit/sdk-go/core/queryapi"
	"github.com/sforcekit/sdk-go/core/types"
	"go.uber.org/zap"
)

// Target namespaces of the supported API flavours. Extension fragment fields are
// expected in the client's namespace.
const (
	NamespacePartner    = "urn:partner.soap.sforce.com"
	NamespaceEnterprise = "urn:enterprise.soap.sforce.com"
)

type Client struct {
	Transport Transport `validate:"required"`
	Namespace string    `validate:"required,oneof=urn:partner.soap.sforce.com urn:enterprise.soap.sforce.com"`

	logger         *zap.Logger
	schema         types.SchemaLookup
	cache          *metadata.Cache
	converter      queryapi.Converter
	decoderOptions []queryapi.DecoderOption
	materializer   *queryapi.Materializer
}

type Option func(*Client)

// NewClient creates a client over the configured transport. Field types needed to
// decode extension fragments are described through the transport and cached, unless
// WithSchemaLookup supplies another source.
func NewClient(options ...Option) (*Client, error) {
	c := &Client{
		Namespace: NamespacePartner,
		logger:    logging.Logger,
	}
	for _, option := range options {
		option(c)
	}

	// Validate the client
	if err := c.Validate(); err != nil {
		return nil, errors.WithStack(err)
	}

	c.cache = metadata.NewCache(c.Transport, metadata.WithLogger(c.logger))
	if c.schema == nil {
		c.schema = c.cache
	}

	decoder := queryapi.NewFieldDecoder(c.schema, c.Namespace, c.decoderOptions...)
	c.materializer = queryapi.NewMaterializer(c.Transport, decoder, queryapi.WithMaterializerLogger(c.logger))
	return c, nil
}

func (c *Client) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

func WithTransport(transport Transport) Option {
	return func(c *Client) {
		c.Transport = transport
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithNamespace selects the API flavour by its target namespace.
func WithNamespace(namespace string) Option {
	return func(c *Client) {
		c.Namespace = namespace
	}
}

// WithSchemaLookup replaces the describe cache as the source of field types.
func WithSchemaLookup(schema types.SchemaLookup) Option {
	return func(c *Client) {
		c.schema = schema
	}
}

// WithConverter sets the post-processing applied to records of iterators returned by
// Query and QueryAll.
func WithConverter(converter queryapi.Converter) Option {
	return func(c *Client) {
		c.converter = converter
	}
}

// WithDecimalNumbers decodes numeric fragment fields as *apd.Decimal.
func WithDecimalNumbers(enabled bool) Option {
	return func(c *Client) {
		c.decoderOptions = append(c.decoderOptions, queryapi.WithDecimalNumbers(enabled))
	}
}

// Query runs a query and returns an iterator over all of its records.
func (c *Client) Query(ctx context.Context, query string) (*queryapi.RecordIterator, error) {
	page, err := c.Transport.Query(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return c.iterate(page)
}

// QueryAll is Query including deleted and archived records.
func (c *Client) QueryAll(ctx context.Context, query string) (*queryapi.RecordIterator, error) {
	page, err := c.Transport.QueryAll(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return c.iterate(page)
}

// QueryMore fetches the page following queryLocator without wrapping it in an iterator.
func (c *Client) QueryMore(ctx context.Context, queryLocator string) (*types.QueryPage, error) {
	page, err := c.Transport.QueryMore(ctx, queryLocator)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return page, nil
}

// DescribeSObject returns the cached schema of an entity type.
func (c *Client) DescribeSObject(ctx context.Context, name string) (*types.SObjectDescribe, error) {
	return c.cache.Describe(ctx, name)
}

// Materializer returns the materializer used by the client's iterators.
func (c *Client) Materializer() *queryapi.Materializer {
	return c.materializer
}

func (c *Client) iterate(page *types.QueryPage) (*queryapi.RecordIterator, error) {
	it, err := queryapi.NewRecordIterator(c.materializer, page, queryapi.WithConverter(c.converter))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create record iterator")
	}
	c.logger.Debug("query started",
		zap.Int("totalSize", page.TotalSize),
		zap.Int("records", page.Len()),
		zap.Bool("done", page.Done))
	return it, nil
}
