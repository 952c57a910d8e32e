package queryapi

import (
	"context"
	"encoding/base64"
	"encoding/xml"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/apd/v3"
	"github.com/golang-sql/civil"
	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/types"
)

const xsiNamespace = "http://www.w3.org/2001/XMLSchema-instance"

// Layouts accepted for datetime fields, tried in order. Values without a zone are UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
}

// DecodedField is one named value produced from an extension fragment entry.
type DecodedField struct {
	Name string
	// Value is nil for an explicit null.
	Value any
}

// valueMaterializer resolves non-string fragment entries (nested records and nested
// query results).
type valueMaterializer interface {
	MaterializeValue(ctx context.Context, value any) (any, error)
}

// FieldDecoder expands extension fragment entries into typed fields, using the field
// types reported by a SchemaLookup.
type FieldDecoder struct {
	schema    types.SchemaLookup
	namespace string
	decimals  bool
	nested    valueMaterializer
}

type DecoderOption func(*FieldDecoder)

// WithDecimalNumbers decodes double, currency, percent and int fields as *apd.Decimal
// instead of keeping their text.
func WithDecimalNumbers(enabled bool) DecoderOption {
	return func(d *FieldDecoder) {
		d.decimals = enabled
	}
}

// NewFieldDecoder creates a decoder for fragments whose field elements live in namespace.
func NewFieldDecoder(schema types.SchemaLookup, namespace string, options ...DecoderOption) *FieldDecoder {
	d := &FieldDecoder{
		schema:    schema,
		namespace: namespace,
	}
	for _, option := range options {
		option(d)
	}
	return d
}

// Namespace returns the namespace field elements are expected in.
func (d *FieldDecoder) Namespace() string {
	return d.namespace
}

// Decode expands one fragment entry of a record of the given entity type.
//
// A string value is parsed as a sequence of field elements and yields one DecodedField
// per element. Any other value is a nested record or query result and yields a single
// field named after the entry.
func (d *FieldDecoder) Decode(ctx context.Context, entity string, entry types.FragmentEntry) ([]DecodedField, error) {
	payload, ok := entry.Value.(string)
	if !ok {
		if d.nested == nil {
			return nil, newDecodeError(entity, entry.Name, errors.Errorf("cannot decode nested value of type %T", entry.Value))
		}
		value, err := d.nested.MaterializeValue(ctx, entry.Value)
		if err != nil {
			return nil, err
		}
		return []DecodedField{{Name: entry.Name, Value: value}}, nil
	}
	return d.decodePayload(ctx, entity, payload)
}

type fragmentElement struct {
	Nil   string `xml:"http://www.w3.org/2001/XMLSchema-instance nil,attr"`
	Value string `xml:",chardata"`
}

func (d *FieldDecoder) decodePayload(ctx context.Context, entity string, payload string) ([]DecodedField, error) {
	dec := xml.NewDecoder(strings.NewReader(d.wrap(payload)))

	var fields []DecodedField
	depth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, newDecodeError(entity, "", errors.Wrap(err, "malformed fragment"))
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				depth++
				continue
			}
			var el fragmentElement
			if err := dec.DecodeElement(&el, &t); err != nil {
				return nil, newDecodeError(entity, t.Name.Local, errors.Wrap(err, "malformed fragment"))
			}
			if t.Name.Space != d.namespace {
				continue
			}
			field, err := d.decodeElement(ctx, entity, t.Name.Local, el)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
		case xml.EndElement:
			depth--
		}
	}
	return fields, nil
}

// wrap places the payload in a root element declaring the entity namespace both as the
// sf prefix and as the default namespace.
func (d *FieldDecoder) wrap(payload string) string {
	var ns strings.Builder
	_ = xml.EscapeText(&ns, []byte(d.namespace))

	var b strings.Builder
	b.WriteString(`<any xmlns="`)
	b.WriteString(ns.String())
	b.WriteString(`" xmlns:sf="`)
	b.WriteString(ns.String())
	b.WriteString(`" xmlns:xsi="` + xsiNamespace + `">`)
	b.WriteString(payload)
	b.WriteString(`</any>`)
	return b.String()
}

func (d *FieldDecoder) decodeElement(ctx context.Context, entity, name string, el fragmentElement) (DecodedField, error) {
	if isNil(el.Nil) {
		return DecodedField{Name: name, Value: nil}, nil
	}

	fieldType, err := d.schema.FieldType(ctx, entity, name)
	if err != nil {
		return DecodedField{}, newDecodeError(entity, name, err)
	}

	value, err := d.convert(fieldType, el.Value)
	if err != nil {
		return DecodedField{}, newDecodeError(entity, name, err)
	}
	return DecodedField{Name: name, Value: value}, nil
}

func (d *FieldDecoder) convert(fieldType types.FieldType, text string) (any, error) {
	switch {
	case fieldType == types.FieldTypeDate:
		return parseDate(text)
	case fieldType == types.FieldTypeDateTime:
		return parseDateTime(text)
	case fieldType == types.FieldTypeBase64Binary:
		b, err := base64.StdEncoding.DecodeString(stripSpace(text))
		if err != nil {
			return nil, errors.Wrap(err, "invalid base64 value")
		}
		return b, nil
	case fieldType.IsNumeric() && d.decimals:
		value, _, err := apd.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s value %q", fieldType, text)
		}
		return value, nil
	default:
		return text, nil
	}
}

func isNil(attr string) bool {
	attr = strings.TrimSpace(attr)
	return attr == "true" || attr == "1"
}

func parseDate(text string) (civil.Date, error) {
	text = strings.TrimSpace(text)
	if date, err := civil.ParseDate(text); err == nil {
		return date, nil
	}
	// some endpoints send dates with a time part
	t, err := parseDateTime(text)
	if err != nil {
		return civil.Date{}, errors.Errorf("invalid date value %q", text)
	}
	return civil.DateOf(t), nil
}

func parseDateTime(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid datetime value %q", text)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, s)
}
