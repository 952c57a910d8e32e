package types

// Well-known keys of records as delivered by the transport.
const (
	FieldID      = "Id"
	FieldTypeKey = "type"
	// FieldAny holds the extension fragment: fields the transport did not expand.
	FieldAny     = "any"
)

// RawRecord is a record as delivered by the transport.
//
// Values are one of:
//   - string, or []string for identifiers delivered as a singleton sequence
//   - RawRecord for a nested object
//   - *QueryPage for a relationship delivered as a paginated sub-query
//   - Fragment under FieldAny
type RawRecord map[string]any

// Type returns the entity type name carried by the record, if any.
func (r RawRecord) Type() string {
	t, _ := r[FieldTypeKey].(string)
	return t
}

// Fragment returns the extension fragment of the record, if any.
func (r RawRecord) Fragment() (Fragment, bool) {
	f, ok := r[FieldAny].(Fragment)
	return f, ok
}

// Fragment is the ordered content of an extension fragment.
type Fragment []FragmentEntry

// FragmentEntry is one item of an extension fragment. Value is either a string holding
// serialized field elements, or a nested RawRecord / *QueryPage.
type FragmentEntry struct {
	Name  string
	Value any
}

// TypedRecord is a materialized record.
//
// A key mapped to nil is an explicit null: the field exists and is intentionally empty.
// A missing key means the field was never delivered. Other values are string, time.Time,
// civil.Date, []byte, *apd.Decimal, TypedRecord or a nested record iterator.
type TypedRecord map[string]any

// Get returns the value of a field and whether the field is present.
func (r TypedRecord) Get(field string) (any, bool) {
	v, ok := r[field]
	return v, ok
}

// Has reports whether the field is present, including explicit nulls.
func (r TypedRecord) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// IsNull reports whether the field is present with an explicit null value.
func (r TypedRecord) IsNull(field string) bool {
	v, ok := r[field]
	return ok && v == nil
}

// String returns the field as a string, or "" when it is absent, null or not a string.
func (r TypedRecord) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// ID returns the record identifier.
func (r TypedRecord) ID() string {
	return r.String(FieldID)
}
