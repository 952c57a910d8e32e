package types

import "strings"

// SObjectDescribe is the schema metadata of one entity type.
type SObjectDescribe struct {
	Name   string
	Fields []FieldDescribe
}

// FieldDescribe is the schema metadata of one field.
type FieldDescribe struct {
	Name string
	// Type is the describe type, e.g. "datetime", "base64", "string".
	Type string
	// SoapType is the wire type, e.g. "xsd:dateTime". Optional.
	SoapType string
}

// FieldType resolves the decode type, preferring the describe type over the soap type.
func (f FieldDescribe) FieldType() FieldType {
	if t := ParseFieldType(f.Type); t != FieldTypeOther || f.SoapType == "" {
		return t
	}
	return ParseFieldType(f.SoapType)
}

// Field looks a field up by name, case-insensitively.
func (d *SObjectDescribe) Field(name string) (FieldDescribe, bool) {
	for _, f := range d.Fields {
		if strings.EqualFold(f.Name, name) {
			return f, true
		}
	}
	return FieldDescribe{}, false
}
