package types

import "strings"

// FieldType drives how a fragment field value is decoded.
type FieldType int

const (
	FieldTypeOther FieldType = iota
	FieldTypeDate
	FieldTypeDateTime
	FieldTypeBase64Binary
	FieldTypeDouble
	FieldTypeCurrency
	FieldTypePercent
	FieldTypeInt
)

var fieldTypeNames = map[FieldType]string{
	FieldTypeOther:        "other",
	FieldTypeDate:         "date",
	FieldTypeDateTime:     "datetime",
	FieldTypeBase64Binary: "base64Binary",
	FieldTypeDouble:       "double",
	FieldTypeCurrency:     "currency",
	FieldTypePercent:      "percent",
	FieldTypeInt:          "int",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return "other"
}

// IsNumeric reports whether values of this type can be read as decimals.
func (t FieldType) IsNumeric() bool {
	switch t {
	case FieldTypeDouble, FieldTypeCurrency, FieldTypePercent, FieldTypeInt:
		return true
	}
	return false
}

// ParseFieldType maps a describe type name (either the field type or its soap type,
// with or without the xsd: prefix) to a FieldType. Unknown names map to FieldTypeOther.
func ParseFieldType(name string) FieldType {
	name = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "xsd:"))
	switch name {
	case "date":
		return FieldTypeDate
	case "datetime":
		return FieldTypeDateTime
	case "base64binary", "base64":
		return FieldTypeBase64Binary
	case "double":
		return FieldTypeDouble
	case "currency":
		return FieldTypeCurrency
	case "percent":
		return FieldTypePercent
	case "int", "integer", "long":
		return FieldTypeInt
	default:
		return FieldTypeOther
	}
}
