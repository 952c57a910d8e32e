package queryapi

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
	"github.com/sforcekit/sdk-go/core/types"
)

// fieldMappingInfo holds how a struct field maps to a record field.
type fieldMappingInfo struct {
	StructFieldIndex int
	RecordField      string
}

// mapStructFieldsInternal lists the exported fields of structElemType with the record
// field each one reads. The record field is taken from the sf tag, then the json tag,
// then the Go field name.
func mapStructFieldsInternal(structElemType reflect.Type) []fieldMappingInfo {
	mappings := make([]fieldMappingInfo, 0, structElemType.NumField())
	for fieldIdx := 0; fieldIdx < structElemType.NumField(); fieldIdx++ {
		field := structElemType.Field(fieldIdx)
		if field.PkgPath != "" { // Field is unexported
			continue
		}

		name := field.Name
		ignored := false
		for _, tag := range []string{"sf", "json"} {
			tagValue, ok := field.Tag.Lookup(tag)
			if !ok {
				continue
			}
			tagKey := strings.Split(tagValue, ",")[0]
			if tagKey == "-" {
				ignored = true
				break
			}
			if tagKey != "" {
				name = tagKey
				break
			}
		}
		if ignored {
			continue
		}
		mappings = append(mappings, fieldMappingInfo{StructFieldIndex: fieldIdx, RecordField: name})
	}
	return mappings
}

// lookupRecordField finds a record field by exact name, then case-insensitively.
func lookupRecordField(record types.TypedRecord, name string) (any, bool) {
	if v, ok := record[name]; ok {
		return v, true
	}
	for k, v := range record {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

// assignValueInternal stores value into dst, converting between compatible types,
// allocating pointers and recursing into nested records.
func assignValueInternal(dst reflect.Value, value any, path string) error {
	if value == nil {
		dst.Set(reflect.Zero(dst.Type()))
		return nil
	}

	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(dst.Type()):
		dst.Set(src)
		return nil
	case dst.Kind() == reflect.Ptr:
		elem := reflect.New(dst.Type().Elem())
		if err := assignValueInternal(elem.Elem(), value, path); err != nil {
			return err
		}
		dst.Set(elem)
		return nil
	case src.Kind() == reflect.Ptr && !src.IsNil() && src.Elem().Type().AssignableTo(dst.Type()):
		dst.Set(src.Elem())
		return nil
	}

	if nested, ok := value.(types.TypedRecord); ok && dst.Kind() == reflect.Struct {
		return scanIntoStructInternal(dst, nested, path)
	}

	// named string types and similar
	if src.Kind() != reflect.Struct && src.Type().ConvertibleTo(dst.Type()) && src.Kind() == dst.Kind() {
		dst.Set(src.Convert(dst.Type()))
		return nil
	}

	return errors.Errorf("cannot assign %T to %s (%s)", value, path, dst.Type())
}

func scanIntoStructInternal(structInstanceVal reflect.Value, record types.TypedRecord, path string) error {
	structElemType := structInstanceVal.Type()
	for _, mapping := range mapStructFieldsInternal(structElemType) {
		value, ok := lookupRecordField(record, mapping.RecordField)
		if !ok {
			continue
		}
		fieldInStruct := structInstanceVal.Field(mapping.StructFieldIndex)
		if !fieldInStruct.CanSet() {
			return errors.Errorf("cannot set field %s in struct %s", structElemType.Field(mapping.StructFieldIndex).Name, structElemType.Name())
		}
		fieldPath := mapping.RecordField
		if path != "" {
			fieldPath = path + "." + mapping.RecordField
		}
		if err := assignValueInternal(fieldInStruct, value, fieldPath); err != nil {
			return err
		}
	}
	return nil
}

// ScanRecord maps a typed record onto T.
//
// T is a struct or a pointer to a struct. Fields are matched by their sf or json tag,
// falling back to the field name, case-insensitively. Record fields without a struct
// field are ignored; explicit nulls leave the zero value. Nested records fill nested
// struct fields.
//
// Example:
//
//	type Account struct {
//	    ID          string     `sf:"Id"`
//	    Name        string
//	    CreatedDate time.Time
//	    Revenue     *apd.Decimal `sf:"AnnualRevenue"`
//	}
//
//	account, err := queryapi.ScanRecord[Account](record)
func ScanRecord[T any](record types.TypedRecord) (T, error) {
	var sampleT T
	originalTypeOfT := reflect.TypeOf(sampleT)
	if originalTypeOfT == nil {
		return sampleT, errors.New("type T is nil or an uninitialized interface")
	}

	elementType := originalTypeOfT
	if elementType.Kind() == reflect.Ptr {
		elementType = elementType.Elem()
	}
	if elementType.Kind() != reflect.Struct {
		return sampleT, errors.Errorf("ScanRecord: T must be a struct or a pointer to a struct, got %s", originalTypeOfT)
	}

	itemContainer := reflect.New(elementType)
	if err := scanIntoStructInternal(itemContainer.Elem(), record, ""); err != nil {
		return sampleT, errors.Wrapf(err, "failed to scan record into %s", elementType.Name())
	}

	if originalTypeOfT.Kind() == reflect.Ptr {
		return itemContainer.Interface().(T), nil
	}
	return itemContainer.Elem().Interface().(T), nil
}

// ScanRecords maps every record onto T. See ScanRecord.
func ScanRecords[T any](records []types.TypedRecord) ([]T, error) {
	results := make([]T, 0, len(records))
	for i, record := range records {
		item, err := ScanRecord[T](record)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i)
		}
		results = append(results, item)
	}
	return results, nil
}
