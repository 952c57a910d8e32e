package util

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/golang-sql/civil"
)

// UpperFirst returns name with its first character upper-cased.
//
// Field names on the wire begin with an upper-case letter, so callers may write
// "name" for "Name".
//
// Example:
//
//	util.UpperFirst("createdDate") // "CreatedDate"
func UpperFirst(name string) string {
	r, size := utf8.DecodeRuneInString(name)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return name
	}
	return string(unicode.ToUpper(r)) + name[size:]
}

// IsFalsy reports whether a materialized field value counts as empty: nil, "" or "0",
// false, an empty byte slice or a zero date/time.
func IsFalsy(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "0"
	case bool:
		return !t
	case []byte:
		return len(t) == 0
	case time.Time:
		return t.IsZero()
	case civil.Date:
		return t == civil.Date{}
	}
	return false
}
