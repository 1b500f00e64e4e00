package soap

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"
)

// Camelize gives the wire name of a request key: the first letter and every
// letter following an underscore are upper-cased and underscores dropped.
// Other letters keep their case, so "InstanceID" stays "InstanceID" and
// "instance_id" becomes "InstanceId".
func Camelize(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	upper := true
	for len(name) > 0 {
		r, size := utf8.DecodeRuneInString(name)
		name = name[size:]
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FieldName gives the key under which a response element is stored:
// "CurrentVolume" is read back as "current_volume", "InstanceID" as
// "instance_id".
func FieldName(tag string) string {
	return strcase.ToSnake(tag)
}
