package pmolog

import (
	"strings"

	"github.com/beevik/etree"
)

// PrettyPrintXML re-indents an XML document for debug output. Input that
// does not parse is returned unchanged.
func PrettyPrintXML(raw string) string {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(raw); err != nil {
		return raw
	}
	doc.Indent(2)
	out, err := doc.WriteToString()
	if err != nil {
		return raw
	}
	return strings.TrimRight(out, "\n")
}
