package events

import (
	"strings"

	"github.com/beevik/etree"
)

// ParseEvent reads a GENA property set:
//
//	<e:propertyset xmlns:e="urn:schemas-upnp-org:event-1-0">
//	  <e:property><Volume>25</Volume></e:property>
//	</e:propertyset>
//
// and maps each variable name to its text. Namespace prefixes are ignored.
// A body that does not parse or is not a property set gives an empty map.
func ParseEvent(body []byte) map[string]string {
	vars := make(map[string]string)

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return vars
	}
	root := doc.Root()
	if root == nil || root.Tag != "propertyset" {
		return vars
	}

	for _, prop := range root.ChildElements() {
		if prop.Tag != "property" {
			continue
		}
		for _, v := range prop.ChildElements() {
			vars[v.Tag] = strings.TrimSpace(v.Text())
		}
	}
	return vars
}
