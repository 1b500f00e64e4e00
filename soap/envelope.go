package soap

import (
	"fmt"
	"sort"
	"strconv"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
	"github.com/beevik/etree"
)

// newEnvelope returns a document holding an empty s:Envelope/s:Body and the
// body element.
func newEnvelope() (*etree.Document, *etree.Element) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)

	env := doc.CreateElement("s:Envelope")
	env.CreateAttr("xmlns:s", EnvelopeNamespace)
	env.CreateAttr("s:encodingStyle", EncodingStyle)

	return doc, env.CreateElement("s:Body")
}

// BuildRequest builds the envelope of an action call. Argument names are
// camelized; nested records become nested elements. Extra attributes from
// opts are set on the action element, but xmlns:u is always the service
// namespace.
func BuildRequest(action string, args *values.Record, opts CallOptions) *etree.Document {
	doc, body := newEnvelope()

	ac := body.CreateElement("u:" + action)
	for _, k := range sortedKeys(opts.Attributes) {
		if k == "xmlns:u" {
			continue
		}
		ac.CreateAttr(k, opts.Attributes[k])
	}
	ac.CreateAttr("xmlns:u", opts.Namespace)

	for name, v := range args.All() {
		writeValue(ac.CreateElement(Camelize(name)), v)
	}

	return doc
}

func writeValue(elem *etree.Element, v values.Value) {
	if rec, ok := v.AsRecord(); ok {
		for name, sub := range rec.All() {
			writeValue(elem.CreateElement(Camelize(name)), sub)
		}
		return
	}
	if !v.IsNull() {
		elem.SetText(v.String())
	}
}

// BuildResponse builds the <u:ActionResponse> envelope a device answers
// with. Out arguments are written in the given order.
func BuildResponse(serviceType, action string, out []Arg) *etree.Document {
	doc, body := newEnvelope()

	resp := body.CreateElement(fmt.Sprintf("u:%sResponse", action))
	resp.CreateAttr("xmlns:u", serviceType)
	for _, a := range out {
		resp.CreateElement(a.Name).SetText(a.Value)
	}

	return doc
}

// BuildFault builds a SOAP fault carrying a UPnPError detail.
func BuildFault(code int, description string) *etree.Document {
	doc, body := newEnvelope()

	fault := body.CreateElement("s:Fault")
	fault.CreateElement("faultcode").SetText("s:Client")
	fault.CreateElement("faultstring").SetText("UPnPError")

	upnpErr := fault.CreateElement("detail").CreateElement("UPnPError")
	upnpErr.CreateAttr("xmlns", ControlNamespace)
	upnpErr.CreateElement("errorCode").SetText(strconv.Itoa(code))
	upnpErr.CreateElement("errorDescription").SetText(description)

	return doc
}

// Arg is a named textual argument as it travels on the wire.
type Arg struct {
	Name  string
	Value string
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
