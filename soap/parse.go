package soap

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
	"github.com/beevik/etree"
)

var ErrMalformedEnvelope = errors.New("malformed SOAP envelope")

var (
	xsTime     = regexp.MustCompile(`^\d{2}:\d{2}:\d{2}[Z+-]?(\d{2}:\d{2})?$`)
	xsDate     = regexp.MustCompile(`^-?\d{4}-\d{2}-\d{2}[Z+-]?(\d{2}:\d{2})?$`)
	xsDateTime = regexp.MustCompile(`^-?\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?[Z+-]?(\d{2}:\d{2})?$`)
)

// body locates the Body element of an envelope, namespace prefix ignored.
func body(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedEnvelope, err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "Envelope" {
		return nil, fmt.Errorf("%w: missing Envelope", ErrMalformedEnvelope)
	}
	for _, c := range root.ChildElements() {
		if c.Tag == "Body" {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: missing Body", ErrMalformedEnvelope)
}

// ParseResponse decodes the Body of a response envelope. Each child element
// is stored under its FieldName; elements with children become nested
// records, empty elements become Null and text is kept as Text unless
// advanced typecasting converts it.
func ParseResponse(data []byte, advancedTypecasting bool) (*values.Record, error) {
	b, err := body(data)
	if err != nil {
		return nil, err
	}
	return elementRecord(b, advancedTypecasting), nil
}

func elementRecord(elem *etree.Element, advanced bool) *values.Record {
	rec := values.NewRecord()
	for _, c := range elem.ChildElements() {
		rec.Set(FieldName(c.Tag), elementValue(c, advanced))
	}
	return rec
}

func elementValue(elem *etree.Element, advanced bool) values.Value {
	if len(elem.ChildElements()) > 0 {
		return values.Nested(elementRecord(elem, advanced))
	}
	text := elem.Text()
	if strings.TrimSpace(text) == "" {
		return values.Null()
	}
	if advanced {
		return Typecast(text)
	}
	return values.Text(text)
}

// Typecast applies the advanced typecasting rules to a response text:
// "true" and "false" become Boolean, xs:time, xs:date and xs:dateTime
// shaped texts become Time. Anything else, numbers included, stays Text.
func Typecast(text string) values.Value {
	switch text {
	case "true":
		return values.Boolean(true)
	case "false":
		return values.Boolean(false)
	}
	if xsTime.MatchString(text) || xsDate.MatchString(text) || xsDateTime.MatchString(text) {
		if t, err := values.ParseTime(text); err == nil {
			return values.Time(t)
		}
	}
	return values.Text(text)
}

// Request is an action call as decoded by a device.
type Request struct {
	Action    string
	Namespace string
	Args      []Arg
}

// ParseRequest decodes an action call envelope, the way a device reads it.
func ParseRequest(data []byte) (*Request, error) {
	b, err := body(data)
	if err != nil {
		return nil, err
	}
	children := b.ChildElements()
	if len(children) != 1 {
		return nil, fmt.Errorf("%w: expected one action element, got %d", ErrMalformedEnvelope, len(children))
	}
	ac := children[0]
	req := &Request{
		Action:    ac.Tag,
		Namespace: ac.NamespaceURI(),
	}
	for _, arg := range ac.ChildElements() {
		req.Args = append(req.Args, Arg{Name: arg.Tag, Value: arg.Text()})
	}
	return req, nil
}

// Fault is the UPnPError detail of a SOAP fault.
type Fault struct {
	Code        int
	Description string
}

// ParseFault extracts the UPnPError of a fault envelope. ok is false when
// the body carries no fault.
func ParseFault(data []byte) (f Fault, ok bool) {
	b, err := body(data)
	if err != nil {
		return Fault{}, false
	}
	fault := find(b, "Fault")
	if fault == nil {
		return Fault{}, false
	}
	if c := find(fault, "errorCode"); c != nil {
		f.Code, _ = strconv.Atoi(strings.TrimSpace(c.Text()))
	}
	if d := find(fault, "errorDescription"); d != nil {
		f.Description = strings.TrimSpace(d.Text())
	} else if s := find(fault, "faultstring"); s != nil {
		f.Description = strings.TrimSpace(s.Text())
	}
	return f, true
}

func find(elem *etree.Element, tag string) *etree.Element {
	for _, c := range elem.ChildElements() {
		if c.Tag == tag {
			return c
		}
		if found := find(c, tag); found != nil {
			return found
		}
	}
	return nil
}
