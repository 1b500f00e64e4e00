// Package scpd holds the abstract service description a control point is
// built from: the service type, its actions and its state table.
package scpd

import (
	"bytes"
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/actions"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/statevariables"
	"github.com/beevik/etree"
)

const ServiceNamespace = "urn:schemas-upnp-org:service-1-0"

// Description is immutable once built.
type Description struct {
	serviceType string
	actions     *actions.ActionSet
	stateTable  *statevariables.StateVariableSet
}

// New assembles a description. Nil sets are replaced by empty ones.
func New(serviceType string, acts *actions.ActionSet, table *statevariables.StateVariableSet) *Description {
	if acts == nil {
		acts = actions.NewActionSet()
	}
	if table == nil {
		table = statevariables.NewStateVariableSet()
	}
	return &Description{
		serviceType: serviceType,
		actions:     acts,
		stateTable:  table,
	}
}

// ServiceType returns the service type URN, e.g.
// "urn:schemas-upnp-org:service:RenderingControl:1".
func (d *Description) ServiceType() string {
	return d.serviceType
}

func (d *Description) Actions() *actions.ActionSet {
	return d.actions
}

func (d *Description) StateTable() *statevariables.StateVariableSet {
	return d.stateTable
}

func (d *Description) Action(name string) (*actions.Action, bool) {
	return d.actions.Get(name)
}

func (d *Description) StateVariable(name string) (*statevariables.StateVariable, bool) {
	return d.stateTable.Get(name)
}

// EventedVariables lists the names of the state variables declared with
// sendEvents="yes".
func (d *Description) EventedVariables() []string {
	names := []string{}
	for _, sv := range d.stateTable.Evented() {
		names = append(names, sv.Name())
	}
	return names
}

func (d *Description) ToXMLElement() *etree.Element {
	elem := etree.NewElement("scpd")
	elem.CreateAttr("xmlns", ServiceNamespace)

	spec := elem.CreateElement("specVersion")
	spec.CreateElement("major").SetText("1")
	spec.CreateElement("minor").SetText("0")

	elem.AddChild(d.actions.ToXMLElement())
	elem.AddChild(d.stateTable.ToXMLElement())

	return elem
}

// Bytes serializes the description as an SCPD document.
func (d *Description) Bytes() ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	doc.SetRoot(d.ToXMLElement())
	doc.Indent(2)

	buf := new(bytes.Buffer)
	if _, err := doc.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("serializing description of %s: %w", d.serviceType, err)
	}
	return buf.Bytes(), nil
}
