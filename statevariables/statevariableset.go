package statevariables

import (
	"iter"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/objectstore"
	"github.com/beevik/etree"
)

type StateVariableSet objectstore.ObjectSet[*StateVariable]

func NewStateVariableSet() *StateVariableSet {
	return (*StateVariableSet)(objectstore.NewObjectSet[*StateVariable]())
}

func (m *StateVariableSet) set() *objectstore.ObjectSet[*StateVariable] {
	return (*objectstore.ObjectSet[*StateVariable])(m)
}

func (m *StateVariableSet) Insert(obj *StateVariable) error {
	return m.set().Insert(obj)
}

func (m *StateVariableSet) Contains(name string) bool {
	return m.set().Contains(name)
}

func (m *StateVariableSet) Get(name string) (*StateVariable, bool) {
	return m.set().Get(name)
}

func (m *StateVariableSet) Len() int {
	return m.set().Len()
}

func (m *StateVariableSet) Names() []string {
	return m.set().Names()
}

func (m *StateVariableSet) All() iter.Seq[*StateVariable] {
	return m.set().All()
}

// Evented returns the state variables declared with sendEvents="yes", in
// table order.
func (m *StateVariableSet) Evented() []*StateVariable {
	var evented []*StateVariable
	for sv := range m.All() {
		if sv.SendEvents() {
			evented = append(evented, sv)
		}
	}
	return evented
}

func (m *StateVariableSet) ToXMLElement() *etree.Element {
	elem := etree.NewElement("serviceStateTable")

	for sv := range m.All() {
		elem.AddChild(sv.ToXMLElement())
	}

	return elem
}

// StateVariableSetFromXMLElement reads a <serviceStateTable> element.
func StateVariableSetFromXMLElement(elem *etree.Element) (*StateVariableSet, error) {
	set := NewStateVariableSet()
	for _, c := range elem.ChildElements() {
		if c.Tag != "stateVariable" {
			continue
		}
		sv, err := FromXMLElement(c)
		if err != nil {
			return nil, err
		}
		if err := set.Insert(sv); err != nil {
			return nil, err
		}
	}
	return set, nil
}
