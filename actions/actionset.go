package actions

import (
	"iter"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/objectstore"
	"github.com/beevik/etree"
)

type ActionSet objectstore.ObjectSet[*Action]

func NewActionSet() *ActionSet {
	return (*ActionSet)(objectstore.NewObjectSet[*Action]())
}

func (m *ActionSet) set() *objectstore.ObjectSet[*Action] {
	return (*objectstore.ObjectSet[*Action])(m)
}

func (m *ActionSet) Insert(obj *Action) error {
	return m.set().Insert(obj)
}

func (m *ActionSet) Get(name string) (*Action, bool) {
	return m.set().Get(name)
}

func (m *ActionSet) Contains(name string) bool {
	return m.set().Contains(name)
}

func (m *ActionSet) Names() []string {
	return m.set().Names()
}

func (m *ActionSet) Len() int {
	return m.set().Len()
}

func (m *ActionSet) All() iter.Seq[*Action] {
	return m.set().All()
}

func (m *ActionSet) ToXMLElement() *etree.Element {
	elem := etree.NewElement("actionList")

	for ac := range m.All() {
		elem.AddChild(ac.ToXMLElement())
	}

	return elem
}

// ActionSetFromXMLElement reads an <actionList> element.
func ActionSetFromXMLElement(elem *etree.Element) (*ActionSet, error) {
	set := NewActionSet()
	for _, c := range elem.ChildElements() {
		if c.Tag != "action" {
			continue
		}
		ac, err := FromXMLElement(c)
		if err != nil {
			return nil, err
		}
		if err := set.Insert(ac); err != nil {
			return nil, err
		}
	}
	return set, nil
}
