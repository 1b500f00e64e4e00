package actions

import (
	"iter"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/objectstore"
)

type ArgumentSet objectstore.ObjectSet[*Argument]

func NewArgumentSet() *ArgumentSet {
	return (*ArgumentSet)(objectstore.NewObjectSet[*Argument]())
}

func (m *ArgumentSet) set() *objectstore.ObjectSet[*Argument] {
	return (*objectstore.ObjectSet[*Argument])(m)
}

func (m *ArgumentSet) Insert(obj *Argument) error {
	return m.set().Insert(obj)
}

func (m *ArgumentSet) Get(name string) (*Argument, bool) {
	return m.set().Get(name)
}

func (m *ArgumentSet) Contains(name string) bool {
	return m.set().Contains(name)
}

func (m *ArgumentSet) Names() []string {
	return m.set().Names()
}

func (m *ArgumentSet) Len() int {
	return m.set().Len()
}

func (m *ArgumentSet) All() iter.Seq[*Argument] {
	return m.set().All()
}
