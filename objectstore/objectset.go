// Package objectstore provides the ordered, name-keyed collections used to
// hold the actions, arguments and state variables of a service description.
package objectstore

import (
	"fmt"
	"iter"
)

type Object interface {
	Name() string
	TypeID() string
}

// ObjectSet keeps objects indexed by name, in insertion order. UPnP gives
// meaning to declaration order (argument order in particular) so iteration
// always follows it.
type ObjectSet[T Object] struct {
	order []string
	items map[string]T
}

func NewObjectSet[T Object]() *ObjectSet[T] {
	return &ObjectSet[T]{items: make(map[string]T)}
}

func (m *ObjectSet[T]) Insert(obj T) error {
	if m.Contains(obj.Name()) {
		return fmt.Errorf("%s %s already present in set", obj.TypeID(), obj.Name())
	}
	m.InsertOrReplace(obj)
	return nil
}

func (m *ObjectSet[T]) InsertOrReplace(obj T) {
	if m.items == nil {
		m.items = make(map[string]T)
	}
	if _, ok := m.items[obj.Name()]; !ok {
		m.order = append(m.order, obj.Name())
	}
	m.items[obj.Name()] = obj
}

func (m *ObjectSet[T]) Contains(name string) bool {
	if m == nil {
		return false
	}
	_, ok := m.items[name]
	return ok
}

func (m *ObjectSet[T]) Get(name string) (T, bool) {
	var zero T
	if m == nil {
		return zero, false
	}
	obj, ok := m.items[name]
	return obj, ok
}

func (m *ObjectSet[T]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.order)
}

// Names returns the object names in insertion order.
func (m *ObjectSet[T]) Names() []string {
	if m == nil {
		return []string{}
	}
	return append([]string{}, m.order...)
}

func (m *ObjectSet[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		if m == nil {
			return
		}
		for _, name := range m.order {
			if !yield(m.items[name]) {
				return
			}
		}
	}
}
