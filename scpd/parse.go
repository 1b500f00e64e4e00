package scpd

import (
	"errors"
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/actions"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/statevariables"
	"github.com/beevik/etree"
)

var ErrMalformedDescription = errors.New("malformed service description")

// Parse builds a Description from SCPD XML already in hand. Namespaces are
// ignored: elements are matched on their local name, at any depth, the way
// devices in the wild require. A document without actionList or
// serviceStateTable yields empty sets.
func Parse(serviceType string, data []byte) (*Description, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDescription, err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedDescription)
	}

	acts := actions.NewActionSet()
	if list := findFirst(root, "actionList"); list != nil {
		var err error
		if acts, err = actions.ActionSetFromXMLElement(list); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDescription, err)
		}
	}

	table := statevariables.NewStateVariableSet()
	if st := findFirst(root, "serviceStateTable"); st != nil {
		var err error
		if table, err = statevariables.StateVariableSetFromXMLElement(st); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedDescription, err)
		}
	}

	return New(serviceType, acts, table), nil
}

// findFirst walks elem depth first and returns the first element, elem
// included, whose local name is tag.
func findFirst(elem *etree.Element, tag string) *etree.Element {
	if elem.Tag == tag {
		return elem
	}
	for _, c := range elem.ChildElements() {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}
