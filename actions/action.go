// Package actions describes the actions of a UPnP service and their in and
// out arguments, as read from the actionList of a service description.
package actions

import (
	"fmt"
	"iter"

	"github.com/beevik/etree"
)

type Action struct {
	name string
	in   *ArgumentSet
	out  *ArgumentSet
}

func NewAction(name string) *Action {
	return &Action{
		name: name,
		in:   NewArgumentSet(),
		out:  NewArgumentSet(),
	}
}

func (a *Action) Name() string {
	return a.name
}

func (a *Action) TypeID() string {
	return "Action"
}

// AddArgument appends arg to the in or out list depending on its direction.
// Declaration order is preserved.
func (a *Action) AddArgument(arg *Argument) error {
	if arg.IsOut() {
		return a.out.Insert(arg)
	}
	return a.in.Insert(arg)
}

// InArgs returns the names of the input arguments in declaration order.
func (a *Action) InArgs() []string {
	return a.in.Names()
}

// OutArgs returns the names of the output arguments in declaration order.
func (a *Action) OutArgs() []string {
	return a.out.Names()
}

func (a *Action) InArgument(name string) (*Argument, bool) {
	return a.in.Get(name)
}

func (a *Action) OutArgument(name string) (*Argument, bool) {
	return a.out.Get(name)
}

// Arguments iterates over input arguments then output arguments.
func (a *Action) Arguments() iter.Seq[*Argument] {
	return func(yield func(*Argument) bool) {
		for arg := range a.in.All() {
			if !yield(arg) {
				return
			}
		}
		for arg := range a.out.All() {
			if !yield(arg) {
				return
			}
		}
	}
}

// RelatedStateVariable resolves the state variable name of an argument,
// input arguments first.
func (a *Action) RelatedStateVariable(argName string) (string, bool) {
	if arg, ok := a.in.Get(argName); ok {
		return arg.RelatedStateVariable(), true
	}
	if arg, ok := a.out.Get(argName); ok {
		return arg.RelatedStateVariable(), true
	}
	return "", false
}

func (a *Action) ToXMLElement() *etree.Element {
	elem := etree.NewElement("action")
	elem.CreateElement("name").SetText(a.name)

	if a.in.Len()+a.out.Len() > 0 {
		list := elem.CreateElement("argumentList")
		for arg := range a.Arguments() {
			list.AddChild(arg.ToXMLElement())
		}
	}

	return elem
}

// FromXMLElement reads an <action> element. Namespace prefixes are ignored.
func FromXMLElement(elem *etree.Element) (*Action, error) {
	name := childText(elem, "name")
	if name == "" {
		return nil, fmt.Errorf("action without a name")
	}

	action := NewAction(name)
	for _, list := range elem.ChildElements() {
		if list.Tag != "argumentList" {
			continue
		}
		for _, c := range list.ChildElements() {
			if c.Tag != "argument" {
				continue
			}
			arg, err := argumentFromXMLElement(c)
			if err != nil {
				return nil, fmt.Errorf("action %s: %w", name, err)
			}
			if err := action.AddArgument(arg); err != nil {
				return nil, fmt.Errorf("action %s: %w", name, err)
			}
		}
	}

	return action, nil
}
