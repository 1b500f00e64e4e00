package actions

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Direction tells whether an argument is sent to the device or returned by it.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in":
		return In, nil
	case "out":
		return Out, nil
	default:
		return In, fmt.Errorf("invalid argument direction %q", s)
	}
}

// Argument is one entry of an action's argumentList. It refers to the state
// variable giving its type by name.
type Argument struct {
	name                 string
	direction            Direction
	relatedStateVariable string
}

func NewInArgument(name, stateVariable string) *Argument {
	return &Argument{name: name, direction: In, relatedStateVariable: stateVariable}
}

func NewOutArgument(name, stateVariable string) *Argument {
	return &Argument{name: name, direction: Out, relatedStateVariable: stateVariable}
}

func (a *Argument) Name() string {
	return a.name
}

func (a *Argument) TypeID() string {
	return "Argument"
}

func (a *Argument) Direction() Direction {
	return a.direction
}

func (a *Argument) IsIn() bool {
	return a.direction == In
}

func (a *Argument) IsOut() bool {
	return a.direction == Out
}

// RelatedStateVariable returns the name of the state variable the argument
// is typed by.
func (a *Argument) RelatedStateVariable() string {
	return a.relatedStateVariable
}

func (a *Argument) ToXMLElement() *etree.Element {
	arg := etree.NewElement("argument")
	arg.CreateElement("name").SetText(a.name)
	arg.CreateElement("direction").SetText(a.direction.String())
	arg.CreateElement("relatedStateVariable").SetText(a.relatedStateVariable)
	return arg
}

func argumentFromXMLElement(elem *etree.Element) (*Argument, error) {
	name := childText(elem, "name")
	if name == "" {
		return nil, fmt.Errorf("argument without a name")
	}
	dir, err := ParseDirection(childText(elem, "direction"))
	if err != nil {
		return nil, fmt.Errorf("argument %s: %w", name, err)
	}
	return &Argument{
		name:                 name,
		direction:            dir,
		relatedStateVariable: childText(elem, "relatedStateVariable"),
	}, nil
}

func childText(elem *etree.Element, tag string) string {
	for _, c := range elem.ChildElements() {
		if c.Tag == tag {
			return strings.TrimSpace(c.Text())
		}
	}
	return ""
}
