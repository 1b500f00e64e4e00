package statevariables

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ToXMLElement generates the <stateVariable> element describing sv.
func (sv *StateVariable) ToXMLElement() *etree.Element {
	elem := etree.NewElement("stateVariable")

	if sv.sendEvents {
		elem.CreateAttr("sendEvents", "yes")
	} else {
		elem.CreateAttr("sendEvents", "no")
	}

	elem.CreateElement("name").SetText(sv.name)
	elem.CreateElement("dataType").SetText(sv.dataType)

	if sv.defaultValue != nil {
		elem.CreateElement("defaultValue").SetText(*sv.defaultValue)
	}

	if sv.valueRange != nil {
		rangeElem := elem.CreateElement("allowedValueRange")
		rangeElem.CreateElement("minimum").SetText(formatNumber(sv.valueRange.Min))
		rangeElem.CreateElement("maximum").SetText(formatNumber(sv.valueRange.Max))
		if sv.valueRange.Step != 0 {
			rangeElem.CreateElement("step").SetText(formatNumber(sv.valueRange.Step))
		}
	}

	if len(sv.allowedValues) > 0 {
		list := elem.CreateElement("allowedValueList")
		for _, value := range sv.allowedValues {
			list.CreateElement("allowedValue").SetText(value)
		}
	}

	return elem
}

// FromXMLElement reads a <stateVariable> element. Namespace prefixes are
// ignored and unknown children are skipped. An unrecognized dataType is
// accepted here; it is rejected when a validator is built for it.
func FromXMLElement(elem *etree.Element) (*StateVariable, error) {
	name := childText(elem, "name")
	if name == "" {
		return nil, fmt.Errorf("stateVariable without a name")
	}

	sv := NewStateVariable(name, childText(elem, "dataType"))
	sv.sendEvents = strings.EqualFold(strings.TrimSpace(elem.SelectAttrValue("sendEvents", "no")), "yes")

	if def := child(elem, "defaultValue"); def != nil {
		sv.SetDefault(def.Text())
	}

	if r := child(elem, "allowedValueRange"); r != nil {
		min, err := parseNumber(childText(r, "minimum"))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid minimum: %w", name, err)
		}
		max, err := parseNumber(childText(r, "maximum"))
		if err != nil {
			return nil, fmt.Errorf("%s: invalid maximum: %w", name, err)
		}
		if min > max {
			min, max = max, min
		}
		vr := &ValueRange{Min: min, Max: max}
		if s := childText(r, "step"); s != "" {
			step, err := parseNumber(s)
			if err != nil {
				return nil, fmt.Errorf("%s: invalid step: %w", name, err)
			}
			vr.Step = step
		}
		sv.valueRange = vr
	}

	if list := child(elem, "allowedValueList"); list != nil {
		for _, v := range list.ChildElements() {
			if v.Tag == "allowedValue" {
				sv.AppendAllowedValue(v.Text())
			}
		}
	}

	return sv, nil
}

// child returns the first child element whose local name is tag.
func child(elem *etree.Element, tag string) *etree.Element {
	for _, c := range elem.ChildElements() {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

func childText(elem *etree.Element, tag string) string {
	if c := child(elem, tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
