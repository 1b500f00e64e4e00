package validator

import (
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/statevariables"
)

// Builder assembles a Validator. Adding a check of a kind already present
// replaces it. The first construction error is kept and returned by Build.
//
//	v, err := validator.NewBuilder().
//		Type("ui2").
//		InRange(0, 100, 1).
//		Build()
type Builder struct {
	checks map[CheckKind]Check
	err    error
}

func NewBuilder() *Builder {
	return &Builder{checks: make(map[CheckKind]Check)}
}

// Type adds the data type check. An unrecognized UPnP type makes Build fail
// with upnperr.ErrUnrecognizedType.
func (b *Builder) Type(upnpType string) *Builder {
	c, err := newTypeCheck(upnpType)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return b
	}
	return b.Add(c)
}

// InRange adds the inclusive range check. step is retained for
// introspection but never rejects a value.
func (b *Builder) InRange(min, max, step float64) *Builder {
	if min > max {
		min, max = max, min
	}
	return b.Add(&rangeCheck{r: statevariables.ValueRange{Min: min, Max: max, Step: step}})
}

func (b *Builder) AllowedValues(allowed ...string) *Builder {
	return b.Add(&allowedValuesCheck{allowed: append([]string(nil), allowed...)})
}

func (b *Builder) Add(c Check) *Builder {
	b.checks[c.Kind()] = c
	return b
}

func (b *Builder) Build() (*Validator, error) {
	if b.err != nil {
		return nil, b.err
	}
	checks := make(map[CheckKind]Check, len(b.checks))
	for k, c := range b.checks {
		checks[k] = c
	}
	return &Validator{checks: checks}, nil
}

// FromStateVariable builds the validator of a state variable: its data
// type, plus its range and allowed value list when declared.
func FromStateVariable(sv *statevariables.StateVariable) (*Validator, error) {
	b := NewBuilder().Type(sv.DataType())
	if r := sv.Range(); r != nil {
		b.InRange(r.Min, r.Max, r.Step)
	}
	if sv.HasAllowedValues() {
		b.AllowedValues(sv.AllowedValues()...)
	}
	v, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("state variable %s: %w", sv.Name(), err)
	}
	return v, nil
}
