// Package validator checks action argument values against the state
// variable they are typed by: data type, allowed value range and allowed
// value list.
package validator

import (
	"fmt"
	"slices"
	"strings"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/statevariables"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/values"
)

// CheckKind identifies a check. A validator holds at most one of each.
type CheckKind int

const (
	TypeCheck CheckKind = iota
	RangeCheck
	AllowedValuesCheck
)

func (k CheckKind) String() string {
	switch k {
	case TypeCheck:
		return "type"
	case RangeCheck:
		return "range"
	case AllowedValuesCheck:
		return "allowed values"
	default:
		return fmt.Sprintf("check(%d)", int(k))
	}
}

// Check validates one aspect of a value.
type Check interface {
	Kind() CheckKind
	Check(v values.Value) error
}

type typeCheck struct {
	upnpType string
	kind     values.Kind
}

func newTypeCheck(upnpType string) (*typeCheck, error) {
	t := statevariables.StateVarTypeFactory(upnpType)
	if t == statevariables.StateType_Unknown {
		return nil, fmt.Errorf("%w: %q", upnperr.ErrUnrecognizedType, upnpType)
	}
	return &typeCheck{upnpType: upnpType, kind: t.Kind()}, nil
}

func (c *typeCheck) Kind() CheckKind { return TypeCheck }

func (c *typeCheck) Check(v values.Value) error {
	if v.Kind() != c.kind {
		return fmt.Errorf("%w: %s is the wrong type, %s requires a %s value",
			upnperr.ErrInvalidArgument, describe(v), c.upnpType, c.kind)
	}
	return nil
}

type rangeCheck struct {
	r statevariables.ValueRange
}

func (c *rangeCheck) Kind() CheckKind { return RangeCheck }

func (c *rangeCheck) Check(v values.Value) error {
	n, ok := v.Number()
	if !ok {
		return fmt.Errorf("%w: %s is not numeric, cannot check it against range %s",
			upnperr.ErrInvalidArgument, describe(v), c.r)
	}
	if !c.r.Contains(n) {
		return fmt.Errorf("%w: %s is not in allowed range of values %s",
			upnperr.ErrInvalidArgument, describe(v), c.r)
	}
	return nil
}

type allowedValuesCheck struct {
	allowed []string
}

func (c *allowedValuesCheck) Kind() CheckKind { return AllowedValuesCheck }

func (c *allowedValuesCheck) Check(v values.Value) error {
	s, ok := v.AsText()
	if !ok || !slices.Contains(c.allowed, s) {
		return fmt.Errorf("%w: %s is not in list of allowed values [%s]",
			upnperr.ErrInvalidArgument, describe(v), strings.Join(c.allowed, ", "))
	}
	return nil
}

func describe(v values.Value) string {
	if v.IsNull() {
		return "null"
	}
	return fmt.Sprintf("%q (%s)", v.String(), v.Kind())
}

// Validator passes a value when every check it holds passes. A validator
// without checks accepts everything.
type Validator struct {
	checks map[CheckKind]Check
}

var noOp = &Validator{checks: map[CheckKind]Check{}}

// NoOp returns the validator accepting any value.
func NoOp() *Validator {
	return noOp
}

// Validate runs the type, range then allowed values checks and returns the
// first failure, wrapping upnperr.ErrInvalidArgument.
func (v *Validator) Validate(value values.Value) error {
	for _, kind := range []CheckKind{TypeCheck, RangeCheck, AllowedValuesCheck} {
		if c, ok := v.checks[kind]; ok {
			if err := c.Check(value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (v *Validator) Has(kind CheckKind) bool {
	_, ok := v.checks[kind]
	return ok
}

// RequiredKind returns the value kind enforced by the type check.
func (v *Validator) RequiredKind() (values.Kind, bool) {
	c, ok := v.checks[TypeCheck].(*typeCheck)
	if !ok {
		return values.KindNull, false
	}
	return c.kind, true
}

// AllowedValues returns the allowed value list, nil when unconstrained.
func (v *Validator) AllowedValues() []string {
	c, ok := v.checks[AllowedValuesCheck].(*allowedValuesCheck)
	if !ok {
		return nil
	}
	return slices.Clone(c.allowed)
}

// ValidRange returns the allowed value range, nil when unconstrained.
func (v *Validator) ValidRange() *statevariables.ValueRange {
	c, ok := v.checks[RangeCheck].(*rangeCheck)
	if !ok {
		return nil
	}
	r := c.r
	return &r
}
