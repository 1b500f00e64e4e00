package validator

import (
	"fmt"

	"gargoton.petite-maison-orange.fr/eric/pmocontrol/statevariables"
	"gargoton.petite-maison-orange.fr/eric/pmocontrol/upnperr"
)

// Provider resolves the validator of a state variable reference.
type Provider interface {
	Validator(stateVariable string) (*Validator, error)
}

// DefaultProvider holds one validator per state variable of a service.
type DefaultProvider struct {
	validators map[string]*Validator
}

// NewDefaultProvider builds the validators of a whole state table up front.
// It fails on the first state variable with an unrecognized data type.
func NewDefaultProvider(table *statevariables.StateVariableSet) (*DefaultProvider, error) {
	p := &DefaultProvider{validators: make(map[string]*Validator, table.Len())}
	for sv := range table.All() {
		v, err := FromStateVariable(sv)
		if err != nil {
			return nil, err
		}
		p.validators[sv.Name()] = v
	}
	return p, nil
}

// Validator fails with upnperr.ErrUnknownArgument for a reference missing
// from the state table.
func (p *DefaultProvider) Validator(stateVariable string) (*Validator, error) {
	v, ok := p.validators[stateVariable]
	if !ok {
		return nil, fmt.Errorf("%w: unknown state variable reference %q", upnperr.ErrUnknownArgument, stateVariable)
	}
	return v, nil
}

type noOpProvider struct{}

func (noOpProvider) Validator(string) (*Validator, error) {
	return NoOp(), nil
}

// NoOpProvider returns a provider answering NoOp for every reference.
func NoOpProvider() Provider {
	return noOpProvider{}
}
